package main

import (
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "walt",
	Short: "walt tunnels L2 Ethernet traffic over authenticated shell sessions",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the YAML config file (required)")
	rootCmd.AddCommand(clientCmd, serverCmd, endpointCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
