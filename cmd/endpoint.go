package main

import (
	"github.com/spf13/cobra"

	"walt/internal/app"
)

var endpointCmd = &cobra.Command{
	Use:   "endpoint",
	Short: "run as the server-side shell command for one connected client",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConf("endpoint")
		if err != nil {
			return err
		}
		return app.RunEndpoint(cfg)
	},
}
