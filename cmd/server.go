package main

import (
	"github.com/spf13/cobra"

	"walt/internal/app"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "run the VPN server: dispatch L2TP datagrams across connected clients",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConf("server")
		if err != nil {
			return err
		}
		return app.RunServer(cfg)
	},
}
