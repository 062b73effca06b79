package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"walt/internal/app"
	"walt/internal/conf"
)

var clientCmd = &cobra.Command{
	Use:   "client",
	Short: "run the VPN client: bridge a local TAP device to the server over SSH",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConf("client")
		if err != nil {
			return err
		}
		return app.RunClient(cfg)
	},
}

func loadConf(expectedRole string) (*conf.Conf, error) {
	if configPath == "" {
		return nil, fmt.Errorf("--config is required")
	}
	cfg, err := conf.LoadFromFile(configPath)
	if err != nil {
		return nil, err
	}
	if cfg.Role != expectedRole {
		return nil, fmt.Errorf("config role %q does not match command %q", cfg.Role, expectedRole)
	}
	return cfg, nil
}
