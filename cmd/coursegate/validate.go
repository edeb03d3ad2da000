package main

import (
	"fmt"

	"github.com/openlearn/coursegate/config"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("configuration invalid: %w", err)
		}

		fmt.Println("Configuration valid")
		fmt.Printf("  Server:   %s:%d\n", cfg.Server.Host, cfg.Server.Port)
		fmt.Printf("  Database: %s (%s)\n", cfg.Database.Driver, cfg.Database.DSN)
		fmt.Printf("  Plans:    %s mode, %d pro user(s)\n", cfg.Plans.Mode, len(cfg.Plans.ProUsers))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
