package main

import (
	"fmt"
	"os"

	"github.com/openlearn/coursegate/bootstrap"
	"github.com/openlearn/coursegate/config"
	"github.com/spf13/cobra"
)

var (
	hotReload bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long: `Start the CourseGate API server.

The server will:
  - Load configuration from coursegate.yaml (or --config)
  - Or load configuration from COURSEGATE_* environment variables
  - Connect to the database and run migrations
  - Serve access checks, purchases, offers, and grants

Environment variables (for Docker deployments):
  COURSEGATE_DATABASE_DRIVER - sqlite or memory (default: sqlite)
  COURSEGATE_DATABASE_DSN    - Database path (default: coursegate.db)
  COURSEGATE_SERVER_PORT     - Server port (default: 8080)
  COURSEGATE_PLANS_PRO_USERS - Comma-separated pro user IDs
  COURSEGATE_LOG_LEVEL       - Log level: debug, info, warn, error

Examples:
  coursegate serve
  coursegate serve --config /etc/coursegate/config.yaml
  coursegate serve --hot-reload=false`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&hotReload, "hot-reload", true, "enable hot reload of configuration")
}

func runServe(cmd *cobra.Command, args []string) error {
	holder, err := loadHolder()
	if err != nil {
		return err
	}

	if hotReload && holder.Watchable() {
		if err := holder.WatchFile(); err != nil {
			return fmt.Errorf("watch config: %w", err)
		}
		holder.WatchSignals()
	}

	app, err := bootstrap.New(holder)
	if err != nil {
		return fmt.Errorf("error initializing: %w", err)
	}

	// Run (blocks until shutdown)
	return app.Run()
}

// loadHolder builds a config holder from the config file, falling back to
// environment variables when no file exists.
func loadHolder() (*config.Holder, error) {
	if _, err := os.Stat(cfgFile); err == nil {
		logger := bootstrap.SetupLogger(config.LoggingConfig{Level: "info", Format: "json"})
		return config.NewHolder(cfgFile, logger)
	}

	fmt.Println("Running with environment variables (no config file)")
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	logger := bootstrap.SetupLogger(cfg.Logging)
	return config.NewStaticHolder(cfg, logger), nil
}
