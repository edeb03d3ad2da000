package main

import (
	"context"
	"fmt"

	"github.com/openlearn/coursegate/bootstrap"
	"github.com/spf13/cobra"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load a YAML catalog file into the database",
	Long: `Load bundles, modules, and lessons from a YAML file.

Example catalog file:

  bundles:
    - id: bundle-go
      title: Go from Zero to Production
      bundle_price: 80000
      currency: USD
      modules:
        - id: mod-basics
          title: Go Basics
          individual_price: 50000
          lessons:
            - {id: l1, title: Hello World, order: 1, free_preview: true}
            - {id: l2, title: Types and Values, order: 2}
  modules:
    - id: mod-standalone
      title: Profiling Deep Dive
      individual_price: 30000

Examples:
  coursegate seed --file catalog.yaml`,
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "catalog.yaml", "catalog seed file")
}

func runSeed(cmd *cobra.Command, args []string) error {
	holder, err := loadHolder()
	if err != nil {
		return err
	}

	app, err := bootstrap.New(holder)
	if err != nil {
		return fmt.Errorf("error initializing: %w", err)
	}
	defer app.Shutdown()

	if err := app.Seed(context.Background(), seedFile); err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	fmt.Println("Catalog seeded")
	return nil
}
