package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "coursegate",
	Short: "Entitlement ledger, pricing reconciliation, and access evaluation",
	Long: `CourseGate owns who may access which course content and what any
transition costs: module and bundle purchases with proration, gifts,
administrative grants, and upgrade offers.

Quick start:
  coursegate seed --file catalog.yaml   # Load the course catalog
  coursegate serve                      # Start the API server

Management:
  coursegate validate   # Validate configuration
  coursegate version    # Print version information`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "coursegate.yaml", "config file path")
}
