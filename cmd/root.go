// Package cmd implements the command-line interface for the lead scraper.
package cmd

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	// cfgFile holds the path to the configuration file.
	cfgFile string

	// debug enables debug mode for all commands.
	debug bool

	rootCmd = &cobra.Command{
		Use:   "brio",
		Short: "A local-business lead scraper",
		Long:  `Scrapes local-business listings, filters them against the DNC list and lead pool, and extracts contact emails from their websites.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command.
func Execute() error {
	// Load .env early so credentials are available to config loading.
	_ = godotenv.Load()
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug mode")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("brio version %s\n", "1.0.0")
		},
	})

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newScrapeCommand())
	rootCmd.AddCommand(newExtractCommand())
	rootCmd.AddCommand(newDNCCommand())
}
