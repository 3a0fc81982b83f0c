package cmd

import (
	"context"
	"fmt"
	"os"

	"recipe-assistant/internal/app"
	"recipe-assistant/internal/infrastructure/config"
	"recipe-assistant/internal/pkg/common"

	"github.com/spf13/cobra"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "chefeval",
	Short: "chefeval - offline evaluation tools for the recipe assistant",
	Long: `chefeval runs batches of queries through the recipe pipeline and
generates synthetic queries for evaluation.

Commands:
  bulk      Run every query in a CSV through the pipeline and save the replies
  tuples    Generate random (cuisine, course, dietary) tuples and queries

Configuration is read from the same environment and .env file as the API server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return common.InitLogger(logLevel)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		common.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildApp 以目前設定組裝食譜服務
func buildApp(ctx context.Context) (*app.App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return app.Build(ctx, cfg, app.Options{})
}
