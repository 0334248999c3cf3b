package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/localdeals/deals-api/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "deals-api",
	Short: "Nearby deals API",
	Long:  "Serves a geospatial query endpoint that returns nearby points of interest enriched with promotional metadata, backed by Overpass mirrors or the Google Places API.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
