package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/maxviazov/cricket-tournament-service/internal/config"
	"github.com/maxviazov/cricket-tournament-service/internal/logger"
	"github.com/maxviazov/cricket-tournament-service/internal/repository/postgres"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "cricket-tournament-service",
		Short:         "Cricket tournament REST API (players, teams, matches)",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), configPath)
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the YAML config file (empty to use env only)")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API (default command)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), configPath)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:       "migrate [up|down|status]",
		Short:     "Apply or inspect the embedded Postgres migrations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{postgres.MigrateUp, postgres.MigrateDown, postgres.MigrateStatus},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd.Context(), configPath, args[0])
		},
	})
	return root
}

// bootstrap loads .env (when present), the config file and the process logger.
func bootstrap(configPath string) (*config.Config, zerolog.Logger, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, zerolog.Nop(), fmt.Errorf("load .env: %w", err)
	}
	if configPath != "" {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = ""
		}
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("config loading failed: %w", err)
	}
	appLogger, err := logger.New(&cfg.Logger)
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("logger initialization failed: %w", err)
	}
	return cfg, appLogger, nil
}
