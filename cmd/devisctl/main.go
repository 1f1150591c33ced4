package main

import (
	"fmt"
	"os"

	"github.com/sangkips/devis-eau-api/internal/bootstrap"
	"github.com/sangkips/devis-eau-api/internal/config"
	"github.com/sangkips/devis-eau-api/internal/observability/logger"
	"github.com/spf13/cobra"
)

var container *bootstrap.Container

var rootCmd = &cobra.Command{
	Use:   "devisctl",
	Short: "Administration tool for the water delivery quoting service",
	Long: `devisctl runs database migrations, seeds roles and the admin account,
inspects the tariff catalog and prices quotes offline against it.

Configuration is read from .env and the environment, as for the API server.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if container != nil {
			_ = container.Logger.Sync()
			_ = container.Close()
		}
	},
}

func setup(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "help" || cmd.Name() == "completion" {
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	if cfg.Log.Format == "json" {
		cfg.Log.Format = "console"
	}
	log, err := logger.New(logger.Config{
		ServiceName: "devisctl",
		Environment: cfg.App.Env,
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
	})
	if err != nil {
		return err
	}

	container, err = bootstrap.New(cfg, log)
	return err
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
