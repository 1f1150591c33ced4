package main

import (
	"fmt"

	"github.com/sangkips/devis-eau-api/internal/infrastructure/database"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := database.AutoMigrate(container.DB); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the admin and agent roles and the admin account",
	Long: `Create the admin and agent roles, and the admin account from ADMIN_EMAIL,
ADMIN_PASSWORD and ADMIN_NAME when they are set. Existing rows are kept.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return database.SeedDefaultData(cmd.Context(), container.DB, container.Config.Admin, container.Logger)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd, seedCmd)
}
