package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/comisiones-api/internal/infrastructure/postgres"
	"github.com/jhoicas/comisiones-api/pkg/config"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Aplica o revierte las migraciones de la base",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Aplica las migraciones pendientes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigration(cmd, postgres.MigrateUp)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Revierte todas las migraciones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigration(cmd, postgres.MigrateDown)
		},
	})
	return cmd
}

func runMigration(cmd *cobra.Command, fn func(dsn string) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("cargar configuración: %w", err)
	}
	if err := fn(cfg.DB.ConnectionString()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "migraciones aplicadas")
	return nil
}
