package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jhoicas/comisiones-api/internal/bootstrap"
	"github.com/jhoicas/comisiones-api/pkg/config"
	"github.com/jhoicas/comisiones-api/pkg/logger"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "ctl",
		Short:         "Operaciones de comisiones: migraciones, conciliación con Omie y exportaciones a SCI Único",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(reconcileCmd())
	rootCmd.AddCommand(exportCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// withApp carga configuración y dependencias, ejecuta fn y libera todo al terminar.
func withApp(ctx context.Context, fn func(cfg *config.Config, app *bootstrap.App) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("cargar configuración: %w", err)
	}
	log, err := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, ErrorFile: cfg.Log.ErrorFile})
	if err != nil {
		return fmt.Errorf("iniciar logger: %w", err)
	}
	defer log.Close()

	app, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(cfg, app)
}
