package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/comisiones-api/internal/application/exporting"
	"github.com/jhoicas/comisiones-api/internal/bootstrap"
	"github.com/jhoicas/comisiones-api/internal/domain/entity"
	"github.com/jhoicas/comisiones-api/pkg/config"
)

func exportCmd() *cobra.Command {
	var to exporting.Recipient
	cmd := &cobra.Command{
		Use:       "export servicos|prestadores",
		Short:     "Ejecuta una exportación a SCI Único de forma sincrónica",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{entity.ExportKindServices, entity.ExportKindProviders},
		RunE: func(cmd *cobra.Command, args []string) error {
			if to.UserID == "" {
				to.UserID = "ctl"
			}
			return withApp(cmd.Context(), func(_ *config.Config, app *bootstrap.App) error {
				run, err := app.Exports.Run(cmd.Context(), args[0], to)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "execução %s: %s, %d exportados, %d falhas\n",
					run.ID, run.Status, run.Exported, len(run.Failures))
				for _, f := range run.Failures {
					fmt.Fprintf(cmd.OutOrStdout(), "  %s: %s\n", f.Ref, f.Error)
				}
				if run.Status == entity.ExportRunFailed {
					return fmt.Errorf("exportación fallida: %s", run.Error)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&to.Email, "email", "", "destinatario del archivo generado")
	cmd.Flags().StringVar(&to.Name, "nome", "", "nombre del destinatario")
	return cmd
}
