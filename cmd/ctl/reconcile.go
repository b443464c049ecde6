package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/comisiones-api/internal/bootstrap"
	"github.com/jhoicas/comisiones-api/internal/domain"
	"github.com/jhoicas/comisiones-api/pkg/config"
)

func reconcileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Conciliación de cuentas a pagar con Omie",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "poll <codigo_lancamento>...",
		Short: "Consulta en Omie las cuentas a pagar indicadas y concilia sus tickets",
		Long: `Consulta cada código en Omie con ConsultarContaPagar y aplica el resultado:
título PAGO concluye el ticket; una cuenta inexistente en Omie se elimina y el ticket vuelve a revisión.
Pensado para ejecutarse desde cron.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(_ *config.Config, app *bootstrap.App) error {
				var failed int
				for _, code := range args {
					_, err := app.Reconciler.PollPayable(cmd.Context(), code)
					switch {
					case err == nil:
						fmt.Fprintf(cmd.OutOrStdout(), "%s: conciliada\n", code)
					case errors.Is(err, domain.ErrPayableNotFoundUpstream):
						fmt.Fprintf(cmd.OutOrStdout(), "%s: não encontrada no Omie, ticket devolvido para revisão\n", code)
					default:
						failed++
						fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", code, err)
					}
				}
				if failed > 0 {
					return fmt.Errorf("%d de %d códigos con error", failed, len(args))
				}
				return nil
			})
		},
	})
	return cmd
}
