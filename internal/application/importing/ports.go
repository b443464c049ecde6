package importing

import (
	"context"

	"github.com/jhoicas/comisiones-api/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción con los repositorios atados a ella.
// Si fn retorna error se hace rollback de todo lo escrito por fn.
type TxRunner interface {
	RunImport(ctx context.Context, fn func(
		providerRepo repository.ProviderRepository,
		serviceRepo repository.ServiceRepository,
		ticketRepo repository.TicketRepository,
	) error) error
}

// SheetReader lee la primera hoja de una planilla como filas de celdas de texto.
type SheetReader interface {
	ReadRows(path string) ([][]string, error)
}
