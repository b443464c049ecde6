package repository

import (
	"context"

	"github.com/jhoicas/comisiones-api/internal/domain/entity"
)

// TicketRepository define el puerto de persistencia para Ticket.
type TicketRepository interface {
	Create(ctx context.Context, t *entity.Ticket) error
	// GetByID devuelve domain.ErrNotFound si no existe.
	GetByID(ctx context.Context, id string) (*entity.Ticket, error)
	// GetByPayableID devuelve nil, nil si ningún ticket referencia la cuenta a pagar.
	GetByPayableID(ctx context.Context, payableID string) (*entity.Ticket, error)
	// ListForExport tickets en integracao-unico con status distinto de concluido, por fecha de creación.
	ListForExport(ctx context.Context) ([]*entity.Ticket, error)
	// UpdateState escribe etapa, status, observación y vínculo con la cuenta a pagar
	// solo si la versión almacenada coincide con t.Version; incrementa la versión.
	// Devuelve domain.ErrConflict si otra escritura ganó.
	UpdateState(ctx context.Context, t *entity.Ticket) error
}
