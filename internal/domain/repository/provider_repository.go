package repository

import (
	"context"
	"time"

	"github.com/jhoicas/comisiones-api/internal/domain/entity"
)

// ProviderRepository define el puerto de persistencia para Provider.
type ProviderRepository interface {
	Create(ctx context.Context, p *entity.Provider) error
	// GetByID devuelve domain.ErrNotFound si no existe.
	GetByID(ctx context.Context, id string) (*entity.Provider, error)
	// GetBySID devuelve nil, nil si no existe.
	GetBySID(ctx context.Context, sid string) (*entity.Provider, error)
	// MarkExported pasa el prestador a aguardando-codigo-sci solo si todavía no tiene código SCI.
	// Devuelve false si la condición no se cumplió.
	MarkExported(ctx context.Context, id string, at time.Time) (bool, error)
	// AssignERPCode fija sci_unico y deja el prestador activo.
	// domain.ErrDuplicate si otro prestador ya tiene ese código.
	AssignERPCode(ctx context.Context, id, sciUnico string, at time.Time) error
}
