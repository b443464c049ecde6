package repository

import (
	"context"

	"github.com/jhoicas/comisiones-api/internal/domain/entity"
)

// ExportRunRepository registro de ejecuciones de exportación.
type ExportRunRepository interface {
	Create(ctx context.Context, run *entity.ExportRun) error
	Finish(ctx context.Context, run *entity.ExportRun) error
	GetByID(ctx context.Context, id string) (*entity.ExportRun, error)
}
