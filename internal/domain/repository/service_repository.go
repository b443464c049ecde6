package repository

import (
	"context"

	"github.com/jhoicas/comisiones-api/internal/domain/entity"
)

// ServiceRepository define el puerto de persistencia para Service.
type ServiceRepository interface {
	Create(ctx context.Context, s *entity.Service) error
	ListByIDs(ctx context.Context, ids []string) ([]*entity.Service, error)
}
