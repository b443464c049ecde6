package repository

import (
	"context"

	"github.com/jhoicas/comisiones-api/internal/domain/entity"
)

// AccountPayableRepository define el puerto de persistencia para AccountPayable.
type AccountPayableRepository interface {
	Create(ctx context.Context, ap *entity.AccountPayable) error
	// GetByExternalCode devuelve nil, nil si no existe. Dentro de una tx bloquea la fila.
	GetByExternalCode(ctx context.Context, code string) (*entity.AccountPayable, error)
	UpdateTitleStatus(ctx context.Context, id, titleStatus string) error
	Delete(ctx context.Context, id string) error
}

// CredentialsRepository lectura del registro único de credenciales del ERP.
type CredentialsRepository interface {
	// Get devuelve nil, nil si no hay credenciales cargadas.
	Get(ctx context.Context) (*entity.ERPCredentials, error)
}
