package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/comisiones-api/internal/domain"
	"github.com/jhoicas/comisiones-api/internal/domain/entity"
	"github.com/jhoicas/comisiones-api/internal/domain/repository"
)

var _ repository.AccountPayableRepository = (*AccountPayableRepo)(nil)
var _ repository.CredentialsRepository = (*CredentialsRepo)(nil)

// AccountPayableRepo implementación del puerto AccountPayableRepository sobre PostgreSQL.
type AccountPayableRepo struct {
	q Querier
}

// NewAccountPayableRepository construye el adaptador para cuentas a pagar.
func NewAccountPayableRepository(q Querier) *AccountPayableRepo {
	return &AccountPayableRepo{q: q}
}

func (r *AccountPayableRepo) Create(ctx context.Context, ap *entity.AccountPayable) error {
	query := `
		INSERT INTO account_payables (id, external_code, title_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(ctx, query, ap.ID, ap.ExternalCode, ap.TitleStatus, ap.CreatedAt, ap.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert account payable: %w", err)
	}
	return nil
}

// GetByExternalCode dentro de una tx toma la fila con FOR UPDATE para serializar eventos del mismo código.
func (r *AccountPayableRepo) GetByExternalCode(ctx context.Context, code string) (*entity.AccountPayable, error) {
	query := `
		SELECT id, external_code, title_status, created_at, updated_at
		FROM account_payables WHERE external_code = $1`
	if isTx(r.q) {
		query += ` FOR UPDATE`
	}
	var ap entity.AccountPayable
	err := r.q.QueryRow(ctx, query, code).Scan(&ap.ID, &ap.ExternalCode, &ap.TitleStatus, &ap.CreatedAt, &ap.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get account payable: %w", err)
	}
	return &ap, nil
}

func (r *AccountPayableRepo) UpdateTitleStatus(ctx context.Context, id, titleStatus string) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE account_payables SET title_status = $2, updated_at = now() WHERE id = $1`, id, titleStatus)
	if err != nil {
		return fmt.Errorf("update title status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *AccountPayableRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM account_payables WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete account payable: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CredentialsRepo lee el registro único de erp_credentials.
type CredentialsRepo struct {
	q Querier
}

// NewCredentialsRepository construye el lector de credenciales del ERP.
func NewCredentialsRepository(q Querier) *CredentialsRepo {
	return &CredentialsRepo{q: q}
}

func (r *CredentialsRepo) Get(ctx context.Context) (*entity.ERPCredentials, error) {
	var c entity.ERPCredentials
	err := r.q.QueryRow(ctx, `SELECT app_key, app_secret FROM erp_credentials WHERE id = 1`).Scan(&c.AppKey, &c.AppSecret)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get erp credentials: %w", err)
	}
	return &c, nil
}
