package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/comisiones-api/internal/domain"
	"github.com/jhoicas/comisiones-api/internal/domain/entity"
	"github.com/jhoicas/comisiones-api/internal/domain/repository"
)

var _ repository.ProviderRepository = (*ProviderRepo)(nil)

// ProviderRepo implementación del puerto ProviderRepository sobre PostgreSQL (usable con pool o tx).
type ProviderRepo struct {
	q Querier
}

// NewProviderRepository construye el adaptador de persistencia para prestadores. Pasar pool o tx (Querier).
func NewProviderRepository(q Querier) *ProviderRepo {
	return &ProviderRepo{q: q}
}

const providerColumns = `id, sid, sci_unico, name, kind, document, email, bank, address, details,
	status, review_comments, exported_at, created_at, updated_at`

// Create persiste un nuevo prestador. SID duplicado -> domain.ErrDuplicate.
func (r *ProviderRepo) Create(ctx context.Context, p *entity.Provider) error {
	bank, err := json.Marshal(p.Bank)
	if err != nil {
		return fmt.Errorf("marshal bank: %w", err)
	}
	address, err := json.Marshal(p.Address)
	if err != nil {
		return fmt.Errorf("marshal address: %w", err)
	}
	var details []byte
	if p.Details != nil {
		if details, err = json.Marshal(p.Details); err != nil {
			return fmt.Errorf("marshal details: %w", err)
		}
	}
	query := `
		INSERT INTO providers (` + providerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err = r.q.Exec(ctx, query,
		p.ID, p.SID, nullIfEmpty(p.SciUnico), p.Name, nullIfEmpty(p.Kind()), p.Document, p.Email,
		bank, address, details, p.Status, p.ReviewComments, p.ExportedAt, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert provider: %w", err)
	}
	return nil
}

// GetByID obtiene un prestador por ID.
func (r *ProviderRepo) GetByID(ctx context.Context, id string) (*entity.Provider, error) {
	p, err := scanProvider(r.q.QueryRow(ctx, `SELECT `+providerColumns+` FROM providers WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get provider: %w", err)
	}
	return p, nil
}

// GetBySID obtiene un prestador por SID.
func (r *ProviderRepo) GetBySID(ctx context.Context, sid string) (*entity.Provider, error) {
	p, err := scanProvider(r.q.QueryRow(ctx, `SELECT `+providerColumns+` FROM providers WHERE sid = $1`, sid))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get provider by sid: %w", err)
	}
	return p, nil
}

// MarkExported el WHERE sobre sci_unico hace la transición condicional en una sola sentencia.
func (r *ProviderRepo) MarkExported(ctx context.Context, id string, at time.Time) (bool, error) {
	query := `
		UPDATE providers
		SET status = $2, exported_at = $3, updated_at = $3
		WHERE id = $1 AND sci_unico IS NULL`
	tag, err := r.q.Exec(ctx, query, id, entity.ProviderStatusAwaitingERPCode, at)
	if err != nil {
		return false, fmt.Errorf("mark provider exported: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// AssignERPCode fija el código SCI y activa el prestador.
func (r *ProviderRepo) AssignERPCode(ctx context.Context, id, sciUnico string, at time.Time) error {
	query := `UPDATE providers SET sci_unico = $2, status = $3, updated_at = $4 WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, id, sciUnico, entity.ProviderStatusActive, at)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isInvalidText(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("assign sci_unico: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanProvider(row pgx.Row) (*entity.Provider, error) {
	var (
		p                      entity.Provider
		sciUnico, kind         *string
		bank, address, details []byte
	)
	err := row.Scan(&p.ID, &p.SID, &sciUnico, &p.Name, &kind, &p.Document, &p.Email,
		&bank, &address, &details, &p.Status, &p.ReviewComments, &p.ExportedAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.SciUnico = deref(sciUnico)
	if err := json.Unmarshal(bank, &p.Bank); err != nil {
		return nil, fmt.Errorf("unmarshal bank: %w", err)
	}
	if err := json.Unmarshal(address, &p.Address); err != nil {
		return nil, fmt.Errorf("unmarshal address: %w", err)
	}
	if p.Details, err = decodeDetails(deref(kind), details); err != nil {
		return nil, err
	}
	return &p, nil
}

// decodeDetails reconstruye la variante de ProviderDetails a partir de la columna kind.
func decodeDetails(kind string, raw []byte) (entity.ProviderDetails, error) {
	var d entity.ProviderDetails
	switch kind {
	case entity.ProviderKindIndividual:
		d = &entity.IndividualDetails{}
	case entity.ProviderKindCompany:
		d = &entity.CompanyDetails{}
	default:
		return nil, nil
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, d); err != nil {
			return nil, fmt.Errorf("unmarshal details %s: %w", kind, err)
		}
	}
	return d, nil
}
