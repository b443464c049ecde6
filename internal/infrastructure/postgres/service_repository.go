package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/comisiones-api/internal/domain"
	"github.com/jhoicas/comisiones-api/internal/domain/entity"
	"github.com/jhoicas/comisiones-api/internal/domain/repository"
)

var _ repository.ServiceRepository = (*ServiceRepo)(nil)

// ServiceRepo implementación del puerto ServiceRepository sobre PostgreSQL.
type ServiceRepo struct {
	q Querier
}

// NewServiceRepository construye el adaptador de persistencia para servicios.
func NewServiceRepository(q Querier) *ServiceRepo {
	return &ServiceRepo{q: q}
}

// Create persiste un servicio. Los montos viajan como NUMERIC vía pgx-shopspring-decimal.
func (r *ServiceRepo) Create(ctx context.Context, s *entity.Service) error {
	query := `
		INSERT INTO services (id, provider_id, month, year, principal, bonus, commercial_adjustment,
			hosting_fee, total, correction, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.ProviderID, s.Month, s.Year, s.Principal, s.Bonus, s.CommercialAdjustment,
		s.HostingFee, s.Total, s.Correction, s.Status, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert service: %w", err)
	}
	return nil
}

// ListByIDs devuelve los servicios existentes en el orden de ids.
func (r *ServiceRepo) ListByIDs(ctx context.Context, ids []string) ([]*entity.Service, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `
		SELECT s.id, s.provider_id, s.month, s.year, s.principal, s.bonus, s.commercial_adjustment,
			s.hosting_fee, s.total, s.correction, s.status, s.created_at, s.updated_at
		FROM unnest($1::uuid[]) WITH ORDINALITY AS x(id, pos)
		JOIN services s ON s.id = x.id
		ORDER BY x.pos`
	rows, err := r.q.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	var list []*entity.Service
	for rows.Next() {
		var s entity.Service
		if err := rows.Scan(&s.ID, &s.ProviderID, &s.Month, &s.Year, &s.Principal, &s.Bonus,
			&s.CommercialAdjustment, &s.HostingFee, &s.Total, &s.Correction, &s.Status,
			&s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}
