package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/comisiones-api/internal/domain"
	"github.com/jhoicas/comisiones-api/internal/domain/entity"
	"github.com/jhoicas/comisiones-api/internal/domain/repository"
	"github.com/jhoicas/comisiones-api/internal/domain/workflow"
)

var _ repository.TicketRepository = (*TicketRepo)(nil)

// TicketRepo implementación del puerto TicketRepository sobre PostgreSQL.
type TicketRepo struct {
	q Querier
}

// NewTicketRepository construye el adaptador de persistencia para tickets.
func NewTicketRepository(q Querier) *TicketRepo {
	return &TicketRepo{q: q}
}

// ticketSelect incluye los servicios vinculados en orden de inserción.
const ticketSelect = `
	SELECT t.id, t.provider_id, COALESCE(t.account_payable_id::text, ''), t.title, t.observation,
		t.etapa, t.status, t.version, t.created_at, t.updated_at,
		COALESCE((SELECT array_agg(ts.service_id::text ORDER BY ts.position)
			FROM ticket_services ts WHERE ts.ticket_id = t.id), '{}')
	FROM tickets t`

// Create inserta el ticket y sus servicios en una sola sentencia.
func (r *TicketRepo) Create(ctx context.Context, t *entity.Ticket) error {
	query := `
		WITH ins AS (
			INSERT INTO tickets (id, provider_id, account_payable_id, title, observation, etapa, status,
				version, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING id
		)
		INSERT INTO ticket_services (ticket_id, service_id, position)
		SELECT ins.id, x.service_id, x.pos
		FROM ins, unnest($11::uuid[]) WITH ORDINALITY AS x(service_id, pos)`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.ProviderID, nullIfEmpty(t.AccountPayableID), t.Title, t.Observation, t.Etapa, t.Status,
		t.Version, t.CreatedAt, t.UpdatedAt, t.ServiceIDs,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert ticket: %w", err)
	}
	return nil
}

// GetByID obtiene un ticket por ID.
func (r *TicketRepo) GetByID(ctx context.Context, id string) (*entity.Ticket, error) {
	t, err := scanTicket(r.q.QueryRow(ctx, ticketSelect+` WHERE t.id = $1`+r.lock(), id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get ticket: %w", err)
	}
	return t, nil
}

// GetByPayableID obtiene el ticket vinculado a una cuenta a pagar.
func (r *TicketRepo) GetByPayableID(ctx context.Context, payableID string) (*entity.Ticket, error) {
	t, err := scanTicket(r.q.QueryRow(ctx, ticketSelect+` WHERE t.account_payable_id = $1`+r.lock(), payableID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get ticket by payable: %w", err)
	}
	return t, nil
}

// ListForExport tickets en integracao-unico pendientes, más antiguos primero.
func (r *TicketRepo) ListForExport(ctx context.Context) ([]*entity.Ticket, error) {
	rows, err := r.q.Query(ctx, ticketSelect+`
		WHERE t.etapa = $1 AND t.status <> $2
		ORDER BY t.created_at, t.id`,
		workflow.EtapaIntegracaoUnico, workflow.StatusConcluido)
	if err != nil {
		return nil, fmt.Errorf("list tickets for export: %w", err)
	}
	defer rows.Close()

	var list []*entity.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ticket: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

// UpdateState escritura condicional sobre version.
func (r *TicketRepo) UpdateState(ctx context.Context, t *entity.Ticket) error {
	query := `
		UPDATE tickets
		SET etapa = $3, status = $4, observation = $5, account_payable_id = $6, updated_at = $7,
			version = version + 1
		WHERE id = $1 AND version = $2
		RETURNING version`
	err := r.q.QueryRow(ctx, query,
		t.ID, t.Version, t.Etapa, t.Status, t.Observation, nullIfEmpty(t.AccountPayableID), t.UpdatedAt,
	).Scan(&t.Version)
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		return domain.ErrDuplicate
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("update ticket state: %w", err)
	}
	var exists bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM tickets WHERE id = $1)`, t.ID).Scan(&exists); err != nil {
		return fmt.Errorf("check ticket: %w", err)
	}
	if !exists {
		return domain.ErrNotFound
	}
	return domain.ErrConflict
}

// lock dentro de una transacción bloquea la fila leída hasta el commit.
func (r *TicketRepo) lock() string {
	if isTx(r.q) {
		return ` FOR UPDATE OF t`
	}
	return ""
}

func scanTicket(row pgx.Row) (*entity.Ticket, error) {
	var t entity.Ticket
	err := row.Scan(&t.ID, &t.ProviderID, &t.AccountPayableID, &t.Title, &t.Observation,
		&t.Etapa, &t.Status, &t.Version, &t.CreatedAt, &t.UpdatedAt, &t.ServiceIDs)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
