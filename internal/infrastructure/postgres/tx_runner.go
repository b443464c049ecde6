package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/comisiones-api/internal/application/importing"
	"github.com/jhoicas/comisiones-api/internal/application/reconciliation"
	"github.com/jhoicas/comisiones-api/internal/domain/repository"
)

var _ importing.TxRunner = (*TxRunner)(nil)
var _ reconciliation.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunImport inicia una transacción con repos de prestador, servicio y ticket.
func (r *TxRunner) RunImport(ctx context.Context, fn func(
	providerRepo repository.ProviderRepository,
	serviceRepo repository.ServiceRepository,
	ticketRepo repository.TicketRepository,
) error) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		return fn(NewProviderRepository(tx), NewServiceRepository(tx), NewTicketRepository(tx))
	})
}

// RunReconcile inicia una transacción con repos de cuenta a pagar y ticket.
func (r *TxRunner) RunReconcile(ctx context.Context, fn func(
	payableRepo repository.AccountPayableRepository,
	ticketRepo repository.TicketRepository,
) error) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		return fn(NewAccountPayableRepository(tx), NewTicketRepository(tx))
	})
}

// inTx hace Begin, ejecuta fn y Commit; cualquier error deja la tx en Rollback.
func (r *TxRunner) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
