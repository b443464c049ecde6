package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/comisiones-api/internal/domain"
	"github.com/jhoicas/comisiones-api/internal/domain/entity"
	"github.com/jhoicas/comisiones-api/internal/domain/repository"
)

var _ repository.ExportRunRepository = (*ExportRunRepo)(nil)

// ExportRunRepo persistencia de ejecuciones de exportación; las fallas van en JSONB.
type ExportRunRepo struct {
	q Querier
}

// NewExportRunRepository construye el adaptador para ejecuciones de exportación.
func NewExportRunRepository(q Querier) *ExportRunRepo {
	return &ExportRunRepo{q: q}
}

func (r *ExportRunRepo) Create(ctx context.Context, run *entity.ExportRun) error {
	failures, err := marshalFailures(run.Failures)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO export_runs (id, kind, status, exported, failures, error, requested_by, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err = r.q.Exec(ctx, query, run.ID, run.Kind, run.Status, run.Exported, failures, run.Error,
		run.RequestedBy, run.StartedAt, run.FinishedAt)
	if err != nil {
		return fmt.Errorf("insert export run: %w", err)
	}
	return nil
}

// Finish guarda el resultado final de la ejecución.
func (r *ExportRunRepo) Finish(ctx context.Context, run *entity.ExportRun) error {
	failures, err := marshalFailures(run.Failures)
	if err != nil {
		return err
	}
	query := `
		UPDATE export_runs
		SET status = $2, exported = $3, failures = $4, error = $5, finished_at = $6
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, run.ID, run.Status, run.Exported, failures, run.Error, run.FinishedAt)
	if err != nil {
		return fmt.Errorf("finish export run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ExportRunRepo) GetByID(ctx context.Context, id string) (*entity.ExportRun, error) {
	query := `
		SELECT id, kind, status, exported, failures, error, requested_by, started_at, finished_at
		FROM export_runs WHERE id = $1`
	var (
		run      entity.ExportRun
		failures []byte
	)
	err := r.q.QueryRow(ctx, query, id).Scan(&run.ID, &run.Kind, &run.Status, &run.Exported, &failures,
		&run.Error, &run.RequestedBy, &run.StartedAt, &run.FinishedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get export run: %w", err)
	}
	if err := json.Unmarshal(failures, &run.Failures); err != nil {
		return nil, fmt.Errorf("unmarshal failures: %w", err)
	}
	return &run, nil
}

func marshalFailures(f []entity.ExportFailure) ([]byte, error) {
	if f == nil {
		f = []entity.ExportFailure{}
	}
	b, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("marshal failures: %w", err)
	}
	return b, nil
}
