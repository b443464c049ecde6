//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/comisiones-api/internal/domain"
	"github.com/jhoicas/comisiones-api/internal/domain/entity"
	"github.com/jhoicas/comisiones-api/internal/domain/repository"
	"github.com/jhoicas/comisiones-api/internal/domain/workflow"
	"github.com/jhoicas/comisiones-api/pkg/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("integración omitida en modo short")
	}
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("comisiones_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, MigrateUp(dsn))
	require.NoError(t, MigrateUp(dsn), "sin migraciones pendientes no es error")

	pool, err := NewPool(ctx, config.DBConfig{DatabaseURL: dsn})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func seedTicket(t *testing.T, ctx context.Context, runner *TxRunner, sid string, etapa, status string) *entity.Ticket {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	var ticket *entity.Ticket
	err := runner.RunImport(ctx, func(pr repository.ProviderRepository, sr repository.ServiceRepository, tr repository.TicketRepository) error {
		p := &entity.Provider{
			ID: uuid.NewString(), SID: sid, Name: "Jane Doe",
			Details: &entity.IndividualDetails{PIS: "12345678901", RG: entity.RG{Number: "123", Issuer: "SSP"}},
			Status:  entity.ProviderStatusPendingReview, CreatedAt: now, UpdatedAt: now,
		}
		if err := pr.Create(ctx, p); err != nil {
			return err
		}
		s := &entity.Service{
			ID: uuid.NewString(), ProviderID: p.ID, Month: 6, Year: 2024,
			Principal: decimal.RequireFromString("100.25"), Total: decimal.RequireFromString("150.25"),
			Status: entity.ServiceStatusActive, CreatedAt: now, UpdatedAt: now,
		}
		if err := sr.Create(ctx, s); err != nil {
			return err
		}
		ticket = &entity.Ticket{
			ID: uuid.NewString(), ProviderID: p.ID, ServiceIDs: []string{s.ID},
			Title: "Comissão Jane Doe: 6/2024", Etapa: etapa, Status: status, CreatedAt: now, UpdatedAt: now,
		}
		return tr.Create(ctx, ticket)
	})
	require.NoError(t, err)
	return ticket
}

func TestPostgres_ImportYLecturaDeTicket(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	runner := NewTxRunner(pool)

	created := seedTicket(t, ctx, runner, "1234567", workflow.EtapaIntegracaoUnico, workflow.StatusAguardandoInicio)

	got, err := NewTicketRepository(pool).GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ServiceIDs, got.ServiceIDs)
	assert.Equal(t, "", got.AccountPayableID)

	services, err := NewServiceRepository(pool).ListByIDs(ctx, got.ServiceIDs)
	require.NoError(t, err)
	require.Len(t, services, 1)
	assert.Equal(t, "150.25", services[0].Total.StringFixed(2))

	p, err := NewProviderRepository(pool).GetBySID(ctx, "1234567")
	require.NoError(t, err)
	ind, ok := p.Individual()
	require.True(t, ok)
	assert.Equal(t, "12345678901", ind.PIS)

	list, err := NewTicketRepository(pool).ListForExport(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, err = NewTicketRepository(pool).GetByID(ctx, "no-es-uuid")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPostgres_SIDDuplicadoRevierteLaTransaccion(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	runner := NewTxRunner(pool)
	seedTicket(t, ctx, runner, "7654321", workflow.EtapaIntegracaoUnico, workflow.StatusAguardandoInicio)

	now := time.Now()
	err := runner.RunImport(ctx, func(pr repository.ProviderRepository, _ repository.ServiceRepository, _ repository.TicketRepository) error {
		return pr.Create(ctx, &entity.Provider{ID: uuid.NewString(), SID: "7654321", Name: "Otro",
			Status: entity.ProviderStatusPendingReview, CreatedAt: now, UpdatedAt: now})
	})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestPostgres_UpdateStateDetectaVersionVieja(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	ticket := seedTicket(t, ctx, NewTxRunner(pool), "1111111", workflow.EtapaIntegracaoUnico, workflow.StatusAguardandoInicio)
	repo := NewTicketRepository(pool)

	stale := *ticket
	ticket.Status = workflow.StatusTrabalhando
	require.NoError(t, repo.UpdateState(ctx, ticket))
	assert.Equal(t, 1, ticket.Version)

	stale.Status = workflow.StatusConcluido
	assert.ErrorIs(t, repo.UpdateState(ctx, &stale), domain.ErrConflict)

	missing := *ticket
	missing.ID = uuid.NewString()
	assert.ErrorIs(t, repo.UpdateState(ctx, &missing), domain.ErrNotFound)
}

func TestPostgres_MarkExportedYCodigoSCI(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	ticket := seedTicket(t, ctx, NewTxRunner(pool), "2222222", workflow.EtapaIntegracaoUnico, workflow.StatusAguardandoInicio)
	repo := NewProviderRepository(pool)
	now := time.Now()

	ok, err := repo.MarkExported(ctx, ticket.ProviderID, now)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, repo.AssignERPCode(ctx, ticket.ProviderID, "000123", now))
	ok, err = repo.MarkExported(ctx, ticket.ProviderID, now)
	require.NoError(t, err)
	assert.False(t, ok)

	p, err := repo.GetByID(ctx, ticket.ProviderID)
	require.NoError(t, err)
	assert.Equal(t, "000123", p.SciUnico)
	assert.Equal(t, entity.ProviderStatusActive, p.Status)

	other := seedTicket(t, ctx, NewTxRunner(pool), "3333333", workflow.EtapaIntegracaoUnico, workflow.StatusAguardandoInicio)
	assert.ErrorIs(t, repo.AssignERPCode(ctx, other.ProviderID, "000123", now), domain.ErrDuplicate)
}

func TestPostgres_CuentaAPagarVinculoUnico(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	runner := NewTxRunner(pool)
	first := seedTicket(t, ctx, runner, "4444444", workflow.EtapaIntegracaoOmie, workflow.StatusAguardandoInicio)
	second := seedTicket(t, ctx, runner, "5555555", workflow.EtapaIntegracaoOmie, workflow.StatusAguardandoInicio)

	now := time.Now()
	ap := &entity.AccountPayable{ID: uuid.NewString(), ExternalCode: "987654", CreatedAt: now, UpdatedAt: now}
	err := runner.RunReconcile(ctx, func(pr repository.AccountPayableRepository, tr repository.TicketRepository) error {
		if err := pr.Create(ctx, ap); err != nil {
			return err
		}
		first.AccountPayableID = ap.ID
		return tr.UpdateState(ctx, first)
	})
	require.NoError(t, err)

	second.AccountPayableID = ap.ID
	assert.ErrorIs(t, NewTicketRepository(pool).UpdateState(ctx, second), domain.ErrDuplicate)

	err = runner.RunReconcile(ctx, func(pr repository.AccountPayableRepository, tr repository.TicketRepository) error {
		got, err := pr.GetByExternalCode(ctx, "987654")
		if err != nil {
			return err
		}
		linked, err := tr.GetByPayableID(ctx, got.ID)
		if err != nil {
			return err
		}
		assert.Equal(t, first.ID, linked.ID)
		return pr.UpdateTitleStatus(ctx, got.ID, entity.TitleStatusPaid)
	})
	require.NoError(t, err)

	got, err := NewAccountPayableRepository(pool).GetByExternalCode(ctx, "987654")
	require.NoError(t, err)
	assert.Equal(t, entity.TitleStatusPaid, got.TitleStatus)
}

func TestPostgres_CredencialesYEjecuciones(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()

	creds, err := NewCredentialsRepository(pool).Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, creds)

	_, err = pool.Exec(ctx, `INSERT INTO erp_credentials (id, app_key, app_secret) VALUES (1, 'k', 's')`)
	require.NoError(t, err)
	creds, err = NewCredentialsRepository(pool).Get(ctx)
	require.NoError(t, err)
	assert.True(t, creds.Complete())

	runs := NewExportRunRepository(pool)
	run := &entity.ExportRun{ID: uuid.NewString(), Kind: entity.ExportKindServices,
		Status: entity.ExportRunProcessing, RequestedBy: "u-1", StartedAt: time.Now()}
	require.NoError(t, runs.Create(ctx, run))

	finished := time.Now()
	run.Status = entity.ExportRunCompletedPartial
	run.Exported = 2
	run.Failures = []entity.ExportFailure{{Ref: "t-1", Error: "sem código SCI"}}
	run.FinishedAt = &finished
	require.NoError(t, runs.Finish(ctx, run))

	got, err := runs.GetByID(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ExportRunCompletedPartial, got.Status)
	assert.Equal(t, run.Failures, got.Failures)
	require.NotNil(t, got.FinishedAt)
}
