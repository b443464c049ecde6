// Package bootstrap arma el grafo de dependencias compartido por la API y el CLI.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/comisiones-api/internal/application/exporting"
	"github.com/jhoicas/comisiones-api/internal/application/importing"
	"github.com/jhoicas/comisiones-api/internal/application/reconciliation"
	"github.com/jhoicas/comisiones-api/internal/application/usecase"
	"github.com/jhoicas/comisiones-api/internal/application/validation"
	"github.com/jhoicas/comisiones-api/internal/infrastructure/lock"
	"github.com/jhoicas/comisiones-api/internal/infrastructure/notify"
	"github.com/jhoicas/comisiones-api/internal/infrastructure/omie"
	"github.com/jhoicas/comisiones-api/internal/infrastructure/postgres"
	"github.com/jhoicas/comisiones-api/internal/infrastructure/sci"
	"github.com/jhoicas/comisiones-api/internal/infrastructure/spreadsheet"
	"github.com/jhoicas/comisiones-api/pkg/config"
	"github.com/jhoicas/comisiones-api/pkg/logger"
)

// App casos de uso listos para usar.
type App struct {
	Importer   *importing.CommissionImporter
	Exports    *exporting.Runner
	Reconciler *reconciliation.Reconciler
	ProviderUC *usecase.ProviderUseCase
	Validate   *validation.Validator

	pool  *pgxpool.Pool
	redis *redis.Client
}

// New conecta PostgreSQL (y Redis si REDIS_ADDR está definido) y construye los casos de uso.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	a := &App{pool: pool, Validate: validation.New()}

	providerRepo := postgres.NewProviderRepository(pool)
	serviceRepo := postgres.NewServiceRepository(pool)
	ticketRepo := postgres.NewTicketRepository(pool)
	payableRepo := postgres.NewAccountPayableRepository(pool)
	credsRepo := postgres.NewCredentialsRepository(pool)
	runRepo := postgres.NewExportRunRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	a.Importer = importing.NewCommissionImporter(txRunner, spreadsheet.NewReader(), a.Validate, log.Component("import"))

	encoder := sci.NewEncoder()
	sciCfg := exporting.SCIConfig{
		CompanyCode:    cfg.SCI.CompanyCode,
		CostCenterCode: cfg.SCI.CostCenterCode,
		ISSPercentage:  cfg.SCI.ISSPercentage,
		PaymentDays:    cfg.SCI.PaymentDays,
		DocumentType:   cfg.SCI.DocumentType,
	}
	services := exporting.NewServicesExporter(ticketRepo, providerRepo, serviceRepo, encoder, sciCfg, log.Component("export_servicos"))
	providers := exporting.NewProvidersExporter(ticketRepo, providerRepo, encoder, log.Component("export_prestadores"))

	// Sin Redis el lock solo protege dentro de este proceso
	var locker exporting.Locker = lock.NewLocalLocker()
	if cfg.Redis.Addr != "" {
		a.redis = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := a.redis.Ping(ctx).Err(); err != nil {
			a.Close()
			return nil, fmt.Errorf("conexión a Redis: %w", err)
		}
		locker = lock.NewRedisLocker(a.redis)
	}

	// Sin SMTP los documentos solo quedan en el log
	var notifier exporting.Notifier = notify.NewLogNotifier(log.Component("notify"))
	if cfg.SMTP.Host != "" {
		notifier = notify.NewSMTPNotifier(notify.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			User:     cfg.SMTP.User,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
			CC:       cfg.SMTP.CC,
		})
	}
	a.Exports = exporting.NewRunner(services, providers, runRepo, locker, notifier, log.Component("export"))

	erp := omie.NewClient(cfg.Omie.BaseURL, cfg.Omie.Timeout)
	a.Reconciler = reconciliation.NewReconciler(txRunner, payableRepo, ticketRepo, credsRepo, erp,
		reconciliation.Config{RetryAttempts: cfg.Reconcile.RetryAttempts, RetryDelay: cfg.Reconcile.RetryDelay},
		log.Component("reconcile"))

	a.ProviderUC = usecase.NewProviderUseCase(providerRepo, a.Validate)
	return a, nil
}

// Close libera el pool y el cliente Redis.
func (a *App) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	a.pool.Close()
}
