package exporting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/comisiones-api/internal/domain"
	"github.com/jhoicas/comisiones-api/internal/domain/entity"
	"github.com/jhoicas/comisiones-api/internal/domain/repository"
)

const (
	runTimeout = 2 * time.Minute
	lockTTL    = 5 * time.Minute
)

// Exporter un ciclo de exportación (servicios o prestadores).
type Exporter interface {
	Export(ctx context.Context) (*Result, error)
}

// Runner registra cada ejecución en export_runs, la serializa por tipo y entrega el archivo.
type Runner struct {
	exporters map[string]Exporter
	runRepo   repository.ExportRunRepository
	locker    Locker
	notifier  Notifier
	log       zerolog.Logger
	now       func() time.Time
}

// NewRunner construye el runner con los dos exportadores.
func NewRunner(
	services *ServicesExporter,
	providers *ProvidersExporter,
	runRepo repository.ExportRunRepository,
	locker Locker,
	notifier Notifier,
	log zerolog.Logger,
) *Runner {
	return &Runner{
		exporters: map[string]Exporter{
			entity.ExportKindServices:  services,
			entity.ExportKindProviders: providers,
		},
		runRepo:  runRepo,
		locker:   locker,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

// StartAsync registra la ejecución y la procesa en una goroutine desacoplada del request.
// Devuelve el id para consultar el resultado.
func (r *Runner) StartAsync(ctx context.Context, kind string, to Recipient) (string, error) {
	run, err := r.begin(ctx, kind, to)
	if err != nil {
		return "", err
	}
	go func() {
		bg, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()
		r.process(bg, run, to)
	}()
	return run.ID, nil
}

// Run ejecuta la exportación en el goroutine actual (CLI).
func (r *Runner) Run(ctx context.Context, kind string, to Recipient) (*entity.ExportRun, error) {
	run, err := r.begin(ctx, kind, to)
	if err != nil {
		return nil, err
	}
	r.process(ctx, run, to)
	return run, nil
}

// Get devuelve una ejecución por id.
func (r *Runner) Get(ctx context.Context, id string) (*entity.ExportRun, error) {
	return r.runRepo.GetByID(ctx, id)
}

func (r *Runner) begin(ctx context.Context, kind string, to Recipient) (*entity.ExportRun, error) {
	if _, ok := r.exporters[kind]; !ok {
		return nil, fmt.Errorf("%w: tipo de exportação %q", domain.ErrInvalidInput, kind)
	}
	run := &entity.ExportRun{
		ID:          uuid.New().String(),
		Kind:        kind,
		Status:      entity.ExportRunProcessing,
		RequestedBy: to.UserID,
		StartedAt:   r.now(),
	}
	if err := r.runRepo.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("registrar execução: %w", err)
	}
	return run, nil
}

// process nunca devuelve error: el resultado queda en el registro de la ejecución y en el log.
func (r *Runner) process(ctx context.Context, run *entity.ExportRun, to Recipient) {
	log := r.log.With().Str("execucao_id", run.ID).Str("tipo", run.Kind).Logger()

	finish := func(status string, cause error) {
		at := r.now()
		run.Status = status
		run.FinishedAt = &at
		if cause != nil {
			run.Error = cause.Error()
		}
		if err := r.runRepo.Finish(ctx, run); err != nil {
			log.Error().Err(err).Msg("no se pudo registrar el fin de la ejecución")
		}
	}

	lock, err := r.locker.Obtain(ctx, "export:"+run.Kind, lockTTL)
	if err != nil {
		if errors.Is(err, ErrLockHeld) {
			log.Warn().Msg("exportación del mismo tipo en curso")
		} else {
			log.Error().Err(err).Msg("error al obtener lock de exportación")
		}
		finish(entity.ExportRunFailed, err)
		return
	}
	defer func() {
		if err := lock.Release(context.Background()); err != nil {
			log.Warn().Err(err).Msg("error al liberar lock de exportación")
		}
	}()

	res, err := r.exporters[run.Kind].Export(ctx)
	if res != nil {
		run.Exported = res.Exported
		run.Failures = res.Failures
	}
	if err != nil {
		log.Error().Err(err).Msg("exportación fallida")
		finish(entity.ExportRunFailed, err)
		return
	}

	if res.Body != nil {
		doc := Document{
			Name:        fmt.Sprintf("%s-%s.txt", run.Kind, r.now().Format("20060102")),
			Subject:     subject(run.Kind),
			ContentType: "text/plain; charset=ISO-8859-1",
			Body:        res.Body,
		}
		if err := r.notifier.Send(ctx, doc, to); err != nil {
			log.Error().Err(err).Str("destinatario", to.Email).Msg("no se pudo entregar el archivo exportado")
			finish(entity.ExportRunFailed, fmt.Errorf("enviar arquivo: %w", err))
			return
		}
	}

	status := entity.ExportRunCompleted
	if len(run.Failures) > 0 {
		status = entity.ExportRunCompletedPartial
	}
	log.Info().Int("exportados", run.Exported).Int("falhas", len(run.Failures)).Msg("exportación terminada")
	finish(status, nil)
}

func subject(kind string) string {
	if kind == entity.ExportKindProviders {
		return "Exportação de prestadores SCI Único"
	}
	return "Exportação de serviços SCI Único"
}
