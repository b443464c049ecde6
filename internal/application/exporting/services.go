package exporting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/comisiones-api/internal/domain"
	"github.com/jhoicas/comisiones-api/internal/domain/entity"
	"github.com/jhoicas/comisiones-api/internal/domain/repository"
	"github.com/jhoicas/comisiones-api/internal/domain/workflow"
)

// maxConflictRetries reintentos cuando otra escritura cambió el ticket entre la lectura y el update.
const maxConflictRetries = 3

// Result resultado de un ciclo de exportación.
type Result struct {
	Exported int
	Failures []entity.ExportFailure
	Body     []byte // nil si no se exportó nada
}

// ServicesExporter arma el archivo de comisiones de los tickets en integracao-unico.
type ServicesExporter struct {
	ticketRepo   repository.TicketRepository
	providerRepo repository.ProviderRepository
	serviceRepo  repository.ServiceRepository
	encoder      DocumentEncoder
	cfg          SCIConfig
	log          zerolog.Logger
	now          func() time.Time
}

// NewServicesExporter construye el exportador de servicios.
func NewServicesExporter(
	ticketRepo repository.TicketRepository,
	providerRepo repository.ProviderRepository,
	serviceRepo repository.ServiceRepository,
	encoder DocumentEncoder,
	cfg SCIConfig,
	log zerolog.Logger,
) *ServicesExporter {
	return &ServicesExporter{
		ticketRepo:   ticketRepo,
		providerRepo: providerRepo,
		serviceRepo:  serviceRepo,
		encoder:      encoder,
		cfg:          cfg,
		log:          log,
		now:          time.Now,
	}
}

// Export recorre los tickets elegibles. Cada prestador aparece como máximo una vez por ejecución.
// El registro se arma antes del paso a trabajando: un ticket con registro inválido va a Failures
// y sigue pendiente; un ticket entra al archivo solo si su paso a trabajando quedó confirmado.
func (e *ServicesExporter) Export(ctx context.Context) (*Result, error) {
	tickets, err := e.ticketRepo.ListForExport(ctx)
	if err != nil {
		return nil, fmt.Errorf("listar tickets: %w", err)
	}

	now := e.now()
	res := &Result{}
	seen := map[string]bool{}
	var records []string

	for _, t := range tickets {
		if seen[t.ProviderID] {
			continue
		}
		provider, err := e.providerRepo.GetByID(ctx, t.ProviderID)
		if err != nil {
			res.fail(t.ID, err)
			e.log.Error().Err(err).Str("ticket_id", t.ID).Msg("prestador del ticket no disponible")
			continue
		}
		if !provider.HasERPCode() {
			e.log.Debug().Str("ticket_id", t.ID).Str("prestador_id", provider.ID).Msg("prestador sin código SCI, se omite")
			continue
		}
		services, err := e.serviceRepo.ListByIDs(ctx, t.ServiceIDs)
		if err != nil {
			res.fail(t.ID, err)
			e.log.Error().Err(err).Str("ticket_id", t.ID).Msg("error al leer servicios del ticket")
			continue
		}
		total, realization := summarize(services)
		if !total.IsPositive() {
			e.log.Debug().Str("ticket_id", t.ID).Msg("ticket sin valor a exportar")
			continue
		}

		rec, err := e.encoder.ServiceRecord(ServiceLine{
			CompanyCode:     e.cfg.CompanyCode,
			ProviderCode:    provider.SciUnico,
			CostCenterCode:  e.cfg.CostCenterCode,
			PaymentDate:     e.cfg.PaymentDate(now),
			RealizationDate: realization,
			DocumentType:    e.cfg.DocumentType,
			Amount:          total,
			ISSPercentage:   e.cfg.ISSPercentage,
		})
		if err != nil {
			res.fail(t.ID, err)
			e.log.Error().Err(err).Str("ticket_id", t.ID).Msg("registro de comisión inválido, el ticket queda pendiente")
			continue
		}

		if err := e.markExported(ctx, t); err != nil {
			res.fail(t.ID, err)
			e.log.Error().Err(err).Str("ticket_id", t.ID).Msg("no se pudo actualizar el ticket exportado")
			continue
		}

		seen[provider.ID] = true
		records = append(records, rec)
	}

	res.Exported = len(records)
	if res.Body, err = e.encoder.Encode(records); err != nil {
		return res, fmt.Errorf("generar archivo de servicios: %w", err)
	}
	return res, nil
}

// markExported aplica ServiceExported con escritura condicional; ante conflicto relee y reevalúa.
func (e *ServicesExporter) markExported(ctx context.Context, t *entity.Ticket) error {
	for attempt := 0; ; attempt++ {
		res, err := workflow.Transition(t.State(), workflow.EventServiceExported, t.AccountPayableID != "")
		if err != nil {
			return err
		}
		if res.NoOp {
			return nil
		}
		t.Apply(res, e.now())
		err = e.ticketRepo.UpdateState(ctx, t)
		if !errors.Is(err, domain.ErrConflict) || attempt >= maxConflictRetries {
			return err
		}
		if t, err = e.ticketRepo.GetByID(ctx, t.ID); err != nil {
			return err
		}
	}
}

// summarize suma los totales y devuelve el primer día de la competencia más reciente.
func summarize(services []*entity.Service) (decimal.Decimal, time.Time) {
	total := decimal.Zero
	var latest time.Time
	for _, s := range services {
		total = total.Add(s.Total)
		if c := s.Competency(); c.After(latest) {
			latest = c
		}
	}
	return total, latest
}

func (r *Result) fail(ref string, err error) {
	r.Failures = append(r.Failures, entity.ExportFailure{Ref: ref, Error: err.Error()})
}
