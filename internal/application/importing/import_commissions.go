package importing

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/comisiones-api/internal/application/validation"
	"github.com/jhoicas/comisiones-api/internal/domain"
	"github.com/jhoicas/comisiones-api/internal/domain/entity"
	"github.com/jhoicas/comisiones-api/internal/domain/repository"
	"github.com/jhoicas/comisiones-api/internal/domain/workflow"
)

// Options modo de importación.
// Atomic = toda la planilla en una única transacción (por defecto una transacción por fila).
type Options struct {
	Atomic bool
}

// Summary resultado de un import completo.
type Summary struct {
	Imported         int `json:"importados"`
	Skipped          int `json:"ignorados"`
	ProvidersCreated int `json:"prestadoresCriados"`
}

// CommissionImporter convierte la planilla de comisiones en Provider, Service y Ticket.
type CommissionImporter struct {
	txRunner TxRunner
	reader   SheetReader
	validate *validation.Validator
	log      zerolog.Logger
	now      func() time.Time
}

// NewCommissionImporter construye el caso de uso.
func NewCommissionImporter(txRunner TxRunner, reader SheetReader, validate *validation.Validator, log zerolog.Logger) *CommissionImporter {
	return &CommissionImporter{
		txRunner: txRunner,
		reader:   reader,
		validate: validate,
		log:      log,
		now:      time.Now,
	}
}

// Import procesa la planilla en path. Las filas se procesan en orden; la primera que falla
// aborta su transacción y detiene el import devolviendo *RowError (las anteriores quedan
// confirmadas salvo en modo Atomic). Si todo sale bien el archivo se elimina.
func (uc *CommissionImporter) Import(ctx context.Context, path string, opts Options) (*Summary, error) {
	if path == "" {
		return nil, domain.ErrInvalidInput
	}
	rows, err := uc.reader.ReadRows(path)
	if err != nil {
		return nil, fmt.Errorf("ler planilha: %w", err)
	}

	var sum *Summary
	if opts.Atomic {
		err = uc.txRunner.RunImport(ctx, func(pr repository.ProviderRepository, sr repository.ServiceRepository, tr repository.TicketRepository) error {
			var runErr error
			sum, runErr = uc.importRows(ctx, rows, func(fn rowFunc) error { return fn(pr, sr, tr) })
			return runErr
		})
		if err != nil {
			sum = nil
		}
	} else {
		sum, err = uc.importRows(ctx, rows, func(fn rowFunc) error {
			return uc.txRunner.RunImport(ctx, fn)
		})
	}
	if err != nil {
		return sum, err
	}

	if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
		uc.log.Warn().Err(rmErr).Str("arquivo", path).Msg("no se pudo eliminar la planilla importada")
	}
	uc.log.Info().
		Int("importados", sum.Imported).
		Int("ignorados", sum.Skipped).
		Int("prestadores_criados", sum.ProvidersCreated).
		Msg("comisiones importadas")
	return sum, nil
}

type rowFunc = func(repository.ProviderRepository, repository.ServiceRepository, repository.TicketRepository) error

// importRows recorre las filas de datos; run decide en qué transacción corre cada una.
func (uc *CommissionImporter) importRows(ctx context.Context, rows [][]string, run func(rowFunc) error) (*Summary, error) {
	sum := &Summary{}
	for i, cells := range rows {
		if i == 0 {
			continue // cabecera
		}
		line := i + 1
		if blank(cells) {
			sum.Skipped++
			continue
		}
		row, err := parseRow(line, cells)
		if err == nil {
			err = uc.validate.Struct(row)
		}
		if err != nil {
			return sum, uc.rowFailed(line, cells, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err))
		}

		created := false
		err = run(func(pr repository.ProviderRepository, sr repository.ServiceRepository, tr repository.TicketRepository) error {
			var txErr error
			created, txErr = uc.importRow(ctx, row, pr, sr, tr)
			return txErr
		})
		if err != nil {
			return sum, uc.rowFailed(line, cells, err)
		}
		sum.Imported++
		if created {
			sum.ProvidersCreated++
		}
	}
	return sum, nil
}

func (uc *CommissionImporter) rowFailed(line int, cells []string, err error) error {
	uc.log.Error().Err(err).Int("linha", line).Strs("valores", cells).Msg("error al procesar fila de comisiones")
	return &RowError{Line: line, Values: cells, Err: err}
}

// importRow escribe prestador (si falta), servicio y ticket de una fila.
func (uc *CommissionImporter) importRow(
	ctx context.Context,
	row Row,
	providerRepo repository.ProviderRepository,
	serviceRepo repository.ServiceRepository,
	ticketRepo repository.TicketRepository,
) (bool, error) {
	now := uc.now()
	created := false

	provider, err := providerRepo.GetBySID(ctx, row.SID)
	if err != nil {
		return false, err
	}
	if provider == nil {
		provider = &entity.Provider{
			ID:        uuid.New().String(),
			SID:       row.SID,
			Name:      row.ProviderName,
			Status:    entity.ProviderStatusPendingReview,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := providerRepo.Create(ctx, provider); err != nil {
			return false, fmt.Errorf("criar prestador: %w", err)
		}
		created = true
	}

	service := &entity.Service{
		ID:                   uuid.New().String(),
		ProviderID:           provider.ID,
		Month:                row.Month,
		Year:                 row.Year,
		Principal:            row.Principal,
		Bonus:                row.Bonus,
		CommercialAdjustment: row.CommercialAdjustment,
		HostingFee:           row.HostingFee,
		Total:                row.Total,
		Status:               entity.ServiceStatusActive,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := serviceRepo.Create(ctx, service); err != nil {
		return false, fmt.Errorf("criar serviço: %w", err)
	}

	ticket := &entity.Ticket{
		ID:         uuid.New().String(),
		ProviderID: provider.ID,
		ServiceIDs: []string{service.ID},
		Title:      fmt.Sprintf("Comissão %s: %d/%d", provider.Name, service.Month, service.Year),
		Etapa:      workflow.Initial.Etapa,
		Status:     workflow.Initial.Status,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := ticketRepo.Create(ctx, ticket); err != nil {
		return false, fmt.Errorf("criar ticket: %w", err)
	}
	return created, nil
}
