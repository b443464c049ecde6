package exporting

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/comisiones-api/internal/domain/entity"
	"github.com/jhoicas/comisiones-api/internal/domain/repository"
)

// ProvidersExporter arma el archivo de registro de los prestadores que todavía no tienen código SCI.
type ProvidersExporter struct {
	ticketRepo   repository.TicketRepository
	providerRepo repository.ProviderRepository
	encoder      DocumentEncoder
	log          zerolog.Logger
	now          func() time.Time
}

// NewProvidersExporter construye el exportador de prestadores.
func NewProvidersExporter(
	ticketRepo repository.TicketRepository,
	providerRepo repository.ProviderRepository,
	encoder DocumentEncoder,
	log zerolog.Logger,
) *ProvidersExporter {
	return &ProvidersExporter{
		ticketRepo:   ticketRepo,
		providerRepo: providerRepo,
		encoder:      encoder,
		log:          log,
		now:          time.Now,
	}
}

// Export incluye cada prestador sin código SCI una sola vez y lo deja en aguardando-codigo-sci.
// Un prestador que ya tiene código no vuelve a exportarse.
func (e *ProvidersExporter) Export(ctx context.Context) (*Result, error) {
	tickets, err := e.ticketRepo.ListForExport(ctx)
	if err != nil {
		return nil, fmt.Errorf("listar tickets: %w", err)
	}

	res := &Result{}
	seen := map[string]bool{}
	var records []string

	for _, t := range tickets {
		if seen[t.ProviderID] {
			continue
		}
		seen[t.ProviderID] = true

		p, err := e.providerRepo.GetByID(ctx, t.ProviderID)
		if err != nil {
			res.fail(t.ProviderID, err)
			e.log.Error().Err(err).Str("prestador_id", t.ProviderID).Msg("error al leer prestador")
			continue
		}
		if p.HasERPCode() {
			continue
		}

		rec, err := e.encoder.ProviderRecord(providerLine(p))
		if err != nil {
			res.fail(p.ID, err)
			e.log.Error().Err(err).Str("prestador_id", p.ID).Msg("registro de prestador inválido, no se marca como exportado")
			continue
		}

		applied, err := e.providerRepo.MarkExported(ctx, p.ID, e.now())
		if err != nil {
			res.fail(p.ID, err)
			e.log.Error().Err(err).Str("prestador_id", p.ID).Msg("no se pudo marcar el prestador como exportado")
			continue
		}
		if !applied {
			// recibió el código SCI entre la lectura y el update
			continue
		}
		records = append(records, rec)
	}

	res.Exported = len(records)
	if res.Body, err = e.encoder.Encode(records); err != nil {
		return res, fmt.Errorf("generar archivo de prestadores: %w", err)
	}
	return res, nil
}

func providerLine(p *entity.Provider) ProviderLine {
	l := ProviderLine{
		Document:     p.Document,
		Name:         p.Name,
		Neighborhood: p.Address.Neighborhood,
		Email:        p.Email,
		CEP:          p.Address.CEP,
	}
	if ind, ok := p.Individual(); ok {
		l.MotherName = ind.MotherName
		l.PIS = ind.PIS
		l.RGNumber = ind.RG.Number
		l.RGIssuer = ind.RG.Issuer
		l.BirthDate = ind.BirthDate
	}
	return l
}
