package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ServiceStatusActive estado inicial de un servicio importado.
const ServiceStatusActive = "ativo"

// Service línea facturable de un prestador en un mes de competencia.
// Total es informado por la planilla; no se recalcula a partir de los componentes.
type Service struct {
	ID                   string
	ProviderID           string
	Month                int
	Year                 int
	Principal            decimal.Decimal
	Bonus                decimal.Decimal
	CommercialAdjustment decimal.Decimal
	HostingFee           decimal.Decimal
	Total                decimal.Decimal
	Correction           bool
	Status               string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Competency devuelve el primer día del mes de competencia (UTC).
func (s *Service) Competency() time.Time {
	return time.Date(s.Year, time.Month(s.Month), 1, 0, 0, 0, 0, time.UTC)
}
