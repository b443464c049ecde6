package exporting

import (
	"time"

	"github.com/shopspring/decimal"
)

// SCIConfig constantes del layout de comisiones; se inyectan desde la configuración.
type SCIConfig struct {
	CompanyCode    string
	CostCenterCode string
	ISSPercentage  decimal.Decimal
	PaymentDays    int
	DocumentType   int
}

// PaymentDate fecha de pago: hoy + PaymentDays, sin hora.
func (c SCIConfig) PaymentDate(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d+c.PaymentDays, 0, 0, 0, 0, now.Location())
}
