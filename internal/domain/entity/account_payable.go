package entity

import "time"

// TitleStatusPaid situación del título cuando el ERP registró el pago.
const TitleStatusPaid = "PAGO"

// AccountPayable espejo local de una cuenta a pagar del ERP (lançamento Omie).
type AccountPayable struct {
	ID           string
	ExternalCode string // codigo_lancamento_omie
	TitleStatus  string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ERPCredentials credenciales de la API de Omie (registro único, solo lectura).
type ERPCredentials struct {
	AppKey    string
	AppSecret string
}

// Complete indica si ambas credenciales están presentes.
func (c *ERPCredentials) Complete() bool {
	return c != nil && c.AppKey != "" && c.AppSecret != ""
}
