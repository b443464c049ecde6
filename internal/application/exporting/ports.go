package exporting

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ServiceLine datos de una línea de comisión para SCI Único.
type ServiceLine struct {
	CompanyCode     string
	ProviderCode    string // sci_unico del prestador
	CostCenterCode  string
	PaymentDate     time.Time
	RealizationDate time.Time
	DocumentType    int
	Amount          decimal.Decimal
	ISSPercentage   decimal.Decimal
}

// ProviderLine datos de una línea de registro de prestador para SCI Único.
type ProviderLine struct {
	Document     string
	Name         string
	Neighborhood string
	Email        string
	CEP          string
	MotherName   string
	PIS          string
	RGNumber     string
	RGIssuer     string
	BirthDate    *time.Time
}

// DocumentEncoder serializa las líneas en el formato de ancho fijo del ERP.
// Cada registro se arma por separado para que una línea inválida no invalide el archivo.
type DocumentEncoder interface {
	ServiceRecord(line ServiceLine) (string, error)
	ProviderRecord(line ProviderLine) (string, error)
	Encode(records []string) ([]byte, error)
}

// Document archivo generado por una exportación.
type Document struct {
	Name        string
	Subject     string
	ContentType string
	Body        []byte
}

// Recipient usuario que disparó la exportación.
type Recipient struct {
	UserID string
	Name   string
	Email  string
}

// Notifier entrega el documento al usuario.
type Notifier interface {
	Send(ctx context.Context, doc Document, to Recipient) error
}

// ErrLockHeld otra ejecución del mismo tipo tiene el lock.
var ErrLockHeld = errors.New("execução em andamento")

// Lock lock obtenido.
type Lock interface {
	Release(ctx context.Context) error
}

// Locker serializa ejecuciones por clave. Obtain devuelve ErrLockHeld si la clave está tomada.
type Locker interface {
	Obtain(ctx context.Context, key string, ttl time.Duration) (Lock, error)
}
