package reconciliation

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jhoicas/comisiones-api/internal/domain/entity"
	"github.com/jhoicas/comisiones-api/internal/domain/repository"
)

// TxRunner ejecuta fn con repos de cuenta a pagar y ticket dentro de una transacción.
type TxRunner interface {
	RunReconcile(ctx context.Context, fn func(
		payableRepo repository.AccountPayableRepository,
		ticketRepo repository.TicketRepository,
	) error) error
}

// ERPPayable cuenta a pagar tal como la devuelve el ERP.
type ERPPayable struct {
	Code        string
	TitleStatus string
	Raw         json.RawMessage
}

// ERPClient consulta cuentas a pagar en el ERP.
// Devuelve domain.ErrPayableNotFoundUpstream si el ERP no conoce el código.
type ERPClient interface {
	GetPayable(ctx context.Context, creds entity.ERPCredentials, code string) (*ERPPayable, error)
}

// Config política de reintento para eventos que llegan antes que la cuenta a pagar local.
type Config struct {
	RetryAttempts int
	RetryDelay    time.Duration
}
