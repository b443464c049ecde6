// Package reconciliation aplica sobre cuentas a pagar y tickets lo que informa el ERP,
// por webhook o por consulta. Los eventos repetidos o fuera de orden no producen efectos dobles.
package reconciliation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/comisiones-api/internal/domain"
	"github.com/jhoicas/comisiones-api/internal/domain/entity"
	"github.com/jhoicas/comisiones-api/internal/domain/repository"
	"github.com/jhoicas/comisiones-api/internal/domain/workflow"
)

const maxConflictRetries = 3

// errUnknownPayable el evento referencia una cuenta a pagar que no existe localmente.
var errUnknownPayable = errors.New("conta a pagar desconhecida")

// Reconciler procesa webhooks, consultas al ERP y el registro de cuentas a pagar.
type Reconciler struct {
	txRunner    TxRunner
	payableRepo repository.AccountPayableRepository
	ticketRepo  repository.TicketRepository
	credsRepo   repository.CredentialsRepository
	erp         ERPClient
	cfg         Config
	log         zerolog.Logger
	now         func() time.Time
}

// NewReconciler construye el caso de uso.
func NewReconciler(
	txRunner TxRunner,
	payableRepo repository.AccountPayableRepository,
	ticketRepo repository.TicketRepository,
	credsRepo repository.CredentialsRepository,
	erp ERPClient,
	cfg Config,
	log zerolog.Logger,
) *Reconciler {
	if cfg.RetryAttempts < 1 {
		cfg.RetryAttempts = 1
	}
	return &Reconciler{
		txRunner:    txRunner,
		payableRepo: payableRepo,
		ticketRepo:  ticketRepo,
		credsRepo:   credsRepo,
		erp:         erp,
		cfg:         cfg,
		log:         log,
		now:         time.Now,
	}
}

// HandleWebhook procesa una notificación. Devuelve el mensaje para responder al ERP;
// el error solo sirve para el log: el endpoint responde 200 siempre.
func (r *Reconciler) HandleWebhook(ctx context.Context, n Notification) (string, error) {
	if n.Ping == PingValue {
		return "pong", nil
	}
	log := r.log.With().Str("topic", n.Topic).Logger()

	switch n.Topic {
	case TopicPayableChanged:
		var ev changedEvent
		if err := json.Unmarshal(n.Event, &ev); err != nil || ev.Code == "" {
			return "Evento inválido", fmt.Errorf("%w: evento %s", domain.ErrInvalidInput, n.Topic)
		}
		err := r.withUnknownRetry(ctx, func() error { return r.changed(ctx, string(ev.Code), ev.Situation) })
		return r.outcome(log, string(ev.Code), err)

	case TopicSettlementDone, TopicSettlementCanceled:
		var ev settlementEvent
		if err := json.Unmarshal(n.Event, &ev); err != nil || len(ev.codes()) == 0 {
			return "Evento inválido", fmt.Errorf("%w: evento %s", domain.ErrInvalidInput, n.Topic)
		}
		event := workflow.EventPayablePaid
		if n.Topic == TopicSettlementCanceled {
			event = workflow.EventSettlementCancelled
		}
		var errs []error
		for _, c := range ev.codes() {
			err := r.withUnknownRetry(ctx, func() error { return r.settle(ctx, c, event) })
			if _, err = r.outcome(log, c, err); err != nil {
				errs = append(errs, err)
			}
		}
		if err := errors.Join(errs...); err != nil {
			return "Erro ao processar evento", err
		}
		return "Evento processado", nil

	case TopicPayableDeleted:
		var ev deletedEvent
		if err := json.Unmarshal(n.Event, &ev); err != nil || ev.Code == "" {
			return "Evento inválido", fmt.Errorf("%w: evento %s", domain.ErrInvalidInput, n.Topic)
		}
		return r.outcome(log, string(ev.Code), r.remove(ctx, string(ev.Code)))
	}

	log.Info().Msg("tópico de webhook ignorado")
	return "Tópico ignorado", nil
}

// outcome traduce el resultado de un evento: cuenta desconocida y transición inválida no son errores.
func (r *Reconciler) outcome(log zerolog.Logger, code string, err error) (string, error) {
	switch {
	case err == nil:
		return "Evento processado", nil
	case errors.Is(err, errUnknownPayable):
		log.Warn().Str("codigo_lancamento", code).Msg("evento para cuenta a pagar desconocida, se ignora")
		return "Conta a pagar não encontrada", nil
	case errors.Is(err, workflow.ErrInvalidTransition):
		log.Warn().Err(err).Str("codigo_lancamento", code).Msg("evento no aplicable al estado del ticket")
		return "Evento ignorado", nil
	}
	log.Error().Err(err).Str("codigo_lancamento", code).Msg("error al procesar webhook")
	return "Erro ao processar evento", err
}

// withUnknownRetry reintenta fn mientras la cuenta a pagar no exista localmente:
// el webhook puede llegar antes de que termine el registro.
func (r *Reconciler) withUnknownRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 1; ; attempt++ {
		err = fn()
		if !errors.Is(err, errUnknownPayable) || attempt >= r.cfg.RetryAttempts {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.cfg.RetryDelay):
		}
	}
}

// inTx corre fn en una transacción y la repite si otra escritura cambió el ticket.
func (r *Reconciler) inTx(ctx context.Context, fn func(repository.AccountPayableRepository, repository.TicketRepository) error) error {
	var err error
	for attempt := 0; attempt <= maxConflictRetries; attempt++ {
		err = r.txRunner.RunReconcile(ctx, fn)
		if !errors.Is(err, domain.ErrConflict) {
			return err
		}
	}
	return err
}

// transition aplica ev al ticket vinculado a la cuenta a pagar. Sin ticket no hay nada que hacer.
func (r *Reconciler) transition(ctx context.Context, ticketRepo repository.TicketRepository, payableID string, ev workflow.Event) error {
	t, err := ticketRepo.GetByPayableID(ctx, payableID)
	if err != nil {
		return err
	}
	if t == nil {
		r.log.Warn().Str("conta_pagar_id", payableID).Str("evento", ev.String()).Msg("cuenta a pagar sin ticket vinculado")
		return nil
	}
	res, err := workflow.Transition(t.State(), ev, t.AccountPayableID != "")
	if err != nil {
		return fmt.Errorf("ticket %s: %w", t.ID, err)
	}
	if res.NoOp {
		return nil
	}
	t.Apply(res, r.now())
	if err := ticketRepo.UpdateState(ctx, t); err != nil {
		return err
	}
	r.log.Info().Str("ticket_id", t.ID).Str("evento", ev.String()).Str("estado", res.Next.String()).Msg("ticket actualizado")
	return nil
}

// changed actualiza la situación del título; PAGO además cierra el ticket.
// Una transición no aplicable no impide registrar la situación.
func (r *Reconciler) changed(ctx context.Context, code, situation string) error {
	return r.inTx(ctx, func(payableRepo repository.AccountPayableRepository, ticketRepo repository.TicketRepository) error {
		ap, err := payableRepo.GetByExternalCode(ctx, code)
		if err != nil {
			return err
		}
		if ap == nil {
			return errUnknownPayable
		}
		if isPaid(situation) {
			if err := r.transition(ctx, ticketRepo, ap.ID, workflow.EventPayablePaid); err != nil {
				if !errors.Is(err, workflow.ErrInvalidTransition) {
					return err
				}
				r.log.Warn().Err(err).Str("codigo_lancamento", code).Msg("situación PAGO sin transición aplicable")
			}
		}
		if situation == "" || situation == ap.TitleStatus {
			return nil
		}
		return payableRepo.UpdateTitleStatus(ctx, ap.ID, situation)
	})
}

func (r *Reconciler) settle(ctx context.Context, code string, ev workflow.Event) error {
	return r.inTx(ctx, func(payableRepo repository.AccountPayableRepository, ticketRepo repository.TicketRepository) error {
		ap, err := payableRepo.GetByExternalCode(ctx, code)
		if err != nil {
			return err
		}
		if ap == nil {
			return errUnknownPayable
		}
		return r.transition(ctx, ticketRepo, ap.ID, ev)
	})
}

// remove desvincula el ticket, lo devuelve a revisión y elimina la cuenta a pagar, todo en una tx.
// Si la cuenta ya no existe el evento es una repetición.
func (r *Reconciler) remove(ctx context.Context, code string) error {
	return r.inTx(ctx, func(payableRepo repository.AccountPayableRepository, ticketRepo repository.TicketRepository) error {
		ap, err := payableRepo.GetByExternalCode(ctx, code)
		if err != nil {
			return err
		}
		if ap == nil {
			r.log.Info().Str("codigo_lancamento", code).Msg("cuenta a pagar ya eliminada")
			return nil
		}
		if err := r.transition(ctx, ticketRepo, ap.ID, workflow.EventPayableRemoved); err != nil {
			return err
		}
		return payableRepo.Delete(ctx, ap.ID)
	})
}

// PollPayable consulta la cuenta a pagar en el ERP y aplica lo que encuentra.
// Si el ERP ya no la tiene, se procesa como eliminada y se devuelve ErrPayableNotFoundUpstream.
func (r *Reconciler) PollPayable(ctx context.Context, code string) (json.RawMessage, error) {
	ap, err := r.payableRepo.GetByExternalCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if ap == nil {
		return nil, fmt.Errorf("%w: conta a pagar %s", domain.ErrNotFound, code)
	}
	t, err := r.ticketRepo.GetByPayableID(ctx, ap.ID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("%w: ticket da conta a pagar %s", domain.ErrNotFound, code)
	}

	creds, err := r.credsRepo.Get(ctx)
	if err != nil {
		return nil, err
	}
	if !creds.Complete() {
		return nil, domain.ErrMissingCredentials
	}

	remote, err := r.erp.GetPayable(ctx, *creds, code)
	if errors.Is(err, domain.ErrPayableNotFoundUpstream) {
		if rmErr := r.remove(ctx, code); rmErr != nil {
			return nil, fmt.Errorf("remover conta a pagar %s: %w", code, rmErr)
		}
		r.log.Info().Str("codigo_lancamento", code).Str("ticket_id", t.ID).Msg("cuenta a pagar eliminada en el ERP, ticket devuelto a revisión")
		return nil, err
	}
	if err != nil {
		if errors.Is(err, domain.ErrExternalService) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrExternalService, err)
	}

	err = r.inTx(ctx, func(payableRepo repository.AccountPayableRepository, ticketRepo repository.TicketRepository) error {
		cur, err := payableRepo.GetByExternalCode(ctx, code)
		if err != nil {
			return err
		}
		if cur == nil {
			return fmt.Errorf("%w: conta a pagar %s", domain.ErrNotFound, code)
		}
		if isPaid(remote.TitleStatus) {
			if err := r.transition(ctx, ticketRepo, cur.ID, workflow.EventPayablePaid); err != nil {
				if !errors.Is(err, workflow.ErrInvalidTransition) {
					return err
				}
				r.log.Warn().Err(err).Str("codigo_lancamento", code).Msg("título PAGO sin transición aplicable")
			}
		}
		if remote.TitleStatus == cur.TitleStatus {
			return nil
		}
		return payableRepo.UpdateTitleStatus(ctx, cur.ID, remote.TitleStatus)
	})
	if err != nil {
		return nil, err
	}
	return remote.Raw, nil
}

// RegisterPayable vincula al ticket una cuenta a pagar ya creada en el ERP y lo pasa a integracao-omie.
func (r *Reconciler) RegisterPayable(ctx context.Context, ticketID, code string) (*entity.AccountPayable, error) {
	var ap *entity.AccountPayable
	err := r.inTx(ctx, func(payableRepo repository.AccountPayableRepository, ticketRepo repository.TicketRepository) error {
		existing, err := payableRepo.GetByExternalCode(ctx, code)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: conta a pagar %s já registrada", domain.ErrDuplicate, code)
		}
		t, err := ticketRepo.GetByID(ctx, ticketID)
		if err != nil {
			return err
		}
		if t.AccountPayableID != "" {
			return fmt.Errorf("%w: ticket %s já possui conta a pagar", domain.ErrDuplicate, t.ID)
		}
		res, err := workflow.Transition(t.State(), workflow.EventPayableRegistered, false)
		if err != nil {
			return err
		}

		now := r.now()
		ap = &entity.AccountPayable{
			ID:           uuid.New().String(),
			ExternalCode: code,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := payableRepo.Create(ctx, ap); err != nil {
			return err
		}
		t.AccountPayableID = ap.ID
		t.Apply(res, now)
		return ticketRepo.UpdateState(ctx, t)
	})
	if err != nil {
		return nil, err
	}
	r.log.Info().Str("ticket_id", ticketID).Str("codigo_lancamento", code).Msg("cuenta a pagar registrada")
	return ap, nil
}

// isPaid compara la situación del título igual en el webhook y en la consulta.
func isPaid(titleStatus string) bool {
	return strings.EqualFold(strings.TrimSpace(titleStatus), entity.TitleStatusPaid)
}
