package http

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/comisiones-api/internal/application/dto"
	"github.com/jhoicas/comisiones-api/internal/application/reconciliation"
	"github.com/jhoicas/comisiones-api/internal/application/validation"
	"github.com/jhoicas/comisiones-api/internal/domain"
	"github.com/rs/zerolog"
)

// ContaPagarHandler conciliación de cuentas a pagar con Omie (consulta, registro y webhook).
type ContaPagarHandler struct {
	reconciler *reconciliation.Reconciler
	validate   *validation.Validator
	log        zerolog.Logger
}

// NewContaPagarHandler construye el handler.
func NewContaPagarHandler(reconciler *reconciliation.Reconciler, validate *validation.Validator, log zerolog.Logger) *ContaPagarHandler {
	return &ContaPagarHandler{reconciler: reconciler, validate: validate, log: log}
}

// Poll consulta la cuenta a pagar en Omie y concilia el ticket.
// Responde el registro del ERP tal cual llega.
// GET /api/contas-pagar/omie/:codigoLancamento
func (h *ContaPagarHandler) Poll(c *fiber.Ctx) error {
	code := c.Params("codigoLancamento")
	raw, err := h.reconciler.PollPayable(c.UserContext(), code)
	switch {
	case err == nil:
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Status(fiber.StatusOK).Send(raw)
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Message: "Ticket com a conta a pagar não encontrado."})
	case errors.Is(err, domain.ErrMissingCredentials):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Message: "Credenciais Base Omie não encontradas."})
	case errors.Is(err, domain.ErrPayableNotFoundUpstream):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Message: fmt.Sprintf("Conta a pagar não encontrada! [%s]", code),
			Error:   "CONTA A PAGAR NÃO ENCONTRADA NO OMIE",
		})
	}
	h.log.Error().Err(err).Str("codigo_lancamento", code).Msg("consultar cuenta a pagar en Omie")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Message: "Erro ao obter conta a pagar Omie.", Error: err.Error()})
}

// Register vincula al ticket una cuenta a pagar creada en Omie.
// POST /api/contas-pagar
func (h *ContaPagarHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterPayableRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Message: "Corpo da requisição inválido."})
	}
	if err := h.validate.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Message: "Dados inválidos.", Error: err.Error()})
	}
	ap, err := h.reconciler.RegisterPayable(c.UserContext(), in.TicketID, in.Code)
	if err != nil {
		if statusFor(err) == fiber.StatusInternalServerError {
			h.log.Error().Err(err).Str("ticket_id", in.TicketID).Msg("registrar cuenta a pagar")
		}
		return fail(c, err, "Erro ao registrar conta a pagar.")
	}
	return c.Status(fiber.StatusCreated).JSON(dto.AccountPayableResponse{
		ID:          ap.ID,
		Code:        ap.ExternalCode,
		TitleStatus: ap.TitleStatus,
		TicketID:    in.TicketID,
		CreatedAt:   ap.CreatedAt,
	})
}

// Webhook recibe los eventos de Omie. Siempre responde 200: Omie desactiva webhooks que fallan.
// POST /webhooks/omie/contas-pagar
func (h *ContaPagarHandler) Webhook(c *fiber.Ctx) error {
	var n reconciliation.Notification
	if err := c.BodyParser(&n); err != nil {
		h.log.Warn().Err(err).Msg("webhook con cuerpo inválido")
		return c.JSON(dto.WebhookResponse{Message: "Evento inválido"})
	}
	msg, err := h.reconciler.HandleWebhook(c.UserContext(), n)
	if err != nil {
		h.log.Error().Err(err).Str("topic", n.Topic).Msg("webhook no procesado")
	}
	return c.JSON(dto.WebhookResponse{Message: msg})
}
