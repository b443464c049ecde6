package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/comisiones-api/internal/application/dto"
	"github.com/jhoicas/comisiones-api/internal/application/usecase"
)

// PrestadorHandler consultas de prestadores y asignación del código SCI Único.
type PrestadorHandler struct {
	uc *usecase.ProviderUseCase
}

// NewPrestadorHandler construye el handler.
func NewPrestadorHandler(uc *usecase.ProviderUseCase) *PrestadorHandler {
	return &PrestadorHandler{uc: uc}
}

// GetByID GET /api/prestadores/:id
func (h *PrestadorHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, err, "Prestador não encontrado.")
	}
	return c.JSON(out)
}

// AssignERPCode registra el código devuelto por SCI Único tras la exportación del prestador.
// PATCH /api/prestadores/:id/sci-unico
func (h *PrestadorHandler) AssignERPCode(c *fiber.Ctx) error {
	var in dto.AssignERPCodeRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Message: "Corpo da requisição inválido."})
	}
	out, err := h.uc.AssignERPCode(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return fail(c, err, "Erro ao atribuir código SCI Único.")
	}
	return c.JSON(out)
}
