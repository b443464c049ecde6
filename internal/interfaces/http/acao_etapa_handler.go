package http

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jhoicas/comisiones-api/internal/application/dto"
	"github.com/jhoicas/comisiones-api/internal/application/exporting"
	"github.com/jhoicas/comisiones-api/internal/application/importing"
	"github.com/jhoicas/comisiones-api/internal/domain/entity"
	"github.com/rs/zerolog"
)

// AcaoEtapaHandler acciones sobre las etapas: importación de comisiones y exportaciones a SCI Único.
type AcaoEtapaHandler struct {
	importer  *importing.CommissionImporter
	exports   *exporting.Runner
	uploadDir string
	log       zerolog.Logger
}

// NewAcaoEtapaHandler construye el handler.
func NewAcaoEtapaHandler(importer *importing.CommissionImporter, exports *exporting.Runner, uploadDir string, log zerolog.Logger) *AcaoEtapaHandler {
	return &AcaoEtapaHandler{importer: importer, exports: exports, uploadDir: uploadDir, log: log}
}

// ImportCommissions recibe la planilla en el campo multipart "arquivo".
// ?modo=atomico importa todo el archivo en una sola transacción.
// POST /api/acoes-etapas/importar-comissoes
func (h *AcaoEtapaHandler) ImportCommissions(c *fiber.Ctx) error {
	file, err := c.FormFile("arquivo")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Message: "Nenhum arquivo enviado."})
	}
	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		h.log.Error().Err(err).Str("dir", h.uploadDir).Msg("crear directorio de uploads")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Message: "Erro interno do servidor.", Details: err.Error()})
	}
	path := filepath.Join(h.uploadDir, uuid.New().String()+strings.ToLower(filepath.Ext(file.Filename)))
	if err := c.SaveFile(file, path); err != nil {
		h.log.Error().Err(err).Msg("guardar planilla")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Message: "Erro interno do servidor.", Details: err.Error()})
	}

	opts := importing.Options{Atomic: c.Query("modo") == "atomico"}
	sum, err := h.importer.Import(c.UserContext(), path, opts)
	if err != nil {
		// el importador solo borra la planilla cuando termina bien
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			h.log.Warn().Err(rmErr).Str("arquivo", path).Msg("no se pudo eliminar la planilla rechazada")
		}
		var rowErr *importing.RowError
		if errors.As(err, &rowErr) {
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Message: "Erro ao importar comissões.",
				Details: rowErr.Err.Error(),
				Line:    rowErr.Line,
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Message: "Erro interno do servidor.", Details: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ImportResponse{
		Message:          "Comissões importadas com sucesso.",
		Imported:         sum.Imported,
		Skipped:          sum.Skipped,
		ProvidersCreated: sum.ProvidersCreated,
	})
}

// ExportServices responde de inmediato y exporta en segundo plano.
// POST /api/acoes-etapas/exportar-servicos
func (h *AcaoEtapaHandler) ExportServices(c *fiber.Ctx) error {
	return h.startExport(c, entity.ExportKindServices, "Serviços sendo processados e exportados")
}

// ExportProviders POST /api/acoes-etapas/exportar-prestadores
func (h *AcaoEtapaHandler) ExportProviders(c *fiber.Ctx) error {
	return h.startExport(c, entity.ExportKindProviders, "Prestadores sendo processados e exportados")
}

func (h *AcaoEtapaHandler) startExport(c *fiber.Ctx, kind, msg string) error {
	id, err := h.exports.StartAsync(c.UserContext(), kind, recipient(c))
	if err != nil {
		h.log.Error().Err(err).Str("kind", kind).Msg("iniciar exportación")
		return fail(c, err, "Erro ao iniciar exportação.")
	}
	return c.JSON(dto.ExportStartedResponse{Message: msg, RunID: id})
}

// GetRun estado de una ejecución de exportación.
// GET /api/acoes-etapas/execucoes/:id
func (h *AcaoEtapaHandler) GetRun(c *fiber.Ctx) error {
	run, err := h.exports.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, err, "Execução não encontrada.")
	}
	return c.JSON(toExportRunResponse(run))
}

func toExportRunResponse(run *entity.ExportRun) dto.ExportRunResponse {
	failures := make([]dto.ExportFailureResponse, 0, len(run.Failures))
	for _, f := range run.Failures {
		failures = append(failures, dto.ExportFailureResponse{Ref: f.Ref, Error: f.Error})
	}
	return dto.ExportRunResponse{
		ID:          run.ID,
		Kind:        run.Kind,
		Status:      run.Status,
		Exported:    run.Exported,
		Failures:    failures,
		Error:       run.Error,
		RequestedBy: run.RequestedBy,
		StartedAt:   run.StartedAt,
		FinishedAt:  run.FinishedAt,
	}
}
