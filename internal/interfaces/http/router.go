package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/comisiones-api/internal/application/exporting"
	"github.com/jhoicas/comisiones-api/internal/application/importing"
	"github.com/jhoicas/comisiones-api/internal/application/reconciliation"
	"github.com/jhoicas/comisiones-api/internal/application/usecase"
	"github.com/jhoicas/comisiones-api/internal/application/validation"
	"github.com/rs/zerolog"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Importer   *importing.CommissionImporter
	Exports    *exporting.Runner
	Reconciler *reconciliation.Reconciler
	ProviderUC *usecase.ProviderUseCase
	Validate   *validation.Validator
	UploadDir  string
	JWTSecret  string
	Log        zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	// Webhook de Omie (público; Omie no envía token)
	contaPagarHandler := NewContaPagarHandler(deps.Reconciler, deps.Validate, deps.Log.With().Str("component", "conta_pagar").Logger())
	app.Post("/webhooks/omie/contas-pagar", contaPagarHandler.Webhook)

	// Rutas protegidas (requieren Bearer Token)
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	acoes := api.Group("/acoes-etapas")
	acaoEtapaHandler := NewAcaoEtapaHandler(deps.Importer, deps.Exports, deps.UploadDir, deps.Log.With().Str("component", "acoes_etapas").Logger())
	acoes.Post("/importar-comissoes", acaoEtapaHandler.ImportCommissions)
	acoes.Post("/exportar-servicos", acaoEtapaHandler.ExportServices)
	acoes.Post("/exportar-prestadores", acaoEtapaHandler.ExportProviders)
	acoes.Get("/execucoes/:id", acaoEtapaHandler.GetRun)

	contas := api.Group("/contas-pagar")
	contas.Get("/omie/:codigoLancamento", contaPagarHandler.Poll)
	contas.Post("/", contaPagarHandler.Register)

	prestadores := api.Group("/prestadores")
	prestadorHandler := NewPrestadorHandler(deps.ProviderUC)
	prestadores.Get("/:id", prestadorHandler.GetByID)
	prestadores.Patch("/:id/sci-unico", prestadorHandler.AssignERPCode)
}
