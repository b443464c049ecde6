package entity

import "time"

// Tipos de exportación.
const (
	ExportKindServices  = "servicos"
	ExportKindProviders = "prestadores"
)

// Estados de una ejecución de exportación.
const (
	ExportRunProcessing       = "processando"
	ExportRunCompleted        = "concluido"
	ExportRunCompletedPartial = "concluido-com-falhas"
	ExportRunFailed           = "falhou"
)

// ExportRun registro de una ejecución de exportación disparada por un usuario.
type ExportRun struct {
	ID          string
	Kind        string
	Status      string
	Exported    int
	Failures    []ExportFailure
	Error       string
	RequestedBy string
	StartedAt   time.Time
	FinishedAt  *time.Time
}

// ExportFailure falla puntual de un ticket o prestador dentro de la ejecución.
type ExportFailure struct {
	Ref   string `json:"ref"`
	Error string `json:"erro"`
}
