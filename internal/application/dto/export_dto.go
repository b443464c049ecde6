package dto

import "time"

// ExportStartedResponse respuesta inmediata de los disparadores de exportación.
type ExportStartedResponse struct {
	Message string `json:"mensagem"`
	RunID   string `json:"execucaoId"`
}

// ExportFailureResponse falla puntual dentro de una ejecución.
type ExportFailureResponse struct {
	Ref   string `json:"ref"`
	Error string `json:"erro"`
}

// ExportRunResponse estado de una ejecución de exportación.
type ExportRunResponse struct {
	ID          string                  `json:"id"`
	Kind        string                  `json:"tipo"`
	Status      string                  `json:"status"`
	Exported    int                     `json:"exportados"`
	Failures    []ExportFailureResponse `json:"falhas"`
	Error       string                  `json:"erro,omitempty"`
	RequestedBy string                  `json:"solicitadoPor"`
	StartedAt   time.Time               `json:"iniciadoEm"`
	FinishedAt  *time.Time              `json:"finalizadoEm,omitempty"`
}
