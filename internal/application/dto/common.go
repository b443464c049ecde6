package dto

// ErrorResponse cuerpo de error HTTP. Las claves son las que esperan los clientes existentes.
type ErrorResponse struct {
	Message string `json:"mensagem"`
	Error   string `json:"erro,omitempty"`
	Details string `json:"detalhes,omitempty"`
	Line    int    `json:"linha,omitempty"`
}

