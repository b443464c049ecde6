package dto

import "time"

// RegisterPayableRequest body de POST /api/contas-pagar.
type RegisterPayableRequest struct {
	TicketID string `json:"ticketId" validate:"required"`
	Code     string `json:"codigoLancamento" validate:"required,digits"`
}

// AccountPayableResponse cuenta a pagar registrada.
type AccountPayableResponse struct {
	ID          string    `json:"id"`
	Code        string    `json:"codigoLancamento"`
	TitleStatus string    `json:"statusTitulo,omitempty"`
	TicketID    string    `json:"ticketId"`
	CreatedAt   time.Time `json:"createdAt"`
}
