package entity

import (
	"time"

	"github.com/jhoicas/comisiones-api/internal/domain/workflow"
)

// Ticket unidad de trabajo que acompaña la comisión de un prestador por las etapas.
type Ticket struct {
	ID               string
	ProviderID       string
	ServiceIDs       []string
	AccountPayableID string // vacío = sin cuenta a pagar vinculada
	Title            string
	Observation      string
	Etapa            string
	Status           string
	Version          int // control de concurrencia optimista
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// State devuelve el par (etapa, status) actual.
func (t *Ticket) State() workflow.State {
	return workflow.State{Etapa: t.Etapa, Status: t.Status}
}

// Apply copia al ticket el resultado de una transición.
func (t *Ticket) Apply(res workflow.Result, now time.Time) {
	t.Etapa = res.Next.Etapa
	t.Status = res.Next.Status
	if res.ClearPayable {
		t.AccountPayableID = ""
	}
	if res.Observation != "" {
		t.Observation = res.Observation
	}
	t.UpdatedAt = now
}
