// Package workflow define la máquina de estados del ticket: el par (etapa, status)
// y la única función de transición que decide el siguiente estado para cada evento.
package workflow

import (
	"errors"
	"fmt"
)

// Etapas del ticket.
const (
	EtapaRequisicao         = "requisicao"
	EtapaAprovacaoCadastro  = "aprovacao-cadastro"
	EtapaAprovacaoPagamento = "aprovacao-pagamento"
	EtapaIntegracaoOmie     = "integracao-omie"
	EtapaIntegracaoUnico    = "integracao-unico"
	EtapaConcluido          = "concluido"
)

// Status del ticket dentro de la etapa.
const (
	StatusAguardandoInicio = "aguardando-inicio"
	StatusTrabalhando      = "trabalhando"
	StatusRevisao          = "revisao"
	StatusConcluido        = "concluido"
	StatusArquivado        = "arquivado"
)

// ObservationPayableRemoved nota que queda en el ticket cuando el ERP elimina la cuenta a pagar.
const ObservationPayableRemoved = "[CONTA A PAGAR REMOVIDA DO OMIE]"

// ErrInvalidTransition el evento no está definido para el estado actual.
var ErrInvalidTransition = errors.New("transição de ticket inválida")

// State par (etapa, status).
type State struct {
	Etapa  string
	Status string
}

func (s State) String() string { return s.Etapa + "/" + s.Status }

// Initial estado con el que nace un ticket importado.
var Initial = State{Etapa: EtapaRequisicao, Status: StatusAguardandoInicio}

// Terminal indica si el ticket terminó.
func (s State) Terminal() bool { return s.Status == StatusConcluido }

// Event disparador de una transición.
type Event int

const (
	EventServiceExported     Event = iota + 1 // exportación a SCI Único
	EventPayableRegistered                    // cuenta a pagar creada en Omie y vinculada
	EventPayablePaid                          // título PAGO (poll, Alterado o BaixaRealizada)
	EventSettlementCancelled                  // BaixaCancelada
	EventPayableRemoved                       // cuenta a pagar eliminada del ERP
)

var eventNames = map[Event]string{
	EventServiceExported:     "servico-exportado",
	EventPayableRegistered:   "conta-pagar-registrada",
	EventPayablePaid:         "conta-pagar-paga",
	EventSettlementCancelled: "baixa-cancelada",
	EventPayableRemoved:      "conta-pagar-removida",
}

func (e Event) String() string {
	if n, ok := eventNames[e]; ok {
		return n
	}
	return fmt.Sprintf("evento(%d)", int(e))
}

// Result resultado de evaluar un evento.
// NoOp = el ticket ya está en el estado destino; no hay que escribir nada.
type Result struct {
	Next         State
	NoOp         bool
	ClearPayable bool
	Observation  string
}

// Transition evalúa el evento sobre el estado actual. hasPayable indica si el ticket
// todavía tiene una cuenta a pagar vinculada (solo importa para EventPayableRemoved).
func Transition(cur State, ev Event, hasPayable bool) (Result, error) {
	switch ev {
	case EventServiceExported:
		if cur.Etapa != EtapaIntegracaoUnico || cur.Status == StatusConcluido {
			return Result{}, invalid(cur, ev)
		}
		next := State{Etapa: EtapaIntegracaoUnico, Status: StatusTrabalhando}
		return Result{Next: next, NoOp: cur == next}, nil

	case EventPayableRegistered:
		if cur.Etapa != EtapaAprovacaoPagamento || cur.Status == StatusConcluido {
			return Result{}, invalid(cur, ev)
		}
		return Result{Next: State{Etapa: EtapaIntegracaoOmie, Status: StatusTrabalhando}}, nil

	case EventPayablePaid:
		done := State{Etapa: EtapaConcluido, Status: StatusConcluido}
		if cur == done {
			return Result{Next: done, NoOp: true}, nil
		}
		if cur.Etapa != EtapaIntegracaoOmie {
			return Result{}, invalid(cur, ev)
		}
		return Result{Next: done}, nil

	case EventSettlementCancelled:
		back := State{Etapa: EtapaIntegracaoOmie, Status: StatusTrabalhando}
		if cur == back {
			return Result{Next: back, NoOp: true}, nil
		}
		if cur != (State{Etapa: EtapaConcluido, Status: StatusConcluido}) {
			return Result{}, invalid(cur, ev)
		}
		return Result{Next: back}, nil

	case EventPayableRemoved:
		review := State{Etapa: EtapaAprovacaoPagamento, Status: StatusRevisao}
		if cur == review && !hasPayable {
			return Result{Next: review, NoOp: true}, nil
		}
		return Result{Next: review, ClearPayable: true, Observation: ObservationPayableRemoved}, nil
	}
	return Result{}, invalid(cur, ev)
}

func invalid(cur State, ev Event) error {
	return fmt.Errorf("%w: %s em %s", ErrInvalidTransition, ev, cur)
}
