package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransition_TablaDeEstados(t *testing.T) {
	done := State{Etapa: EtapaConcluido, Status: StatusConcluido}
	omieWorking := State{Etapa: EtapaIntegracaoOmie, Status: StatusTrabalhando}
	review := State{Etapa: EtapaAprovacaoPagamento, Status: StatusRevisao}

	cases := []struct {
		name       string
		cur        State
		ev         Event
		hasPayable bool
		want       State
		noOp       bool
		clear      bool
		wantErr    bool
	}{
		{"exporta desde integracao-unico", State{EtapaIntegracaoUnico, StatusAguardandoInicio}, EventServiceExported, false, State{EtapaIntegracaoUnico, StatusTrabalhando}, false, false, false},
		{"exporta de nuevo es no-op", State{EtapaIntegracaoUnico, StatusTrabalhando}, EventServiceExported, false, State{EtapaIntegracaoUnico, StatusTrabalhando}, true, false, false},
		{"no exporta concluido", State{EtapaIntegracaoUnico, StatusConcluido}, EventServiceExported, false, State{}, false, false, true},
		{"no exporta fuera de etapa", Initial, EventServiceExported, false, State{}, false, false, true},
		{"registra cuenta a pagar", State{EtapaAprovacaoPagamento, StatusRevisao}, EventPayableRegistered, false, omieWorking, false, false, false},
		{"registra fuera de etapa", Initial, EventPayableRegistered, false, State{}, false, false, true},
		{"pago concluye", omieWorking, EventPayablePaid, true, done, false, false, false},
		{"pago repetido es no-op", done, EventPayablePaid, true, done, true, false, false},
		{"pago fuera de integracao-omie", review, EventPayablePaid, false, State{}, false, false, true},
		{"baixa cancelada revierte", done, EventSettlementCancelled, true, omieWorking, false, false, false},
		{"baixa cancelada repetida", omieWorking, EventSettlementCancelled, true, omieWorking, true, false, false},
		{"baixa cancelada desde requisicao", Initial, EventSettlementCancelled, false, State{}, false, false, true},
		{"remocion desde cualquier estado", done, EventPayableRemoved, true, review, false, true, false},
		{"remocion con vinculo aun en revision", review, EventPayableRemoved, true, review, false, true, false},
		{"remocion repetida", review, EventPayableRemoved, false, review, true, false, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := Transition(tc.cur, tc.ev, tc.hasPayable)
			if tc.wantErr {
				require.ErrorIs(t, err, ErrInvalidTransition)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, res.Next)
			assert.Equal(t, tc.noOp, res.NoOp)
			assert.Equal(t, tc.clear, res.ClearPayable)
		})
	}
}

func TestTransition_RemocionDejaObservacion(t *testing.T) {
	res, err := Transition(State{EtapaIntegracaoOmie, StatusTrabalhando}, EventPayableRemoved, true)
	require.NoError(t, err)
	assert.Equal(t, ObservationPayableRemoved, res.Observation)
}

func TestTransition_EventoDesconocido(t *testing.T) {
	_, err := Transition(Initial, Event(99), false)
	require.ErrorIs(t, err, ErrInvalidTransition)
	assert.Contains(t, err.Error(), "evento(99)")
}
