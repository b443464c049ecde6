package reconciliation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Tópicos de webhook de cuentas a pagar de Omie.
const (
	TopicPayableChanged     = "Financas.ContaPagar.Alterado"
	TopicSettlementDone     = "Financas.ContaPagar.BaixaRealizada"
	TopicSettlementCanceled = "Financas.ContaPagar.BaixaCancelada"
	TopicPayableDeleted     = "Financas.ContaPagar.Excluido"
)

// PingValue valor de ping con el que Omie valida el endpoint.
const PingValue = "omie"

// Notification cuerpo del webhook.
type Notification struct {
	Ping  string          `json:"ping,omitempty"`
	Topic string          `json:"topic"`
	Event json.RawMessage `json:"event"`
}

// code codigo_lancamento_omie; Omie lo envía como número o como texto.
type code string

func (c *code) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*c = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*c = code(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("codigo_lancamento_omie inválido: %s", b)
	}
	*c = code(n.String())
	return nil
}

type changedEvent struct {
	Code      code   `json:"codigo_lancamento_omie"`
	Situation string `json:"situacao"`
}

type deletedEvent struct {
	Code code `json:"codigo_lancamento_omie"`
}

type settlementEvent []struct {
	Payables []struct {
		Code code `json:"codigo_lancamento_omie"`
	} `json:"conta_a_pagar"`
}

func (e settlementEvent) codes() []string {
	var out []string
	for _, s := range e {
		for _, p := range s.Payables {
			if p.Code != "" {
				out = append(out, string(p.Code))
			}
		}
	}
	return out
}
