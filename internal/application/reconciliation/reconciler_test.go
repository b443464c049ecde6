package reconciliation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/comisiones-api/internal/domain"
	"github.com/jhoicas/comisiones-api/internal/domain/entity"
	"github.com/jhoicas/comisiones-api/internal/domain/workflow"
	"github.com/jhoicas/comisiones-api/internal/infrastructure/memory"
)

type fakeERP struct {
	payable *ERPPayable
	err     error
	calls   int
}

func (f *fakeERP) GetPayable(_ context.Context, creds entity.ERPCredentials, code string) (*ERPPayable, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.payable, nil
}

var (
	omieState = workflow.State{Etapa: workflow.EtapaIntegracaoOmie, Status: workflow.StatusTrabalhando}
	doneState = workflow.State{Etapa: workflow.EtapaConcluido, Status: workflow.StatusConcluido}
	review    = workflow.State{Etapa: workflow.EtapaAprovacaoPagamento, Status: workflow.StatusRevisao}
)

func newReconciler(store *memory.Store, erp ERPClient) *Reconciler {
	return NewReconciler(store, store.Payables(), store.Tickets(), store.Credentials(), erp,
		Config{RetryAttempts: 2, RetryDelay: time.Millisecond}, zerolog.Nop())
}

// seed crea una cuenta a pagar con código code vinculada al ticket "t1" en el estado st.
func seed(store *memory.Store, code string, st workflow.State) {
	store.Payables().Put(&entity.AccountPayable{ID: "ap-" + code, ExternalCode: code, TitleStatus: "A VENCER"})
	store.Tickets().Put(&entity.Ticket{
		ID: "t1", ProviderID: "p1", AccountPayableID: "ap-" + code,
		Etapa: st.Etapa, Status: st.Status,
	})
}

func ticket(t *testing.T, store *memory.Store) *entity.Ticket {
	t.Helper()
	tk, err := store.Tickets().GetByID(context.Background(), "t1")
	require.NoError(t, err)
	return tk
}

func notification(t *testing.T, topic string, event interface{}) Notification {
	t.Helper()
	raw, err := json.Marshal(event)
	require.NoError(t, err)
	return Notification{Topic: topic, Event: raw}
}

func settlement(codes ...interface{}) interface{} {
	var payables []map[string]interface{}
	for _, c := range codes {
		payables = append(payables, map[string]interface{}{"codigo_lancamento_omie": c})
	}
	return []map[string]interface{}{{"conta_a_pagar": payables}}
}

func TestHandleWebhook_Ping(t *testing.T) {
	msg, err := newReconciler(memory.NewStore(), &fakeERP{}).HandleWebhook(context.Background(), Notification{Ping: "omie"})
	require.NoError(t, err)
	assert.Equal(t, "pong", msg)
}

func TestHandleWebhook_BaixaRepetidaUnaSolaTransicion(t *testing.T) {
	store := memory.NewStore()
	seed(store, "555", omieState)
	r := newReconciler(store, &fakeERP{})
	n := notification(t, TopicSettlementDone, settlement(555))

	_, err := r.HandleWebhook(context.Background(), n)
	require.NoError(t, err)
	first := ticket(t, store)
	assert.Equal(t, doneState, first.State())
	assert.Equal(t, 1, first.Version)

	_, err = r.HandleWebhook(context.Background(), n)
	require.NoError(t, err)
	second := ticket(t, store)
	assert.Equal(t, doneState, second.State())
	assert.Equal(t, 1, second.Version, "la repetición no debe escribir el ticket")
}

func TestHandleWebhook_ExcluidoLuegoBaixaNoDejaVinculo(t *testing.T) {
	store := memory.NewStore()
	seed(store, "777", omieState)
	r := newReconciler(store, &fakeERP{})

	_, err := r.HandleWebhook(context.Background(), notification(t, TopicPayableDeleted, map[string]interface{}{"codigo_lancamento_omie": "777"}))
	require.NoError(t, err)

	msg, err := r.HandleWebhook(context.Background(), notification(t, TopicSettlementDone, settlement("777")))
	require.NoError(t, err)
	assert.Equal(t, "Evento processado", msg)

	tk := ticket(t, store)
	assert.Equal(t, review, tk.State())
	assert.Empty(t, tk.AccountPayableID)
	assert.Equal(t, workflow.ObservationPayableRemoved, tk.Observation)

	ap, err := store.Payables().GetByExternalCode(context.Background(), "777")
	require.NoError(t, err)
	assert.Nil(t, ap)

	// Excluido repetido no cambia nada
	version := tk.Version
	_, err = r.HandleWebhook(context.Background(), notification(t, TopicPayableDeleted, map[string]interface{}{"codigo_lancamento_omie": 777}))
	require.NoError(t, err)
	assert.Equal(t, version, ticket(t, store).Version)
}

func TestHandleWebhook_ExcluidoRevierteSiFallaElBorrado(t *testing.T) {
	store := memory.NewStore()
	seed(store, "778", omieState)
	store.FailOn("payables.Delete", errors.New("sin conexión"))
	r := newReconciler(store, &fakeERP{})

	_, err := r.HandleWebhook(context.Background(), notification(t, TopicPayableDeleted, map[string]interface{}{"codigo_lancamento_omie": "778"}))
	require.Error(t, err)

	tk := ticket(t, store)
	assert.Equal(t, omieState, tk.State())
	assert.Equal(t, "ap-778", tk.AccountPayableID)
}

func TestHandleWebhook_BaixaCanceladaReabre(t *testing.T) {
	store := memory.NewStore()
	seed(store, "900", doneState)
	r := newReconciler(store, &fakeERP{})

	_, err := r.HandleWebhook(context.Background(), notification(t, TopicSettlementCanceled, settlement(900)))
	require.NoError(t, err)
	assert.Equal(t, omieState, ticket(t, store).State())

	_, err = r.HandleWebhook(context.Background(), notification(t, TopicSettlementCanceled, settlement(900)))
	require.NoError(t, err)
	assert.Equal(t, 1, ticket(t, store).Version)
}

func TestHandleWebhook_AlteradoPagoConvergeConBaixa(t *testing.T) {
	store := memory.NewStore()
	seed(store, "321", omieState)
	r := newReconciler(store, &fakeERP{})

	_, err := r.HandleWebhook(context.Background(), notification(t, TopicPayableChanged, map[string]interface{}{"codigo_lancamento_omie": 321, "situacao": "PAGO"}))
	require.NoError(t, err)
	_, err = r.HandleWebhook(context.Background(), notification(t, TopicSettlementDone, settlement(321)))
	require.NoError(t, err)

	tk := ticket(t, store)
	assert.Equal(t, doneState, tk.State())
	assert.Equal(t, 1, tk.Version)

	ap, err := store.Payables().GetByExternalCode(context.Background(), "321")
	require.NoError(t, err)
	assert.Equal(t, "PAGO", ap.TitleStatus)
}

func TestHandleWebhook_AlteradoActualizaSituacion(t *testing.T) {
	store := memory.NewStore()
	seed(store, "322", omieState)
	r := newReconciler(store, &fakeERP{})

	_, err := r.HandleWebhook(context.Background(), notification(t, TopicPayableChanged, map[string]interface{}{"codigo_lancamento_omie": "322", "situacao": "ATRASADO"}))
	require.NoError(t, err)

	ap, err := store.Payables().GetByExternalCode(context.Background(), "322")
	require.NoError(t, err)
	assert.Equal(t, "ATRASADO", ap.TitleStatus)
	assert.Equal(t, omieState, ticket(t, store).State())
}

func TestHandleWebhook_CuentaDesconocidaEsNoOp(t *testing.T) {
	r := newReconciler(memory.NewStore(), &fakeERP{})
	msg, err := r.HandleWebhook(context.Background(), notification(t, TopicSettlementDone, settlement(1)))
	require.NoError(t, err)
	assert.Equal(t, "Evento processado", msg)

	msg, err = r.HandleWebhook(context.Background(), notification(t, TopicPayableChanged, map[string]interface{}{"codigo_lancamento_omie": 1, "situacao": "PAGO"}))
	require.NoError(t, err)
	assert.Equal(t, "Conta a pagar não encontrada", msg)
}

func TestHandleWebhook_TopicoDesconocidoYEventoInvalido(t *testing.T) {
	r := newReconciler(memory.NewStore(), &fakeERP{})

	msg, err := r.HandleWebhook(context.Background(), Notification{Topic: "Financas.ContaReceber.Alterado"})
	require.NoError(t, err)
	assert.Equal(t, "Tópico ignorado", msg)

	_, err = r.HandleWebhook(context.Background(), Notification{Topic: TopicPayableDeleted, Event: json.RawMessage(`{}`)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPollPayable_NoExisteEnERP(t *testing.T) {
	store := memory.NewStore()
	store.SetCredentials(&entity.ERPCredentials{AppKey: "k", AppSecret: "s"})
	seed(store, "404", omieState)
	r := newReconciler(store, &fakeERP{err: domain.ErrPayableNotFoundUpstream})

	_, err := r.PollPayable(context.Background(), "404")
	require.ErrorIs(t, err, domain.ErrPayableNotFoundUpstream)

	ap, err := store.Payables().GetByExternalCode(context.Background(), "404")
	require.NoError(t, err)
	assert.Nil(t, ap)

	tk := ticket(t, store)
	assert.Equal(t, review, tk.State())
	assert.Empty(t, tk.AccountPayableID)
	assert.Equal(t, "[CONTA A PAGAR REMOVIDA DO OMIE]", tk.Observation)
}

func TestPollPayable_PagoCierraTicket(t *testing.T) {
	store := memory.NewStore()
	store.SetCredentials(&entity.ERPCredentials{AppKey: "k", AppSecret: "s"})
	seed(store, "200", omieState)
	raw := json.RawMessage(`{"codigo_lancamento_omie":200,"status_titulo":"PAGO"}`)
	r := newReconciler(store, &fakeERP{payable: &ERPPayable{Code: "200", TitleStatus: "PAGO", Raw: raw}})

	got, err := r.PollPayable(context.Background(), "200")
	require.NoError(t, err)
	assert.JSONEq(t, string(raw), string(got))
	assert.Equal(t, doneState, ticket(t, store).State())

	ap, err := store.Payables().GetByExternalCode(context.Background(), "200")
	require.NoError(t, err)
	assert.Equal(t, "PAGO", ap.TitleStatus)
}

func TestPollPayable_Validaciones(t *testing.T) {
	store := memory.NewStore()
	erp := &fakeERP{}
	r := newReconciler(store, erp)

	_, err := r.PollPayable(context.Background(), "1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	seed(store, "2", omieState)
	_, err = r.PollPayable(context.Background(), "2")
	assert.ErrorIs(t, err, domain.ErrMissingCredentials)

	store.SetCredentials(&entity.ERPCredentials{AppKey: "k", AppSecret: "s"})
	erp.err = errors.New("timeout")
	_, err = r.PollPayable(context.Background(), "2")
	assert.ErrorIs(t, err, domain.ErrExternalService)
	assert.Equal(t, omieState, ticket(t, store).State())
}

func TestPollPayable_RespuestaInesperadaNoEliminaLaCuenta(t *testing.T) {
	store := memory.NewStore()
	store.SetCredentials(&entity.ERPCredentials{AppKey: "k", AppSecret: "s"})
	seed(store, "3", omieState)
	erp := &fakeERP{err: fmt.Errorf("%w: omie: resposta sem codigo_lancamento_omie", domain.ErrExternalService)}

	_, err := newReconciler(store, erp).PollPayable(context.Background(), "3")
	require.ErrorIs(t, err, domain.ErrExternalService)
	assert.NotErrorIs(t, err, domain.ErrPayableNotFoundUpstream)

	ap, err := store.Payables().GetByExternalCode(context.Background(), "3")
	require.NoError(t, err)
	require.NotNil(t, ap)
	tk := ticket(t, store)
	assert.Equal(t, omieState, tk.State())
	assert.Equal(t, "ap-3", tk.AccountPayableID)
}

func TestPollPayable_SituacionPagoSinDistinguirMayusculas(t *testing.T) {
	store := memory.NewStore()
	store.SetCredentials(&entity.ERPCredentials{AppKey: "k", AppSecret: "s"})
	seed(store, "201", omieState)
	erp := &fakeERP{payable: &ERPPayable{Code: "201", TitleStatus: "pago", Raw: json.RawMessage(`{}`)}}

	_, err := newReconciler(store, erp).PollPayable(context.Background(), "201")
	require.NoError(t, err)
	assert.Equal(t, doneState, ticket(t, store).State())
}

func TestRegisterPayable(t *testing.T) {
	store := memory.NewStore()
	store.Tickets().Put(&entity.Ticket{ID: "t1", ProviderID: "p1", Etapa: workflow.EtapaAprovacaoPagamento, Status: workflow.StatusRevisao})
	r := newReconciler(store, &fakeERP{})

	ap, err := r.RegisterPayable(context.Background(), "t1", "1234")
	require.NoError(t, err)
	assert.Equal(t, "1234", ap.ExternalCode)

	tk := ticket(t, store)
	assert.Equal(t, omieState, tk.State())
	assert.Equal(t, ap.ID, tk.AccountPayableID)

	_, err = r.RegisterPayable(context.Background(), "t1", "1234")
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = r.RegisterPayable(context.Background(), "t9", "9999")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRegisterPayable_EstadoNoPermitido(t *testing.T) {
	store := memory.NewStore()
	store.Tickets().Put(&entity.Ticket{ID: "t1", ProviderID: "p1", Etapa: workflow.EtapaRequisicao, Status: workflow.StatusAguardandoInicio})
	r := newReconciler(store, &fakeERP{})

	_, err := r.RegisterPayable(context.Background(), "t1", "1234")
	assert.ErrorIs(t, err, workflow.ErrInvalidTransition)

	ap, err := store.Payables().GetByExternalCode(context.Background(), "1234")
	require.NoError(t, err)
	assert.Nil(t, ap)
}
