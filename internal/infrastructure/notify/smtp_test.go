package notify

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/jhoicas/comisiones-api/internal/application/exporting"
)

type captureSender struct {
	from   string
	to     []string
	body   bytes.Buffer
	closed bool
}

func (c *captureSender) Send(from string, to []string, msg io.WriterTo) error {
	c.from = from
	c.to = to
	_, err := msg.WriteTo(&c.body)
	return err
}

func (c *captureSender) Close() error {
	c.closed = true
	return nil
}

var doc = exporting.Document{
	Name:        "servicos-20240701.txt",
	Subject:     "Exportação de serviços SCI Único",
	ContentType: "text/plain; charset=ISO-8859-1",
	Body:        []byte("20000010000012345\n"),
}

func TestSMTPNotifier_EnviaAdjunto(t *testing.T) {
	sender := &captureSender{}
	n := NewSMTPNotifier(SMTPConfig{From: "noreply@empresa.com", CC: []string{"financeiro@empresa.com"}})
	n.dial = func() (gomail.SendCloser, error) { return sender, nil }

	err := n.Send(context.Background(), doc, exporting.Recipient{UserID: "u1", Name: "Operador", Email: "op@empresa.com"})
	require.NoError(t, err)

	assert.Equal(t, "noreply@empresa.com", sender.from)
	assert.ElementsMatch(t, []string{"op@empresa.com", "financeiro@empresa.com"}, sender.to)
	assert.Contains(t, sender.body.String(), `filename="servicos-20240701.txt"`)
	assert.True(t, sender.closed)
}

func TestSMTPNotifier_SinEmail(t *testing.T) {
	n := NewSMTPNotifier(SMTPConfig{From: "noreply@empresa.com"})
	n.dial = func() (gomail.SendCloser, error) { t.Fatal("no debe conectar"); return nil, nil }

	err := n.Send(context.Background(), doc, exporting.Recipient{UserID: "u1"})
	assert.Error(t, err)
}

func TestSMTPNotifier_ErrorDeConexion(t *testing.T) {
	n := NewSMTPNotifier(SMTPConfig{From: "noreply@empresa.com"})
	n.dial = func() (gomail.SendCloser, error) { return nil, errors.New("connection refused") }

	err := n.Send(context.Background(), doc, exporting.Recipient{Email: "op@empresa.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(zerolog.New(&buf))
	require.NoError(t, n.Send(context.Background(), doc, exporting.Recipient{Email: "op@empresa.com"}))
	assert.Contains(t, buf.String(), "servicos-20240701.txt")
}
