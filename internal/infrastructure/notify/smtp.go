// Package notify entrega los archivos exportados al usuario que los pidió.
package notify

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"github.com/jhoicas/comisiones-api/internal/application/exporting"
)

var (
	_ exporting.Notifier = (*SMTPNotifier)(nil)
	_ exporting.Notifier = (*LogNotifier)(nil)
)

// SMTPConfig datos del servidor de correo.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	CC       []string
}

// SMTPNotifier envía el documento como adjunto por correo.
type SMTPNotifier struct {
	cfg  SMTPConfig
	dial func() (gomail.SendCloser, error)
}

// NewSMTPNotifier construye el notificador con gomail.
func NewSMTPNotifier(cfg SMTPConfig) *SMTPNotifier {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	return &SMTPNotifier{cfg: cfg, dial: d.Dial}
}

// Send arma el mensaje y lo envía. gomail no acepta context; se respeta una cancelación previa al envío.
func (n *SMTPNotifier) Send(ctx context.Context, doc exporting.Document, to exporting.Recipient) error {
	if to.Email == "" {
		return fmt.Errorf("smtp: destinatario sin email (usuario %s)", to.UserID)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.cfg.From)
	m.SetAddressHeader("To", to.Email, to.Name)
	if len(n.cfg.CC) > 0 {
		m.SetHeader("Cc", n.cfg.CC...)
	}
	m.SetHeader("Subject", doc.Subject)
	m.SetBody("text/plain", fmt.Sprintf("Segue em anexo o arquivo %s.", doc.Name))
	m.Attach(doc.Name,
		gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(doc.Body)
			return err
		}),
		gomail.SetHeader(map[string][]string{"Content-Type": {doc.ContentType}}),
	)

	s, err := n.dial()
	if err != nil {
		return fmt.Errorf("smtp: conectar: %w", err)
	}
	defer s.Close()
	if err := gomail.Send(s, m); err != nil {
		return fmt.Errorf("smtp: enviar: %w", err)
	}
	return nil
}

// LogNotifier registra el documento en el log en lugar de enviarlo (sin SMTP configurado).
type LogNotifier struct {
	log zerolog.Logger
}

// NewLogNotifier construye el notificador de desarrollo.
func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Send(_ context.Context, doc exporting.Document, to exporting.Recipient) error {
	n.log.Info().
		Str("arquivo", doc.Name).
		Int("bytes", len(doc.Body)).
		Str("destinatario", to.Email).
		Msg("SMTP no configurado: documento no enviado")
	return nil
}
