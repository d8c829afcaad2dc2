package email

import (
	"context"
	"fmt"
	"strings"

	"github.com/wneessen/go-mail"
)

// SMTPConfig son los datos de conexión del servidor de correo.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPMailer envía por SMTP usando go-mail.
type SMTPMailer struct {
	cfg SMTPConfig
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (s *SMTPMailer) Send(ctx context.Context, msg Message) error {
	m, err := s.buildMessage(msg)
	if err != nil {
		return err
	}

	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}
	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("smtp send to %s: %w", msg.To, err)
	}
	return nil
}

func (s *SMTPMailer) buildMessage(msg Message) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(s.cfg.From); err != nil {
		return nil, fmt.Errorf("from %q: %w", s.cfg.From, err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("to %q: %w", msg.To, err)
	}
	m.Subject(msg.Subject)
	m.SetMessageID()

	for k, v := range msg.Headers {
		// go-mail arma el Content-Type según los cuerpos
		if strings.EqualFold(k, "Content-Type") {
			continue
		}
		m.SetGenHeader(mail.Header(k), v)
	}

	switch msg.ContentType {
	case "text/plain":
		m.SetBodyString(mail.TypeTextPlain, msg.Plain)
	case "multipart/alternative":
		m.SetBodyString(mail.TypeTextPlain, msg.Plain)
		m.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
	default:
		m.SetBodyString(mail.TypeTextHTML, msg.HTML)
	}

	for _, path := range msg.Attachments {
		m.AttachFile(path)
	}
	return m, nil
}
