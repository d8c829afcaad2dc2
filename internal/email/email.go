// Package email arma y envía las notificaciones transaccionales de órdenes.
package email

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"delivered-status-service/internal/model"
)

// Formatos de email soportados.
const (
	TypeHTML      = "html"
	TypePlain     = "plain"
	TypeMultipart = "multipart"
)

// Notification es el contrato de un email de orden.
type Notification interface {
	ID() string
	Title() string
	Description() string
	IsCustomerEmail() bool
	Enabled() bool
	Recipient(o *model.Order) string
	Subject(o *model.Order) string
	Heading(o *model.Order) string
	RenderHTML(o *model.Order) (string, error)
	RenderPlain(o *model.Order) (string, error)
	Headers(o *model.Order) map[string]string
	Attachments(o *model.Order) []string
}

// Message es el email ya armado, listo para el Mailer. No se persiste.
type Message struct {
	NotificationID string
	To             string
	Subject        string
	HTML           string
	Plain          string
	ContentType    string
	Headers        map[string]string
	Attachments    []string
}

// Mailer entrega mensajes.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// ErrNoRecipient se usa sólo internamente; el envío sin destinatario se omite.
var ErrNoRecipient = errors.New("email: destinatario vacío")

// Compose arma el mensaje. Devuelve ErrNoRecipient si no hay destinatario.
func Compose(n Notification, o *model.Order, contentType string) (Message, error) {
	to := strings.TrimSpace(n.Recipient(o))
	if to == "" {
		return Message{}, ErrNoRecipient
	}
	html, err := n.RenderHTML(o)
	if err != nil {
		return Message{}, fmt.Errorf("render html %s: %w", n.ID(), err)
	}
	plain, err := n.RenderPlain(o)
	if err != nil {
		return Message{}, fmt.Errorf("render plain %s: %w", n.ID(), err)
	}
	return Message{
		NotificationID: n.ID(),
		To:             to,
		Subject:        n.Subject(o),
		HTML:           html,
		Plain:          plain,
		ContentType:    contentType,
		Headers:        n.Headers(o),
		Attachments:    n.Attachments(o),
	}, nil
}

// LoggerMailer sólo registra el envío. Sirve cuando no hay SMTP configurado.
type LoggerMailer struct {
	logger *slog.Logger
}

func NewLoggerMailer(logger *slog.Logger) *LoggerMailer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &LoggerMailer{logger: logger}
}

func (l *LoggerMailer) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return ErrNoRecipient
	}
	l.logger.InfoContext(ctx, "email notification", "email", msg.NotificationID, "to", msg.To, "subject", msg.Subject, "content_type", msg.ContentType)
	return nil
}
