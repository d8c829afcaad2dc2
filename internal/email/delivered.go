package email

import (
	"bytes"
	"context"
	"embed"
	"errors"
	htmltemplate "html/template"
	"io"
	"log/slog"
	texttemplate "text/template"

	"delivered-status-service/internal/compat"
	"delivered-status-service/internal/model"
	"delivered-status-service/internal/repository"
)

//go:embed templates
var templatesFS embed.FS

const (
	DeliveredEmailID       = "customer_delivered_order"
	deliveredTemplateHTML  = "templates/customer-delivered-order.html"
	deliveredTemplatePlain = "templates/plain/customer-delivered-order.txt"

	defaultDeliveredSubject = "[{site_title}] Delivered Status"
	defaultDeliveredHeading = "Delivered Status"
)

var (
	deliveredHTML = htmltemplate.Must(htmltemplate.ParseFS(templatesFS, deliveredTemplateHTML))
	deliveredText = texttemplate.Must(texttemplate.ParseFS(templatesFS, deliveredTemplatePlain))
)

// OrderFinder carga una orden por id.
type OrderFinder interface {
	FindByOrderID(ctx context.Context, orderID string) (*model.Order, error)
}

// templateData son las variables que reciben las plantillas.
type templateData struct {
	Order          *model.Order
	EmailHeading   string
	SentToAdmin    bool
	PlainText      bool
	SiteTitle      string
	AdditionalHTML htmltemplate.HTML
	AdditionalText string
}

// DeliveredOrderEmail avisa al cliente que su orden fue entregada.
type DeliveredOrderEmail struct {
	Base
	orders      OrderFinder
	mailer      Mailer
	hostVersion string
	logger      *slog.Logger
}

func NewDeliveredOrderEmail(settings Settings, siteTitle, hostVersion string, orders OrderFinder, mailer Mailer, logger *slog.Logger) *DeliveredOrderEmail {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &DeliveredOrderEmail{
		Base:        NewBase(settings, siteTitle),
		orders:      orders,
		mailer:      mailer,
		hostVersion: hostVersion,
		logger:      logger,
	}
}

func (e *DeliveredOrderEmail) ID() string    { return DeliveredEmailID }
func (e *DeliveredOrderEmail) Title() string { return "Delivered order to customer" }
func (e *DeliveredOrderEmail) Description() string {
	return "An email sent to the customer when an order status changes to Delivered."
}
func (e *DeliveredOrderEmail) IsCustomerEmail() bool { return true }

// Recipient resuelve el email de facturación según la versión del formato.
func (e *DeliveredOrderEmail) Recipient(o *model.Order) string {
	return compat.BillingEmail(e.hostVersion, o)
}

func (e *DeliveredOrderEmail) Subject(o *model.Order) string {
	return e.subjectOr(defaultDeliveredSubject, o)
}

func (e *DeliveredOrderEmail) Heading(o *model.Order) string {
	return e.headingOr(defaultDeliveredHeading, o)
}

func (e *DeliveredOrderEmail) RenderHTML(o *model.Order) (string, error) {
	var buf bytes.Buffer
	data := e.data(o, false)
	if err := deliveredHTML.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (e *DeliveredOrderEmail) RenderPlain(o *model.Order) (string, error) {
	var buf bytes.Buffer
	data := e.data(o, true)
	if err := deliveredText.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (e *DeliveredOrderEmail) data(o *model.Order, plain bool) templateData {
	return templateData{
		Order:          o,
		EmailHeading:   e.Heading(o),
		SentToAdmin:    false,
		PlainText:      plain,
		SiteTitle:      e.siteTitle,
		AdditionalHTML: htmltemplate.HTML(e.AdditionalHTML(o)),
		AdditionalText: e.AdditionalText(o),
	}
}

// Trigger carga la orden y envía el email al cliente.
// Si está deshabilitado, la orden no existe o no hay destinatario, no envía
// nada y devuelve (false, nil). No hay reintentos.
func (e *DeliveredOrderEmail) Trigger(ctx context.Context, orderID string) (bool, error) {
	if !e.Enabled() {
		return false, nil
	}

	o, err := e.orders.FindByOrderID(ctx, orderID)
	if errors.Is(err, repository.ErrNotFound) {
		e.logger.WarnContext(ctx, "delivered email skipped: order not found", "order_id", orderID)
		return false, nil
	}
	if err != nil {
		return false, err
	}

	msg, err := Compose(e, o, e.ContentType())
	if errors.Is(err, ErrNoRecipient) {
		e.logger.InfoContext(ctx, "delivered email skipped: no recipient", "order_id", orderID)
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := e.mailer.Send(ctx, msg); err != nil {
		return false, err
	}
	e.logger.InfoContext(ctx, "delivered email sent", "order_id", orderID, "to", msg.To)
	return true, nil
}
