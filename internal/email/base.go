package email

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"delivered-status-service/internal/model"
)

// Settings son los valores configurables de un email.
type Settings struct {
	Enabled           bool
	Subject           string
	Heading           string
	AdditionalContent string
	EmailType         string
	ReplyTo           string
}

// Base junta el comportamiento común: placeholders, encabezados y contenido extra.
type Base struct {
	settings  Settings
	siteTitle string
}

func NewBase(settings Settings, siteTitle string) Base {
	switch settings.EmailType {
	case TypeHTML, TypePlain, TypeMultipart:
	default:
		settings.EmailType = TypeHTML
	}
	return Base{settings: settings, siteTitle: siteTitle}
}

func (b Base) Enabled() bool { return b.settings.Enabled }

func (b Base) EmailType() string { return b.settings.EmailType }

// ContentType según el formato configurado.
func (b Base) ContentType() string {
	switch b.settings.EmailType {
	case TypePlain:
		return "text/plain"
	case TypeMultipart:
		return "multipart/alternative"
	default:
		return "text/html"
	}
}

// FormatString reemplaza los placeholders {site_title}, {blogname},
// {order_number} y {order_date}.
func (b Base) FormatString(s string, o *model.Order) string {
	pairs := []string{
		"{site_title}", b.siteTitle,
		"{blogname}", b.siteTitle,
	}
	if o != nil {
		date := ""
		if !o.CreatedAt.IsZero() {
			date = o.CreatedAt.Format("January 2, 2006")
		}
		pairs = append(pairs, "{order_number}", o.DisplayNumber(), "{order_date}", date)
	}
	return strings.NewReplacer(pairs...).Replace(s)
}

// subjectOr usa el asunto configurado o def.
func (b Base) subjectOr(def string, o *model.Order) string {
	s := strings.TrimSpace(b.settings.Subject)
	if s == "" {
		s = def
	}
	return b.FormatString(s, o)
}

func (b Base) headingOr(def string, o *model.Order) string {
	h := strings.TrimSpace(b.settings.Heading)
	if h == "" {
		h = def
	}
	return b.FormatString(h, o)
}

// Headers arma Content-Type y Reply-To.
func (b Base) Headers(_ *model.Order) map[string]string {
	h := map[string]string{"Content-Type": b.ContentType()}
	if b.settings.ReplyTo != "" {
		h["Reply-To"] = b.settings.ReplyTo
	}
	return h
}

// Attachments no se usan en los emails de estado.
func (b Base) Attachments(_ *model.Order) []string {
	return []string{}
}

var (
	htmlPolicy = sync.OnceValue(func() *bluemonday.Policy {
		return bluemonday.UGCPolicy()
	})
	textPolicy = sync.OnceValue(func() *bluemonday.Policy {
		return bluemonday.StrictPolicy()
	})
)

// AdditionalHTML devuelve el contenido extra saneado para el cuerpo HTML.
func (b Base) AdditionalHTML(o *model.Order) string {
	raw := strings.TrimSpace(b.FormatString(b.settings.AdditionalContent, o))
	if raw == "" {
		return ""
	}
	return htmlPolicy().Sanitize(raw)
}

// AdditionalText devuelve el contenido extra sin etiquetas.
func (b Base) AdditionalText(o *model.Order) string {
	raw := strings.TrimSpace(b.FormatString(b.settings.AdditionalContent, o))
	if raw == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(textPolicy().Sanitize(raw)))
}
