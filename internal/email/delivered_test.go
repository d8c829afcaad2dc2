package email

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"delivered-status-service/internal/model"
	"delivered-status-service/internal/repository"
)

type fakeOrders map[string]*model.Order

func (f fakeOrders) FindByOrderID(_ context.Context, id string) (*model.Order, error) {
	if o, ok := f[id]; ok {
		return o, nil
	}
	return nil, repository.ErrNotFound
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) Send(ctx context.Context, msg Message) error {
	return m.Called(ctx, msg).Error(0)
}

func sampleOrders() fakeOrders {
	return fakeOrders{
		"1001": {
			OrderID:   "1001",
			Number:    "A-1001",
			Status:    "delivered",
			Currency:  "USD",
			Total:     42.5,
			Billing:   model.Billing{FirstName: "Ana", Email: "ana@example.com"},
			Items:     []model.LineItem{{Name: "Taza", Quantity: 2, Total: 42.5}},
			CreatedAt: time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC),
		},
		"1002": {OrderID: "1002", Status: "delivered"},
		"1003": {OrderID: "1003", LegacyBillingEmail: "viejo@example.com"},
	}
}

func enabledSettings() Settings {
	return Settings{Enabled: true, EmailType: TypeMultipart}
}

func TestTriggerSendsOneEmail(t *testing.T) {
	mailer := &mockMailer{}
	var sent Message
	mailer.On("Send", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		sent = args.Get(1).(Message)
	}).Return(nil).Once()

	e := NewDeliveredOrderEmail(enabledSettings(), "Mi Tienda", "8.0.0", sampleOrders(), mailer, nil)
	ok, err := e.Trigger(context.Background(), "1001")
	require.NoError(t, err)
	assert.True(t, ok)
	mailer.AssertNumberOfCalls(t, "Send", 1)

	assert.Equal(t, DeliveredEmailID, sent.NotificationID)
	assert.Equal(t, "ana@example.com", sent.To)
	assert.Equal(t, "[Mi Tienda] Delivered Status", sent.Subject)
	assert.Contains(t, sent.HTML, "<h1>Delivered Status</h1>")
	assert.Contains(t, sent.HTML, "A-1001")
	assert.Contains(t, sent.Plain, "= Delivered Status =")
	assert.Contains(t, sent.Plain, "Taza x 2")
	assert.NotContains(t, sent.Plain, "<")
	assert.Equal(t, "multipart/alternative", sent.ContentType)
	assert.Empty(t, sent.Attachments)
}

func TestTriggerSkips(t *testing.T) {
	tests := []struct {
		name     string
		settings Settings
		version  string
		orderID  string
	}{
		{"deshabilitado", Settings{Enabled: false}, "8.0.0", "1001"},
		{"sin destinatario", enabledSettings(), "8.0.0", "1002"},
		{"orden inexistente", enabledSettings(), "8.0.0", "404"},
		{"campo plano ignorado en versión nueva", enabledSettings(), "8.0.0", "1003"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mailer := &mockMailer{}
			e := NewDeliveredOrderEmail(tt.settings, "Mi Tienda", tt.version, sampleOrders(), mailer, nil)

			ok, err := e.Trigger(context.Background(), tt.orderID)
			require.NoError(t, err)
			assert.False(t, ok)
			mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
		})
	}
}

func TestTriggerLegacyRecipient(t *testing.T) {
	mailer := &mockMailer{}
	mailer.On("Send", mock.Anything, mock.MatchedBy(func(m Message) bool {
		return m.To == "viejo@example.com"
	})).Return(nil).Once()

	e := NewDeliveredOrderEmail(enabledSettings(), "Mi Tienda", "2.6.14", sampleOrders(), mailer, nil)
	ok, err := e.Trigger(context.Background(), "1003")
	require.NoError(t, err)
	assert.True(t, ok)
	mailer.AssertExpectations(t)
}

func TestTriggerReturnsMailerError(t *testing.T) {
	boom := errors.New("smtp caído")
	mailer := &mockMailer{}
	mailer.On("Send", mock.Anything, mock.Anything).Return(boom).Once()

	e := NewDeliveredOrderEmail(enabledSettings(), "Mi Tienda", "", sampleOrders(), mailer, nil)
	ok, err := e.Trigger(context.Background(), "1001")
	assert.ErrorIs(t, err, boom)
	assert.False(t, ok)
	mailer.AssertNumberOfCalls(t, "Send", 1)
}

func TestSubjectAndHeadingPlaceholders(t *testing.T) {
	s := Settings{
		Enabled: true,
		Subject: "{blogname}: pedido {order_number} del {order_date}",
		Heading: "Pedido {order_number} entregado",
	}
	e := NewDeliveredOrderEmail(s, "Mi Tienda", "", sampleOrders(), NewLoggerMailer(nil), nil)
	o := sampleOrders()["1001"]

	assert.Equal(t, "Mi Tienda: pedido A-1001 del March 5, 2024", e.Subject(o))
	assert.Equal(t, "Pedido A-1001 entregado", e.Heading(o))
}

func TestAdditionalContentIsSanitized(t *testing.T) {
	s := enabledSettings()
	s.AdditionalContent = `<b>Gracias</b> &amp; hasta pronto<script>alert(1)</script>`
	e := NewDeliveredOrderEmail(s, "Mi Tienda", "", sampleOrders(), NewLoggerMailer(nil), nil)
	o := sampleOrders()["1001"]

	html, err := e.RenderHTML(o)
	require.NoError(t, err)
	assert.Contains(t, html, "<b>Gracias</b>")
	assert.NotContains(t, html, "<script>")

	plain, err := e.RenderPlain(o)
	require.NoError(t, err)
	assert.Contains(t, plain, "Gracias & hasta pronto")
	assert.NotContains(t, plain, "<b>")
}

func TestHeaders(t *testing.T) {
	s := Settings{Enabled: true, EmailType: "raro", ReplyTo: "soporte@example.com"}
	e := NewDeliveredOrderEmail(s, "Mi Tienda", "", sampleOrders(), NewLoggerMailer(nil), nil)

	h := e.Headers(nil)
	assert.Equal(t, "text/html", h["Content-Type"])
	assert.Equal(t, "soporte@example.com", h["Reply-To"])
}

func TestCatalog(t *testing.T) {
	c := NewCatalog()
	e := NewDeliveredOrderEmail(enabledSettings(), "Mi Tienda", "", sampleOrders(), NewLoggerMailer(nil), nil)
	c.Register(e)
	c.Register(e)

	list := c.List()
	require.Len(t, list, 1)
	assert.Equal(t, DeliveredEmailID, list[0].ID)
	assert.True(t, list[0].CustomerEmail)
	assert.True(t, list[0].Enabled)

	_, ok := c.Get("otro")
	assert.False(t, ok)
}

func TestLoggerMailerRequiresRecipient(t *testing.T) {
	m := NewLoggerMailer(nil)
	assert.ErrorIs(t, m.Send(context.Background(), Message{}), ErrNoRecipient)
	assert.NoError(t, m.Send(context.Background(), Message{To: "a@example.com"}))
}
