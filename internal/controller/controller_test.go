package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"delivered-status-service/internal/delivered"
	"delivered-status-service/internal/dto"
	"delivered-status-service/internal/email"
	"delivered-status-service/internal/hook"
	"delivered-status-service/internal/middleware"
	"delivered-status-service/internal/model"
	"delivered-status-service/internal/repository"
	"delivered-status-service/internal/service"
	"delivered-status-service/internal/status"
)

type staticAuth map[string]*service.AuthUser

func (s staticAuth) ValidateToken(_ context.Context, token string) (*service.AuthUser, error) {
	if u, ok := s[token]; ok {
		return u, nil
	}
	return nil, errors.New("invalid")
}

type countingMailer struct{ n int }

func (c *countingMailer) Send(context.Context, email.Message) error {
	c.n++
	return nil
}

func newServer(t *testing.T) (*gin.Engine, *repository.MemoryOrderRepository, *countingMailer) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := repository.NewMemoryOrderRepository()
	reg := status.NewRegistry()
	hooks := hook.NewManager(nil)
	svc := service.NewOrderStatusService(repo, reg, hooks, nil)
	mailer := &countingMailer{}
	catalog := email.NewCatalog()
	mail := email.NewDeliveredOrderEmail(email.Settings{Enabled: true}, "Mi Tienda", "", repo, mailer, nil)
	require.NoError(t, delivered.Setup(delivered.Deps{Registry: reg, Hooks: hooks, Service: svc, Email: mail, Catalog: catalog}))

	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, &model.Order{OrderID: "1", UserID: "u1", Status: status.Completed, Total: 10, Billing: model.Billing{Email: "ana@example.com"}}))
	require.NoError(t, repo.Save(ctx, &model.Order{OrderID: "2", UserID: "u2", Status: status.Processing, Total: 4}))

	auth := staticAuth{
		"admin": {ID: "a1", Permissions: []string{"admin"}},
		"u1":    {ID: "u1"},
	}
	r := gin.New()
	NewOrderController(svc, catalog).Register(r, middleware.AuthMiddleware(auth))
	return r, repo, mailer
}

func do(r *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestOrderActionsEndpoint(t *testing.T) {
	r, _, _ := newServer(t)

	w := do(r, http.MethodGet, "/admin/orders/1/actions", "admin", "")
	require.Equal(t, http.StatusOK, w.Code)
	var actions []dto.OrderAction
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &actions))
	require.Len(t, actions, 1)
	assert.Equal(t, "delivered", actions[0].Action)

	w = do(r, http.MethodGet, "/admin/orders/2/actions", "admin", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = do(r, http.MethodGet, "/admin/orders/404/actions", "admin", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodGet, "/admin/orders/1/actions", "u1", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestMarkEndpoint(t *testing.T) {
	r, repo, mailer := newServer(t)

	w := do(r, http.MethodPost, "/admin/orders/1/mark?status=delivered", "admin", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"orderId":"1","status":"delivered","changed":true}`, w.Body.String())
	assert.Equal(t, 1, mailer.n)

	o, _ := repo.FindByOrderID(context.Background(), "1")
	assert.Equal(t, status.Delivered, o.Status)

	w = do(r, http.MethodPost, "/admin/orders/1/mark?status=shipped", "admin", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/admin/orders/1/mark", "admin", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/admin/orders/1/mark?status=delivered", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBulkEndpoint(t *testing.T) {
	r, _, mailer := newServer(t)

	w := do(r, http.MethodGet, "/admin/bulk-actions", "admin", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"action":"mark_delivered","label":"Change status to Delivered"}]`, w.Body.String())

	w = do(r, http.MethodPost, "/admin/bulk-actions", "admin", `{"action":"mark_delivered","orderIds":["1","2"]}`)
	require.Equal(t, http.StatusOK, w.Code)
	var res dto.BulkResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, 2, res.Changed)
	assert.Equal(t, 1, mailer.n)

	w = do(r, http.MethodPost, "/admin/bulk-actions", "admin", `{"action":"trash","orderIds":["1"]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/admin/bulk-actions", "admin", `{"action":"mark_delivered","orderIds":[]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportEndpoint(t *testing.T) {
	r, _, _ := newServer(t)
	do(r, http.MethodPost, "/admin/orders/1/mark?status=delivered", "admin", "")

	w := do(r, http.MethodGet, "/admin/reports/orders", "admin", "")
	require.Equal(t, http.StatusOK, w.Code)
	var rep dto.ReportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rep))
	assert.Contains(t, rep.Statuses, status.Delivered)
	assert.Equal(t, 2, rep.OrderCount)

	w = do(r, http.MethodGet, "/admin/reports/orders?statuses=", "admin", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rep))
	assert.Empty(t, rep.Statuses)
}

func TestStatusesAndEmailsEndpoints(t *testing.T) {
	r, _, _ := newServer(t)

	w := do(r, http.MethodGet, "/admin/statuses", "admin", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []dto.StatusListEntry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 8)
	assert.Equal(t, status.Completed, list[3].ID)
	assert.Equal(t, status.Delivered, list[4].ID)

	w = do(r, http.MethodGet, "/admin/emails", "admin", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), email.DeliveredEmailID)
}

func TestGetOrderEndpoint(t *testing.T) {
	r, _, _ := newServer(t)

	w := do(r, http.MethodGet, "/orders/1", "u1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.OrderResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Completed", resp.Label)
	assert.True(t, resp.Paid)
	assert.Empty(t, resp.Actions)

	w = do(r, http.MethodGet, "/orders/2", "u1", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestInitStatusEndpoint(t *testing.T) {
	r, _, _ := newServer(t)

	w := do(r, http.MethodPost, "/status/init", "", `{"orderId":"9","userId":"u9"}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = do(r, http.MethodPost, "/status/init", "", `{"orderId":"9","userId":"u9"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(r, http.MethodPost, "/status/init", "", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
