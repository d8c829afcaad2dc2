package controller

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"delivered-status-service/internal/dto"
	"delivered-status-service/internal/email"
	"delivered-status-service/internal/model"
	"delivered-status-service/internal/repository"
	"delivered-status-service/internal/service"
	"delivered-status-service/internal/status"

	"github.com/gin-gonic/gin"
)

type OrderController struct {
	Service *service.OrderStatusService
	Emails  *email.Catalog
}

func NewOrderController(s *service.OrderStatusService, emails *email.Catalog) *OrderController {
	return &OrderController{Service: s, Emails: emails}
}

// POST /status/init — No requiere token
func (ctl *OrderController) InitStatus(c *gin.Context) {
	var req dto.InitOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := ctl.Service.InitOrder(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

// GET /orders/mine - user (middleware debe poner userID)
func (ctl *OrderController) GetMyOrders(c *gin.Context) {
	userID := c.GetString("userID")
	orders, err := ctl.Service.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	if orders == nil {
		orders = []*model.Order{}
	}
	c.JSON(http.StatusOK, orders)
}

// GET /orders/:orderId - dueño o admin
func (ctl *OrderController) GetOrder(c *gin.Context) {
	ctx := c.Request.Context()
	o, err := ctl.Service.GetByOrderID(ctx, c.Param("orderId"))
	if err != nil {
		writeError(c, err)
		return
	}

	isAdmin := slices.Contains(c.GetStringSlice("userPermissions"), "admin")
	if !isAdmin && o.UserID != c.GetString("userID") {
		c.JSON(http.StatusForbidden, gin.H{"error": "you cannot view another user's order"})
		return
	}

	resp, err := ctl.orderResponse(c, o, isAdmin)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GET /admin/orders?status=delivered - admin only
func (ctl *OrderController) GetOrders(c *gin.Context) {
	var (
		orders []*model.Order
		err    error
	)
	if st := c.Query("status"); st != "" {
		orders, err = ctl.Service.GetByStatus(c.Request.Context(), st)
	} else {
		orders, err = ctl.Service.GetAll(c.Request.Context())
	}
	if err != nil {
		writeError(c, err)
		return
	}
	if orders == nil {
		orders = []*model.Order{}
	}
	c.JSON(http.StatusOK, orders)
}

// GET /admin/orders/:orderId/actions
func (ctl *OrderController) GetOrderActions(c *gin.Context) {
	o, err := ctl.Service.GetByOrderID(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		writeError(c, err)
		return
	}
	actions, err := ctl.Service.AvailableActions(c.Request.Context(), o)
	if err != nil {
		writeError(c, err)
		return
	}
	if actions == nil {
		actions = []dto.OrderAction{}
	}
	c.JSON(http.StatusOK, actions)
}

// POST /admin/orders/:orderId/mark?status=delivered
func (ctl *OrderController) MarkStatus(c *gin.Context) {
	orderID := c.Param("orderId")
	target := c.Query("status")
	if target == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	changed, err := ctl.Service.MarkStatus(c.Request.Context(), orderID, target, c.GetString("userID"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"orderId": orderID,
		"status":  status.NormalizeStatus(target),
		"changed": changed,
	})
}

// GET /admin/bulk-actions
func (ctl *OrderController) GetBulkActions(c *gin.Context) {
	actions, err := ctl.Service.BulkActions(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, actions)
}

// POST /admin/bulk-actions
func (ctl *OrderController) RunBulkAction(c *gin.Context) {
	var req dto.BulkActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := ctl.Service.BulkMark(c.Request.Context(), req.Action, req.OrderIDs, c.GetString("userID"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /admin/statuses
func (ctl *OrderController) GetStatuses(c *gin.Context) {
	list, err := ctl.Service.StatusList(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /admin/reports/orders?statuses=completed,processing
// Sin el parámetro se usan los estados por defecto; vacío no reporta nada.
func (ctl *OrderController) GetReport(c *gin.Context) {
	var requested []string
	if raw, ok := c.GetQuery("statuses"); ok {
		requested = []string{}
		for _, s := range strings.Split(raw, ",") {
			if s = status.NormalizeStatus(s); s != "" {
				requested = append(requested, s)
			}
		}
	}

	rep, err := ctl.Service.Report(c.Request.Context(), requested)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rep)
}

// GET /admin/emails
func (ctl *OrderController) GetEmails(c *gin.Context) {
	c.JSON(http.StatusOK, ctl.Emails.List())
}

func (ctl *OrderController) orderResponse(c *gin.Context, o *model.Order, withActions bool) (dto.OrderResponse, error) {
	ctx := c.Request.Context()
	paid, err := ctl.Service.IsPaid(ctx, o)
	if err != nil {
		return dto.OrderResponse{}, err
	}
	actions := []dto.OrderAction{}
	if withActions {
		if actions, err = ctl.Service.AvailableActions(ctx, o); err != nil {
			return dto.OrderResponse{}, err
		}
		if actions == nil {
			actions = []dto.OrderAction{}
		}
	}
	defs, err := ctl.Service.Statuses(ctx)
	if err != nil {
		return dto.OrderResponse{}, err
	}
	label := o.Status
	for _, d := range defs {
		if d.ID == o.Status {
			label = d.Label
			break
		}
	}
	return dto.OrderResponse{
		OrderID:   o.OrderID,
		Number:    o.DisplayNumber(),
		UserID:    o.UserID,
		Status:    o.Status,
		Label:     label,
		Paid:      paid,
		Actions:   actions,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}, nil
}

// writeError traduce los errores de negocio a códigos HTTP.
func writeError(c *gin.Context, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, repository.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, service.ErrForbidden):
		code = http.StatusForbidden
	case errors.Is(err, service.ErrOrderAlreadyExists):
		code = http.StatusConflict
	case errors.Is(err, service.ErrUnknownStatus),
		errors.Is(err, service.ErrUnknownBulkAction),
		errors.Is(err, service.ErrEmptySelection):
		code = http.StatusBadRequest
	}
	c.JSON(code, gin.H{"error": err.Error()})
}
