package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"delivered-status-service/internal/dto"
	"delivered-status-service/internal/hook"
	"delivered-status-service/internal/model"
	"delivered-status-service/internal/repository"
	"delivered-status-service/internal/status"
)

// Interfaz que debe implementar repository
type OrderRepository interface {
	Save(ctx context.Context, o *model.Order) error
	FindByOrderID(ctx context.Context, orderID string) (*model.Order, error)
	UpdateStatus(ctx context.Context, orderID, status string, record model.StatusRecord) error
	FindAll(ctx context.Context) ([]*model.Order, error)
	FindByStatus(ctx context.Context, status string) ([]*model.Order, error)
	FindByUserID(ctx context.Context, userID string) ([]*model.Order, error)
	CountByStatus(ctx context.Context, statuses []string) ([]repository.StatusTotal, error)
}

// Errores de negocio exportados (los usa el controller)
var (
	ErrForbidden          = errors.New("forbidden")
	ErrUnknownStatus      = errors.New("estado desconocido")
	ErrUnknownBulkAction  = errors.New("acción masiva desconocida")
	ErrOrderAlreadyExists = errors.New("la orden ya fue inicializada previamente")
	ErrEmptySelection     = errors.New("no se seleccionaron órdenes")
)

// Prefijo de las acciones masivas de cambio de estado.
const bulkMarkPrefix = "mark_"

// Ruta del endpoint de acción individual (se completa con el id).
const markPath = "/admin/orders/%s/mark"

// Resultados posibles de una orden dentro de una acción masiva.
const (
	BulkChanged   = "changed"
	BulkUnchanged = "unchanged"
	BulkFailed    = "failed"
)

type OrderStatusService struct {
	repo     OrderRepository
	registry *status.Registry
	hooks    *hook.Manager
	logger   *slog.Logger
}

func NewOrderStatusService(r OrderRepository, reg *status.Registry, hooks *hook.Manager, logger *slog.Logger) *OrderStatusService {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &OrderStatusService{repo: r, registry: reg, hooks: hooks, logger: logger}
}

// InitOrder crea la orden si no existe. El estado inicial es "pending"
// salvo que venga otro estado registrado.
func (s *OrderStatusService) InitOrder(ctx context.Context, req dto.InitOrderRequest) (*model.Order, error) {
	existing, err := s.repo.FindByOrderID(ctx, req.OrderID)
	if err == nil && existing != nil {
		return nil, ErrOrderAlreadyExists
	}
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	initial := status.NormalizeStatus(req.Status)
	if initial == "" {
		initial = status.Pending
	}
	if !s.registry.Exists(initial) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStatus, req.Status)
	}

	now := time.Now().UTC()
	o := &model.Order{
		OrderID:    req.OrderID,
		Number:     req.Number,
		UserID:     req.UserID,
		RecordType: model.RecordTypeShopOrder,
		Status:     initial,
		Currency:   req.Currency,
		Total:      req.Total,
		Billing:    dtoToModelBilling(req.Billing),
		Items:      dtoToModelItems(req.Items),
		CreatedAt:  now,
		UpdatedAt:  now,
		History: []model.StatusRecord{
			{
				Status:    initial,
				Current:   true,
				Reason:    "Orden inicializada",
				UserID:    req.UserID,
				Timestamp: now,
			},
		},
	}

	if err := s.repo.Save(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// Getters
func (s *OrderStatusService) GetByOrderID(ctx context.Context, orderID string) (*model.Order, error) {
	return s.repo.FindByOrderID(ctx, orderID)
}

func (s *OrderStatusService) GetAll(ctx context.Context) ([]*model.Order, error) {
	return s.repo.FindAll(ctx)
}

func (s *OrderStatusService) GetByStatus(ctx context.Context, st string) ([]*model.Order, error) {
	return s.repo.FindByStatus(ctx, status.NormalizeStatus(st))
}

func (s *OrderStatusService) GetByUserID(ctx context.Context, userID string) ([]*model.Order, error) {
	return s.repo.FindByUserID(ctx, userID)
}

// Statuses devuelve la lista ordenada de estados luego de aplicar los filtros.
func (s *OrderStatusService) Statuses(ctx context.Context) ([]status.Definition, error) {
	out, err := s.hooks.ApplyFilters(ctx, hook.FilterOrderStatuses, s.registry.Statuses())
	if err != nil {
		return nil, err
	}
	defs, _ := out.([]status.Definition)
	return defs, nil
}

// StatusList arma el listado del panel con los contadores por estado.
func (s *OrderStatusService) StatusList(ctx context.Context) ([]dto.StatusListEntry, error) {
	defs, err := s.Statuses(ctx)
	if err != nil {
		return nil, err
	}
	totals, err := s.repo.CountByStatus(ctx, nil)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(totals))
	for _, t := range totals {
		counts[t.Status] = t.Count
	}

	out := make([]dto.StatusListEntry, 0, len(defs))
	for _, d := range defs {
		if !d.ShowInAdminStatusList {
			continue
		}
		out = append(out, dto.StatusListEntry{
			ID:         d.ID,
			Label:      d.Label,
			Count:      counts[d.ID],
			LabelCount: s.registry.LabelCount(d.ID, counts[d.ID]),
		})
	}
	return out, nil
}

// AvailableActions devuelve las acciones de fila para la orden.
// "delivered" sólo aparece si la orden está en "completed".
func (s *OrderStatusService) AvailableActions(ctx context.Context, o *model.Order) ([]dto.OrderAction, error) {
	var actions []dto.OrderAction
	if o.HasStatus(status.Completed) {
		actions = append(actions, dto.OrderAction{
			Action: status.Delivered,
			Name:   "Mark as " + strings.ToLower(s.registry.Label(status.Delivered)),
			URL:    fmt.Sprintf(markPath, url.PathEscape(o.OrderID)) + "?status=" + status.Delivered,
		})
	}
	out, err := s.hooks.ApplyFilters(ctx, hook.FilterOrderActions, actions)
	if err != nil {
		return nil, err
	}
	actions, _ = out.([]dto.OrderAction)
	return actions, nil
}

// BulkActions devuelve las acciones masivas seleccionables.
func (s *OrderStatusService) BulkActions(ctx context.Context) ([]dto.BulkAction, error) {
	actions := []dto.BulkAction{}
	out, err := s.hooks.ApplyFilters(ctx, hook.FilterBulkActions, actions)
	if err != nil {
		return nil, err
	}
	actions, _ = out.([]dto.BulkAction)
	return actions, nil
}

// BulkActionFor es el filtro que agrega "mark_<id>" a las acciones masivas.
func (s *OrderStatusService) BulkActionFor(id string) hook.FilterFunc {
	return func(_ context.Context, payload any) (any, error) {
		in, ok := payload.([]dto.BulkAction)
		if !ok {
			return payload, nil
		}
		return append(in, dto.BulkAction{
			Action: bulkMarkPrefix + id,
			Label:  "Change status to " + s.registry.Label(id),
		}), nil
	}
}

// MarkStatus cambia el estado de una orden y dispara los eventos de cambio.
// Si la orden ya tiene ese estado no hace nada.
func (s *OrderStatusService) MarkStatus(ctx context.Context, orderID, newStatus, actorID string) (bool, error) {
	newStatus = status.NormalizeStatus(newStatus)
	if !s.registry.Exists(newStatus) {
		return false, fmt.Errorf("%w: %s", ErrUnknownStatus, newStatus)
	}

	ord, err := s.repo.FindByOrderID(ctx, orderID)
	if err != nil {
		return false, err
	}

	from := ord.Status
	if from == newStatus {
		return false, nil
	}

	record := model.StatusRecord{
		From:      from,
		Status:    newStatus,
		Reason:    "Estado cambiado desde el panel",
		UserID:    actorID,
		Timestamp: time.Now().UTC(),
		Current:   true,
	}
	if err := s.repo.UpdateStatus(ctx, orderID, newStatus, record); err != nil {
		return false, err
	}

	s.logger.InfoContext(ctx, "order status changed", "order_id", orderID, "from", from, "to", newStatus, "actor", actorID)

	change := model.StatusChange{
		OrderID: orderID,
		From:    from,
		To:      newStatus,
		ActorID: actorID,
		At:      record.Timestamp,
	}
	s.hooks.DoAction(ctx, hook.StatusAction(newStatus), change)
	s.hooks.DoAction(ctx, hook.TransitionAction(from, newStatus), change)
	s.hooks.DoAction(ctx, hook.ActionOrderStatusChanged, change)
	return true, nil
}

// BulkMark aplica la acción masiva a cada orden. Un fallo en una orden no
// detiene al resto.
func (s *OrderStatusService) BulkMark(ctx context.Context, action string, orderIDs []string, actorID string) (*dto.BulkResult, error) {
	target, ok := s.bulkTarget(ctx, action)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBulkAction, action)
	}
	if len(orderIDs) == 0 {
		return nil, ErrEmptySelection
	}

	res := &dto.BulkResult{Action: action, Status: target, Results: make([]dto.BulkItemResult, 0, len(orderIDs))}
	for _, id := range orderIDs {
		item := dto.BulkItemResult{OrderID: id}
		changed, err := s.MarkStatus(ctx, id, target, actorID)
		switch {
		case err != nil:
			item.Result = BulkFailed
			item.Error = err.Error()
			s.logger.WarnContext(ctx, "bulk mark failed", "order_id", id, "action", action, "error", err)
		case changed:
			item.Result = BulkChanged
			res.Changed++
		default:
			item.Result = BulkUnchanged
		}
		res.Results = append(res.Results, item)
	}
	return res, nil
}

// bulkTarget resuelve "mark_<estado>" contra las acciones habilitadas.
func (s *OrderStatusService) bulkTarget(ctx context.Context, action string) (string, bool) {
	actions, err := s.BulkActions(ctx)
	if err != nil {
		return "", false
	}
	for _, a := range actions {
		if a.Action == action {
			target := strings.TrimPrefix(action, bulkMarkPrefix)
			return target, s.registry.Exists(target)
		}
	}
	return "", false
}

// PaidStatuses devuelve los estados considerados pagados.
func (s *OrderStatusService) PaidStatuses(ctx context.Context) ([]string, error) {
	return s.hooks.FilterStrings(ctx, hook.FilterPaidStatuses, status.DefaultPaidStatuses)
}

// IsPaid indica si la orden está en un estado pagado.
func (s *OrderStatusService) IsPaid(ctx context.Context, o *model.Order) (bool, error) {
	paid, err := s.PaidStatuses(ctx)
	if err != nil {
		return false, err
	}
	return status.IsPaid(paid, o.Status), nil
}

// Report agrega cantidad y total por estado de reporte.
// requested nil usa los estados por defecto; una lista vacía no reporta nada.
func (s *OrderStatusService) Report(ctx context.Context, requested []string) (*dto.ReportResponse, error) {
	in := requested
	if in == nil {
		in = status.DefaultReportStatuses
	}
	statuses, err := s.hooks.FilterStrings(ctx, hook.FilterReportStatuses, in)
	if err != nil {
		return nil, err
	}
	resp := &dto.ReportResponse{Statuses: statuses, Rows: []repository.StatusTotal{}}
	if len(statuses) == 0 {
		return resp, nil
	}

	rows, err := s.repo.CountByStatus(ctx, statuses)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		resp.OrderCount += r.Count
		resp.GrossTotal += r.Total
	}
	if rows != nil {
		resp.Rows = rows
	}
	return resp, nil
}

func dtoToModelBilling(in dto.BillingDTO) model.Billing {
	return model.Billing{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     strings.TrimSpace(in.Email),
		Phone:     in.Phone,
	}
}

func dtoToModelItems(in []dto.LineItemDTO) []model.LineItem {
	out := make([]model.LineItem, 0, len(in))
	for _, it := range in {
		out = append(out, model.LineItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			Total:     it.Total,
		})
	}
	return out
}
