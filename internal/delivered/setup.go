// Package delivered registra el estado "delivered" y conecta sus filtros,
// acciones masivas y el email al cliente con los hooks del servicio.
package delivered

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"delivered-status-service/internal/email"
	"delivered-status-service/internal/hook"
	"delivered-status-service/internal/model"
	"delivered-status-service/internal/service"
	"delivered-status-service/internal/status"
)

type Deps struct {
	Registry *status.Registry
	Hooks    *hook.Manager
	Service  *service.OrderStatusService
	Email    *email.DeliveredOrderEmail
	Catalog  *email.Catalog
	Logger   *slog.Logger
}

// Setup registra el estado y suscribe los handlers. Se llama una vez al arrancar.
func Setup(d Deps) error {
	logger := d.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if err := d.Registry.Register(status.DeliveredDefinition); err != nil {
		return fmt.Errorf("register delivered status: %w", err)
	}
	def, _ := d.Registry.Get(status.Delivered)

	d.Hooks.AddFilter(hook.FilterOrderStatuses, func(_ context.Context, payload any) (any, error) {
		defs, ok := payload.([]status.Definition)
		if !ok {
			return payload, nil
		}
		return status.InsertAfter(defs, status.Completed, def), nil
	})
	d.Hooks.AddFilter(hook.FilterPaidStatuses, hook.StringsFilter(status.PaidStatuses))
	d.Hooks.AddFilter(hook.FilterReportStatuses, hook.StringsFilter(status.ReportStatuses))
	d.Hooks.AddFilter(hook.FilterBulkActions, d.Service.BulkActionFor(status.Delivered))

	if d.Email != nil {
		if d.Catalog != nil {
			d.Catalog.Register(d.Email)
		}
		d.Hooks.AddAction(hook.StatusAction(status.Delivered), func(ctx context.Context, payload any) error {
			change, ok := payload.(model.StatusChange)
			if !ok {
				return nil
			}
			if _, err := d.Email.Trigger(ctx, change.OrderID); err != nil {
				return fmt.Errorf("delivered email for order %s: %w", change.OrderID, err)
			}
			return nil
		})
	}

	logger.Info("delivered status registered", "label", def.Label, "statuses", d.Registry.IDs())
	return nil
}
