// Package legacy contiene la corrección de datos heredada que devuelve las
// órdenes "delivered" a "completed".
//
// Deshace todo lo que hace el estado "delivered", así que sólo corre si el
// operador la habilita explícitamente (LEGACY_REVERT_DELIVERED o
// `statusctl revert-delivered`).
package legacy

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"delivered-status-service/internal/model"
	"delivered-status-service/internal/status"
)

// Reverter actualiza estados en bloque sin pasar por los eventos.
type Reverter interface {
	RevertStatus(ctx context.Context, recordType, from, to string) (int64, error)
}

type Cleanup struct {
	repo    Reverter
	enabled bool
	logger  *slog.Logger
}

func NewCleanup(repo Reverter, enabled bool, logger *slog.Logger) *Cleanup {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Cleanup{repo: repo, enabled: enabled, logger: logger}
}

// RunOnStartup corre RevertDelivered sólo si está habilitada.
func (c *Cleanup) RunOnStartup(ctx context.Context) (int64, error) {
	if !c.enabled {
		return 0, nil
	}
	return c.RevertDelivered(ctx)
}

// RevertDelivered pasa todas las órdenes de tienda en "delivered" a "completed".
// No dispara notificaciones ni agrega historial.
func (c *Cleanup) RevertDelivered(ctx context.Context) (int64, error) {
	n, err := c.repo.RevertStatus(ctx, model.RecordTypeShopOrder, status.Delivered, status.Completed)
	if err != nil {
		return 0, fmt.Errorf("revert delivered orders: %w", err)
	}
	c.logger.WarnContext(ctx, "legacy cleanup reverted delivered orders", "modified", n)
	return n, nil
}
