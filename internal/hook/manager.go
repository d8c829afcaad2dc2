// manager.go
package hook

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// Nombres de hooks usados por el servicio.
const (
	FilterOrderStatuses  = "order_statuses"
	FilterPaidStatuses   = "order_is_paid_statuses"
	FilterReportStatuses = "reports_order_statuses"
	FilterBulkActions    = "bulk_actions_shop_order"
	FilterOrderActions   = "admin_order_actions"

	ActionOrderStatusChanged = "order_status_changed"
)

// StatusAction devuelve el nombre del evento "order_status_<to>".
func StatusAction(to string) string {
	return "order_status_" + to
}

// TransitionAction devuelve el nombre del evento "order_status_<from>_to_<to>".
func TransitionAction(from, to string) string {
	return "order_status_" + from + "_to_" + to
}

// FilterFunc transforma un payload y devuelve el resultado.
type FilterFunc func(ctx context.Context, payload any) (any, error)

// ActionFunc reacciona a un evento, sin devolver payload.
type ActionFunc func(ctx context.Context, payload any) error

// Manager guarda filtros y acciones por nombre y los ejecuta en orden de registro.
type Manager struct {
	mu      sync.RWMutex
	filters map[string][]FilterFunc
	actions map[string][]ActionFunc
	logger  *slog.Logger
}

func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Manager{
		filters: make(map[string][]FilterFunc),
		actions: make(map[string][]ActionFunc),
		logger:  logger,
	}
}

// AddFilter asocia fn al filtro name.
func (m *Manager) AddFilter(name string, fn FilterFunc) {
	key := normalizeName(name)
	if m == nil || fn == nil || key == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.filters[key] = append(m.filters[key], fn)
}

// AddAction suscribe fn al evento name.
func (m *Manager) AddAction(name string, fn ActionFunc) {
	key := normalizeName(name)
	if m == nil || fn == nil || key == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actions[key] = append(m.actions[key], fn)
}

// ApplyFilters pasa payload por todos los filtros de name.
// Si un filtro falla se corta la cadena.
func (m *Manager) ApplyFilters(ctx context.Context, name string, payload any) (any, error) {
	key := normalizeName(name)
	if m == nil || key == "" {
		return payload, nil
	}
	m.mu.RLock()
	filters := append([]FilterFunc(nil), m.filters[key]...)
	m.mu.RUnlock()

	var err error
	current := payload
	for _, filter := range filters {
		current, err = filter(ctx, current)
		if err != nil {
			return nil, err
		}
	}
	return current, nil
}

// DoAction ejecuta todos los suscriptores de name.
// Un error en un suscriptor se registra y no detiene a los demás.
func (m *Manager) DoAction(ctx context.Context, name string, payload any) {
	key := normalizeName(name)
	if m == nil || key == "" {
		return
	}
	m.mu.RLock()
	actions := append([]ActionFunc(nil), m.actions[key]...)
	m.mu.RUnlock()

	for _, action := range actions {
		if err := action(ctx, payload); err != nil {
			m.logger.WarnContext(ctx, "hook action failed", "hook", key, "error", err)
		}
	}
}

// HasAction indica si hay al menos un suscriptor para name.
func (m *Manager) HasAction(name string) bool {
	if m == nil {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.actions[normalizeName(name)]) > 0
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// StringsFilter adapta una función pura sobre []string a FilterFunc.
// Un payload que no es []string pasa sin cambios.
func StringsFilter(fn func([]string) []string) FilterFunc {
	return func(_ context.Context, payload any) (any, error) {
		in, ok := payload.([]string)
		if !ok {
			return payload, nil
		}
		return fn(in), nil
	}
}

// FilterStrings aplica name sobre una lista de strings y devuelve el resultado tipado.
func (m *Manager) FilterStrings(ctx context.Context, name string, in []string) ([]string, error) {
	out, err := m.ApplyFilters(ctx, name, in)
	if err != nil {
		return nil, err
	}
	list, _ := out.([]string)
	return list, nil
}
