// registry.go
package status

import (
	"fmt"
	"strings"
	"sync"
)

// Estados conocidos del ciclo de vida de una orden.
const (
	Pending    = "pending"
	Processing = "processing"
	OnHold     = "on-hold"
	Completed  = "completed"
	Delivered  = "delivered"
	Cancelled  = "cancelled"
	Refunded   = "refunded"
	Failed     = "failed"
)

// Prefijo con el que el panel y los registros legados guardan los estados.
const KeyPrefix = "wc-"

// Definition describe un estado registrado.
type Definition struct {
	ID                    string `json:"id"`
	Label                 string `json:"label"`
	Public                bool   `json:"public"`
	ShowInAdminStatusList bool   `json:"showInAdminStatusList"`
	ShowInAdminAllList    bool   `json:"showInAdminAllList"`
	ExcludeFromSearch     bool   `json:"excludeFromSearch"`
	// Formato del contador, ej. "Delivered (%d)"
	LabelCountFormat string `json:"labelCountFormat"`
}

// DeliveredDefinition es el estado "Entregado" que agrega este servicio.
var DeliveredDefinition = Definition{
	ID:                    Delivered,
	Label:                 "Delivered",
	Public:                true,
	ShowInAdminStatusList: true,
	ShowInAdminAllList:    true,
	ExcludeFromSearch:     false,
	LabelCountFormat:      "Delivered (%d)",
}

// Registry mantiene la lista ordenada de estados.
type Registry struct {
	mu    sync.RWMutex
	order []Definition
}

// NewRegistry arma el registro con los estados base, en el orden del panel.
func NewRegistry() *Registry {
	return &Registry{order: defaultStatuses()}
}

func defaultStatuses() []Definition {
	base := []struct{ id, label string }{
		{Pending, "Pending payment"},
		{Processing, "Processing"},
		{OnHold, "On hold"},
		{Completed, "Completed"},
		{Cancelled, "Cancelled"},
		{Refunded, "Refunded"},
		{Failed, "Failed"},
	}
	out := make([]Definition, 0, len(base))
	for _, b := range base {
		out = append(out, Definition{
			ID:                    b.id,
			Label:                 b.label,
			Public:                false,
			ShowInAdminStatusList: true,
			ShowInAdminAllList:    true,
			LabelCountFormat:      b.label + " (%d)",
		})
	}
	return out
}

// Register agrega def inmediatamente después de "completed".
// Registrar dos veces el mismo id no duplica ni reordena.
func (r *Registry) Register(def Definition) error {
	def.ID = NormalizeStatus(def.ID)
	if def.ID == "" {
		return fmt.Errorf("status: id vacío")
	}
	if def.Label == "" {
		def.Label = def.ID
	}
	if def.LabelCountFormat == "" {
		def.LabelCountFormat = def.Label + " (%d)"
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.order = InsertAfter(r.order, Completed, def)
	return nil
}

// Statuses devuelve una copia de la lista ordenada.
func (r *Registry) Statuses() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Definition(nil), r.order...)
}

// IDs devuelve sólo los identificadores, en orden.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.order))
	for _, d := range r.order {
		out = append(out, d.ID)
	}
	return out
}

func (r *Registry) Get(id string) (Definition, bool) {
	id = NormalizeStatus(id)
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, d := range r.order {
		if d.ID == id {
			return d, true
		}
	}
	return Definition{}, false
}

func (r *Registry) Exists(id string) bool {
	_, ok := r.Get(id)
	return ok
}

// Label devuelve la etiqueta legible; si no existe, el id tal cual.
func (r *Registry) Label(id string) string {
	if d, ok := r.Get(id); ok {
		return d.Label
	}
	return NormalizeStatus(id)
}

// LabelCount formatea el contador del listado de administración.
func (r *Registry) LabelCount(id string, n int) string {
	d, ok := r.Get(id)
	if !ok {
		return fmt.Sprintf("%s (%d)", NormalizeStatus(id), n)
	}
	return fmt.Sprintf(d.LabelCountFormat, n)
}

// SearchableStatuses devuelve los estados que se incluyen en búsquedas.
func (r *Registry) SearchableStatuses() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []string
	for _, d := range r.order {
		if !d.ExcludeFromSearch {
			out = append(out, d.ID)
		}
	}
	return out
}

// InsertAfter devuelve una lista nueva con def justo después de anchor.
// Si def ya está en la lista se devuelve una copia sin cambios.
// Si anchor no está, def se agrega al final.
func InsertAfter(list []Definition, anchor string, def Definition) []Definition {
	out := make([]Definition, 0, len(list)+1)
	for _, d := range list {
		if d.ID == def.ID {
			return append(out[:0], list...)
		}
	}
	inserted := false
	for _, d := range list {
		out = append(out, d)
		if d.ID == anchor {
			out = append(out, def)
			inserted = true
		}
	}
	if !inserted {
		out = append(out, def)
	}
	return out
}

// NormalizeStatus acepta "wc-delivered", " Delivered " o "delivered".
func NormalizeStatus(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.TrimPrefix(s, KeyPrefix)
}
