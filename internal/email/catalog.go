package email

import (
	"sort"
	"sync"
)

// CatalogEntry resume un email registrado para el panel.
type CatalogEntry struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	CustomerEmail bool   `json:"customerEmail"`
	Enabled       bool   `json:"enabled"`
}

// Catalog guarda los emails disponibles por id.
type Catalog struct {
	mu     sync.RWMutex
	emails map[string]Notification
}

func NewCatalog() *Catalog {
	return &Catalog{emails: make(map[string]Notification)}
}

// Register agrega n; un id repetido reemplaza al anterior.
func (c *Catalog) Register(n Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.emails[n.ID()] = n
}

func (c *Catalog) Get(id string) (Notification, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n, ok := c.emails[id]
	return n, ok
}

// List devuelve los emails ordenados por id.
func (c *Catalog) List() []CatalogEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]CatalogEntry, 0, len(c.emails))
	for _, n := range c.emails {
		out = append(out, CatalogEntry{
			ID:            n.ID(),
			Title:         n.Title(),
			Description:   n.Description(),
			CustomerEmail: n.IsCustomerEmail(),
			Enabled:       n.Enabled(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
