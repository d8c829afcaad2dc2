package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"delivered-status-service/internal/model"
)

// MemoryOrderRepository guarda las órdenes en memoria. Se usa con
// MONGO_URI=memory:// para desarrollo local y en tests.
type MemoryOrderRepository struct {
	mu     sync.RWMutex
	orders map[string]*model.Order
}

func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{orders: make(map[string]*model.Order)}
}

func (m *MemoryOrderRepository) Save(_ context.Context, o *model.Order) error {
	now := time.Now().UTC()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	if o.RecordType == "" {
		o.RecordType = model.RecordTypeShopOrder
	}
	o.UpdatedAt = now

	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[o.OrderID] = clone(o)
	return nil
}

func (m *MemoryOrderRepository) FindByOrderID(_ context.Context, orderID string) (*model.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.orders[orderID]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(o), nil
}

func (m *MemoryOrderRepository) UpdateStatus(_ context.Context, orderID, status string, record model.StatusRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok {
		return ErrNotFound
	}
	for i := range o.History {
		o.History[i].Current = false
	}
	o.Status = status
	o.UpdatedAt = time.Now().UTC()
	o.History = append(o.History, record)
	return nil
}

func (m *MemoryOrderRepository) RevertStatus(_ context.Context, recordType, from, to string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, o := range m.orders {
		if o.RecordType == recordType && o.Status == from {
			o.Status = to
			n++
		}
	}
	return n, nil
}

func (m *MemoryOrderRepository) CountByStatus(_ context.Context, statuses []string) ([]StatusTotal, error) {
	want := make(map[string]bool, len(statuses))
	for _, s := range statuses {
		want[s] = true
	}

	m.mu.RLock()
	acc := map[string]*StatusTotal{}
	for _, o := range m.orders {
		if o.RecordType != model.RecordTypeShopOrder {
			continue
		}
		if len(statuses) > 0 && !want[o.Status] {
			continue
		}
		t, ok := acc[o.Status]
		if !ok {
			t = &StatusTotal{Status: o.Status}
			acc[o.Status] = t
		}
		t.Count++
		t.Total += o.Total
	}
	m.mu.RUnlock()

	out := make([]StatusTotal, 0, len(acc))
	for _, t := range acc {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Status < out[j].Status })
	return out, nil
}

func (m *MemoryOrderRepository) FindAll(ctx context.Context) ([]*model.Order, error) {
	return m.find(func(*model.Order) bool { return true }), nil
}

func (m *MemoryOrderRepository) FindByStatus(_ context.Context, status string) ([]*model.Order, error) {
	return m.find(func(o *model.Order) bool { return o.Status == status }), nil
}

func (m *MemoryOrderRepository) FindByUserID(_ context.Context, userID string) ([]*model.Order, error) {
	return m.find(func(o *model.Order) bool { return o.UserID == userID }), nil
}

func (m *MemoryOrderRepository) find(keep func(*model.Order) bool) []*model.Order {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Order
	for _, o := range m.orders {
		if keep(o) {
			out = append(out, clone(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderID < out[j].OrderID })
	return out
}

func clone(o *model.Order) *model.Order {
	cp := *o
	cp.Items = append([]model.LineItem(nil), o.Items...)
	cp.History = append([]model.StatusRecord(nil), o.History...)
	return &cp
}
