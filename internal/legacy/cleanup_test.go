package legacy

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"delivered-status-service/internal/model"
)

// memReverter aplica el mismo filtro que el UpdateMany de Mongo.
type memReverter struct {
	orders []*model.Order
	err    error
}

func (m *memReverter) RevertStatus(_ context.Context, recordType, from, to string) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	var n int64
	for _, o := range m.orders {
		if o.RecordType == recordType && o.Status == from {
			o.Status = to
			n++
		}
	}
	return n, nil
}

func fixture() []*model.Order {
	return []*model.Order{
		{OrderID: "1", RecordType: model.RecordTypeShopOrder, Status: "delivered"},
		{OrderID: "2", RecordType: model.RecordTypeShopOrder, Status: "processing"},
		{OrderID: "3", RecordType: model.RecordTypeShopOrder, Status: "delivered"},
		{OrderID: "4", RecordType: "shop_subscription", Status: "delivered"},
		{OrderID: "5", RecordType: model.RecordTypeShopOrder, Status: "completed"},
	}
}

func TestRevertDelivered(t *testing.T) {
	repo := &memReverter{orders: fixture()}
	c := NewCleanup(repo, true, nil)

	n, err := c.RevertDelivered(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	got := map[string]string{}
	for _, o := range repo.orders {
		got[o.OrderID] = o.Status
	}
	assert.Equal(t, map[string]string{
		"1": "completed",
		"2": "processing",
		"3": "completed",
		"4": "delivered",
		"5": "completed",
	}, got)
}

func TestRunOnStartupDisabledByDefault(t *testing.T) {
	repo := &memReverter{orders: fixture()}
	c := NewCleanup(repo, false, nil)

	n, err := c.RunOnStartup(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, "delivered", repo.orders[0].Status)
}

func TestRunOnStartupEnabled(t *testing.T) {
	repo := &memReverter{orders: fixture()}
	c := NewCleanup(repo, true, nil)

	n, err := c.RunOnStartup(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestRevertDeliveredError(t *testing.T) {
	boom := errors.New("mongo caído")
	c := NewCleanup(&memReverter{err: boom}, true, nil)

	_, err := c.RevertDelivered(context.Background())
	assert.ErrorIs(t, err, boom)
}
