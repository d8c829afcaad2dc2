package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"delivered-status-service/internal/model"
)

func TestMemoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryOrderRepository()

	require.NoError(t, repo.Save(ctx, &model.Order{OrderID: "1", Status: "completed", Total: 10}))
	require.NoError(t, repo.Save(ctx, &model.Order{OrderID: "2", Status: "delivered", Total: 5}))
	require.NoError(t, repo.Save(ctx, &model.Order{OrderID: "3", Status: "delivered", RecordType: "shop_subscription"}))

	o, err := repo.FindByOrderID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, model.RecordTypeShopOrder, o.RecordType)

	// la copia devuelta no cambia lo guardado
	o.Status = "x"
	again, _ := repo.FindByOrderID(ctx, "1")
	assert.Equal(t, "completed", again.Status)

	require.NoError(t, repo.UpdateStatus(ctx, "1", "delivered", model.StatusRecord{Status: "delivered", Current: true}))
	assert.ErrorIs(t, repo.UpdateStatus(ctx, "404", "delivered", model.StatusRecord{}), ErrNotFound)

	totals, err := repo.CountByStatus(ctx, []string{"delivered"})
	require.NoError(t, err)
	assert.Equal(t, []StatusTotal{{Status: "delivered", Count: 2, Total: 15}}, totals)

	n, err := repo.RevertStatus(ctx, model.RecordTypeShopOrder, "delivered", "completed")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	sub, _ := repo.FindByOrderID(ctx, "3")
	assert.Equal(t, "delivered", sub.Status)

	all, err := repo.FindByStatus(ctx, "completed")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "1", all[0].OrderID)
}
