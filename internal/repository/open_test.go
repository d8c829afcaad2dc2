package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenMemory(t *testing.T) {
	store, closeFn, err := Open(context.Background(), "memory://", "ignored")
	require.NoError(t, err)
	require.NotNil(t, closeFn)
	assert.IsType(t, &MemoryOrderRepository{}, store)
	assert.NoError(t, closeFn(context.Background()))
}

var (
	_ Store = (*MemoryOrderRepository)(nil)
	_ Store = (*MongoOrderRepository)(nil)
)
