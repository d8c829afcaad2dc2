package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"delivered-status-service/internal/config"
	"delivered-status-service/internal/model"
	"delivered-status-service/internal/repository"
	"delivered-status-service/internal/status"
)

func useMemoryStore(t *testing.T) {
	t.Helper()
	prev := cfg
	cfg = &config.Config{MongoURI: repository.MemoryURIPrefix}
	t.Cleanup(func() { cfg = prev })
}

func TestRunStatusesListsDeliveredAfterCompleted(t *testing.T) {
	useMemoryStore(t)
	svc, _, closeFn, err := openService(context.Background(), true)
	require.NoError(t, err)
	defer closeFn(context.Background())

	var out bytes.Buffer
	require.NoError(t, runStatuses(context.Background(), &out, svc))

	text := out.String()
	completed := bytes.Index(out.Bytes(), []byte("wc-completed"))
	deliveredAt := bytes.Index(out.Bytes(), []byte("wc-delivered"))
	require.NotEqual(t, -1, completed)
	require.NotEqual(t, -1, deliveredAt)
	assert.Less(t, completed, deliveredAt)
	assert.Contains(t, text, "Delivered")
}

func TestRunReportAndRevert(t *testing.T) {
	useMemoryStore(t)
	ctx := context.Background()
	svc, store, closeFn, err := openService(ctx, false)
	require.NoError(t, err)
	defer closeFn(context.Background())

	require.NoError(t, store.Save(ctx, &model.Order{OrderID: "1", Status: status.Delivered, Total: 12.5}))
	require.NoError(t, store.Save(ctx, &model.Order{OrderID: "2", Status: status.Completed, Total: 7.5}))

	var out bytes.Buffer
	require.NoError(t, runReport(ctx, &out, svc, nil))
	assert.Contains(t, out.String(), "delivered")
	assert.Contains(t, out.String(), "20.00")

	out.Reset()
	require.NoError(t, runRevert(ctx, &out, store))
	assert.Contains(t, out.String(), "Reverted 1 delivered orders")

	o, err := store.FindByOrderID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, status.Completed, o.Status)
}

func TestRevertRequiresConfirmation(t *testing.T) {
	useMemoryStore(t)
	rootCmd.SetArgs([]string{"revert-delivered"})
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()
	assert.ErrorIs(t, err, errNotConfirmed)
}

func TestSplitStatuses(t *testing.T) {
	assert.Equal(t, []string{"delivered", "completed"}, splitStatuses("wc-delivered, Completed,,"))
	assert.Equal(t, []string{}, splitStatuses(""))
}
