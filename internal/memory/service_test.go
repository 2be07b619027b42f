package memory

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juliecode/julie/internal/store"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	st, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return New(st, nil)
}

func TestService_SaveAndGetRoundTrips(t *testing.T) {
	svc := newTestService(t)

	saved, err := svc.Save(context.Background(), []byte(`{
		"id": "mem_1_abc",
		"timestamp": 1000,
		"type": "checkpoint",
		"description": "initial commit"
	}`))
	require.NoError(t, err)
	assert.Equal(t, "mem_1_abc", saved.ID)

	got, err := svc.Get(context.Background(), "mem_1_abc")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(1000), got.Timestamp)
	assert.Equal(t, "checkpoint", got.Type)
	assert.Contains(t, string(got.Extra), "initial commit")
}

func TestService_GetMissingReturnsNil(t *testing.T) {
	svc := newTestService(t)

	got, err := svc.Get(context.Background(), "does-not-exist")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestService_SaveUpsertsById(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Save(ctx, []byte(`{"id": "mem_1", "timestamp": 1, "type": "checkpoint", "note": "v1"}`))
	require.NoError(t, err)
	_, err = svc.Save(ctx, []byte(`{"id": "mem_1", "timestamp": 2, "type": "checkpoint", "note": "v2"}`))
	require.NoError(t, err)

	got, err := svc.Get(ctx, "mem_1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(2), got.Timestamp)
	assert.Contains(t, string(got.Extra), "v2")
}

func TestService_ListFiltersByTypeAndOrdersNewestFirst(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Save(ctx, []byte(`{"id": "mem_a", "timestamp": 100, "type": "checkpoint"}`))
	require.NoError(t, err)
	_, err = svc.Save(ctx, []byte(`{"id": "mem_b", "timestamp": 200, "type": "checkpoint"}`))
	require.NoError(t, err)
	_, err = svc.Save(ctx, []byte(`{"id": "dec_a", "timestamp": 150, "type": "decision"}`))
	require.NoError(t, err)

	checkpoints, err := svc.List(ctx, "checkpoint")
	require.NoError(t, err)
	require.Len(t, checkpoints, 2)
	assert.Equal(t, "mem_b", checkpoints[0].ID)
	assert.Equal(t, "mem_a", checkpoints[1].ID)

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestService_DeleteRemovesDocument(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Save(ctx, []byte(`{"id": "mem_1", "timestamp": 1, "type": "checkpoint"}`))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "mem_1"))

	got, err := svc.Get(ctx, "mem_1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestService_DeleteMissingIsNotAnError(t *testing.T) {
	svc := newTestService(t)
	assert.NoError(t, svc.Delete(context.Background(), "never-existed"))
}

func TestNewID_HasTypeScopedPrefixAndTimestamp(t *testing.T) {
	id, err := NewID("mem", 1234567890)
	require.NoError(t, err)
	assert.Contains(t, id, "mem_1234567890_")

	second, err := NewID("mem", 1234567890)
	require.NoError(t, err)
	assert.NotEqual(t, id, second)
}
