package session_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/SscSPs/investment_bot/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, store session.Store) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "42")
	require.NoError(t, err)
	assert.False(t, ok)

	want := session.State{Awaiting: session.AwaitingSupportMessage, Data: map[string]string{"from": "menu"}}
	require.NoError(t, store.Set(ctx, "42", want))

	got, ok, err := store.Get(ctx, "42")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)

	_, ok, err = store.Get(ctx, "43")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Clear(ctx, "42"))
	_, ok, err = store.Get(ctx, "42")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, session.NewMemoryStore(10, time.Minute))
}

func TestMemoryStore_Expires(t *testing.T) {
	store := session.NewMemoryStore(10, 20*time.Millisecond)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "42", session.State{Awaiting: session.AwaitingAccessCode}))

	assert.Eventually(t, func() bool {
		_, ok, _ := store.Get(ctx, "42")
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestMemoryStore_Bounded(t *testing.T) {
	store := session.NewMemoryStore(2, time.Minute)
	ctx := context.Background()
	for _, id := range []string{"1", "2", "3"} {
		require.NoError(t, store.Set(ctx, id, session.State{Awaiting: session.AwaitingAccessCode}))
	}

	_, ok, _ := store.Get(ctx, "1")
	assert.False(t, ok, "oldest entry is evicted")
	_, ok, _ = store.Get(ctx, "3")
	assert.True(t, ok)
}

func TestRedisStore(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	store, err := session.NewRedisStore(context.Background(), url, time.Minute)
	require.NoError(t, err)
	defer store.Close()

	exerciseStore(t, store)
}

func TestNewRedisStore_BadURL(t *testing.T) {
	_, err := session.NewRedisStore(context.Background(), "not a url", time.Minute)
	assert.Error(t, err)
}
