package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hapl/fieldsales/internal/core/domain"
)

func newTestStore(t *testing.T) (*SessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionStore(client), mr
}

func TestSessionStore_SaveGetDelete(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "u1", "u1.abc.1", time.Hour))
	got, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1.abc.1", got)
	assert.True(t, mr.Exists("session:u1"))

	require.NoError(t, store.Save(ctx, "u1", "u1.def.2", time.Hour))
	got, err = store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1.def.2", got)

	require.NoError(t, store.Delete(ctx, "u1"))
	require.NoError(t, store.Delete(ctx, "u1"))
	_, err = store.Get(ctx, "u1")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestSessionStore_MissingIsNotFound(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Get(context.Background(), "ghost")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestSessionStore_Expires(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "u1", "u1.abc.1", 72*time.Hour))
	assert.Equal(t, 72*time.Hour, mr.TTL("session:u1"))

	mr.FastForward(72*time.Hour + time.Second)
	_, err := store.Get(ctx, "u1")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestSessionStore_ServerErrorIsWrapped(t *testing.T) {
	store, mr := newTestStore(t)
	mr.SetError("ERR backend unavailable")

	_, err := store.Get(context.Background(), "u1")
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrNotFound))
	assert.Contains(t, err.Error(), "get session")
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := Connect(context.Background(), Options{Addr: mr.Addr(), DialTimeout: time.Second})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	assert.NoError(t, Ping(context.Background(), client, time.Second))

	mr.Close()
	assert.Error(t, Ping(context.Background(), client, time.Second))
}
