package credstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authstate "github.com/goliatone/go-authstate"
	"github.com/goliatone/go-authstate/credstore"
)

func newRedisStore(t *testing.T, opts ...credstore.RedisOption) (*credstore.Redis, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	return credstore.NewRedis(rdb, opts...), mr
}

func TestRedisRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, _ := newRedisStore(t)

	require.NoError(t, store.Set(ctx, authstate.DomainAdmin, "admin-jwt"))
	require.NoError(t, store.Set(ctx, authstate.DomainStandard, "user-jwt"))

	admin, err := store.Get(ctx, authstate.DomainAdmin)
	require.NoError(t, err)
	assert.Equal(t, "admin-jwt", admin)

	require.NoError(t, store.Delete(ctx, authstate.DomainAdmin))

	admin, err = store.Get(ctx, authstate.DomainAdmin)
	require.NoError(t, err)
	assert.Empty(t, admin)

	standard, err := store.Get(ctx, authstate.DomainStandard)
	require.NoError(t, err)
	assert.Equal(t, "user-jwt", standard)
}

func TestRedisAbsentSlotReadsEmpty(t *testing.T) {
	store, _ := newRedisStore(t)

	token, err := store.Get(context.Background(), authstate.DomainAdmin)
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestRedisPrefixNamespacesKeys(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t, credstore.WithPrefix("shell1:"))

	require.NoError(t, store.Set(ctx, authstate.DomainAdmin, "admin-jwt"))
	assert.True(t, mr.Exists("shell1:adminToken"))
}

func TestRedisTTLExpiresUntouchedCredentials(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t, credstore.WithTTL(time.Minute))

	require.NoError(t, store.Set(ctx, authstate.DomainAdmin, "admin-jwt"))

	mr.FastForward(2 * time.Minute)

	token, err := store.Get(ctx, authstate.DomainAdmin)
	require.NoError(t, err)
	assert.Empty(t, token)
}
