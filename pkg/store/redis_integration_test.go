package store

import (
	"net"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blip0/confcache/pkg/cache/redis"
	"github.com/blip0/confcache/pkg/events"
)

func newRedisStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	host, port, err := net.SplitHostPort(mr.Addr())
	require.NoError(t, err)

	rc, err := redis.NewCache(&redis.Config{Host: host, Port: port})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rc.Disconnect() })

	return New(rc, events.NewPublisher(rc), nil), mr
}

func TestRedisStore_DocumentTTL(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := testContext(t)

	m := testMonitor(tenantA)
	require.True(t, store.Monitor.Cache(ctx, m, nil))

	key := MonitorKey(tenantA.String(), m.ID.String())
	assert.Equal(t, MonitorTTL, mr.TTL(key))
	assert.Equal(t, ActiveSetTTL, mr.TTL(ActiveMonitorsKey(tenantA.String())))

	// The document outlives the index but still expires.
	mr.FastForward(MonitorTTL + time.Minute)
	_, ok := store.Monitor.Get(ctx, tenantA.String(), m.ID.String())
	assert.False(t, ok)
}

func TestRedisStore_ActiveSetSelfHeals(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := testContext(t)

	m := testMonitor(tenantA)
	require.True(t, store.Monitor.Cache(ctx, m, nil))
	assert.Contains(t, store.Monitor.Active(ctx, tenantA.String()), m.ID.String())

	// With no further writes the index expires to empty well before the
	// documents do.
	mr.FastForward(ActiveSetTTL + time.Minute)
	assert.Empty(t, store.Monitor.Active(ctx, tenantA.String()))
	_, ok := store.Monitor.Get(ctx, tenantA.String(), m.ID.String())
	assert.True(t, ok, "documents must survive the index expiry")

	// The next write rebuilds the index and re-arms its TTL.
	require.True(t, store.Monitor.Cache(ctx, m, nil))
	assert.Contains(t, store.Monitor.Active(ctx, tenantA.String()), m.ID.String())
	assert.Equal(t, ActiveSetTTL, mr.TTL(ActiveMonitorsKey(tenantA.String())))
}

func TestRedisStore_ActiveSetTTLReassertedOnEveryWrite(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := testContext(t)

	first := testMonitor(tenantA)
	second := testMonitor(tenantA)
	require.True(t, store.Monitor.Cache(ctx, first, nil))

	mr.FastForward(3 * time.Minute)
	require.True(t, store.Monitor.Cache(ctx, second, nil))

	// The second write pushed the index TTL back to its full window.
	assert.Equal(t, ActiveSetTTL, mr.TTL(ActiveMonitorsKey(tenantA.String())))
	assert.ElementsMatch(t,
		[]string{first.ID.String(), second.ID.String()},
		store.Monitor.Active(ctx, tenantA.String()))
}

func TestRedisStore_InvalidateScansWholeTenant(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := testContext(t)

	for i := 0; i < 120; i++ {
		require.True(t, store.Monitor.Cache(ctx, testMonitor(tenantA), nil))
	}
	require.True(t, store.Network.Cache(ctx, testNetwork(tenantA)))

	// 120 monitors + 1 network + the active set.
	deleted := store.Tenant.Invalidate(ctx, tenantA.String())
	assert.Equal(t, int64(122), deleted)
	assert.Empty(t, store.Tenant.Keys(ctx, tenantA.String()))
}
