package inmemory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blip0/confcache/pkg/cache"
)

func newTestCache(t *testing.T) *InMemoryCache {
	t.Helper()
	c, err := NewCache(&Config{
		DefaultExpiration: 300,
		CleanupInterval:   600,
	})
	require.NoError(t, err)
	return c
}

func TestSetGetDelete(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "tenant:t1:monitor:m1", `{"id":"m1"}`, time.Hour))

	val, err := c.Get(ctx, "tenant:t1:monitor:m1")
	require.NoError(t, err)
	assert.Equal(t, `{"id":"m1"}`, val)

	deleted, err := c.Delete(ctx, "tenant:t1:monitor:m1", "missing")
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = c.Get(ctx, "tenant:t1:monitor:m1")
	assert.ErrorIs(t, err, cache.ErrKeyNotFound)
}

func TestGet_MissingKey(t *testing.T) {
	c := newTestCache(t)

	_, err := c.Get(context.Background(), "absent")
	assert.ErrorIs(t, err, cache.ErrKeyNotFound)
}

func TestSet_Expiry(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "short-lived", "v", 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	_, err := c.Get(ctx, "short-lived")
	assert.ErrorIs(t, err, cache.ErrKeyNotFound)
}

func TestDeletePattern(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "tenant:t1:monitor:m1", "v", time.Hour))
	require.NoError(t, c.Set(ctx, "tenant:t1:network:n1", "v", time.Hour))
	require.NoError(t, c.SAdd(ctx, "tenant:t1:monitors:active", "m1"))
	require.NoError(t, c.Set(ctx, "tenant:t2:monitor:m9", "v", time.Hour))

	deleted, err := c.DeletePattern(ctx, "tenant:t1:*")
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)

	keys, err := c.KeysPattern(ctx, "tenant:t1:*")
	require.NoError(t, err)
	assert.Empty(t, keys)

	val, err := c.Get(ctx, "tenant:t2:monitor:m9")
	require.NoError(t, err)
	assert.Equal(t, "v", val)
}

func TestKeysPattern_IncludesSets(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "tenant:t1:monitor:m1", "v", time.Hour))
	require.NoError(t, c.SAdd(ctx, "tenant:t1:monitors:active", "m1"))

	keys, err := c.KeysPattern(ctx, "tenant:t1:*")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"tenant:t1:monitor:m1", "tenant:t1:monitors:active"}, keys)
}

func TestSetOperations(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SAdd(ctx, "active", "m1", "m2"))
	require.NoError(t, c.SAdd(ctx, "active", "m2", "m3"))

	members, err := c.SMembers(ctx, "active")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"m1", "m2", "m3"}, members)

	require.NoError(t, c.SRem(ctx, "active", "m1", "m2"))
	members, err = c.SMembers(ctx, "active")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"m3"}, members)

	// Removing the last member drops the set entirely.
	require.NoError(t, c.SRem(ctx, "active", "m3"))
	keys, err := c.KeysPattern(ctx, "active")
	require.NoError(t, err)
	assert.Empty(t, keys)

	members, err = c.SMembers(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestExpire_Set(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SAdd(ctx, "active", "m1"))
	require.NoError(t, c.Expire(ctx, "active", 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	members, err := c.SMembers(ctx, "active")
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestExpire_Value(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v", time.Hour))
	require.NoError(t, c.Expire(ctx, "k", 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, cache.ErrKeyNotFound)
}

func TestPublishSubscribe(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	sub, err := c.Subscribe(ctx, "blip0:tenant:t1:update")
	require.NoError(t, err)
	defer func() { _ = sub.Close() }()

	// Channels the subscriber did not ask for are not delivered.
	subscribers, err := c.Publish(ctx, "blip0:tenant:t2:update", "{}")
	require.NoError(t, err)
	assert.Equal(t, int64(0), subscribers)

	subscribers, err = c.Publish(ctx, "blip0:tenant:t1:update", `{"event_type":"update"}`)
	require.NoError(t, err)
	assert.Equal(t, int64(1), subscribers)

	select {
	case msg := <-sub.Messages():
		assert.Equal(t, "blip0:tenant:t1:update", msg.Channel)
		assert.Equal(t, `{"event_type":"update"}`, msg.Payload)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for published message")
	}
}

func TestSubscription_Close(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	sub, err := c.Subscribe(ctx, "ch")
	require.NoError(t, err)
	require.NoError(t, sub.Close())
	// Close is idempotent.
	require.NoError(t, sub.Close())

	subscribers, err := c.Publish(ctx, "ch", "{}")
	require.NoError(t, err)
	assert.Equal(t, int64(0), subscribers)
}

func TestDisconnect_DropsState(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v", time.Hour))
	require.NoError(t, c.SAdd(ctx, "s", "m"))
	require.NoError(t, c.Disconnect())

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, cache.ErrKeyNotFound)
	members, err := c.SMembers(ctx, "s")
	require.NoError(t, err)
	assert.Empty(t, members)
}
