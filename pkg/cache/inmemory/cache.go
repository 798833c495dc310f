// Package inmemory is a process-local cache.Cache used by tests and
// local development. Keyed values live in a go-cache store; sets and
// pub/sub are small mutex-guarded structures. Not for production use.
package inmemory

import (
	"context"
	"path"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/blip0/confcache/pkg/cache"
)

// Config holds expiration defaults in seconds.
type Config struct {
	DefaultExpiration int
	CleanupInterval   int
}

type setEntry struct {
	members   map[string]struct{}
	expiresAt time.Time // zero means no expiry
}

func (e *setEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// InMemoryCache implements cache.Cache without any external process.
type InMemoryCache struct {
	kv *gocache.Cache

	mu   sync.RWMutex
	sets map[string]*setEntry

	subMu sync.RWMutex
	subs  map[*memSubscription]struct{}
}

var _ cache.Cache = (*InMemoryCache)(nil)

// NewCache inits an InMemoryCache instance.
func NewCache(config *Config) (*InMemoryCache, error) {
	if config == nil {
		config = &Config{DefaultExpiration: 300, CleanupInterval: 600}
	}
	return &InMemoryCache{
		kv: gocache.New(
			time.Duration(config.DefaultExpiration)*time.Second,
			time.Duration(config.CleanupInterval)*time.Second,
		),
		sets: make(map[string]*setEntry),
		subs: make(map[*memSubscription]struct{}),
	}, nil
}

// Set stores a value with the given TTL.
func (c *InMemoryCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	c.kv.Set(key, value, ttl)
	return nil
}

// Get returns a stored value or cache.ErrKeyNotFound.
func (c *InMemoryCache) Get(_ context.Context, key string) (string, error) {
	v, found := c.kv.Get(key)
	if !found {
		return "", cache.ErrKeyNotFound
	}
	s, ok := v.(string)
	if !ok {
		return "", cache.ErrKeyNotFound
	}
	return s, nil
}

// Delete removes keys (both plain values and sets) and returns how many
// existed.
func (c *InMemoryCache) Delete(_ context.Context, keys ...string) (int64, error) {
	var deleted int64
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		if _, found := c.kv.Get(key); found {
			c.kv.Delete(key)
			deleted++
			continue
		}
		if entry, found := c.sets[key]; found {
			delete(c.sets, key)
			if !entry.expired(now) {
				deleted++
			}
		}
	}
	return deleted, nil
}

// DeletePattern removes every key matching the glob pattern.
func (c *InMemoryCache) DeletePattern(ctx context.Context, pattern string) (int64, error) {
	keys, err := c.KeysPattern(ctx, pattern)
	if err != nil {
		return 0, err
	}
	return c.Delete(ctx, keys...)
}

// KeysPattern returns all live keys matching the glob pattern.
func (c *InMemoryCache) KeysPattern(_ context.Context, pattern string) ([]string, error) {
	var keys []string
	for key := range c.kv.Items() {
		if ok, err := path.Match(pattern, key); err != nil {
			return nil, err
		} else if ok {
			keys = append(keys, key)
		}
	}

	now := time.Now()
	c.mu.RLock()
	defer c.mu.RUnlock()
	for key, entry := range c.sets {
		if entry.expired(now) {
			continue
		}
		if ok, _ := path.Match(pattern, key); ok {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

// SAdd adds members to a set.
func (c *InMemoryCache) SAdd(_ context.Context, key string, members ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, found := c.sets[key]
	if !found || entry.expired(time.Now()) {
		entry = &setEntry{members: make(map[string]struct{})}
		c.sets[key] = entry
	}
	for _, m := range members {
		entry.members[m] = struct{}{}
	}
	return nil
}

// SRem removes members from a set.
func (c *InMemoryCache) SRem(_ context.Context, key string, members ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, found := c.sets[key]
	if !found || entry.expired(time.Now()) {
		return nil
	}
	for _, m := range members {
		delete(entry.members, m)
	}
	if len(entry.members) == 0 {
		delete(c.sets, key)
	}
	return nil
}

// SMembers returns all members of a set; a missing or expired set yields
// an empty slice.
func (c *InMemoryCache) SMembers(_ context.Context, key string) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, found := c.sets[key]
	if !found || entry.expired(time.Now()) {
		return []string{}, nil
	}
	members := make([]string, 0, len(entry.members))
	for m := range entry.members {
		members = append(members, m)
	}
	return members, nil
}

// Expire sets the TTL on an existing key.
func (c *InMemoryCache) Expire(_ context.Context, key string, ttl time.Duration) error {
	c.mu.Lock()
	if entry, found := c.sets[key]; found && !entry.expired(time.Now()) {
		entry.expiresAt = time.Now().Add(ttl)
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	if v, found := c.kv.Get(key); found {
		c.kv.Set(key, v, ttl)
	}
	return nil
}

type memSubscription struct {
	owner    *InMemoryCache
	channels map[string]struct{}
	msgs     chan cache.Message
	once     sync.Once
}

func (s *memSubscription) Messages() <-chan cache.Message {
	return s.msgs
}

func (s *memSubscription) Close() error {
	s.once.Do(func() {
		s.owner.subMu.Lock()
		delete(s.owner.subs, s)
		s.owner.subMu.Unlock()
		close(s.msgs)
	})
	return nil
}

// Publish fans payload out to matching subscribers. Delivery is
// non-blocking: a subscriber with a full buffer misses the message,
// mirroring the at-most-once contract of the real store.
func (c *InMemoryCache) Publish(_ context.Context, channel, payload string) (int64, error) {
	c.subMu.RLock()
	defer c.subMu.RUnlock()

	var receivers int64
	for sub := range c.subs {
		if _, ok := sub.channels[channel]; !ok {
			continue
		}
		select {
		case sub.msgs <- cache.Message{Channel: channel, Payload: payload}:
			receivers++
		default:
		}
	}
	return receivers, nil
}

// Subscribe opens a subscription on the given channels.
func (c *InMemoryCache) Subscribe(_ context.Context, channels ...string) (cache.Subscription, error) {
	sub := &memSubscription{
		owner:    c,
		channels: make(map[string]struct{}, len(channels)),
		msgs:     make(chan cache.Message, 64),
	}
	for _, ch := range channels {
		sub.channels[ch] = struct{}{}
	}
	c.subMu.Lock()
	c.subs[sub] = struct{}{}
	c.subMu.Unlock()
	return sub, nil
}

// Ping always succeeds for the in-process cache.
func (c *InMemoryCache) Ping(_ context.Context) error {
	return nil
}

// Disconnect drops all state.
func (c *InMemoryCache) Disconnect() error {
	c.kv.Flush()
	c.mu.Lock()
	c.sets = make(map[string]*setEntry)
	c.mu.Unlock()
	return nil
}
