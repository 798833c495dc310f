// Package cache defines the key-value store abstraction the cache layer
// is built on. The redis sub-package is the production implementation;
// inmemory backs tests.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrKeyNotFound is returned by Get when the key does not exist or has
// expired. All implementations map their own miss sentinel to this one.
var ErrKeyNotFound = errors.New("cache: key not found")

// Message is a single pub/sub delivery.
type Message struct {
	Channel string
	Payload string
}

// Subscription is a live pub/sub subscription. Messages is closed when
// the subscription ends. Delivery is at-most-once, best effort.
type Subscription interface {
	Messages() <-chan Message
	Close() error
}

// Cache is the full operation surface the cache synchronization layer
// needs: keyed get/set with TTL, deletes (single and by glob pattern),
// set membership for derived indexes, key expiry, and pub/sub.
type Cache interface {
	// Set stores a value under key with the given TTL. A zero TTL means
	// no expiry.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Get returns the value for key, or ErrKeyNotFound on a miss.
	Get(ctx context.Context, key string) (string, error)

	// Delete removes the given keys and returns how many existed.
	Delete(ctx context.Context, keys ...string) (int64, error)

	// DeletePattern removes every key matching the glob pattern and
	// returns the number deleted.
	DeletePattern(ctx context.Context, pattern string) (int64, error)

	// KeysPattern returns all keys matching the glob pattern.
	KeysPattern(ctx context.Context, pattern string) ([]string, error)

	// SAdd adds members to the set stored at key.
	SAdd(ctx context.Context, key string, members ...string) error

	// SRem removes members from the set stored at key.
	SRem(ctx context.Context, key string, members ...string) error

	// SMembers returns all members of the set stored at key. A missing
	// key yields an empty slice, not an error.
	SMembers(ctx context.Context, key string) ([]string, error)

	// Expire sets the TTL on an existing key.
	Expire(ctx context.Context, key string, ttl time.Duration) error

	// Publish sends payload to channel and returns the number of
	// subscribers that received it. Zero subscribers is not an error.
	Publish(ctx context.Context, channel, payload string) (int64, error)

	// Subscribe opens a subscription on the given channels.
	Subscribe(ctx context.Context, channels ...string) (Subscription, error)

	// Ping checks connectivity.
	Ping(ctx context.Context) error

	// Disconnect releases the underlying connections.
	Disconnect() error
}
