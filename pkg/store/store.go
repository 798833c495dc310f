// Package store is the cache synchronization service: write-through
// caching of denormalized configuration documents after committed
// database mutations, cache-aside reads, the tenant active-monitor
// index, tenant-wide invalidation, and change-event publication.
//
// The relational store owns canonical state; everything here is a
// derived, disposable projection keyed by tenant. The only shared
// mutable resource is the remote cache store itself — no in-process
// locking, last-write-wins per key.
package store

import (
	"context"
	"time"

	"github.com/blip0/confcache/pkg/cache"
	"github.com/blip0/confcache/pkg/events"
)

// defaultOpTimeout bounds every individual cache-store call. A timed-out
// call is handled like any other cache failure: the read path degrades
// to the relational fallback, the write path logs and returns false.
const defaultOpTimeout = 2 * time.Second

// Store groups the per-entity cache services. It encapsulates key
// prefixing, JSON serialization and event publication.
// NOTE: callers get no cross-key atomicity - concurrent writers to the
// same entity converge to last-write-wins.
type Store struct {
	Monitor MonitorStoreInterface
	Network NetworkStoreInterface
	Trigger TriggerStoreInterface
	Tenant  TenantStoreInterface
}

// New creates a Store on top of a cache store and an event publisher.
// src supplies the relational fallback for GetOrLoad and the bulk
// warms; it may be nil, which disables those operations.
func New(c cache.Cache, pub *events.Publisher, src Source) *Store {
	monitors := newMonitorStore(c, pub, src)
	networks := newNetworkStore(c, pub)
	triggers := newTriggerStore(c, pub)
	return &Store{
		Monitor: monitors,
		Network: networks,
		Trigger: triggers,
		Tenant:  newTenantStore(c, pub, src, monitors, networks, triggers),
	}
}

// opContext derives the short per-call deadline every remote cache
// operation runs under.
func opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, defaultOpTimeout)
}

// Compile-time interface compliance checks
var (
	_ MonitorStoreInterface = (*MonitorStore)(nil)
	_ NetworkStoreInterface = (*NetworkStore)(nil)
	_ TriggerStoreInterface = (*TriggerStore)(nil)
	_ TenantStoreInterface  = (*TenantStore)(nil)
)
