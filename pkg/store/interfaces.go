package store

import (
	"context"

	"github.com/blip0/confcache/pkg/common/structs"
	"github.com/blip0/confcache/pkg/denormalize"
)

// The store interfaces never surface errors to the request path: every
// expected failure (store unreachable, timeout, unserializable data)
// becomes a false/empty return plus a structured log line. The caller's
// relational write has already committed by the time these run, so
// nothing here may unwind into the HTTP response.

// MonitorStoreInterface defines cache operations for monitor documents
// and the derived active-monitor index.
type MonitorStoreInterface interface {
	// Cache denormalizes the monitor with its resolved trigger rows,
	// writes the document with MonitorTTL, reconciles the tenant's
	// active-monitor set, and publishes an update event. A failed cache
	// write short-circuits before any index or event work. A failed
	// event publish is logged but does not change the return value.
	Cache(ctx context.Context, m *structs.MonitorSnapshot, triggers []structs.TriggerSnapshot) bool

	// Get returns the cached document, or (nil, false) on a miss. The
	// caller is responsible for falling back to the relational store
	// and re-caching (or use GetOrLoad).
	Get(ctx context.Context, tenantID, monitorID string) (*denormalize.MonitorDocument, bool)

	// GetOrLoad is Get with the cache-aside fallback built in: on a
	// miss it loads the row through the Source, repopulates the cache,
	// and returns the fresh document. Concurrent loads for the same key
	// are collapsed into one Source query.
	GetOrLoad(ctx context.Context, tenantID, monitorID string) (*denormalize.MonitorDocument, bool)

	// Delete removes the document, drops the id from the active set and
	// publishes a delete event. Returns false when the key was already
	// gone; the second delete of an id is a distinguishable no-op, never
	// an error.
	Delete(ctx context.Context, tenantID, monitorID string) bool

	// Active returns the tenant's active-monitor ids. An empty result is
	// ambiguous between "no active monitors" and "index expired";
	// callers needing certainty must reconcile against the relational
	// store. Accepted trade-off of the short-TTL self-healing index.
	Active(ctx context.Context, tenantID string) []string
}

// NetworkStoreInterface defines cache operations for network documents.
type NetworkStoreInterface interface {
	// Cache writes the denormalized network document with NetworkTTL
	// and publishes an update event.
	Cache(ctx context.Context, n *structs.NetworkSnapshot) bool

	// Get returns the cached document, or (nil, false) on a miss.
	Get(ctx context.Context, tenantID, networkID string) (*denormalize.NetworkDocument, bool)

	// Delete removes the document and publishes a delete event. Returns
	// false when the key was already gone.
	Delete(ctx context.Context, tenantID, networkID string) bool
}

// TriggerStoreInterface defines cache operations for trigger documents.
type TriggerStoreInterface interface {
	// Cache writes the denormalized trigger document (type-specific
	// config inlined) with TriggerTTL and publishes an update event.
	Cache(ctx context.Context, t *structs.TriggerSnapshot) bool

	// Get returns the cached document, or (nil, false) on a miss.
	Get(ctx context.Context, tenantID, triggerID string) (*denormalize.TriggerDocument, bool)

	// Delete removes the document and publishes a delete event. Returns
	// false when the key was already gone.
	Delete(ctx context.Context, tenantID, triggerID string) bool
}

// TenantStoreInterface defines tenant-wide maintenance operations.
type TenantStoreInterface interface {
	// Invalidate deletes every key under the tenant's prefix and
	// publishes one invalidate event carrying the deleted count. Used on
	// tenant suspension or deletion.
	Invalidate(ctx context.Context, tenantID string) int64

	// Keys lists every cache key the tenant currently owns.
	Keys(ctx context.Context, tenantID string) []string

	// WarmMonitors loads all of a tenant's monitors through the Source
	// and caches each one, returning how many succeeded. A failure mid
	// batch does not abort the remaining rows.
	WarmMonitors(ctx context.Context, tenantID string) int

	// WarmNetworks is the bulk warm for networks.
	WarmNetworks(ctx context.Context, tenantID string) int

	// WarmTriggers is the bulk warm for triggers.
	WarmTriggers(ctx context.Context, tenantID string) int
}
