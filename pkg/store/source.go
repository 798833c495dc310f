package store

import (
	"context"

	"github.com/blip0/confcache/pkg/common/structs"
)

// Source abstracts the relational store for cache-aside reads and bulk
// warms. The relational store is always authoritative; every cache key
// can be rebuilt through a Source. Implementations return (nil, nil) /
// (empty, nil) when no row exists; errors are reserved for the store
// being unreachable.
//
// TriggersBySlugs must resolve all slugs in a single batched query, so a
// monitor warm never degenerates into per-slug lookups.
type Source interface {
	MonitorByID(ctx context.Context, tenantID, monitorID string) (*structs.MonitorSnapshot, error)
	MonitorsByTenant(ctx context.Context, tenantID string) ([]structs.MonitorSnapshot, error)

	NetworkByID(ctx context.Context, tenantID, networkID string) (*structs.NetworkSnapshot, error)
	NetworksByTenant(ctx context.Context, tenantID string) ([]structs.NetworkSnapshot, error)

	TriggerByID(ctx context.Context, tenantID, triggerID string) (*structs.TriggerSnapshot, error)
	TriggersByTenant(ctx context.Context, tenantID string) ([]structs.TriggerSnapshot, error)
	TriggersBySlugs(ctx context.Context, tenantID string, slugs []string) ([]structs.TriggerSnapshot, error)
}
