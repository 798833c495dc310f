package store

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/blip0/confcache/pkg/cache"
	"github.com/blip0/confcache/pkg/events"
	"github.com/blip0/confcache/pkg/logger"
)

// TenantStore implements TenantStoreInterface.
type TenantStore struct {
	cache     cache.Cache
	publisher *events.Publisher
	source    Source

	monitors MonitorStoreInterface
	networks NetworkStoreInterface
	triggers TriggerStoreInterface
}

func newTenantStore(c cache.Cache, pub *events.Publisher, src Source,
	monitors MonitorStoreInterface, networks NetworkStoreInterface,
	triggers TriggerStoreInterface) *TenantStore {
	return &TenantStore{
		cache:     c,
		publisher: pub,
		source:    src,
		monitors:  monitors,
		networks:  networks,
		triggers:  triggers,
	}
}

// Invalidate deletes every key under the tenant's prefix and publishes
// one invalidate event carrying the deleted count. The count is the
// number of keys that existed immediately before the call.
func (ts *TenantStore) Invalidate(ctx context.Context, tenantID string) int64 {
	log := logger.Logger(ctx).WithField("tenant_id", tenantID)

	cctx, cancel := opContext(ctx)
	defer cancel()

	deleted, err := ts.cache.DeletePattern(cctx, TenantPattern(tenantID))
	if err != nil {
		log.WithError(err).WithField("failure", cache.KindOf(err)).
			Error("error invalidating tenant cache")
		return deleted
	}

	if deleted > 0 {
		ev := events.New(events.EventInvalidate, events.ResourceTenant, tenantID, tenantID,
			map[string]interface{}{
				"entries_deleted": deleted,
				"action":          "invalidate_all",
			})
		if _, err := ts.publisher.Publish(cctx, ev); err != nil {
			log.WithError(err).WithField("failure", cache.KindOf(err)).
				Warn("error publishing invalidate event")
		}
		log.WithField("entries_deleted", deleted).Info("invalidated tenant cache")
	}

	return deleted
}

// Keys lists every cache key the tenant currently owns.
func (ts *TenantStore) Keys(ctx context.Context, tenantID string) []string {
	cctx, cancel := opContext(ctx)
	defer cancel()

	keys, err := ts.cache.KeysPattern(cctx, TenantPattern(tenantID))
	if err != nil {
		logger.Logger(ctx).WithError(err).WithFields(logrus.Fields{
			"tenant_id": tenantID,
			"failure":   cache.KindOf(err),
		}).Warn("error listing tenant cache keys")
		return []string{}
	}
	return keys
}

// WarmMonitors caches every monitor of a tenant, best effort: a row that
// fails to cache does not abort the remaining rows. Trigger rows are
// resolved per monitor in one batched query.
func (ts *TenantStore) WarmMonitors(ctx context.Context, tenantID string) int {
	log := logger.Logger(ctx).WithField("tenant_id", tenantID)
	if ts.source == nil {
		log.Warn("no relational source configured, skipping monitor warm")
		return 0
	}

	monitors, err := ts.source.MonitorsByTenant(ctx, tenantID)
	if err != nil {
		log.WithError(err).Error("error fetching tenant monitors from source")
		return 0
	}

	cached := 0
	for i := range monitors {
		m := &monitors[i]
		triggers, err := ts.source.TriggersBySlugs(ctx, tenantID, m.Triggers)
		if err != nil {
			log.WithError(err).WithField("monitor_id", m.ID.String()).
				Warn("error resolving monitor triggers, skipping monitor")
			continue
		}
		if ts.monitors.Cache(ctx, m, triggers) {
			cached++
		}
	}

	log.WithField("cached", cached).Info("warmed tenant monitors")
	return cached
}

// WarmNetworks caches every network of a tenant, best effort.
func (ts *TenantStore) WarmNetworks(ctx context.Context, tenantID string) int {
	log := logger.Logger(ctx).WithField("tenant_id", tenantID)
	if ts.source == nil {
		log.Warn("no relational source configured, skipping network warm")
		return 0
	}

	networks, err := ts.source.NetworksByTenant(ctx, tenantID)
	if err != nil {
		log.WithError(err).Error("error fetching tenant networks from source")
		return 0
	}

	cached := 0
	for i := range networks {
		if ts.networks.Cache(ctx, &networks[i]) {
			cached++
		}
	}

	log.WithField("cached", cached).Info("warmed tenant networks")
	return cached
}

// WarmTriggers caches every trigger of a tenant, best effort.
func (ts *TenantStore) WarmTriggers(ctx context.Context, tenantID string) int {
	log := logger.Logger(ctx).WithField("tenant_id", tenantID)
	if ts.source == nil {
		log.Warn("no relational source configured, skipping trigger warm")
		return 0
	}

	triggers, err := ts.source.TriggersByTenant(ctx, tenantID)
	if err != nil {
		log.WithError(err).Error("error fetching tenant triggers from source")
		return 0
	}

	cached := 0
	for i := range triggers {
		if ts.triggers.Cache(ctx, &triggers[i]) {
			cached++
		}
	}

	log.WithField("cached", cached).Info("warmed tenant triggers")
	return cached
}
