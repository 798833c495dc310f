package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/blip0/confcache/pkg/cache"
	"github.com/blip0/confcache/pkg/common/structs"
	"github.com/blip0/confcache/pkg/denormalize"
	"github.com/blip0/confcache/pkg/events"
	"github.com/blip0/confcache/pkg/logger"
)

// MonitorStore implements MonitorStoreInterface.
type MonitorStore struct {
	cache     cache.Cache
	publisher *events.Publisher
	source    Source
	loads     singleflight.Group
}

func newMonitorStore(c cache.Cache, pub *events.Publisher, src Source) *MonitorStore {
	return &MonitorStore{cache: c, publisher: pub, source: src}
}

// Cache writes the denormalized monitor document and reconciles the
// tenant's active-monitor index. The document write is authoritative for
// the return value; index and event failures are logged and swallowed.
func (ms *MonitorStore) Cache(ctx context.Context, m *structs.MonitorSnapshot,
	triggers []structs.TriggerSnapshot) bool {

	tenantID := m.TenantID.String()
	monitorID := m.ID.String()
	log := logger.Logger(ctx).WithFields(logrus.Fields{
		"tenant_id":  tenantID,
		"monitor_id": monitorID,
	})

	doc := denormalize.Monitor(m, triggers)
	if len(doc.Triggers) < len(m.Triggers) {
		log.WithFields(logrus.Fields{
			"requested": len(m.Triggers),
			"resolved":  len(doc.Triggers),
		}).Debug("monitor references trigger slugs with no resolvable row, omitting them")
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		log.WithError(err).WithField("failure", cache.KindOf(err)).
			Error("error serializing monitor document")
		return false
	}

	cctx, cancel := opContext(ctx)
	defer cancel()
	if err := ms.cache.Set(cctx, MonitorKey(tenantID, monitorID), string(payload), MonitorTTL); err != nil {
		log.WithError(err).WithField("failure", cache.KindOf(err)).
			Error("error caching monitor")
		return false
	}

	ms.reconcileActiveSet(ctx, log, tenantID, monitorID, m.Active && !m.Paused)

	ev := events.New(events.EventUpdate, events.ResourceMonitor, monitorID, tenantID,
		map[string]interface{}{
			"active":    m.Active,
			"paused":    m.Paused,
			"validated": m.Validated,
			"name":      m.Name,
			"slug":      m.Slug,
		})
	ms.publish(ctx, log, ev)

	log.Info("cached monitor")
	return true
}

// reconcileActiveSet keeps the derived index in line with the monitor's
// flags. The index TTL is re-asserted on every add so the set self-heals
// to empty within ActiveSetTTL if updates are ever missed.
func (ms *MonitorStore) reconcileActiveSet(ctx context.Context, log *logrus.Entry,
	tenantID, monitorID string, active bool) {

	cctx, cancel := opContext(ctx)
	defer cancel()

	key := ActiveMonitorsKey(tenantID)
	if active {
		if err := ms.cache.SAdd(cctx, key, monitorID); err != nil {
			log.WithError(err).WithField("failure", cache.KindOf(err)).
				Warn("error adding monitor to active set")
			return
		}
		if err := ms.cache.Expire(cctx, key, ActiveSetTTL); err != nil {
			log.WithError(err).WithField("failure", cache.KindOf(err)).
				Warn("error refreshing active set ttl")
		}
		return
	}

	if err := ms.cache.SRem(cctx, key, monitorID); err != nil {
		log.WithError(err).WithField("failure", cache.KindOf(err)).
			Warn("error removing monitor from active set")
	}
}

func (ms *MonitorStore) publish(ctx context.Context, log *logrus.Entry, ev events.Event) {
	cctx, cancel := opContext(ctx)
	defer cancel()
	if _, err := ms.publisher.Publish(cctx, ev); err != nil {
		log.WithError(err).WithField("failure", cache.KindOf(err)).
			Warn("error publishing monitor event")
	}
}

// Get returns the cached monitor document, or (nil, false) on a miss.
func (ms *MonitorStore) Get(ctx context.Context, tenantID, monitorID string) (*denormalize.MonitorDocument, bool) {
	log := logger.Logger(ctx).WithFields(logrus.Fields{
		"tenant_id":  tenantID,
		"monitor_id": monitorID,
	})

	cctx, cancel := opContext(ctx)
	defer cancel()

	raw, err := ms.cache.Get(cctx, MonitorKey(tenantID, monitorID))
	if err != nil {
		if !errors.Is(err, cache.ErrKeyNotFound) {
			log.WithError(err).WithField("failure", cache.KindOf(err)).
				Warn("error reading monitor from cache")
		}
		return nil, false
	}

	var doc denormalize.MonitorDocument
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		log.WithError(err).WithField("failure", cache.KindOf(err)).
			Error("error decoding cached monitor document")
		return nil, false
	}
	return &doc, true
}

// GetOrLoad is the cache-aside read: a miss falls back to the relational
// source, repopulates the cache and returns the fresh document.
// Concurrent misses for the same key share a single source load.
func (ms *MonitorStore) GetOrLoad(ctx context.Context, tenantID, monitorID string) (*denormalize.MonitorDocument, bool) {
	if doc, ok := ms.Get(ctx, tenantID, monitorID); ok {
		return doc, true
	}
	if ms.source == nil {
		return nil, false
	}

	log := logger.Logger(ctx).WithFields(logrus.Fields{
		"tenant_id":  tenantID,
		"monitor_id": monitorID,
	})

	v, err, _ := ms.loads.Do(MonitorKey(tenantID, monitorID), func() (interface{}, error) {
		m, err := ms.source.MonitorByID(ctx, tenantID, monitorID)
		if err != nil || m == nil {
			return nil, err
		}

		var triggers []structs.TriggerSnapshot
		if len(m.Triggers) > 0 {
			triggers, err = ms.source.TriggersBySlugs(ctx, tenantID, m.Triggers)
			if err != nil {
				return nil, err
			}
		}

		// Best-effort repopulation; the loaded document is returned
		// even if the write-back fails.
		ms.Cache(ctx, m, triggers)
		return denormalize.Monitor(m, triggers), nil
	})
	if err != nil {
		log.WithError(err).Warn("error loading monitor from source")
		return nil, false
	}
	if v == nil {
		return nil, false
	}
	return v.(*denormalize.MonitorDocument), true
}

// Delete removes the monitor document and its active-set membership.
// Returns false when the key was already gone; no event is published for
// a no-op delete.
func (ms *MonitorStore) Delete(ctx context.Context, tenantID, monitorID string) bool {
	log := logger.Logger(ctx).WithFields(logrus.Fields{
		"tenant_id":  tenantID,
		"monitor_id": monitorID,
	})

	cctx, cancel := opContext(ctx)
	defer cancel()

	deleted, err := ms.cache.Delete(cctx, MonitorKey(tenantID, monitorID))
	if err != nil {
		log.WithError(err).WithField("failure", cache.KindOf(err)).
			Error("error deleting monitor from cache")
		return false
	}
	if deleted == 0 {
		log.Debug("monitor already absent from cache")
		return false
	}

	if err := ms.cache.SRem(cctx, ActiveMonitorsKey(tenantID), monitorID); err != nil {
		log.WithError(err).WithField("failure", cache.KindOf(err)).
			Warn("error removing monitor from active set")
	}

	ms.publish(ctx, log, events.New(events.EventDelete, events.ResourceMonitor, monitorID, tenantID, nil))

	log.Info("deleted monitor from cache")
	return true
}

// Active returns the tenant's active-monitor ids. Empty is ambiguous
// between "none active" and "index expired"; see
// MonitorStoreInterface.Active.
func (ms *MonitorStore) Active(ctx context.Context, tenantID string) []string {
	cctx, cancel := opContext(ctx)
	defer cancel()

	members, err := ms.cache.SMembers(cctx, ActiveMonitorsKey(tenantID))
	if err != nil {
		logger.Logger(ctx).WithError(err).WithFields(logrus.Fields{
			"tenant_id": tenantID,
			"failure":   cache.KindOf(err),
		}).Warn("error reading active monitor set")
		return []string{}
	}
	return members
}
