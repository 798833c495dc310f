package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/blip0/confcache/pkg/cache"
	"github.com/blip0/confcache/pkg/common/structs"
	"github.com/blip0/confcache/pkg/denormalize"
	"github.com/blip0/confcache/pkg/events"
	"github.com/blip0/confcache/pkg/logger"
)

// TriggerStore implements TriggerStoreInterface.
type TriggerStore struct {
	cache     cache.Cache
	publisher *events.Publisher
}

func newTriggerStore(c cache.Cache, pub *events.Publisher) *TriggerStore {
	return &TriggerStore{cache: c, publisher: pub}
}

// Cache writes the denormalized trigger document, its type-specific
// config inlined, and publishes an update event. Credential values in
// the config are references, never resolved secrets.
func (ts *TriggerStore) Cache(ctx context.Context, t *structs.TriggerSnapshot) bool {
	tenantID := t.TenantID.String()
	triggerID := t.ID.String()
	log := logger.Logger(ctx).WithFields(logrus.Fields{
		"tenant_id":  tenantID,
		"trigger_id": triggerID,
	})

	payload, err := json.Marshal(denormalize.Trigger(t))
	if err != nil {
		log.WithError(err).WithField("failure", cache.KindOf(err)).
			Error("error serializing trigger document")
		return false
	}

	cctx, cancel := opContext(ctx)
	defer cancel()
	if err := ts.cache.Set(cctx, TriggerKey(tenantID, triggerID), string(payload), TriggerTTL); err != nil {
		log.WithError(err).WithField("failure", cache.KindOf(err)).
			Error("error caching trigger")
		return false
	}

	ev := events.New(events.EventUpdate, events.ResourceTrigger, triggerID, tenantID,
		map[string]interface{}{
			"name":         t.Name,
			"slug":         t.Slug,
			"trigger_type": t.TriggerType,
			"active":       t.Active,
			"validated":    t.Validated,
		})
	if _, err := ts.publisher.Publish(cctx, ev); err != nil {
		log.WithError(err).WithField("failure", cache.KindOf(err)).
			Warn("error publishing trigger event")
	}

	log.Info("cached trigger")
	return true
}

// Get returns the cached trigger document, or (nil, false) on a miss.
func (ts *TriggerStore) Get(ctx context.Context, tenantID, triggerID string) (*denormalize.TriggerDocument, bool) {
	log := logger.Logger(ctx).WithFields(logrus.Fields{
		"tenant_id":  tenantID,
		"trigger_id": triggerID,
	})

	cctx, cancel := opContext(ctx)
	defer cancel()

	raw, err := ts.cache.Get(cctx, TriggerKey(tenantID, triggerID))
	if err != nil {
		if !errors.Is(err, cache.ErrKeyNotFound) {
			log.WithError(err).WithField("failure", cache.KindOf(err)).
				Warn("error reading trigger from cache")
		}
		return nil, false
	}

	var doc denormalize.TriggerDocument
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		log.WithError(err).WithField("failure", cache.KindOf(err)).
			Error("error decoding cached trigger document")
		return nil, false
	}
	return &doc, true
}

// Delete removes the trigger document. Returns false when the key was
// already gone.
func (ts *TriggerStore) Delete(ctx context.Context, tenantID, triggerID string) bool {
	log := logger.Logger(ctx).WithFields(logrus.Fields{
		"tenant_id":  tenantID,
		"trigger_id": triggerID,
	})

	cctx, cancel := opContext(ctx)
	defer cancel()

	deleted, err := ts.cache.Delete(cctx, TriggerKey(tenantID, triggerID))
	if err != nil {
		log.WithError(err).WithField("failure", cache.KindOf(err)).
			Error("error deleting trigger from cache")
		return false
	}
	if deleted == 0 {
		log.Debug("trigger already absent from cache")
		return false
	}

	ev := events.New(events.EventDelete, events.ResourceTrigger, triggerID, tenantID, nil)
	if _, err := ts.publisher.Publish(cctx, ev); err != nil {
		log.WithError(err).WithField("failure", cache.KindOf(err)).
			Warn("error publishing trigger event")
	}

	log.Info("deleted trigger from cache")
	return true
}
