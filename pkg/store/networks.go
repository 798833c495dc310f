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

// NetworkStore implements NetworkStoreInterface.
type NetworkStore struct {
	cache     cache.Cache
	publisher *events.Publisher
}

func newNetworkStore(c cache.Cache, pub *events.Publisher) *NetworkStore {
	return &NetworkStore{cache: c, publisher: pub}
}

// Cache writes the denormalized network document and publishes an
// update event.
func (ns *NetworkStore) Cache(ctx context.Context, n *structs.NetworkSnapshot) bool {
	tenantID := n.TenantID.String()
	networkID := n.ID.String()
	log := logger.Logger(ctx).WithFields(logrus.Fields{
		"tenant_id":  tenantID,
		"network_id": networkID,
	})

	payload, err := json.Marshal(denormalize.Network(n))
	if err != nil {
		log.WithError(err).WithField("failure", cache.KindOf(err)).
			Error("error serializing network document")
		return false
	}

	cctx, cancel := opContext(ctx)
	defer cancel()
	if err := ns.cache.Set(cctx, NetworkKey(tenantID, networkID), string(payload), NetworkTTL); err != nil {
		log.WithError(err).WithField("failure", cache.KindOf(err)).
			Error("error caching network")
		return false
	}

	ev := events.New(events.EventUpdate, events.ResourceNetwork, networkID, tenantID,
		map[string]interface{}{
			"name":         n.Name,
			"slug":         n.Slug,
			"network_type": n.NetworkType,
			"chain_id":     n.ChainID,
			"active":       n.Active,
			"validated":    n.Validated,
		})
	if _, err := ns.publisher.Publish(cctx, ev); err != nil {
		log.WithError(err).WithField("failure", cache.KindOf(err)).
			Warn("error publishing network event")
	}

	log.Info("cached network")
	return true
}

// Get returns the cached network document, or (nil, false) on a miss.
func (ns *NetworkStore) Get(ctx context.Context, tenantID, networkID string) (*denormalize.NetworkDocument, bool) {
	log := logger.Logger(ctx).WithFields(logrus.Fields{
		"tenant_id":  tenantID,
		"network_id": networkID,
	})

	cctx, cancel := opContext(ctx)
	defer cancel()

	raw, err := ns.cache.Get(cctx, NetworkKey(tenantID, networkID))
	if err != nil {
		if !errors.Is(err, cache.ErrKeyNotFound) {
			log.WithError(err).WithField("failure", cache.KindOf(err)).
				Warn("error reading network from cache")
		}
		return nil, false
	}

	var doc denormalize.NetworkDocument
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		log.WithError(err).WithField("failure", cache.KindOf(err)).
			Error("error decoding cached network document")
		return nil, false
	}
	return &doc, true
}

// Delete removes the network document. Returns false when the key was
// already gone.
func (ns *NetworkStore) Delete(ctx context.Context, tenantID, networkID string) bool {
	log := logger.Logger(ctx).WithFields(logrus.Fields{
		"tenant_id":  tenantID,
		"network_id": networkID,
	})

	cctx, cancel := opContext(ctx)
	defer cancel()

	deleted, err := ns.cache.Delete(cctx, NetworkKey(tenantID, networkID))
	if err != nil {
		log.WithError(err).WithField("failure", cache.KindOf(err)).
			Error("error deleting network from cache")
		return false
	}
	if deleted == 0 {
		log.Debug("network already absent from cache")
		return false
	}

	ev := events.New(events.EventDelete, events.ResourceNetwork, networkID, tenantID, nil)
	if _, err := ns.publisher.Publish(cctx, ev); err != nil {
		log.WithError(err).WithField("failure", cache.KindOf(err)).
			Warn("error publishing network event")
	}

	log.Info("deleted network from cache")
	return true
}
