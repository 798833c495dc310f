package events

import (
	"context"
	"encoding/json"

	"github.com/sirupsen/logrus"

	"github.com/blip0/confcache/pkg/cache"
	"github.com/blip0/confcache/pkg/logger"
)

// Publisher routes change events onto pub/sub channels. Publishing never
// blocks on consumers: success means the store accepted the publish, not
// that anyone processed it.
type Publisher struct {
	cache cache.Cache
}

// NewPublisher creates a Publisher on top of the given cache store.
func NewPublisher(c cache.Cache) *Publisher {
	return &Publisher{cache: c}
}

// Publish sends the event to its channel and returns the number of
// subscribers that received it. Zero subscribers is not an error.
func (p *Publisher) Publish(ctx context.Context, ev Event) (int64, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return 0, err
	}

	channel := ChannelFor(ev.ResourceType, ev.TenantID)
	subscribers, err := p.cache.Publish(ctx, channel, string(payload))
	if err != nil {
		return 0, err
	}

	if subscribers > 0 {
		logger.Logger(ctx).WithFields(logrus.Fields{
			"event_type":    ev.EventType,
			"resource_type": ev.ResourceType,
			"resource_id":   ev.ResourceID,
			"channel":       channel,
			"subscribers":   subscribers,
		}).Debug("published cache event")
	}

	return subscribers, nil
}
