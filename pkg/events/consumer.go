package events

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/blip0/confcache/pkg/cache"
	"github.com/blip0/confcache/pkg/logger"
)

// HandlerFunc processes one decoded change event.
type HandlerFunc func(ctx context.Context, ev Event)

// Consumer subscribes to change-event channels and dispatches decoded
// events to registered handlers. Delivery is at-most-once: events
// published while the consumer is down are lost, which is acceptable
// because the cache self-heals and the relational store stays
// authoritative.
type Consumer struct {
	cache cache.Cache

	mu       sync.RWMutex
	handlers map[string][]HandlerFunc
}

// NewConsumer creates a Consumer on top of the given cache store.
func NewConsumer(c cache.Cache) *Consumer {
	return &Consumer{
		cache:    c,
		handlers: make(map[string][]HandlerFunc),
	}
}

// Handle registers a handler for a channel. Multiple handlers per
// channel are invoked in registration order.
func (c *Consumer) Handle(channel string, h HandlerFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[channel] = append(c.handlers[channel], h)
	logger.Logger(context.Background()).WithField("channel", channel).Info("registered event handler")
}

func (c *Consumer) channels() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	channels := make([]string, 0, len(c.handlers))
	for ch := range c.handlers {
		channels = append(channels, ch)
	}
	return channels
}

// Run subscribes to every channel with a registered handler and
// dispatches messages until the context is cancelled. A message that is
// not a valid event is logged and skipped; handler panics are not
// recovered.
func (c *Consumer) Run(ctx context.Context) error {
	channels := c.channels()
	if len(channels) == 0 {
		logger.Logger(ctx).Warn("event consumer started with no handlers registered")
		<-ctx.Done()
		return ctx.Err()
	}

	sub, err := c.cache.Subscribe(ctx, channels...)
	if err != nil {
		return err
	}
	defer func() { _ = sub.Close() }()

	log := logger.Logger(ctx).WithField("channels", channels)
	log.Info("event consumer running")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-sub.Messages():
			if !ok {
				return nil
			}
			c.dispatch(ctx, msg)
		}
	}
}

func (c *Consumer) dispatch(ctx context.Context, msg cache.Message) {
	var ev Event
	if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
		logger.Logger(ctx).WithError(err).WithField("channel", msg.Channel).
			Warn("discarding undecodable event payload")
		return
	}

	c.mu.RLock()
	handlers := c.handlers[msg.Channel]
	c.mu.RUnlock()

	logger.Logger(ctx).WithFields(logrus.Fields{
		"channel":       msg.Channel,
		"event_type":    ev.EventType,
		"resource_type": ev.ResourceType,
		"resource_id":   ev.ResourceID,
	}).Debug("dispatching event")

	for _, h := range handlers {
		h(ctx, ev)
	}
}
