// Package events defines the change-notification protocol between the
// control plane and downstream configuration consumers: the event wire
// shape, the channel layout, a publisher, and a subscription consumer.
package events

import "time"

// EventType enumerates cache change events.
type EventType string

const (
	EventCreate     EventType = "create"
	EventUpdate     EventType = "update"
	EventDelete     EventType = "delete"
	EventInvalidate EventType = "invalidate"
)

// ResourceType enumerates the resources events refer to.
type ResourceType string

const (
	ResourceMonitor  ResourceType = "monitor"
	ResourceNetwork  ResourceType = "network"
	ResourceTrigger  ResourceType = "trigger"
	ResourceTenant   ResourceType = "tenant"
	ResourcePlatform ResourceType = "platform"
)

// Event is the published change record. The field set is the wire
// contract with downstream consumers; events are published exactly once
// at the moment a cache write or delete succeeds and never persisted.
type Event struct {
	EventType    EventType              `json:"event_type"`
	ResourceType ResourceType           `json:"resource_type"`
	ResourceID   string                 `json:"resource_id"`
	TenantID     string                 `json:"tenant_id,omitempty"`
	Timestamp    string                 `json:"timestamp"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}

// New builds an event stamped with the current UTC time. Metadata should
// be a small summary of the change (name, slug, flags), never the full
// cached payload.
func New(eventType EventType, resourceType ResourceType, resourceID, tenantID string,
	metadata map[string]interface{}) Event {
	return Event{
		EventType:    eventType,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		TenantID:     tenantID,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		Metadata:     metadata,
	}
}
