package structs

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// MonitorSnapshot is the canonical monitor row as read back after a
// committed database mutation. Callers build one of these (plus the
// related trigger snapshots) before invoking the cache store; the cache
// layer never touches the database itself.
//
// Addresses, match specs and trigger conditions are opaque JSON carried
// through from the relational JSONB columns unchanged.
type MonitorSnapshot struct {
	ID               uuid.UUID       `json:"id"`
	TenantID         uuid.UUID       `json:"tenant_id"`
	Name             string          `json:"name"`
	Slug             string          `json:"slug"`
	Description      *string         `json:"description"`
	Active           bool            `json:"active"`
	Paused           bool            `json:"paused"`
	Validated        bool            `json:"validated"`
	ValidationErrors json.RawMessage `json:"validation_errors"`

	Networks          []string        `json:"networks"`
	Addresses         json.RawMessage `json:"addresses"`
	MatchFunctions    json.RawMessage `json:"match_functions"`
	MatchEvents       json.RawMessage `json:"match_events"`
	MatchTransactions json.RawMessage `json:"match_transactions"`
	TriggerConditions json.RawMessage `json:"trigger_conditions"`

	// Triggers holds the slugs of the triggers attached to this monitor.
	// The resolved rows travel separately as TriggerSnapshots.
	Triggers []string `json:"triggers"`

	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	LastValidatedAt *time.Time `json:"last_validated_at"`
}
