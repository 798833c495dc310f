package denormalize

import (
	"encoding/json"

	"github.com/blip0/confcache/pkg/common/structs"
)

// Documents are the flat JSON shapes the execution engine consumes
// straight out of the cache, with no further lookups. Optional scalars
// are pointers without omitempty so absent values serialize as explicit
// nulls and the consumer's parser sees a stable field set. The lone
// exceptions are email_config/webhook_config, which are omitted entirely
// when a trigger has no config row.

// MonitorDocument is a monitor with its triggers fully inlined.
type MonitorDocument struct {
	ID               string          `json:"id"`
	TenantID         string          `json:"tenant_id"`
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

	// Triggers holds denormalized trigger documents, never bare slugs.
	Triggers []TriggerDocument `json:"triggers"`

	CreatedAt       *string `json:"created_at"`
	UpdatedAt       *string `json:"updated_at"`
	LastValidatedAt *string `json:"last_validated_at"`
}

// NetworkDocument is a self-contained network configuration.
type NetworkDocument struct {
	ID                 string          `json:"id"`
	TenantID           string          `json:"tenant_id"`
	Name               string          `json:"name"`
	Slug               string          `json:"slug"`
	Description        *string         `json:"description"`
	NetworkType        string          `json:"network_type"`
	ChainID            *int64          `json:"chain_id"`
	NetworkPassphrase  *string         `json:"network_passphrase"`
	RPCUrls            json.RawMessage `json:"rpc_urls"`
	BlockTimeMs        int             `json:"block_time_ms"`
	ConfirmationBlocks int             `json:"confirmation_blocks"`
	CronSchedule       string          `json:"cron_schedule"`
	MaxPastBlocks      int             `json:"max_past_blocks"`
	StoreBlocks        bool            `json:"store_blocks"`
	Active             bool            `json:"active"`
	Validated          bool            `json:"validated"`
	ValidationErrors   json.RawMessage `json:"validation_errors"`

	CreatedAt       *string `json:"created_at"`
	UpdatedAt       *string `json:"updated_at"`
	LastValidatedAt *string `json:"last_validated_at"`
}

// TriggerDocument is a trigger with its type-specific config inlined.
type TriggerDocument struct {
	ID               string          `json:"id"`
	TenantID         string          `json:"tenant_id"`
	Name             string          `json:"name"`
	Slug             string          `json:"slug"`
	Description      *string         `json:"description"`
	TriggerType      string          `json:"trigger_type"`
	Active           bool            `json:"active"`
	Validated        bool            `json:"validated"`
	ValidationErrors json.RawMessage `json:"validation_errors"`

	EmailConfig   *structs.EmailTriggerConfig   `json:"email_config,omitempty"`
	WebhookConfig *structs.WebhookTriggerConfig `json:"webhook_config,omitempty"`

	CreatedAt       *string `json:"created_at"`
	UpdatedAt       *string `json:"updated_at"`
	LastValidatedAt *string `json:"last_validated_at"`
}
