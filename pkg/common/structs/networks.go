package structs

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// NetworkSnapshot is the canonical network row handed to the cache layer
// after a committed database mutation.
type NetworkSnapshot struct {
	ID                 uuid.UUID       `json:"id"`
	TenantID           uuid.UUID       `json:"tenant_id"`
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

	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	LastValidatedAt *time.Time `json:"last_validated_at"`
}
