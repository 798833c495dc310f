package structs

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Trigger types understood by the execution engine.
const (
	TriggerTypeEmail   = "email"
	TriggerTypeWebhook = "webhook"
)

// Credential reference type tags. Cached documents carry references,
// never resolved secrets; resolution happens in the execution engine.
const (
	CredentialPlain       = "plain"
	CredentialEnvironment = "environment"
	CredentialVault       = "vault"
)

// TriggerSnapshot is the canonical trigger row plus its type-specific
// config row, handed to the cache layer as one unit. Exactly one of
// EmailConfig/WebhookConfig is set for a valid trigger; both may be nil
// when the config row is missing.
type TriggerSnapshot struct {
	ID               uuid.UUID       `json:"id"`
	TenantID         uuid.UUID       `json:"tenant_id"`
	Name             string          `json:"name"`
	Slug             string          `json:"slug"`
	Description      *string         `json:"description"`
	TriggerType      string          `json:"trigger_type"`
	Active           bool            `json:"active"`
	Validated        bool            `json:"validated"`
	ValidationErrors json.RawMessage `json:"validation_errors"`

	EmailConfig   *EmailTriggerConfig   `json:"email_config,omitempty"`
	WebhookConfig *WebhookTriggerConfig `json:"webhook_config,omitempty"`

	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	LastValidatedAt *time.Time `json:"last_validated_at"`
}

// EmailTriggerConfig carries SMTP delivery settings. Username and
// password are credential references (type tag + value).
type EmailTriggerConfig struct {
	Host          string   `json:"host"`
	Port          int      `json:"port"`
	UsernameType  string   `json:"username_type"`
	UsernameValue string   `json:"username_value"`
	PasswordType  string   `json:"password_type"`
	PasswordValue string   `json:"password_value"`
	Sender        string   `json:"sender"`
	Recipients    []string `json:"recipients"`
	MessageTitle  string   `json:"message_title"`
	MessageBody   string   `json:"message_body"`
}

// WebhookTriggerConfig carries webhook delivery settings. URL and secret
// are credential references (type tag + value).
type WebhookTriggerConfig struct {
	URLType      string            `json:"url_type"`
	URLValue     string            `json:"url_value"`
	Method       string            `json:"method"`
	Headers      map[string]string `json:"headers"`
	SecretType   string            `json:"secret_type"`
	SecretValue  string            `json:"secret_value"`
	MessageTitle string            `json:"message_title"`
	MessageBody  string            `json:"message_body"`
}
