// Package denormalize flattens relational snapshots into self-contained
// cache documents. Functions here are pure: no I/O, deterministic for
// the same inputs. Related rows are batch-fetched by the caller before
// denormalization.
package denormalize

import (
	"time"

	"github.com/blip0/confcache/pkg/common/structs"
)

// formatTime normalizes a timestamp to RFC 3339 UTC, the single textual
// format every cached document uses.
func formatTime(t time.Time) *string {
	s := t.UTC().Format(time.RFC3339)
	return &s
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

// Monitor flattens a monitor snapshot and its resolved trigger rows into
// one document. Triggers are inlined in the monitor's slug order; a slug
// with no matching snapshot is silently omitted so the rest of the
// monitor still caches.
func Monitor(m *structs.MonitorSnapshot, triggers []structs.TriggerSnapshot) *MonitorDocument {
	bySlug := make(map[string]*structs.TriggerSnapshot, len(triggers))
	for i := range triggers {
		bySlug[triggers[i].Slug] = &triggers[i]
	}

	docs := make([]TriggerDocument, 0, len(m.Triggers))
	for _, slug := range m.Triggers {
		snap, found := bySlug[slug]
		if !found {
			continue
		}
		docs = append(docs, *Trigger(snap))
	}

	return &MonitorDocument{
		ID:               m.ID.String(),
		TenantID:         m.TenantID.String(),
		Name:             m.Name,
		Slug:             m.Slug,
		Description:      m.Description,
		Active:           m.Active,
		Paused:           m.Paused,
		Validated:        m.Validated,
		ValidationErrors: m.ValidationErrors,

		Networks:          m.Networks,
		Addresses:         m.Addresses,
		MatchFunctions:    m.MatchFunctions,
		MatchEvents:       m.MatchEvents,
		MatchTransactions: m.MatchTransactions,
		TriggerConditions: m.TriggerConditions,

		Triggers: docs,

		CreatedAt:       formatTime(m.CreatedAt),
		UpdatedAt:       formatTime(m.UpdatedAt),
		LastValidatedAt: formatTimePtr(m.LastValidatedAt),
	}
}

// Network flattens a network snapshot into a document.
func Network(n *structs.NetworkSnapshot) *NetworkDocument {
	return &NetworkDocument{
		ID:                 n.ID.String(),
		TenantID:           n.TenantID.String(),
		Name:               n.Name,
		Slug:               n.Slug,
		Description:        n.Description,
		NetworkType:        n.NetworkType,
		ChainID:            n.ChainID,
		NetworkPassphrase:  n.NetworkPassphrase,
		RPCUrls:            n.RPCUrls,
		BlockTimeMs:        n.BlockTimeMs,
		ConfirmationBlocks: n.ConfirmationBlocks,
		CronSchedule:       n.CronSchedule,
		MaxPastBlocks:      n.MaxPastBlocks,
		StoreBlocks:        n.StoreBlocks,
		Active:             n.Active,
		Validated:          n.Validated,
		ValidationErrors:   n.ValidationErrors,

		CreatedAt:       formatTime(n.CreatedAt),
		UpdatedAt:       formatTime(n.UpdatedAt),
		LastValidatedAt: formatTimePtr(n.LastValidatedAt),
	}
}

// Trigger flattens a trigger snapshot, inlining whichever type-specific
// config is present. The config sub-object matches the trigger_type; a
// mismatched config is dropped rather than cached.
func Trigger(t *structs.TriggerSnapshot) *TriggerDocument {
	doc := &TriggerDocument{
		ID:               t.ID.String(),
		TenantID:         t.TenantID.String(),
		Name:             t.Name,
		Slug:             t.Slug,
		Description:      t.Description,
		TriggerType:      t.TriggerType,
		Active:           t.Active,
		Validated:        t.Validated,
		ValidationErrors: t.ValidationErrors,

		CreatedAt:       formatTime(t.CreatedAt),
		UpdatedAt:       formatTime(t.UpdatedAt),
		LastValidatedAt: formatTimePtr(t.LastValidatedAt),
	}

	switch t.TriggerType {
	case structs.TriggerTypeEmail:
		doc.EmailConfig = t.EmailConfig
	case structs.TriggerTypeWebhook:
		doc.WebhookConfig = t.WebhookConfig
	}

	return doc
}
