package store

import (
	"fmt"
	"time"
)

// Cache TTLs. Entity documents live an hour; the active-monitor index is
// deliberately short-lived so a missed update self-heals to empty
// instead of going permanently stale. The write path re-asserts the
// index TTL on every monitor cache write.
const (
	MonitorTTL   = time.Hour
	NetworkTTL   = time.Hour
	TriggerTTL   = time.Hour
	ActiveSetTTL = 5 * time.Minute
)

// Key formats are a wire contract with the downstream execution engine
// and must not change.

// MonitorKey returns the cache key for a tenant's monitor document.
func MonitorKey(tenantID, monitorID string) string {
	return fmt.Sprintf("tenant:%s:monitor:%s", tenantID, monitorID)
}

// NetworkKey returns the cache key for a tenant's network document.
func NetworkKey(tenantID, networkID string) string {
	return fmt.Sprintf("tenant:%s:network:%s", tenantID, networkID)
}

// TriggerKey returns the cache key for a tenant's trigger document.
func TriggerKey(tenantID, triggerID string) string {
	return fmt.Sprintf("tenant:%s:trigger:%s", tenantID, triggerID)
}

// ActiveMonitorsKey returns the key of a tenant's active-monitor set.
func ActiveMonitorsKey(tenantID string) string {
	return fmt.Sprintf("tenant:%s:monitors:active", tenantID)
}

// TenantPattern returns the glob matching every key a tenant owns.
func TenantPattern(tenantID string) string {
	return fmt.Sprintf("tenant:%s:*", tenantID)
}
