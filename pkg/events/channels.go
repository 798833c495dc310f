package events

import "fmt"

// Channel names are a wire contract with deployed consumers; the
// per-resource channels remain for consumers that are not yet
// tenant-aware.
const (
	ChannelConfigUpdate   = "blip0:config:update"
	ChannelMonitorUpdate  = "blip0:monitor:update"
	ChannelNetworkUpdate  = "blip0:network:update"
	ChannelTriggerUpdate  = "blip0:trigger:update"
	ChannelPlatformUpdate = "blip0:platform:update"

	tenantChannelFormat = "blip0:tenant:%s:update"
)

// TenantChannel returns the tenant-specific update channel.
func TenantChannel(tenantID string) string {
	return fmt.Sprintf(tenantChannelFormat, tenantID)
}

// ChannelFor resolves the channel an event routes to:
//  1. platform events go to the platform-wide channel
//  2. events with a tenant id go to that tenant's channel
//  3. everything else falls back to the resource-type channel, or the
//     generic config channel when no such channel exists
func ChannelFor(resourceType ResourceType, tenantID string) string {
	if resourceType == ResourcePlatform {
		return ChannelPlatformUpdate
	}
	if tenantID != "" {
		return TenantChannel(tenantID)
	}
	switch resourceType {
	case ResourceMonitor:
		return ChannelMonitorUpdate
	case ResourceNetwork:
		return ChannelNetworkUpdate
	case ResourceTrigger:
		return ChannelTriggerUpdate
	default:
		return ChannelConfigUpdate
	}
}
