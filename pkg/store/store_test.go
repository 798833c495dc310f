package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blip0/confcache/pkg/cache"
	"github.com/blip0/confcache/pkg/cache/inmemory"
	"github.com/blip0/confcache/pkg/common/structs"
	"github.com/blip0/confcache/pkg/events"
)

func testContext(t *testing.T) context.Context {
	t.Helper()
	return context.Background()
}

var (
	tenantA = uuid.MustParse("3b241101-e2bb-4255-8caf-4136c566a962")
	tenantB = uuid.MustParse("9f8b1c2d-0a3e-4f5b-8c7d-6e5f4a3b2c1d")
)

func newTestCacheStore(t *testing.T) cache.Cache {
	t.Helper()
	c, err := inmemory.NewCache(&inmemory.Config{
		DefaultExpiration: 300,
		CleanupInterval:   600,
	})
	require.NoError(t, err)
	return c
}

func newTestStore(t *testing.T, src Source) (*Store, cache.Cache) {
	t.Helper()
	c := newTestCacheStore(t)
	return New(c, events.NewPublisher(c), src), c
}

func testMonitor(tenantID uuid.UUID) *structs.MonitorSnapshot {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return &structs.MonitorSnapshot{
		ID:                uuid.New(),
		TenantID:          tenantID,
		Name:              "Large Transfers",
		Slug:              "large-transfers",
		Active:            true,
		Validated:         true,
		Networks:          []string{"ethereum-mainnet"},
		Addresses:         json.RawMessage(`[{"address":"0xabc"}]`),
		MatchFunctions:    json.RawMessage(`[]`),
		MatchEvents:       json.RawMessage(`[]`),
		MatchTransactions: json.RawMessage(`[]`),
		TriggerConditions: json.RawMessage(`[]`),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

func testNetwork(tenantID uuid.UUID) *structs.NetworkSnapshot {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	chainID := int64(1)
	return &structs.NetworkSnapshot{
		ID:                 uuid.New(),
		TenantID:           tenantID,
		Name:               "Ethereum Mainnet",
		Slug:               "ethereum-mainnet",
		NetworkType:        "evm",
		ChainID:            &chainID,
		RPCUrls:            json.RawMessage(`[{"url":"https://rpc.example.com"}]`),
		BlockTimeMs:        12000,
		ConfirmationBlocks: 12,
		CronSchedule:       "*/15 * * * * *",
		MaxPastBlocks:      50,
		Active:             true,
		Validated:          true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

func testTrigger(tenantID uuid.UUID, slug string) *structs.TriggerSnapshot {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return &structs.TriggerSnapshot{
		ID:          uuid.New(),
		TenantID:    tenantID,
		Name:        "Ops Email",
		Slug:        slug,
		TriggerType: structs.TriggerTypeEmail,
		Active:      true,
		Validated:   true,
		EmailConfig: &structs.EmailTriggerConfig{
			Host:          "smtp.example.com",
			Port:          587,
			UsernameType:  structs.CredentialPlain,
			UsernameValue: "alerts",
			PasswordType:  structs.CredentialVault,
			PasswordValue: "secret/smtp#password",
			Sender:        "alerts@example.com",
			Recipients:    []string{"ops@example.com"},
			MessageTitle:  "Alert",
			MessageBody:   "A monitor matched",
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// fakeSource is an in-memory Source for cache-aside and warm tests.
type fakeSource struct {
	monitors map[string]*structs.MonitorSnapshot
	networks map[string]*structs.NetworkSnapshot
	triggers map[string]*structs.TriggerSnapshot

	// failTriggerSlugs makes TriggersBySlugs fail when asked for any of
	// these slugs, to exercise mid-warm failure handling.
	failTriggerSlugs map[string]bool

	monitorLoads int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		monitors:         make(map[string]*structs.MonitorSnapshot),
		networks:         make(map[string]*structs.NetworkSnapshot),
		triggers:         make(map[string]*structs.TriggerSnapshot),
		failTriggerSlugs: make(map[string]bool),
	}
}

func (f *fakeSource) addMonitor(m *structs.MonitorSnapshot)  { f.monitors[m.ID.String()] = m }
func (f *fakeSource) addNetwork(n *structs.NetworkSnapshot)  { f.networks[n.ID.String()] = n }
func (f *fakeSource) addTrigger(tr *structs.TriggerSnapshot) { f.triggers[tr.ID.String()] = tr }

func (f *fakeSource) MonitorByID(_ context.Context, tenantID, monitorID string) (*structs.MonitorSnapshot, error) {
	f.monitorLoads++
	m, found := f.monitors[monitorID]
	if !found || m.TenantID.String() != tenantID {
		return nil, nil
	}
	return m, nil
}

func (f *fakeSource) MonitorsByTenant(_ context.Context, tenantID string) ([]structs.MonitorSnapshot, error) {
	var out []structs.MonitorSnapshot
	for _, m := range f.monitors {
		if m.TenantID.String() == tenantID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeSource) NetworkByID(_ context.Context, tenantID, networkID string) (*structs.NetworkSnapshot, error) {
	n, found := f.networks[networkID]
	if !found || n.TenantID.String() != tenantID {
		return nil, nil
	}
	return n, nil
}

func (f *fakeSource) NetworksByTenant(_ context.Context, tenantID string) ([]structs.NetworkSnapshot, error) {
	var out []structs.NetworkSnapshot
	for _, n := range f.networks {
		if n.TenantID.String() == tenantID {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (f *fakeSource) TriggerByID(_ context.Context, tenantID, triggerID string) (*structs.TriggerSnapshot, error) {
	tr, found := f.triggers[triggerID]
	if !found || tr.TenantID.String() != tenantID {
		return nil, nil
	}
	return tr, nil
}

func (f *fakeSource) TriggersByTenant(_ context.Context, tenantID string) ([]structs.TriggerSnapshot, error) {
	var out []structs.TriggerSnapshot
	for _, tr := range f.triggers {
		if tr.TenantID.String() == tenantID {
			out = append(out, *tr)
		}
	}
	return out, nil
}

func (f *fakeSource) TriggersBySlugs(_ context.Context, tenantID string, slugs []string) ([]structs.TriggerSnapshot, error) {
	var out []structs.TriggerSnapshot
	for _, slug := range slugs {
		if f.failTriggerSlugs[slug] {
			return nil, errors.New("relational store unreachable")
		}
		for _, tr := range f.triggers {
			if tr.TenantID.String() == tenantID && tr.Slug == slug {
				out = append(out, *tr)
			}
		}
	}
	return out, nil
}

var _ Source = (*fakeSource)(nil)

func TestNew(t *testing.T) {
	store, _ := newTestStore(t, nil)

	// Verify all sub-stores are initialized
	assert.NotNil(t, store)
	assert.NotNil(t, store.Monitor)
	assert.NotNil(t, store.Network)
	assert.NotNil(t, store.Trigger)
	assert.NotNil(t, store.Tenant)
}

func TestStore_InterfaceCompliance(t *testing.T) {
	// This test verifies that our concrete types implement the interfaces
	// The compile-time checks in store.go should catch this, but this test
	// provides runtime verification and documentation

	store, _ := newTestStore(t, nil)

	// Verify Monitor implements MonitorStoreInterface
	var _ MonitorStoreInterface = store.Monitor

	// Verify Network implements NetworkStoreInterface
	var _ NetworkStoreInterface = store.Network

	// Verify Trigger implements TriggerStoreInterface
	var _ TriggerStoreInterface = store.Trigger

	// Verify Tenant implements TenantStoreInterface
	var _ TenantStoreInterface = store.Tenant
}

func TestStore_KeyNamespacing(t *testing.T) {
	// Same entity id under different tenants must never collide.
	store, c := newTestStore(t, nil)
	ctx := testContext(t)

	m := testMonitor(tenantA)
	require.True(t, store.Monitor.Cache(ctx, m, nil))

	other := *m
	other.TenantID = tenantB
	other.Name = "Other Tenant Copy"
	require.True(t, store.Monitor.Cache(ctx, &other, nil))

	docA, ok := store.Monitor.Get(ctx, tenantA.String(), m.ID.String())
	require.True(t, ok)
	docB, ok := store.Monitor.Get(ctx, tenantB.String(), m.ID.String())
	require.True(t, ok)
	assert.Equal(t, "Large Transfers", docA.Name)
	assert.Equal(t, "Other Tenant Copy", docB.Name)

	raw, err := c.Get(ctx, MonitorKey(tenantA.String(), m.ID.String()))
	require.NoError(t, err)
	assert.NotEmpty(t, raw)
}

func TestStore_IndependentOperations(t *testing.T) {
	// Monitor, network and trigger writes for one tenant do not interfere
	// with each other.
	store, _ := newTestStore(t, nil)
	ctx := testContext(t)

	m := testMonitor(tenantA)
	n := testNetwork(tenantA)
	tr := testTrigger(tenantA, "ops-email")

	require.True(t, store.Monitor.Cache(ctx, m, nil))
	require.True(t, store.Network.Cache(ctx, n))
	require.True(t, store.Trigger.Cache(ctx, tr))

	_, ok := store.Monitor.Get(ctx, tenantA.String(), m.ID.String())
	assert.True(t, ok)
	_, ok = store.Network.Get(ctx, tenantA.String(), n.ID.String())
	assert.True(t, ok)
	_, ok = store.Trigger.Get(ctx, tenantA.String(), tr.ID.String())
	assert.True(t, ok)

	// Deleting the monitor leaves the others intact.
	require.True(t, store.Monitor.Delete(ctx, tenantA.String(), m.ID.String()))
	_, ok = store.Network.Get(ctx, tenantA.String(), n.ID.String())
	assert.True(t, ok)
	_, ok = store.Trigger.Get(ctx, tenantA.String(), tr.ID.String())
	assert.True(t, ok)
}

func TestKeyFormats(t *testing.T) {
	assert.Equal(t, "tenant:t1:monitor:m1", MonitorKey("t1", "m1"))
	assert.Equal(t, "tenant:t1:network:n1", NetworkKey("t1", "n1"))
	assert.Equal(t, "tenant:t1:trigger:tr1", TriggerKey("t1", "tr1"))
	assert.Equal(t, "tenant:t1:monitors:active", ActiveMonitorsKey("t1"))
	assert.Equal(t, "tenant:t1:*", TenantPattern("t1"))
}

func TestTTLValues(t *testing.T) {
	assert.Equal(t, time.Hour, MonitorTTL)
	assert.Equal(t, time.Hour, NetworkTTL)
	assert.Equal(t, time.Hour, TriggerTTL)
	assert.Equal(t, 5*time.Minute, ActiveSetTTL)
}
