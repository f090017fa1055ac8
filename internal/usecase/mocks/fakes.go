package mocks

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/deskline/billing/internal/domain"
)

// FakeLedgerRepository is an in-memory fake implementation of
// LedgerRepository. It honors the conditional-insert contract for entries
// that carry a stripe charge id.
type FakeLedgerRepository struct {
	mu       sync.RWMutex
	entries  []*domain.LedgerEntry
	byCharge map[string]*domain.LedgerEntry

	InsertEntryFunc  func(ctx context.Context, entry *domain.LedgerEntry) (bool, error)
	QueryEntriesFunc func(ctx context.Context, tenantID string, since time.Time) ([]*domain.LedgerEntry, error)
}

func NewFakeLedgerRepository() *FakeLedgerRepository {
	return &FakeLedgerRepository{
		byCharge: make(map[string]*domain.LedgerEntry),
	}
}

func (m *FakeLedgerRepository) InsertEntry(ctx context.Context, entry *domain.LedgerEntry) (bool, error) {
	if m.InsertEntryFunc != nil {
		return m.InsertEntryFunc(ctx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if entry.StripeChargeID != "" {
		if _, ok := m.byCharge[entry.StripeChargeID]; ok {
			return false, nil
		}
		m.byCharge[entry.StripeChargeID] = entry
	}
	m.entries = append(m.entries, entry)
	return true, nil
}

func (m *FakeLedgerRepository) GetByChargeID(ctx context.Context, tenantID, chargeID string) (*domain.LedgerEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if entry, ok := m.byCharge[chargeID]; ok && entry.TenantID == tenantID {
		return entry, nil
	}
	return nil, domain.ErrEntryNotFound
}

func (m *FakeLedgerRepository) QueryEntries(ctx context.Context, tenantID string, since time.Time) ([]*domain.LedgerEntry, error) {
	if m.QueryEntriesFunc != nil {
		return m.QueryEntriesFunc(ctx, tenantID, since)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.LedgerEntry
	for _, entry := range m.entries {
		if entry.TenantID == tenantID && !entry.RecordedAt.Before(since) {
			result = append(result, entry)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].RecordedAt.After(result[j].RecordedAt)
	})
	return result, nil
}

// Entries returns all stored entries.
func (m *FakeLedgerRepository) Entries() []*domain.LedgerEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*domain.LedgerEntry(nil), m.entries...)
}

// FakeAlertRepository is an in-memory fake implementation of AlertRepository.
// Open alerts are keyed by (tenant, invoice, type) to model the partial
// uniqueness constraint.
type FakeAlertRepository struct {
	mu     sync.RWMutex
	open   map[string]*domain.BillingAlert
	closed []*domain.BillingAlert

	UpsertOpenFunc func(ctx context.Context, alert *domain.BillingAlert) error
}

func NewFakeAlertRepository() *FakeAlertRepository {
	return &FakeAlertRepository{
		open: make(map[string]*domain.BillingAlert),
	}
}

func alertKey(a *domain.BillingAlert) string {
	return fmt.Sprintf("%s|%s|%s", a.TenantID, a.InvoiceID, a.Type)
}

func (m *FakeAlertRepository) UpsertOpen(ctx context.Context, alert *domain.BillingAlert) error {
	if m.UpsertOpenFunc != nil {
		return m.UpsertOpenFunc(ctx, alert)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := alertKey(alert)
	if existing, ok := m.open[key]; ok {
		existing.Message = alert.Message
		existing.Metadata = alert.Metadata
		return nil
	}
	m.open[key] = alert
	return nil
}

func (m *FakeAlertRepository) ListOpen(ctx context.Context, tenantID string) ([]*domain.BillingAlert, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.BillingAlert
	for _, alert := range m.open {
		if alert.TenantID == tenantID {
			result = append(result, alert)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (m *FakeAlertRepository) Resolve(ctx context.Context, alertID, tenantID string, resolvedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, alert := range m.open {
		if alert.ID == alertID && alert.TenantID == tenantID {
			alert.ResolvedAt = &resolvedAt
			m.closed = append(m.closed, alert)
			delete(m.open, key)
			return nil
		}
	}
	return domain.ErrAlertNotFound
}

// OpenCount returns the number of open alerts across all tenants.
func (m *FakeAlertRepository) OpenCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.open)
}

// FakeDunningRepository is an in-memory fake implementation of
// DunningRepository keyed by (tenant, invoice, step, channel).
type FakeDunningRepository struct {
	mu     sync.RWMutex
	events map[string]*domain.DunningEvent

	UpsertPendingFunc func(ctx context.Context, event *domain.DunningEvent) error
}

func NewFakeDunningRepository() *FakeDunningRepository {
	return &FakeDunningRepository{
		events: make(map[string]*domain.DunningEvent),
	}
}

func dunningKey(e *domain.DunningEvent) string {
	return fmt.Sprintf("%s|%s|%d|%s", e.TenantID, e.InvoiceID, e.Step, e.Channel)
}

func (m *FakeDunningRepository) UpsertPending(ctx context.Context, event *domain.DunningEvent) error {
	if m.UpsertPendingFunc != nil {
		return m.UpsertPendingFunc(ctx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := dunningKey(event)
	if _, ok := m.events[key]; ok {
		return nil
	}
	m.events[key] = event
	return nil
}

func (m *FakeDunningRepository) ListByInvoice(ctx context.Context, tenantID, invoiceID string) ([]*domain.DunningEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.DunningEvent
	for _, event := range m.events {
		if event.TenantID == tenantID && event.InvoiceID == invoiceID {
			result = append(result, event)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Step < result[j].Step
	})
	return result, nil
}

func (m *FakeDunningRepository) ListPending(ctx context.Context, limit int) ([]*domain.DunningEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.DunningEvent
	for _, event := range m.events {
		if event.Status == domain.DunningPending {
			result = append(result, event)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].InvoiceID != result[j].InvoiceID {
			return result[i].InvoiceID < result[j].InvoiceID
		}
		return result[i].Step < result[j].Step
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *FakeDunningRepository) UpdateStatus(ctx context.Context, id string, status domain.DunningStatus, updatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, event := range m.events {
		if event.ID == id {
			if !event.Status.CanTransitionTo(status) {
				return domain.ErrInvalidTransition
			}
			event.Status = status
			event.UpdatedAt = updatedAt
			return nil
		}
	}
	return domain.ErrDunningEventNotFound
}

// EventCount returns the number of stored events.
func (m *FakeDunningRepository) EventCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.events)
}

// FakeIDGenerator generates sequential IDs for deterministic tests.
type FakeIDGenerator struct {
	mu sync.Mutex
	n  int
}

func NewFakeIDGenerator() *FakeIDGenerator {
	return &FakeIDGenerator{}
}

func (g *FakeIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("id-%04d", g.n)
}

// FakeCache is an in-memory fake implementation of Cache. TTLs are ignored.
type FakeCache struct {
	mu     sync.RWMutex
	values map[string][]byte

	GetFunc func(ctx context.Context, key string) ([]byte, bool, error)
	SetFunc func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func NewFakeCache() *FakeCache {
	return &FakeCache{values: make(map[string][]byte)}
}

func (c *FakeCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if c.GetFunc != nil {
		return c.GetFunc(ctx, key)
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	value, ok := c.values[key]
	return value, ok, nil
}

func (c *FakeCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if c.SetFunc != nil {
		return c.SetFunc(ctx, key, value, ttl)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
	return nil
}

func (c *FakeCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, key)
	return nil
}

func (c *FakeCache) DeletePrefix(ctx context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.values {
		if strings.HasPrefix(key, prefix) {
			delete(c.values, key)
		}
	}
	return nil
}
