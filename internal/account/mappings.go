package account

import (
	"context"
	"fmt"
	"maps"
	"strings"
	"sync"

	"github.com/Veraticus/spice-sms/internal/common"
	"github.com/Veraticus/spice-sms/internal/service"
)

// Mappings is the remembered bank -> account table, keyed by lowercased
// bank name.
type Mappings struct {
	store service.BankMappingStorage
	table map[string]string
	mu    sync.RWMutex
}

// NewMappings creates a mapping table. A nil store keeps it in memory only.
func NewMappings(store service.BankMappingStorage) *Mappings {
	return &Mappings{
		store: store,
		table: make(map[string]string),
	}
}

// Load reads persisted mappings. A storage failure leaves the table empty.
func (m *Mappings) Load(ctx context.Context) {
	if m.store == nil {
		return
	}

	table, err := m.store.GetBankMappings(ctx)
	if err != nil {
		common.LogWarn("Bank mappings unavailable, starting empty", common.Fields{"error": err.Error()})
		table = make(map[string]string)
	}

	m.mu.Lock()
	m.table = table
	m.mu.Unlock()
}

// Remember maps bank to accountID.
func (m *Mappings) Remember(ctx context.Context, bank, accountID string) error {
	key := Key(bank)
	accountID = strings.TrimSpace(accountID)
	if key == "" || accountID == "" {
		return common.NewUserError("bank and account id are required", common.ErrInvalidInput)
	}

	if m.store != nil {
		if err := m.store.SaveBankMapping(ctx, key, accountID); err != nil {
			return fmt.Errorf("failed to persist bank mapping: %w", err)
		}
	}

	m.mu.Lock()
	m.table[key] = accountID
	m.mu.Unlock()
	return nil
}

// Forget removes the mapping for bank. Forgetting an unknown bank is not an error.
func (m *Mappings) Forget(ctx context.Context, bank string) error {
	key := Key(bank)
	if key == "" {
		return nil
	}

	if m.store != nil {
		if err := m.store.DeleteBankMapping(ctx, key); err != nil {
			return fmt.Errorf("failed to delete bank mapping: %w", err)
		}
	}

	m.mu.Lock()
	delete(m.table, key)
	m.mu.Unlock()
	return nil
}

// Lookup returns the account remembered for bank.
func (m *Mappings) Lookup(bank string) (string, bool) {
	key := Key(bank)
	if key == "" {
		return "", false
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.table[key]
	return id, ok
}

// All returns a copy of the table.
func (m *Mappings) All() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return maps.Clone(m.table)
}

// Key normalizes a bank name into a mapping key.
func Key(bank string) string {
	return strings.ToLower(strings.TrimSpace(bank))
}
