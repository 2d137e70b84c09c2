// Package testutil provides shared test helpers for packages that need a real
// SQLite-backed store.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Veraticus/spice-sms/internal/model"
	"github.com/Veraticus/spice-sms/internal/service"
	"github.com/Veraticus/spice-sms/internal/storage"
)

// TestDB represents a migrated in-memory test database.
type TestDB struct {
	Storage service.Storage
	t       *testing.T
}

// TestDBOptions seeds a test database before it is handed to the test.
type TestDBOptions struct {
	CustomSetup  func(context.Context, service.Storage) error
	BankMappings map[string]string
	Learned      map[string]string
	Rules        []model.CustomRule
}

// SetupTestDB creates a new in-memory test database.
// It automatically handles migrations and cleanup.
//
// Example:
//
//	db := testutil.SetupTestDB(t)
//	store := rules.NewStore(db.Storage)
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()
	return SetupTestDBWithOptions(t, TestDBOptions{})
}

// SetupTestDBWithOptions creates a test database seeded from opts.
func SetupTestDBWithOptions(t *testing.T, opts TestDBOptions) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	for i := range opts.Rules {
		rule := opts.Rules[i]
		if rule.ID == "" {
			rule.ID = fmt.Sprintf("rule-%03d", i+1)
		}
		if rule.CreatedAt.IsZero() {
			rule.CreatedAt = time.Date(2026, 1, 1, 0, i, 0, 0, time.UTC)
		}
		if err := store.SaveRule(ctx, &rule); err != nil {
			t.Fatalf("failed to seed rule %q: %v", rule.Pattern, err)
		}
	}

	for bankKey, accountID := range opts.BankMappings {
		if err := store.SaveBankMapping(ctx, bankKey, accountID); err != nil {
			t.Fatalf("failed to seed bank mapping %q: %v", bankKey, err)
		}
	}

	for description, cat := range opts.Learned {
		if err := store.SaveMapping(ctx, description, cat); err != nil {
			t.Fatalf("failed to seed learned mapping %q: %v", description, err)
		}
	}

	if opts.CustomSetup != nil {
		if err := opts.CustomSetup(ctx, store); err != nil {
			t.Fatalf("custom setup failed: %v", err)
		}
	}

	return &TestDB{
		Storage: store,
		t:       t,
	}
}

// MustRules returns every persisted rule or fails the test.
func (db *TestDB) MustRules() []model.CustomRule {
	db.t.Helper()
	rules, err := db.Storage.GetRules(context.Background())
	if err != nil {
		db.t.Fatalf("failed to read rules: %v", err)
	}
	return rules
}

// MustPending returns every pending item or fails the test.
func (db *TestDB) MustPending() []model.PendingTransaction {
	db.t.Helper()
	items, err := db.Storage.GetPending(context.Background())
	if err != nil {
		db.t.Fatalf("failed to read pending transactions: %v", err)
	}
	return items
}
