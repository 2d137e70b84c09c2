package storage

import (
	"context"
	"fmt"
	"time"
)

// GetBankMappings returns the bank -> account table keyed by lowercased bank name.
func (s *SQLiteStorage) GetBankMappings(ctx context.Context) (map[string]string, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT bank_key, account_id FROM bank_mappings`)
	if err != nil {
		return nil, fmt.Errorf("failed to query bank mappings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	mappings := make(map[string]string)
	for rows.Next() {
		var bankKey, accountID string
		if err := rows.Scan(&bankKey, &accountID); err != nil {
			return nil, fmt.Errorf("failed to scan bank mapping: %w", err)
		}
		mappings[bankKey] = accountID
	}

	return mappings, rows.Err()
}

// SaveBankMapping remembers which account a bank's messages belong to.
func (s *SQLiteStorage) SaveBankMapping(ctx context.Context, bankKey, accountID string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(bankKey, "bankKey"); err != nil {
		return err
	}
	if err := validateString(accountID, "accountID"); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bank_mappings (bank_key, account_id, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(bank_key) DO UPDATE SET
			account_id = excluded.account_id,
			updated_at = excluded.updated_at
	`, bankKey, accountID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to save bank mapping: %w", err)
	}
	return nil
}

// DeleteBankMapping forgets a bank mapping. Missing keys are ignored.
func (s *SQLiteStorage) DeleteBankMapping(ctx context.Context, bankKey string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(bankKey, "bankKey"); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM bank_mappings WHERE bank_key = ?`, bankKey); err != nil {
		return fmt.Errorf("failed to delete bank mapping: %w", err)
	}
	return nil
}
