package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/spice-sms/internal/common"
	"github.com/Veraticus/spice-sms/internal/model"
)

// AddPending stores p unless an item with the same amount and date is already pending.
func (s *SQLiteStorage) AddPending(ctx context.Context, p *model.PendingTransaction) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	if err := validatePending(p); err != nil {
		return false, err
	}

	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}

	payload, err := json.Marshal(p.Transaction)
	if err != nil {
		return false, fmt.Errorf("failed to encode pending transaction: %w", err)
	}

	added := false
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		var exists bool
		err := tx.QueryRowContext(ctx, `
			SELECT EXISTS(SELECT 1 FROM pending_transactions WHERE dedup_key = ?)
		`, p.Transaction.DedupKey()).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check pending duplicates: %w", err)
		}
		if exists {
			return nil
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO pending_transactions (id, amount, date, payload, dedup_key, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, p.ID, p.Transaction.Amount, p.Transaction.Date, string(payload),
			p.Transaction.DedupKey(), p.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to save pending transaction: %w", err)
		}
		added = true
		return nil
	})
	if err != nil {
		return false, err
	}

	return added, nil
}

// GetPending lists pending transactions oldest first.
func (s *SQLiteStorage) GetPending(ctx context.Context) ([]model.PendingTransaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, payload, created_at
		FROM pending_transactions
		ORDER BY created_at ASC, rowid ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []model.PendingTransaction
	for rows.Next() {
		item, err := scanPending(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}

	return items, rows.Err()
}

// GetPendingByID retrieves one pending transaction.
func (s *SQLiteStorage) GetPendingByID(ctx context.Context, id string) (*model.PendingTransaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, payload, created_at FROM pending_transactions WHERE id = ?
	`, id)
	item, err := scanPending(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("pending transaction %s: %w", id, common.ErrNotFound)
	}
	return item, err
}

// DeletePending removes a pending transaction.
func (s *SQLiteStorage) DeletePending(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM pending_transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete pending transaction: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return common.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPending(row scanner) (*model.PendingTransaction, error) {
	var item model.PendingTransaction
	var payload string
	if err := row.Scan(&item.ID, &payload, &item.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan pending transaction: %w", err)
	}
	if err := json.Unmarshal([]byte(payload), &item.Transaction); err != nil {
		return nil, fmt.Errorf("%w: pending payload %s: %v", common.ErrDatabaseCorrupted, item.ID, err)
	}
	return &item, nil
}
