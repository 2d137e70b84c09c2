package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Veraticus/spice-sms/internal/model"
)

// GetClassifierModel loads the learned mappings and category frequencies.
func (s *SQLiteStorage) GetClassifierModel(ctx context.Context) (model.ClassifierModel, error) {
	m := model.NewClassifierModel()
	if err := validateContext(ctx); err != nil {
		return m, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT description, category FROM classifier_mappings`)
	if err != nil {
		return m, fmt.Errorf("failed to query classifier mappings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var description, category string
		if err := rows.Scan(&description, &category); err != nil {
			return m, fmt.Errorf("failed to scan classifier mapping: %w", err)
		}
		m.Mappings[description] = category
	}
	if err := rows.Err(); err != nil {
		return m, fmt.Errorf("error iterating classifier mappings: %w", err)
	}

	freqRows, err := s.db.QueryContext(ctx, `SELECT category, count FROM classifier_frequencies`)
	if err != nil {
		return m, fmt.Errorf("failed to query classifier frequencies: %w", err)
	}
	defer func() { _ = freqRows.Close() }()

	for freqRows.Next() {
		var category string
		var count int
		if err := freqRows.Scan(&category, &count); err != nil {
			return m, fmt.Errorf("failed to scan classifier frequency: %w", err)
		}
		m.Frequencies[category] = count
	}

	return m, freqRows.Err()
}

// SaveMapping writes or overwrites a learned description mapping.
func (s *SQLiteStorage) SaveMapping(ctx context.Context, description, category string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(description, "description"); err != nil {
		return err
	}
	if err := validateString(category, "category"); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		return s.saveMappingTx(ctx, tx, description, category)
	})
}

func (s *SQLiteStorage) saveMappingTx(ctx context.Context, q queryable, description, category string) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO classifier_mappings (description, category, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(description) DO UPDATE SET
			category = excluded.category,
			updated_at = excluded.updated_at
	`, description, category, time.Now())
	if err != nil {
		return fmt.Errorf("failed to save classifier mapping: %w", err)
	}

	_, err = q.ExecContext(ctx, `
		INSERT INTO classifier_frequencies (category, count)
		VALUES (?, 1)
		ON CONFLICT(category) DO UPDATE SET count = count + 1
	`, category)
	if err != nil {
		return fmt.Errorf("failed to update classifier frequency: %w", err)
	}

	return nil
}
