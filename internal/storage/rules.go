package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/Veraticus/spice-sms/internal/model"
)

// GetRules retrieves all custom rules in creation order.
func (s *SQLiteStorage) GetRules(ctx context.Context) ([]model.CustomRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getRulesTx(ctx, s.db)
}

func (s *SQLiteStorage) getRulesTx(ctx context.Context, q queryable) ([]model.CustomRule, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, pattern, is_regex, type, category, account_id, bank_name, description, created_at
		FROM custom_rules
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query custom rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rules []model.CustomRule
	for rows.Next() {
		var rule model.CustomRule
		var ruleType string
		err := rows.Scan(
			&rule.ID, &rule.Pattern, &rule.IsRegex, &ruleType,
			&rule.Category, &rule.AccountID, &rule.BankName, &rule.Description,
			&rule.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan custom rule: %w", err)
		}
		rule.Type = model.TransactionType(ruleType)
		rules = append(rules, rule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating custom rules: %w", err)
	}

	return rules, nil
}

// SaveRule appends a new custom rule.
func (s *SQLiteStorage) SaveRule(ctx context.Context, rule *model.CustomRule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRule(rule); err != nil {
		return err
	}

	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO custom_rules (
			id, pattern, is_regex, type, category, account_id, bank_name, description, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rule.ID, rule.Pattern, rule.IsRegex, string(rule.Type), rule.Category,
		rule.AccountID, rule.BankName, rule.Description, rule.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save custom rule: %w", err)
	}

	return nil
}

// DeleteRule deletes a custom rule. Deleting a missing rule is not an error.
func (s *SQLiteStorage) DeleteRule(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM custom_rules WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete custom rule: %w", err)
	}
	return nil
}
