// Package storage provides the data persistence layer for the spice application.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/spice-sms/internal/common"
	"github.com/Veraticus/spice-sms/internal/model"
)

// Validation errors.
var (
	ErrNilContext   = errors.New("context cannot be nil")
	ErrEmptyString  = errors.New("string parameter cannot be empty")
	ErrNilParameter = errors.New("parameter cannot be nil")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateRule validates a custom rule before it is written.
func validateRule(rule *model.CustomRule) error {
	if rule == nil {
		return fmt.Errorf("%w: rule", ErrNilParameter)
	}
	if strings.TrimSpace(rule.ID) == "" {
		return fmt.Errorf("%w: missing id", common.ErrInvalidRule)
	}
	if strings.TrimSpace(rule.Pattern) == "" {
		return fmt.Errorf("%w: missing pattern", common.ErrInvalidRule)
	}
	if rule.Type != "" && !rule.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", common.ErrInvalidRule, rule.Type)
	}
	return nil
}

// validatePending validates a pending transaction.
func validatePending(p *model.PendingTransaction) error {
	if p == nil {
		return fmt.Errorf("%w: pending transaction", ErrNilParameter)
	}
	if err := validateString(p.ID, "id"); err != nil {
		return err
	}
	return validateString(p.Transaction.Date, "date")
}
