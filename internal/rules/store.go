// Package rules holds user-authored override rules and matches them against
// notification text.
package rules

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Veraticus/spice-sms/internal/common"
	"github.com/Veraticus/spice-sms/internal/model"
	"github.com/Veraticus/spice-sms/internal/service"
	"github.com/google/uuid"
)

// Store is the rule store service. Rules are kept in creation order and
// written through to storage on every mutation.
type Store struct {
	storage   service.RuleStorage
	matcher   *Matcher
	now       func() time.Time
	listeners common.Listeners[[]model.CustomRule]
	rules     []model.CustomRule
	mu        sync.RWMutex
}

// NewStore creates a rule store. A nil storage keeps rules in memory only.
func NewStore(storage service.RuleStorage) *Store {
	return &Store{
		storage: storage,
		matcher: NewMatcher(nil),
		now:     time.Now,
	}
}

// Load reads persisted rules. A storage failure leaves the store empty.
func (s *Store) Load(ctx context.Context) {
	if s.storage == nil {
		return
	}

	rules, err := s.storage.GetRules(ctx)
	if err != nil {
		common.LogWarn("Custom rules unavailable, starting empty", common.Fields{"error": err.Error()})
		rules = nil
	}

	s.mu.Lock()
	s.setLocked(rules)
	s.mu.Unlock()
}

// List returns the rules oldest first.
func (s *Store) List() []model.CustomRule {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.CustomRule, len(s.rules))
	copy(out, s.rules)
	return out
}

// Add validates fields, assigns an id and appends the rule.
func (s *Store) Add(ctx context.Context, fields model.RuleFields) (model.CustomRule, error) {
	rule, err := s.newRule(fields)
	if err != nil {
		return model.CustomRule{}, err
	}

	if s.storage != nil {
		if err := s.storage.SaveRule(ctx, &rule); err != nil {
			return model.CustomRule{}, fmt.Errorf("failed to persist rule: %w", err)
		}
	}

	s.mu.Lock()
	next := append(append([]model.CustomRule(nil), s.rules...), rule)
	s.setLocked(next)
	snapshot := s.rules
	s.mu.Unlock()

	common.LogDebug("Added custom rule", common.Fields{"rule_id": rule.ID, "pattern": rule.Pattern})
	s.listeners.Notify(snapshot)
	return rule, nil
}

// Delete removes the rule with id. Deleting an absent id is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	if s.storage != nil {
		if err := s.storage.DeleteRule(ctx, id); err != nil {
			return fmt.Errorf("failed to delete rule: %w", err)
		}
	}

	s.mu.Lock()
	next := make([]model.CustomRule, 0, len(s.rules))
	for _, rule := range s.rules {
		if rule.ID != id {
			next = append(next, rule)
		}
	}
	changed := len(next) != len(s.rules)
	s.setLocked(next)
	snapshot := s.rules
	s.mu.Unlock()

	if changed {
		s.listeners.Notify(snapshot)
	}
	return nil
}

// Match returns the first rule, in store order, that matches text.
func (s *Store) Match(text string) (Match, bool) {
	s.mu.RLock()
	m := s.matcher
	s.mu.RUnlock()
	return m.Match(text)
}

// MatchWhere is Match restricted to rules accepted by keep.
func (s *Store) MatchWhere(text string, keep func(model.CustomRule) bool) (Match, bool) {
	s.mu.RLock()
	m := s.matcher
	s.mu.RUnlock()
	return m.MatchWhere(text, keep)
}

// Subscribe registers fn to receive the rule list after every change.
func (s *Store) Subscribe(fn func([]model.CustomRule)) func() {
	return s.listeners.Subscribe(fn)
}

func (s *Store) setLocked(rules []model.CustomRule) {
	s.rules = rules
	s.matcher = NewMatcher(rules)
	common.LogDebug("Rule matcher rebuilt", common.Fields{"rules": s.matcher.Len()})
}

func (s *Store) newRule(fields model.RuleFields) (model.CustomRule, error) {
	pattern := strings.TrimSpace(fields.Pattern)
	if pattern == "" {
		return model.CustomRule{}, common.NewUserError("rule pattern is required", common.ErrInvalidRule)
	}
	if fields.Type != "" && !fields.Type.Valid() {
		return model.CustomRule{}, common.NewUserError(
			fmt.Sprintf("rule type must be %q or %q", model.TypeExpense, model.TypeIncome),
			common.ErrInvalidRule,
		)
	}
	if fields.IsRegex {
		if _, err := common.CompileInsensitive(pattern); err != nil {
			return model.CustomRule{}, common.NewUserError(
				"rule pattern is not a valid regular expression",
				fmt.Errorf("%w: %w", common.ErrInvalidRule, err),
			)
		}
	}

	id, err := uuid.NewV7()
	if err != nil {
		return model.CustomRule{}, fmt.Errorf("failed to generate rule id: %w", err)
	}

	return model.CustomRule{
		ID:          id.String(),
		Pattern:     pattern,
		IsRegex:     fields.IsRegex,
		Type:        fields.Type,
		Category:    strings.TrimSpace(fields.Category),
		AccountID:   strings.TrimSpace(fields.AccountID),
		BankName:    strings.TrimSpace(fields.BankName),
		Description: strings.TrimSpace(fields.Description),
		CreatedAt:   s.now(),
	}, nil
}
