// Package extract turns raw bank and UPI notification text into structured
// transaction fields.
package extract

import (
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/spice-sms/internal/category"
	"github.com/Veraticus/spice-sms/internal/common"
	"github.com/Veraticus/spice-sms/internal/model"
	"github.com/Veraticus/spice-sms/internal/rules"
)

// RuleConfidence is the fixed confidence of a custom-rule match.
const RuleConfidence = 100

// Fallback descriptions when no merchant is found.
const (
	ExpenseDescription = "Payment"
	IncomeDescription  = "Credit received"
)

// RuleMatcher finds the first custom rule matching a message.
type RuleMatcher interface {
	Match(text string) (rules.Match, bool)
}

// BankIdentifier names the institution behind a message.
type BankIdentifier interface {
	Identify(text string) string
}

// Engine is the field extraction engine. It holds no mutable state of its
// own, so one Engine may serve concurrent callers.
type Engine struct {
	rules RuleMatcher
	banks BankIdentifier
	now   func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the clock used for the default date.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithBankIdentifier fills BankName on generic extractions.
func WithBankIdentifier(banks BankIdentifier) Option {
	return func(e *Engine) {
		e.banks = banks
	}
}

// New creates an engine. A nil rules matcher disables the custom-rule step.
func New(rules RuleMatcher, opts ...Option) *Engine {
	e := &Engine{
		rules: rules,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ParseMessage extracts a transaction from text. It returns nil when the
// text is not a transaction and never panics on malformed input.
func (e *Engine) ParseMessage(text string) *model.ExtractionResult {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	if e.rules != nil {
		if m, ok := e.rules.Match(text); ok {
			return e.fromRule(text, m)
		}
	}

	amount, typ, ok := findAmount(text)
	if !ok {
		common.LogDebug("No transaction detected", common.Fields{"length": len(text)})
		return nil
	}

	result := &model.ExtractionResult{
		Amount:     &amount,
		Type:       typ,
		Category:   category.Other,
		Date:       e.today(),
		RawText:    text,
		Confidence: amountConfidence,
	}

	for _, resolver := range fieldResolvers {
		if resolver.try(text, result) {
			result.Confidence += resolver.delta
			common.LogDebug("Resolved field", common.Fields{"field": resolver.name})
		}
	}

	result.Description = result.Merchant
	if result.Description == "" {
		result.Description = fallbackDescription(typ)
	}

	if e.banks != nil {
		result.BankName = e.banks.Identify(text)
	}

	return result
}

// fromRule builds the short-circuit result for a custom-rule match.
func (e *Engine) fromRule(text string, m rules.Match) *model.ExtractionResult {
	rule := m.Rule

	result := &model.ExtractionResult{
		Type:        rule.Type,
		Category:    rule.Category,
		Description: rule.Description,
		Date:        e.today(),
		AccountID:   rule.AccountID,
		BankName:    rule.BankName,
		RawText:     text,
		Confidence:  RuleConfidence,
		RuleMatched: true,
	}
	if !result.Type.Valid() {
		result.Type = model.TypeExpense
	}
	if result.Category == "" {
		result.Category = category.Other
	}
	if result.Description == "" {
		result.Description = fallbackDescription(result.Type)
	}

	if amount, ok := ruleAmount(text, m); ok {
		result.Amount = &amount
	}

	common.LogDebug("Custom rule matched", common.Fields{"rule_id": rule.ID})
	return result
}

// ruleAmount prefers a group named "amount", then any capture group that
// parses, then a generic currency scan of the message.
func ruleAmount(text string, m rules.Match) (float64, bool) {
	if raw, ok := m.Named["amount"]; ok {
		if v, ok := parseAmount(raw); ok {
			return v, true
		}
	}
	for _, g := range m.Groups {
		if v, ok := parseAmount(g); ok {
			return v, true
		}
	}
	return scanCurrencyAmount(text)
}

func (e *Engine) today() string {
	return e.now().Format(time.DateOnly)
}

func fallbackDescription(typ model.TransactionType) string {
	if typ == model.TypeIncome {
		return IncomeDescription
	}
	return ExpenseDescription
}

// FormatAmount renders an extracted amount for display.
func FormatAmount(r *model.ExtractionResult) string {
	if !r.HasAmount() {
		return "-"
	}
	return strconv.FormatFloat(*r.Amount, 'f', 2, 64)
}
