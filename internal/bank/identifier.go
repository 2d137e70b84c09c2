// Package bank names the financial institution or payment app behind a
// notification, from its text or its SMS sender header.
package bank

import (
	"regexp"
	"strings"

	"github.com/Veraticus/spice-sms/internal/model"
	"github.com/Veraticus/spice-sms/internal/rules"
)

// RuleSource exposes the user's rules in store order.
type RuleSource interface {
	MatchWhere(text string, keep func(model.CustomRule) bool) (rules.Match, bool)
}

type senderPattern struct {
	re   *regexp.Regexp
	name string
}

// Identifier maps text or sender IDs to canonical institution names.
// It never mutates rules or persisted state.
type Identifier struct {
	rules        RuleSource
	institutions []Institution
	senders      []senderPattern
}

// NewIdentifier creates an identifier over the built-in institution table.
// Rules may be nil.
func NewIdentifier(rules RuleSource) *Identifier {
	return NewIdentifierWithTable(rules, Institutions)
}

// NewIdentifierWithTable creates an identifier over a custom table.
func NewIdentifierWithTable(rules RuleSource, table []Institution) *Identifier {
	id := &Identifier{
		rules:        rules,
		institutions: table,
	}

	for _, inst := range table {
		if len(inst.SenderCodes) == 0 {
			continue
		}
		codes := make([]string, len(inst.SenderCodes))
		for i, code := range inst.SenderCodes {
			codes[i] = regexp.QuoteMeta(code)
		}
		// Operator and circle prefix such as "VM-" or "AD-" is optional.
		re := regexp.MustCompile(`(?i)(?:^|[^a-z0-9])(?:[a-z]{2}-)?(?:` + strings.Join(codes, "|") + `)(?:$|[^a-z0-9])`)
		id.senders = append(id.senders, senderPattern{name: inst.Name, re: re})
	}

	return id
}

// Identify returns the institution named by text, or "" when none is found.
// A matching rule with a bank name wins over the built-in tables.
func (id *Identifier) Identify(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	if id.rules != nil {
		m, ok := id.rules.MatchWhere(text, func(r model.CustomRule) bool { return r.BankName != "" })
		if ok {
			return m.Rule.BankName
		}
	}

	if name := id.byKeyword(text); name != "" {
		return name
	}
	return id.bySender(text)
}

// IdentifySender returns the institution for an SMS sender header such as
// "VM-HDFCBK", or "" when the sender is unknown.
func (id *Identifier) IdentifySender(sender string) string {
	sender = strings.TrimSpace(sender)
	if sender == "" {
		return ""
	}
	if name := id.bySender(sender); name != "" {
		return name
	}
	return id.byKeyword(sender)
}

func (id *Identifier) byKeyword(text string) string {
	lower := strings.ToLower(text)
	for _, inst := range id.institutions {
		for _, kw := range inst.Keywords {
			if strings.Contains(lower, kw) {
				return inst.Name
			}
		}
	}
	return ""
}

func (id *Identifier) bySender(text string) string {
	for _, s := range id.senders {
		if s.re.MatchString(text) {
			return s.name
		}
	}
	return ""
}
