package rules

import (
	"regexp"
	"strings"

	"github.com/Veraticus/spice-sms/internal/common"
	"github.com/Veraticus/spice-sms/internal/model"
)

// Match is a rule hit against a message.
type Match struct {
	// Named holds named capture groups, keyed by group name.
	Named map[string]string
	// Groups holds the unnamed and named capture groups in pattern order,
	// without the whole-match entry. Empty for substring rules.
	Groups []string
	Rule   model.CustomRule
}

// Matcher evaluates custom rules against message text in rule order.
type Matcher struct {
	compiledRegex map[string]*regexp.Regexp
	rules         []model.CustomRule
}

// NewMatcher creates a matcher over rules. Regex rules are compiled once;
// a rule whose pattern fails to compile is kept but never matches.
func NewMatcher(rules []model.CustomRule) *Matcher {
	m := &Matcher{
		rules:         rules,
		compiledRegex: make(map[string]*regexp.Regexp),
	}

	for _, rule := range rules {
		if !rule.IsRegex || rule.Pattern == "" {
			continue
		}
		re, err := common.CompileInsensitive(rule.Pattern)
		if err != nil {
			common.LogDebug("Skipping rule with invalid regex", common.Fields{
				"rule_id": rule.ID,
				"pattern": rule.Pattern,
				"error":   err.Error(),
			})
			continue
		}
		m.compiledRegex[rule.ID] = re
	}

	return m
}

// Match returns the first rule that matches text.
func (m *Matcher) Match(text string) (Match, bool) {
	return m.MatchWhere(text, nil)
}

// MatchWhere returns the first rule accepted by keep that matches text.
// A nil keep accepts every rule.
func (m *Matcher) MatchWhere(text string, keep func(model.CustomRule) bool) (Match, bool) {
	if text == "" {
		return Match{}, false
	}
	lower := strings.ToLower(text)

	for _, rule := range m.rules {
		if keep != nil && !keep(rule) {
			continue
		}
		if !rule.IsRegex {
			if rule.Pattern != "" && strings.Contains(lower, strings.ToLower(rule.Pattern)) {
				return Match{Rule: rule}, true
			}
			continue
		}

		re, ok := m.compiledRegex[rule.ID]
		if !ok {
			continue
		}
		sub := re.FindStringSubmatch(text)
		if sub == nil {
			continue
		}

		match := Match{Rule: rule, Groups: sub[1:]}
		for i, name := range re.SubexpNames() {
			if i == 0 || name == "" {
				continue
			}
			if match.Named == nil {
				match.Named = make(map[string]string)
			}
			match.Named[name] = sub[i]
		}
		return match, true
	}

	return Match{}, false
}

// Len returns the number of rules the matcher holds.
func (m *Matcher) Len() int {
	return len(m.rules)
}
