// Package account picks the user account a transaction belongs to.
package account

import (
	"strings"

	"github.com/Veraticus/spice-sms/internal/model"
)

// BankLookup finds a remembered account for a bank name.
type BankLookup interface {
	Lookup(bank string) (string, bool)
}

// Resolver selects the best-matching account for an extraction.
type Resolver struct {
	banks BankLookup
}

// NewResolver creates a resolver. banks may be nil.
func NewResolver(banks BankLookup) *Resolver {
	return &Resolver{banks: banks}
}

// Resolve returns the account id for r, trying in order: the rule's explicit
// account, the remembered bank mapping, an account number ending in the
// extracted suffix, an account name containing the suffix, then defaultID
// (or the first account when defaultID is empty or unknown). It returns ""
// when nothing applies.
func (res *Resolver) Resolve(r *model.ExtractionResult, accounts []model.Account, defaultID string) string {
	if r == nil {
		return ""
	}

	if r.AccountID != "" {
		return r.AccountID
	}

	if r.BankName != "" && res.banks != nil {
		if id, ok := res.banks.Lookup(r.BankName); ok {
			return id
		}
	}

	if suffix := r.AccountLast4; suffix != "" {
		for _, acc := range accounts {
			if acc.AccountNumber != "" && strings.HasSuffix(digitsOnly(acc.AccountNumber), suffix) {
				return acc.ID
			}
		}
		// Weakest signal: a display name such as "HDFC 1234".
		for _, acc := range accounts {
			if strings.Contains(acc.Name, suffix) {
				return acc.ID
			}
		}
	}

	return fallback(accounts, defaultID)
}

func fallback(accounts []model.Account, defaultID string) string {
	if len(accounts) == 0 {
		return ""
	}
	for _, acc := range accounts {
		if defaultID != "" && acc.ID == defaultID {
			return acc.ID
		}
	}
	return accounts[0].ID
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
