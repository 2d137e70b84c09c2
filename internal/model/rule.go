package model

import "time"

// CustomRule is a user-authored override that bypasses generic extraction
// when its pattern matches a message.
type CustomRule struct {
	CreatedAt   time.Time       `json:"created_at"`
	ID          string          `json:"id"`
	Pattern     string          `json:"pattern"`
	Type        TransactionType `json:"type,omitempty"`
	Category    string          `json:"category,omitempty"`
	AccountID   string          `json:"account_id,omitempty"`
	BankName    string          `json:"bank_name,omitempty"`
	Description string          `json:"description,omitempty"`
	IsRegex     bool            `json:"is_regex"`
}

// RuleFields holds the user-supplied fields of a rule before it is stored.
type RuleFields struct {
	Pattern     string
	Type        TransactionType
	Category    string
	AccountID   string
	BankName    string
	Description string
	IsRegex     bool
}
