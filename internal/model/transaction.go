// Package model defines the core data structures for the spice application.
package model

import (
	"crypto/sha256"
	"fmt"
)

// TransactionType is the direction of money movement.
type TransactionType string

// Transaction type constants.
const (
	TypeExpense TransactionType = "expense"
	TypeIncome  TransactionType = "income"
)

// Valid reports whether t is one of the two known directions.
func (t TransactionType) Valid() bool {
	return t == TypeExpense || t == TypeIncome
}

// FormattedTransaction is the normalized candidate handed to the pending queue.
type FormattedTransaction struct {
	Date               string          `json:"date"`
	Description        string          `json:"description"`
	Category           string          `json:"category"`
	AccountID          string          `json:"account_id,omitempty"`
	Type               TransactionType `json:"type"`
	BankName           string          `json:"bank_name,omitempty"`
	RawText            string          `json:"raw_text"`
	Amount             float64         `json:"amount"` // negative for expenses
	Confidence         int             `json:"confidence"`
	CategoryConfidence float64         `json:"category_confidence"`
}

// DedupKey identifies a candidate for pending-queue deduplication.
func (t *FormattedTransaction) DedupKey() string {
	data := fmt.Sprintf("%s:%.2f", t.Date, t.Amount)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}
