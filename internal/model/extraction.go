package model

// ExtractionResult is the structured output of parsing one message.
// A nil Amount means the message is not a transaction.
type ExtractionResult struct {
	Amount       *float64        `json:"amount"`
	Type         TransactionType `json:"type,omitempty"`
	Merchant     string          `json:"merchant,omitempty"`
	Description  string          `json:"description"`
	Category     string          `json:"category"`
	Date         string          `json:"date"` // YYYY-MM-DD
	AccountLast4 string          `json:"account_last4,omitempty"`
	AccountID    string          `json:"account_id,omitempty"`
	BankName     string          `json:"bank_name,omitempty"`
	RawText      string          `json:"raw_text"`
	Confidence   int             `json:"confidence"`
	RuleMatched  bool            `json:"rule_matched"`
}

// HasAmount reports whether an amount was extracted.
func (r *ExtractionResult) HasAmount() bool {
	return r != nil && r.Amount != nil
}
