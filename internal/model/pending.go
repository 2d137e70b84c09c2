package model

import "time"

// PendingTransaction is a formatted candidate awaiting user confirmation.
type PendingTransaction struct {
	CreatedAt   time.Time
	ID          string
	Transaction FormattedTransaction
}
