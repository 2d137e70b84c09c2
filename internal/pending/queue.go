// Package pending holds formatted transaction candidates until the user
// confirms or dismisses them.
package pending

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/spice-sms/internal/common"
	"github.com/Veraticus/spice-sms/internal/model"
	"github.com/Veraticus/spice-sms/internal/service"
	"github.com/google/uuid"
)

// EventKind says what happened to a pending item.
type EventKind string

// Event kinds.
const (
	EventAdded     EventKind = "added"
	EventConfirmed EventKind = "confirmed"
	EventDismissed EventKind = "dismissed"
)

// Event is published to subscribers after every queue change.
type Event struct {
	Kind EventKind
	Item model.PendingTransaction
}

// Learner records a user's category correction.
type Learner interface {
	Learn(ctx context.Context, description, category string) error
}

// Queue is the pending-transaction queue service.
type Queue struct {
	store     service.PendingStorage
	learner   Learner
	now       func() time.Time
	listeners common.Listeners[Event]
}

// NewQueue creates a queue. learner may be nil, in which case confirmations
// never feed the classifier.
func NewQueue(store service.PendingStorage, learner Learner) *Queue {
	return &Queue{
		store:   store,
		learner: learner,
		now:     time.Now,
	}
}

// Enqueue adds tx unless an item with the same amount and date is already
// pending. It reports whether tx was added.
func (q *Queue) Enqueue(ctx context.Context, tx *model.FormattedTransaction) (model.PendingTransaction, bool, error) {
	if tx == nil {
		return model.PendingTransaction{}, false, fmt.Errorf("%w: nil transaction", common.ErrInvalidInput)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return model.PendingTransaction{}, false, fmt.Errorf("failed to generate pending id: %w", err)
	}

	item := model.PendingTransaction{
		ID:          id.String(),
		CreatedAt:   q.now(),
		Transaction: *tx,
	}

	added, err := q.store.AddPending(ctx, &item)
	if err != nil {
		return model.PendingTransaction{}, false, fmt.Errorf("failed to enqueue transaction: %w", err)
	}
	if !added {
		common.LogDebug("Skipped duplicate pending transaction", common.Fields{
			"date":   tx.Date,
			"amount": tx.Amount,
		})
		return model.PendingTransaction{}, false, nil
	}

	q.listeners.Notify(Event{Kind: EventAdded, Item: item})
	return item, true, nil
}

// List returns pending items oldest first.
func (q *Queue) List(ctx context.Context) ([]model.PendingTransaction, error) {
	items, err := q.store.GetPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending transactions: %w", err)
	}
	return items, nil
}

// Confirm accepts the item with id. When cat is non-empty and differs from
// the suggested category, the correction is learned before the item leaves
// the queue.
func (q *Queue) Confirm(ctx context.Context, id, cat string) (model.PendingTransaction, error) {
	item, err := q.store.GetPendingByID(ctx, id)
	if err != nil {
		return model.PendingTransaction{}, err
	}

	cat = strings.TrimSpace(cat)
	if cat != "" && cat != item.Transaction.Category {
		if q.learner != nil {
			if err := q.learner.Learn(ctx, item.Transaction.Description, cat); err != nil {
				return model.PendingTransaction{}, fmt.Errorf("failed to learn category: %w", err)
			}
		}
		item.Transaction.Category = cat
		item.Transaction.CategoryConfidence = 1
	}

	if err := q.store.DeletePending(ctx, id); err != nil && !errors.Is(err, common.ErrNotFound) {
		return model.PendingTransaction{}, fmt.Errorf("failed to remove confirmed transaction: %w", err)
	}

	q.listeners.Notify(Event{Kind: EventConfirmed, Item: *item})
	return *item, nil
}

// Dismiss drops the item with id.
func (q *Queue) Dismiss(ctx context.Context, id string) error {
	item, err := q.store.GetPendingByID(ctx, id)
	if err != nil {
		return err
	}
	if err := q.store.DeletePending(ctx, id); err != nil {
		return fmt.Errorf("failed to dismiss transaction: %w", err)
	}

	q.listeners.Notify(Event{Kind: EventDismissed, Item: *item})
	return nil
}

// Subscribe registers fn to receive queue events.
func (q *Queue) Subscribe(fn func(Event)) func() {
	return q.listeners.Subscribe(fn)
}
