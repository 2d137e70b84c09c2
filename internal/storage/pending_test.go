package storage

import (
	"context"
	"testing"
	"time"

	"github.com/Veraticus/spice-sms/internal/common"
	"github.com/Veraticus/spice-sms/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingFixture(id string, amount float64, date string) *model.PendingTransaction {
	return &model.PendingTransaction{
		ID: id,
		Transaction: model.FormattedTransaction{
			Date:        date,
			Description: "swiggy@upi",
			Amount:      amount,
			Category:    "Food & Dining",
			Type:        model.TypeExpense,
			Confidence:  80,
		},
	}
}

func TestSQLiteStorage_PendingDedup(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	added, err := store.AddPending(ctx, pendingFixture("p1", -500, "2026-01-26"))
	require.NoError(t, err)
	assert.True(t, added)

	added, err = store.AddPending(ctx, pendingFixture("p2", -500, "2026-01-26"))
	require.NoError(t, err)
	assert.False(t, added, "same amount and date is a duplicate")

	added, err = store.AddPending(ctx, pendingFixture("p3", -500, "2026-01-27"))
	require.NoError(t, err)
	assert.True(t, added)

	items, err := store.GetPending(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "p1", items[0].ID)
	assert.Equal(t, "Food & Dining", items[0].Transaction.Category)
	assert.InDelta(t, -500.0, items[0].Transaction.Amount, 0.001)
}

func TestSQLiteStorage_PendingGetDelete(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	p := pendingFixture("p1", 1200, "2026-02-01")
	p.CreatedAt = time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	_, err := store.AddPending(ctx, p)
	require.NoError(t, err)

	got, err := store.GetPendingByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "2026-02-01", got.Transaction.Date)

	require.NoError(t, store.DeletePending(ctx, "p1"))
	assert.ErrorIs(t, store.DeletePending(ctx, "p1"), common.ErrNotFound)

	_, err = store.GetPendingByID(ctx, "p1")
	assert.ErrorIs(t, err, common.ErrNotFound)
}
