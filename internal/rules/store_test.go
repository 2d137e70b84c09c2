package rules

import (
	"context"
	"errors"
	"testing"

	"github.com/Veraticus/spice-sms/internal/common"
	"github.com/Veraticus/spice-sms/internal/model"
	"github.com/Veraticus/spice-sms/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStorage struct{}

func (failingStorage) GetRules(context.Context) ([]model.CustomRule, error) {
	return nil, errors.New("corrupt document")
}

func (failingStorage) SaveRule(context.Context, *model.CustomRule) error {
	return errors.New("disk full")
}

func (failingStorage) DeleteRule(context.Context, string) error {
	return errors.New("disk full")
}

func TestStore_AddListDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	store := NewStore(db.Storage)
	store.Load(ctx)
	assert.Empty(t, store.List())

	first, err := store.Add(ctx, model.RuleFields{
		Pattern:     " netflix ",
		Type:        model.TypeExpense,
		Category:    "Entertainment",
		Description: "Netflix Subscription",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, "netflix", first.Pattern)

	second, err := store.Add(ctx, model.RuleFields{Pattern: "rent"})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	listed := store.List()
	require.Len(t, listed, 2)
	assert.Equal(t, first.ID, listed[0].ID)
	assert.Equal(t, second.ID, listed[1].ID)

	// A fresh store sees the same persisted order.
	reloaded := NewStore(db.Storage)
	reloaded.Load(ctx)
	require.Len(t, reloaded.List(), 2)
	assert.Equal(t, first.ID, reloaded.List()[0].ID)

	require.NoError(t, store.Delete(ctx, first.ID))
	require.NoError(t, store.Delete(ctx, "missing"))
	require.Len(t, store.List(), 1)
	assert.Len(t, db.MustRules(), 1)
}

func TestStore_AddValidation(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()

	tests := []struct {
		name   string
		fields model.RuleFields
	}{
		{name: "empty pattern", fields: model.RuleFields{Pattern: "  "}},
		{name: "unknown type", fields: model.RuleFields{Pattern: "x", Type: "transfer"}},
		{name: "bad regex", fields: model.RuleFields{Pattern: "(", IsRegex: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Add(ctx, tt.fields)
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrInvalidRule)

			var userErr *common.UserError
			assert.ErrorAs(t, err, &userErr)
		})
	}
	assert.Empty(t, store.List())
}

func TestStore_PersistFailureKeepsState(t *testing.T) {
	store := NewStore(failingStorage{})
	ctx := context.Background()

	store.Load(ctx)
	assert.Empty(t, store.List())

	_, err := store.Add(ctx, model.RuleFields{Pattern: "netflix"})
	require.Error(t, err)
	assert.Empty(t, store.List())
	_, ok := store.Match("netflix")
	assert.False(t, ok)
}

func TestStore_MatchAndSubscribe(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()

	var counts []int
	unsubscribe := store.Subscribe(func(rules []model.CustomRule) {
		counts = append(counts, len(rules))
	})

	added, err := store.Add(ctx, model.RuleFields{Pattern: "swiggy order", Category: "Food Delivery"})
	require.NoError(t, err)

	m, ok := store.Match("Your Swiggy Order 250 is on the way")
	require.True(t, ok)
	assert.Equal(t, added.ID, m.Rule.ID)

	require.NoError(t, store.Delete(ctx, "absent"))
	require.NoError(t, store.Delete(ctx, added.ID))
	unsubscribe()
	_, err = store.Add(ctx, model.RuleFields{Pattern: "later"})
	require.NoError(t, err)

	assert.Equal(t, []int{1, 0}, counts)
}
