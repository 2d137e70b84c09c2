package classifier

import (
	"context"
	"errors"
	"testing"

	"github.com/Veraticus/spice-sms/internal/category"
	"github.com/Veraticus/spice-sms/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	loadErr  error
	saveErr  error
	model    model.ClassifierModel
	saved    [][2]string
}

func (f *fakeStore) GetClassifierModel(_ context.Context) (model.ClassifierModel, error) {
	if f.loadErr != nil {
		return model.ClassifierModel{}, f.loadErr
	}
	return f.model, nil
}

func (f *fakeStore) SaveMapping(_ context.Context, description, cat string) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, [2]string{description, cat})
	return nil
}

func TestClassifier_PredictTiers(t *testing.T) {
	store := &fakeStore{model: model.ClassifierModel{
		Mappings: map[string]string{"corner store": "Groceries"},
	}}
	c := New(store)
	c.Load(context.Background())

	tests := []struct {
		name        string
		description string
		want        model.Prediction
	}{
		{
			name:        "keyword dictionary",
			description: "Swiggy Order",
			want:        model.Prediction{Category: category.FoodDining, Confidence: KeywordConfidence},
		},
		{
			name:        "learned mapping is case insensitive",
			description: "  Corner STORE ",
			want:        model.Prediction{Category: "Groceries", Confidence: LearnedConfidence},
		},
		{
			name:        "unknown description",
			description: "someone",
			want:        model.Prediction{Category: category.Other, Confidence: DefaultConfidence},
		},
		{
			name:        "empty description",
			description: "",
			want:        model.Prediction{Category: category.Other, Confidence: DefaultConfidence},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Predict(tt.description, 100))
		})
	}
}

func TestClassifier_LearnThenPredict(t *testing.T) {
	store := &fakeStore{}
	c := New(store)
	c.Load(context.Background())

	require.NoError(t, c.Learn(context.Background(), "zepto quick order", "Groceries"))

	got := c.Predict("zepto quick order", 300)
	assert.Equal(t, model.Prediction{Category: "Groceries", Confidence: 0.8}, got)
	assert.Equal(t, [][2]string{{"zepto quick order", "Groceries"}}, store.saved)
	assert.Equal(t, 1, c.Model().Frequencies["Groceries"])
}

func TestClassifier_LearnOverwrites(t *testing.T) {
	c := New(nil)
	ctx := context.Background()

	require.NoError(t, c.Learn(ctx, "Local Shop", "Groceries"))
	require.NoError(t, c.Learn(ctx, "local shop", "Shopping"))

	assert.Equal(t, "Shopping", c.Predict("LOCAL SHOP", 0).Category)
	assert.Len(t, c.Model().Mappings, 1)
}

func TestClassifier_LearnFailureKeepsState(t *testing.T) {
	store := &fakeStore{saveErr: errors.New("disk full")}
	c := New(store)

	err := c.Learn(context.Background(), "local shop", "Groceries")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, category.Other, c.Predict("local shop", 0).Category)
	assert.Empty(t, c.Model().Mappings)
}

func TestClassifier_LearnRejectsEmpty(t *testing.T) {
	c := New(nil)
	assert.Error(t, c.Learn(context.Background(), " ", "Groceries"))
	assert.Error(t, c.Learn(context.Background(), "shop", ""))
}

func TestClassifier_LoadFailureStartsEmpty(t *testing.T) {
	c := New(&fakeStore{loadErr: errors.New("corrupt")})
	c.Load(context.Background())

	assert.Empty(t, c.Model().Mappings)
	assert.Equal(t, category.Other, c.Predict("anything", 0).Category)
}

func TestClassifier_Subscribe(t *testing.T) {
	c := New(nil)
	var events []LearnEvent
	unsubscribe := c.Subscribe(func(e LearnEvent) { events = append(events, e) })

	require.NoError(t, c.Learn(context.Background(), "Local Shop", "Groceries"))
	unsubscribe()
	require.NoError(t, c.Learn(context.Background(), "other shop", "Groceries"))

	assert.Equal(t, []LearnEvent{{Description: "local shop", Category: "Groceries"}}, events)
}

func TestClassifier_Suggest(t *testing.T) {
	c := New(nil)
	ctx := context.Background()

	require.NoError(t, c.Learn(ctx, "corner grocery store", "Groceries"))
	assert.Nil(t, c.Suggest("grocery", 3), "one class is not enough to rank")

	require.NoError(t, c.Learn(ctx, "fresh grocery mart", "Groceries"))
	require.NoError(t, c.Learn(ctx, "city cinema hall", "Entertainment"))

	suggestions := c.Suggest("grocery mart", 2)
	require.Len(t, suggestions, 2)
	assert.Equal(t, "Groceries", suggestions[0].Category)
	assert.GreaterOrEqual(t, suggestions[0].Confidence, suggestions[1].Confidence)

	assert.Nil(t, c.Suggest("", 2))
	assert.Len(t, c.Suggest("cinema", 1), 1)
}
