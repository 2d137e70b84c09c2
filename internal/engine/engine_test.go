package engine

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Veraticus/spice-sms/internal/category"
	"github.com/Veraticus/spice-sms/internal/common"
	"github.com/Veraticus/spice-sms/internal/extract"
	"github.com/Veraticus/spice-sms/internal/model"
	"github.com/Veraticus/spice-sms/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAccounts = []model.Account{
	{ID: "cash", Name: "Cash", Type: "cash"},
	{ID: "sbi", Name: "SBI Salary", AccountNumber: "XXXX4321", Type: "bank"},
	{ID: "hdfc-acc", Name: "HDFC Savings", AccountNumber: "5010001111", Type: "bank"},
}

func clock() time.Time {
	return time.Date(2026, time.March, 15, 9, 0, 0, 0, time.UTC)
}

func newTestDetector(t *testing.T, opts testutil.TestDBOptions) (*Detector, *testutil.TestDB) {
	t.Helper()
	db := testutil.SetupTestDBWithOptions(t, opts)

	config := DefaultConfig()
	config.Accounts = testAccounts
	config.Workers = 3

	d := New(db.Storage, config, extract.WithClock(clock))
	d.Load(context.Background())
	return d, db
}

func TestDetector_FormatSignConvention(t *testing.T) {
	d := New(nil, DefaultConfig())
	amount := 500.0

	expense := d.Format(&model.ExtractionResult{Amount: &amount, Type: model.TypeExpense, Confidence: 100, RuleMatched: true}, nil)
	require.NotNil(t, expense)
	assert.InDelta(t, -500.0, expense.Amount, 0.0001)

	income := d.Format(&model.ExtractionResult{Amount: &amount, Type: model.TypeIncome, Confidence: 100, RuleMatched: true}, nil)
	require.NotNil(t, income)
	assert.InDelta(t, 500.0, income.Amount, 0.0001)

	assert.Nil(t, d.Format(&model.ExtractionResult{Category: "Entertainment"}, testAccounts))
	assert.Nil(t, d.Pending)
}

func TestDetector_ScenarioA(t *testing.T) {
	d, _ := newTestDetector(t, testutil.TestDBOptions{})

	det := d.Detect(model.RawMessage{
		Text:   "Rs.500.00 debited from A/c XX1234 on 26-01-26 to VPA swiggy@upi",
		Source: model.SourceSMS,
	})
	require.True(t, det.Found())

	tx := det.Transaction
	assert.InDelta(t, -500.0, tx.Amount, 0.0001)
	assert.Equal(t, model.TypeExpense, tx.Type)
	assert.Equal(t, "2026-01-26", tx.Date)
	assert.Equal(t, category.FoodDining, tx.Category)
	assert.InDelta(t, 0.9, tx.CategoryConfidence, 0.0001)
	assert.Equal(t, "cash", tx.AccountID, "no suffix match falls back to the first account")
	assert.Equal(t, det.Extraction.RawText, tx.RawText)
}

func TestDetector_RuleWithoutAmount(t *testing.T) {
	d, _ := newTestDetector(t, testutil.TestDBOptions{})
	_, err := d.Rules.Add(context.Background(), model.RuleFields{Pattern: "netflix", Category: "Entertainment"})
	require.NoError(t, err)

	det := d.Detect(model.RawMessage{Text: "Your NETFLIX subscription was renewed"})
	assert.False(t, det.Found())
	assert.True(t, det.MissingAmount())
	assert.ErrorIs(t, det.Queueable(), common.ErrNoAmount)

	miss := d.Detect(model.RawMessage{Text: "hello there"})
	assert.False(t, miss.MissingAmount())
	assert.NoError(t, miss.Queueable())
}

func TestDetector_LearnedCategoryFlowsIntoFormat(t *testing.T) {
	d, _ := newTestDetector(t, testutil.TestDBOptions{})
	ctx := context.Background()
	text := "Rs 300 paid to zepto quick order on 02-03-2026"

	before := d.Detect(model.RawMessage{Text: text})
	require.True(t, before.Found())
	assert.Equal(t, category.Other, before.Transaction.Category)

	require.NoError(t, d.Classifier.Learn(ctx, "zepto quick order", "Groceries"))
	assert.Equal(t, model.Prediction{Category: "Groceries", Confidence: 0.8}, d.Classifier.Predict("zepto quick order", 300))

	after := d.Detect(model.RawMessage{Text: text})
	require.True(t, after.Found())
	assert.Equal(t, "Groceries", after.Transaction.Category)
	assert.InDelta(t, 0.8, after.Transaction.CategoryConfidence, 0.0001)
}

func TestDetector_AccountResolution(t *testing.T) {
	d, _ := newTestDetector(t, testutil.TestDBOptions{
		BankMappings: map[string]string{"hdfc bank": "hdfc-acc"},
		Rules: []model.CustomRule{
			{Pattern: "house rent", Category: "Housing", AccountID: "sbi"},
		},
	})

	tests := []struct {
		name    string
		msg     model.RawMessage
		wantAcc string
		wantBnk string
	}{
		{
			name:    "rule account",
			msg:     model.RawMessage{Text: "House rent Rs 15000 paid"},
			wantAcc: "sbi",
		},
		{
			name:    "sender identifies bank, mapping picks account",
			msg:     model.RawMessage{Text: "Rs 120 debited from A/c XX9999", Sender: "VM-HDFCBK"},
			wantAcc: "hdfc-acc",
			wantBnk: "HDFC Bank",
		},
		{
			name:    "suffix match",
			msg:     model.RawMessage{Text: "Rs 75 spent on card ending 4321"},
			wantAcc: "sbi",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			det := d.Detect(tt.msg)
			require.True(t, det.Found())
			assert.Equal(t, tt.wantAcc, det.Transaction.AccountID)
			assert.Equal(t, tt.wantBnk, det.Transaction.BankName)
		})
	}
}

func TestDetector_DetectBatchKeepsOrder(t *testing.T) {
	d, _ := newTestDetector(t, testutil.TestDBOptions{})

	msgs := []model.RawMessage{
		{Text: "Rs 10 debited"},
		{Text: "hello there"},
		{Text: "INR 15000 credited to your account, salary for January"},
		{Text: "Rs 20 debited"},
		{Text: ""},
	}

	var done atomic.Int32
	results, err := d.DetectBatch(context.Background(), msgs, func() { done.Add(1) })
	require.NoError(t, err)
	require.Len(t, results, len(msgs))
	assert.Equal(t, int32(len(msgs)), done.Load())

	for i, det := range results {
		assert.Equal(t, msgs[i].Text, det.Message.Text)
	}
	assert.InDelta(t, -10.0, results[0].Transaction.Amount, 0.0001)
	assert.False(t, results[1].Found())
	assert.InDelta(t, 15000.0, results[2].Transaction.Amount, 0.0001)
	assert.InDelta(t, -20.0, results[3].Transaction.Amount, 0.0001)
	assert.False(t, results[4].Found())
}

func TestDetector_DetectBatchCancelled(t *testing.T) {
	d, _ := newTestDetector(t, testutil.TestDBOptions{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.DetectBatch(ctx, []model.RawMessage{{Text: "Rs 10 debited"}}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDetector_Submit(t *testing.T) {
	d, db := newTestDetector(t, testutil.TestDBOptions{})
	ctx := context.Background()

	results, err := d.DetectBatch(ctx, []model.RawMessage{
		{Text: "Rs 10 debited on 01-03-2026"},
		{Text: "Rs 10 debited on 01-03-2026 again"},
		{Text: "not a transaction"},
		{Text: "Rs 11 debited on 01-03-2026"},
	}, nil)
	require.NoError(t, err)

	added, err := d.Submit(ctx, results)
	require.NoError(t, err)
	assert.Equal(t, 2, added)
	assert.Len(t, db.MustPending(), 2)

	_, err = New(nil, DefaultConfig()).Submit(ctx, results)
	assert.Error(t, err)
}
