package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-sms/internal/model"
)

func TestParseVerdict(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Verdict
	}{
		{name: "enter confirms suggestion", input: "", want: Verdict{Decision: DecisionConfirm, Category: "Food"}},
		{name: "yes confirms suggestion", input: "Y", want: Verdict{Decision: DecisionConfirm, Category: "Food"}},
		{name: "dismiss", input: "d", want: Verdict{Decision: DecisionDismiss}},
		{name: "skip", input: " skip ", want: Verdict{Decision: DecisionSkip}},
		{name: "quit", input: "q", want: Verdict{Decision: DecisionQuit}},
		{name: "replacement category", input: "Groceries", want: Verdict{Decision: DecisionConfirm, Category: "Groceries"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseVerdict(tt.input, "Food"))
		})
	}
}

func TestReviewer_Review(t *testing.T) {
	var out bytes.Buffer
	rv := NewReviewer(strings.NewReader("Shopping\n"), &out)

	item := model.PendingTransaction{
		ID: "p1",
		Transaction: model.FormattedTransaction{
			Date:        "2026-01-15",
			Description: "Swiggy",
			Category:    "Food",
			Amount:      -450,
			BankName:    "HDFC Bank",
		},
	}

	verdict, err := rv.Review(context.Background(), item, 1, 3)
	require.NoError(t, err)

	assert.Equal(t, Verdict{Decision: DecisionConfirm, Category: "Shopping"}, verdict)
	assert.Contains(t, out.String(), "Pending 1 of 3")
	assert.Contains(t, out.String(), "Swiggy")
	assert.Contains(t, out.String(), "HDFC Bank")
}

func TestReviewer_ReviewCancelled(t *testing.T) {
	rv := NewReviewer(strings.NewReader(""), &bytes.Buffer{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := rv.Review(ctx, model.PendingTransaction{}, 1, 1)
	assert.ErrorIs(t, err, ErrInputCancelled)
}
