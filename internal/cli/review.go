package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Veraticus/spice-sms/internal/model"
)

// Decision is the user's answer for one pending transaction.
type Decision int

// Review decisions.
const (
	DecisionSkip Decision = iota
	DecisionConfirm
	DecisionDismiss
	DecisionQuit
)

// Verdict pairs a decision with the category to confirm under.
type Verdict struct {
	Category string
	Decision Decision
}

// Reviewer walks the user through pending transactions one at a time.
type Reviewer struct {
	reader *NonBlockingReader
	writer io.Writer
}

// NewReviewer creates a reviewer reading answers from r and printing to w.
func NewReviewer(r io.Reader, w io.Writer) *Reviewer {
	return &Reviewer{reader: NewNonBlockingReader(r), writer: w}
}

// Review shows item and asks what to do with it. Pressing enter confirms
// the suggested category; any other text that is not a command is taken
// as a replacement category.
func (rv *Reviewer) Review(ctx context.Context, item model.PendingTransaction, position, total int) (Verdict, error) {
	title := fmt.Sprintf("%s Pending %d of %d", InboxIcon, position, total)
	if _, err := fmt.Fprintln(rv.writer, RenderTransaction(title, item.Transaction)); err != nil {
		return Verdict{}, fmt.Errorf("failed to render transaction: %w", err)
	}
	if _, err := fmt.Fprint(rv.writer, SubtleStyle.Render("[enter] confirm  [d] dismiss  [s] skip  [q] quit  or type a category")+"\n"+FormatPrompt("Choice")); err != nil {
		return Verdict{}, fmt.Errorf("failed to write prompt: %w", err)
	}

	line, err := rv.reader.ReadLine(ctx)
	if err != nil {
		return Verdict{}, err
	}
	return ParseVerdict(line, item.Transaction.Category), nil
}

// ParseVerdict interprets one line of review input.
func ParseVerdict(input, suggested string) Verdict {
	input = strings.TrimSpace(input)
	switch strings.ToLower(input) {
	case "", "y", "yes", "c":
		return Verdict{Decision: DecisionConfirm, Category: suggested}
	case "d", "dismiss":
		return Verdict{Decision: DecisionDismiss}
	case "s", "skip":
		return Verdict{Decision: DecisionSkip}
	case "q", "quit":
		return Verdict{Decision: DecisionQuit}
	}
	return Verdict{Decision: DecisionConfirm, Category: input}
}
