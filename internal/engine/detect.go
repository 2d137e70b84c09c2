package engine

import (
	"context"
	"fmt"

	"github.com/Veraticus/spice-sms/internal/common"
	"github.com/Veraticus/spice-sms/internal/model"
	"golang.org/x/sync/errgroup"
)

// Detection is the outcome of running one message through the pipeline.
// Extraction and Transaction are nil when the message is not a transaction.
type Detection struct {
	Extraction  *model.ExtractionResult
	Transaction *model.FormattedTransaction
	Message     model.RawMessage
}

// Found reports whether the message produced a transaction.
func (d Detection) Found() bool {
	return d.Transaction != nil
}

// MissingAmount reports a custom rule hit that yielded no amount, so there
// is nothing to book.
func (d Detection) MissingAmount() bool {
	return d.Extraction != nil && d.Transaction == nil
}

// Queueable returns common.ErrNoAmount, wrapped for the user, when the
// detection matched but cannot be queued.
func (d Detection) Queueable() error {
	if d.MissingAmount() {
		return common.NewUserError("matched a custom rule but found no amount to queue", common.ErrNoAmount)
	}
	return nil
}

// Detect runs msg through the pipeline against the configured accounts.
func (d *Detector) Detect(msg model.RawMessage) Detection {
	det := Detection{Message: msg}

	r := d.extractor.ParseMessage(msg.Text)
	if r == nil {
		return det
	}

	if r.BankName == "" && msg.Sender != "" {
		if name := d.Banks.IdentifySender(msg.Sender); name != "" {
			withBank := *r
			withBank.BankName = name
			r = &withBank
		}
	}

	det.Extraction = r
	det.Transaction = d.Format(r, d.config.Accounts)
	return det
}

// DetectBatch runs every message through Detect in parallel, bounded by the
// configured worker count. Results keep the input order. onDone, if set, is
// called once per finished message and may be called concurrently.
func (d *Detector) DetectBatch(ctx context.Context, msgs []model.RawMessage, onDone func()) ([]Detection, error) {
	results := make([]Detection, len(msgs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.config.Workers)

	for i, msg := range msgs {
		i, msg := i, msg
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = d.Detect(msg)
			if onDone != nil {
				onDone()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch detection interrupted: %w", err)
	}

	common.LogDebug("Batch detection finished", common.Fields{"messages": len(msgs), "workers": d.config.Workers})
	return results, nil
}

// Submit enqueues every found transaction and returns how many were added.
// Duplicates of already pending items are skipped.
func (d *Detector) Submit(ctx context.Context, detections []Detection) (int, error) {
	if d.Pending == nil {
		return 0, fmt.Errorf("pending queue unavailable without storage")
	}

	added := 0
	for _, det := range detections {
		if !det.Found() {
			continue
		}
		_, ok, err := d.Pending.Enqueue(ctx, det.Transaction)
		if err != nil {
			return added, err
		}
		if ok {
			added++
		}
	}
	return added, nil
}
