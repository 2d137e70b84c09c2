// Package format normalizes extraction results into the transaction shape
// handed to the pending queue.
package format

import (
	"github.com/Veraticus/spice-sms/internal/category"
	"github.com/Veraticus/spice-sms/internal/common"
	"github.com/Veraticus/spice-sms/internal/model"
)

// DefaultReclassifyThreshold is the extraction confidence below which the
// classifier is consulted.
const DefaultReclassifyThreshold = 90

// Category confidence reported for each source of the category.
const (
	ruleCategoryConfidence    = 1.0
	keywordCategoryConfidence = 0.9
	defaultCategoryConfidence = 0.1

	// minOverrideConfidence is the weakest prediction allowed to replace
	// the extracted category.
	minOverrideConfidence = 0.8
)

// Predictor predicts a category for a description.
type Predictor interface {
	Predict(description string, amount float64) model.Prediction
}

// Formatter converts extraction results into FormattedTransactions.
type Formatter struct {
	classifier Predictor
	threshold  int
}

// Option configures a Formatter.
type Option func(*Formatter)

// WithThreshold overrides DefaultReclassifyThreshold.
func WithThreshold(threshold int) Option {
	return func(f *Formatter) {
		f.threshold = threshold
	}
}

// New creates a formatter. A nil classifier disables reclassification.
func New(classifier Predictor, opts ...Option) *Formatter {
	f := &Formatter{
		classifier: classifier,
		threshold:  DefaultReclassifyThreshold,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format builds the transaction for r booked against accountID. It returns
// nil when r carries no amount.
func (f *Formatter) Format(r *model.ExtractionResult, accountID string) *model.FormattedTransaction {
	if !r.HasAmount() {
		return nil
	}

	amount := *r.Amount
	typ := r.Type
	if typ == model.TypeExpense {
		amount = -amount
	} else if !typ.Valid() {
		typ = model.TypeIncome
	}

	cat, catConfidence := f.categorize(r, *r.Amount)

	return &model.FormattedTransaction{
		Date:               r.Date,
		Description:        r.Description,
		Amount:             amount,
		Category:           cat,
		AccountID:          accountID,
		Type:               typ,
		Confidence:         r.Confidence,
		CategoryConfidence: catConfidence,
		BankName:           r.BankName,
		RawText:            r.RawText,
	}
}

func (f *Formatter) categorize(r *model.ExtractionResult, amount float64) (string, float64) {
	if r.RuleMatched {
		return r.Category, ruleCategoryConfidence
	}

	cat := r.Category
	confidence := defaultCategoryConfidence
	if cat != "" && cat != category.Other {
		confidence = keywordCategoryConfidence
	}
	if cat == "" {
		cat = category.Other
	}

	if f.classifier == nil || r.Confidence >= f.threshold {
		return cat, confidence
	}

	prediction := f.classifier.Predict(r.Description, amount)
	if prediction.Confidence >= minOverrideConfidence && prediction.Category != "" {
		if prediction.Category != cat {
			common.LogDebug("Reclassified transaction", common.Fields{
				"from":       cat,
				"to":         prediction.Category,
				"confidence": prediction.Confidence,
			})
		}
		return prediction.Category, prediction.Confidence
	}

	return cat, confidence
}
