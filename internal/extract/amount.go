package extract

import (
	"regexp"
	"strings"

	"github.com/Veraticus/spice-sms/internal/model"
	"github.com/shopspring/decimal"
)

const (
	currency = `(?:\b(?:rs\.?|inr)|₹)\s*`
	number   = `([\d,]+(?:\.\d{1,2})?)(?:/-)?`

	expenseCues = `(?:debited|spent|paid|sent|withdrawn|purchase|transaction)`
	incomeCues  = `(?:credited|received|deposited|refunded|refund|reversed)`
	auxiliary   = `(?:has\s+been\s+|is\s+|was\s+|been\s+)?`
)

var (
	minAmount = decimal.Zero
	maxAmount = decimal.NewFromInt(10_000_000)
)

// amountPattern pairs a regex whose first group is the amount with the
// direction it implies. A candidate is dropped when the text right after
// the match satisfies unless.
type amountPattern struct {
	re     *regexp.Regexp
	unless *regexp.Regexp
	typ    model.TransactionType
}

// followedByIncome catches "transaction alert: Rs 100 credited", where the
// cue before the amount is generic and the one after it decides.
var followedByIncome = regexp.MustCompile(`(?i)^\s*` + auxiliary + incomeCues + `\b`)

// amountFamilies are tried in order: expense cues, income cues, then the
// Dr/Cr abbreviations.
var amountFamilies = [][]amountPattern{
	{
		{re: regexp.MustCompile(`(?i)` + currency + number + `\s*` + auxiliary + expenseCues), typ: model.TypeExpense},
		{re: regexp.MustCompile(`(?i)\b` + expenseCues + `\b\D{0,40}?` + currency + number), unless: followedByIncome, typ: model.TypeExpense},
	},
	{
		{re: regexp.MustCompile(`(?i)` + currency + number + `\s*` + auxiliary + incomeCues), typ: model.TypeIncome},
		{re: regexp.MustCompile(`(?i)\b` + incomeCues + `\b\D{0,40}?` + currency + number), typ: model.TypeIncome},
	},
	{
		{re: regexp.MustCompile(`(?i)` + currency + number + `\s*(?:dr|debit)\b`), typ: model.TypeExpense},
		{re: regexp.MustCompile(`(?i)\b(?:dr|debit)\b\D{0,20}?` + currency + number), typ: model.TypeExpense},
		{re: regexp.MustCompile(`(?i)` + currency + number + `\s*(?:cr|credit)\b`), typ: model.TypeIncome},
		{re: regexp.MustCompile(`(?i)\b(?:cr|credit)\b\D{0,20}?` + currency + number), typ: model.TypeIncome},
	},
}

// currencyAmount finds any currency-prefixed number regardless of direction.
var currencyAmount = regexp.MustCompile(`(?i)` + currency + number)

// findAmount returns the first in-range amount from the pattern families
// together with the direction of the pattern that produced it.
func findAmount(text string) (float64, model.TransactionType, bool) {
	for _, family := range amountFamilies {
		for _, p := range family {
			for _, m := range p.re.FindAllStringSubmatchIndex(text, -1) {
				if p.unless != nil && p.unless.MatchString(text[m[1]:]) {
					continue
				}
				if v, ok := parseAmount(text[m[2]:m[3]]); ok {
					return v, p.typ, true
				}
			}
		}
	}
	return 0, "", false
}

// scanCurrencyAmount returns the first in-range currency-prefixed number.
func scanCurrencyAmount(text string) (float64, bool) {
	for _, m := range currencyAmount.FindAllStringSubmatch(text, -1) {
		if v, ok := parseAmount(m[1]); ok {
			return v, true
		}
	}
	return 0, false
}

// parseAmount strips thousands separators and enforces the (0, 10,000,000)
// sanity bound.
func parseAmount(raw string) (float64, bool) {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if raw == "" {
		return 0, false
	}

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, false
	}
	if !d.GreaterThan(minAmount) || !d.LessThan(maxAmount) {
		return 0, false
	}

	return d.Round(2).InexactFloat64(), true
}
