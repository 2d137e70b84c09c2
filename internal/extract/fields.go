package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/spice-sms/internal/category"
	"github.com/Veraticus/spice-sms/internal/common"
	"github.com/Veraticus/spice-sms/internal/model"
)

const maxMerchantLength = 50

// Confidence added by each field resolver.
const (
	amountConfidence   = 40
	merchantConfidence = 20
	accountConfidence  = 10
	dateConfidence     = 10
	categoryConfidence = 20
)

// merchantEnd stops a merchant capture at the next clause.
const merchantEnd = `(?:\s+(?:on|via|using|for|ref|avl|upi|txn|info|thru|through|is|has|was|dated|and)\b|[.,;:](?:\s|$)|\s*[(\-]\s|\s+\d|$)`

var merchantPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bvpa\s*:?\s*([\w.\-]+@[\w.\-]+)`),
	regexp.MustCompile(`(?i)\bupi\s*[:/]\s*([\w.\-]+@[\w.\-]+|[a-z][\w&'.\- ]{1,60}?)` + merchantEnd),
	regexp.MustCompile(`(?i)\bat\s+([a-z][\w&'.@\- ]{1,60}?)` + merchantEnd),
	regexp.MustCompile(`(?i)\bto\s+([a-z][\w&'.@\- ]{1,60}?)` + merchantEnd),
	regexp.MustCompile(`(?i)\bfrom\s+([a-z][\w&'.@\- ]{1,60}?)` + merchantEnd),
}

// Captures that describe the user's own account or card rather than a
// counterparty.
var notMerchant = []string{"your", "a/c", "ac ", "account", "card"}

var accountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\ba/?c\.?\s*(?:no\.?\s*)?(?:ending\s*(?:with\s*)?)?[x*•.]*\s*(\d{3,6})\b`),
	regexp.MustCompile(`(?i)\bcard\b\D{0,30}?(?:ending\s*(?:with\s*)?)?[x*•]*(\d{4})\b`),
	regexp.MustCompile(`(?i)\b(?:account|acct)\b\D{0,20}?[x*•]*(\d{3,6})\b`),
}

var (
	numericDate = regexp.MustCompile(`\b(\d{1,2})[-/](\d{1,2})[-/](\d{4}|\d{2})\b`)
	namedDate   = regexp.MustCompile(`(?i)\b(\d{1,2})[\s-]?(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*[\s,-]*(\d{4}|\d{2})\b`)
	isoDate     = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
)

var months = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March, "apr": time.April,
	"may": time.May, "jun": time.June, "jul": time.July, "aug": time.August,
	"sep": time.September, "oct": time.October, "nov": time.November, "dec": time.December,
}

// fieldResolver fills one field of a result. Resolvers are independent:
// one failing never blocks the next.
type fieldResolver struct {
	try   func(text string, r *model.ExtractionResult) bool
	name  string
	delta int
}

var fieldResolvers = []fieldResolver{
	{name: "merchant", delta: merchantConfidence, try: resolveMerchant},
	{name: "account", delta: accountConfidence, try: resolveAccount},
	{name: "date", delta: dateConfidence, try: resolveDate},
	{name: "category", delta: categoryConfidence, try: resolveCategory},
}

func resolveMerchant(text string, r *model.ExtractionResult) bool {
	for _, re := range merchantPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if merchant := cleanMerchant(m[1]); merchant != "" {
				r.Merchant = merchant
				return true
			}
		}
	}
	return false
}

func cleanMerchant(raw string) string {
	merchant := strings.Join(strings.Fields(raw), " ")
	merchant = strings.TrimRight(merchant, ".-")
	if merchant == "" {
		return ""
	}

	lower := strings.ToLower(merchant)
	for _, prefix := range notMerchant {
		if strings.HasPrefix(lower, prefix) || lower == strings.TrimSpace(prefix) {
			return ""
		}
	}

	runes := []rune(merchant)
	if len(runes) > maxMerchantLength {
		merchant = strings.TrimSpace(string(runes[:maxMerchantLength]))
	}
	return merchant
}

func resolveAccount(text string, r *model.ExtractionResult) bool {
	for _, re := range accountPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		digits := m[1]
		if len(digits) > 4 {
			digits = digits[len(digits)-4:]
		}
		r.AccountLast4 = digits
		return true
	}
	return false
}

func resolveDate(text string, r *model.ExtractionResult) bool {
	for _, m := range numericDate.FindAllStringSubmatch(text, -1) {
		month, _ := strconv.Atoi(m[2])
		if date, ok := buildDate(m[3], time.Month(month), m[1]); ok {
			r.Date = date
			return true
		}
		common.LogDebug("Ignoring unparseable date", common.Fields{"date": m[0]})
	}

	for _, idx := range namedDate.FindAllStringSubmatchIndex(text, -1) {
		match, day, year := text[idx[0]:idx[1]], text[idx[2]:idx[3]], text[idx[6]:idx[7]]
		// "3 December 10:30" carries an hour, not a year.
		if len(year) == 2 && strings.HasPrefix(text[idx[1]:], ":") {
			common.LogDebug("Ignoring date followed by a time", common.Fields{"date": match})
			continue
		}
		month := months[strings.ToLower(text[idx[4]:idx[5]])]
		if date, ok := buildDate(year, month, day); ok {
			r.Date = date
			return true
		}
		common.LogDebug("Ignoring unparseable date", common.Fields{"date": match})
	}

	for _, m := range isoDate.FindAllStringSubmatch(text, -1) {
		month, _ := strconv.Atoi(m[2])
		if date, ok := buildDate(m[1], time.Month(month), m[3]); ok {
			r.Date = date
			return true
		}
	}

	return false
}

// buildDate validates the parts by round-tripping them through time.Date,
// which normalizes out-of-range days and months instead of rejecting them.
func buildDate(yearStr string, month time.Month, dayStr string) (string, bool) {
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return "", false
	}
	day, err := strconv.Atoi(dayStr)
	if err != nil {
		return "", false
	}
	if len(yearStr) == 2 {
		year += 2000
	}

	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return "", false
	}
	return t.Format(time.DateOnly), true
}

func resolveCategory(text string, r *model.ExtractionResult) bool {
	cat, ok := category.Lookup(text)
	if !ok {
		return false
	}
	r.Category = cat
	return true
}
