// Package category holds the curated merchant keyword table shared by the
// extraction engine and the classifier.
package category

import (
	"regexp"
	"strings"
)

// Other is the fallback category.
const Other = "Other"

// Category names produced by the keyword table.
const (
	FoodDining    = "Food & Dining"
	Groceries     = "Groceries"
	Shopping      = "Shopping"
	Transport     = "Transportation"
	Entertainment = "Entertainment"
	Bills         = "Bills & Utilities"
	Health        = "Health"
	Travel        = "Travel"
	Education     = "Education"
	Investments   = "Investments"
	Income        = "Income"
)

// Entry maps a category to the keywords that indicate it.
type Entry struct {
	Category string
	Keywords []string
}

// Table is scanned in order; the first category with a keyword hit wins.
var Table = []Entry{
	{FoodDining, []string{
		"swiggy", "zomato", "restaurant", "cafe", "dominos", "pizza", "mcdonald",
		"kfc", "burger king", "starbucks", "eatsure", "dunkin", "chaayos",
	}},
	{Groceries, []string{
		"bigbasket", "blinkit", "grofers", "dmart", "jiomart", "grocery",
		"supermarket", "instamart", "more retail",
	}},
	{Shopping, []string{
		"amazon", "flipkart", "myntra", "ajio", "meesho", "nykaa", "tata cliq",
		"decathlon", "ikea", "croma",
	}},
	{Transport, []string{
		"uber", "olacabs", "ola cabs", "rapido", "fuel", "petrol", "diesel",
		"fastag", "metro rail", "indian oil", "hpcl", "bpcl",
	}},
	{Travel, []string{
		"irctc", "makemytrip", "goibibo", "cleartrip", "indigo", "air india",
		"vistara", "redbus", "oyo",
	}},
	{Entertainment, []string{
		"netflix", "spotify", "hotstar", "prime video", "bookmyshow", "pvr",
		"inox", "youtube premium", "sonyliv", "zee5",
	}},
	{Bills, []string{
		"electricity", "airtel", "jio", "vodafone", "vi postpaid", "bsnl",
		"broadband", "recharge", "bescom", "water bill", "gas bill",
	}},
	{Health, []string{
		"pharmacy", "apollo", "hospital", "medical", "pharmeasy", "netmeds",
		"1mg", "clinic", "diagnostic",
	}},
	{Education, []string{
		"school fee", "college", "udemy", "coursera", "byju", "tuition",
	}},
	{Investments, []string{
		"zerodha", "groww", "mutual fund", "sip", "nps", "upstox",
	}},
	{Income, []string{
		"salary", "interest credited", "dividend", "cashback",
	}},
}

// Lookup returns the first category whose keyword occurs in text,
// case-insensitively.
func Lookup(text string) (string, bool) {
	lower := strings.ToLower(text)
	if strings.TrimSpace(lower) == "" {
		return "", false
	}
	for _, entry := range Table {
		if containsAny(lower, entry.Keywords...) {
			return entry.Category, true
		}
	}
	return "", false
}

// Names lists the categories the table can produce, in table order.
func Names() []string {
	names := make([]string, 0, len(Table)+1)
	for _, entry := range Table {
		names = append(names, entry.Category)
	}
	return append(names, Other)
}

// Keywords this short only count as whole words, so "sip" stays out of
// "gossip" and "oyo" out of "toyota".
const shortKeyword = 4

var wholeWord = func() map[string]*regexp.Regexp {
	m := make(map[string]*regexp.Regexp)
	for _, entry := range Table {
		for _, keyword := range entry.Keywords {
			if len(keyword) <= shortKeyword {
				m[keyword] = regexp.MustCompile(`\b` + regexp.QuoteMeta(keyword) + `\b`)
			}
		}
	}
	return m
}()

// containsAny checks if text contains any of the given keywords.
func containsAny(text string, keywords ...string) bool {
	for _, keyword := range keywords {
		if re, ok := wholeWord[keyword]; ok {
			if re.MatchString(text) {
				return true
			}
			continue
		}
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}
