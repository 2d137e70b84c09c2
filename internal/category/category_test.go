package category

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   string
		wantOK bool
	}{
		{name: "vpa handle", text: "to VPA swiggy@upi", want: FoodDining, wantOK: true},
		{name: "upper case", text: "AMAZON PAY INDIA", want: Shopping, wantOK: true},
		{name: "table order breaks ties", text: "swiggy instamart order", want: FoodDining, wantOK: true},
		{name: "salary", text: "salary for January", want: Income, wantOK: true},
		{name: "unknown merchant", text: "zepto quick order", wantOK: false},
		{name: "short keyword inside a word", text: "GOSSIP BAR", wantOK: false},
		{name: "short keyword inside a brand", text: "TOYOTA SERVICE", wantOK: false},
		{name: "short keyword as a word", text: "monthly SIP instalment", want: Investments, wantOK: true},
		{name: "short keyword before a handle", text: "paid to jio@upi", want: Bills, wantOK: true},
		{name: "empty", text: "   ", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Lookup(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNames_EndsWithOther(t *testing.T) {
	names := Names()
	assert.Equal(t, Other, names[len(names)-1])
	assert.Equal(t, FoodDining, names[0])
}
