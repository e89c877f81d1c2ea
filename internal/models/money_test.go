package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		currency string
		expected string
	}{
		{
			name:     "KRW has no minor unit",
			amount:   "1000000",
			currency: CurrencyKRW,
			expected: "₩1,000,000",
		},
		{
			name:     "USD with cents",
			amount:   "1111.11",
			currency: CurrencyUSD,
			expected: "$1,111.11",
		},
		{
			name:     "USD rounds to cents",
			amount:   "1111.111",
			currency: CurrencyUSD,
			expected: "$1,111.11",
		},
		{
			name:     "negative amount",
			amount:   "-211.11",
			currency: CurrencyUSD,
			expected: "-$211.11",
		},
		{
			name:     "unknown code falls back to decimal",
			amount:   "12.3",
			currency: "ZZZ",
			expected: "12.30",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, err := decimal.NewFromString(tt.amount)
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, FormatAmount(amount, tt.currency))
		})
	}
}
