package currency_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dharmasatrya/skyfare/pkg/currency"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		code   string
		want   string
	}{
		{"usd with cents", 1234.5, "USD", "$1,234.50"},
		{"usd under a thousand", 999, "USD", "$999.00"},
		{"usd millions", 1234567.891, "USD", "$1,234,567.89"},
		{"usd zero", 0, "USD", "$0.00"},
		{"gbp", 42.1, "GBP", "£42.10"},
		{"sgd", 1050.75, "SGD", "S$1,050.75"},
		{"jpy no decimals", 12345, "JPY", "¥12,345"},
		{"jpy rounds to whole", 1234.6, "JPY", "¥1,235"},
		{"idr dot separators", 1500000, "IDR", "Rp1.500.000"},
		{"unknown code falls back", 100, "AUD", "AUD 100.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, currency.Format(tt.amount, tt.code))
		})
	}
}

func TestFormat_Negative(t *testing.T) {
	assert.Equal(t, "-$42.50", currency.Format(-42.5, "USD"))
	assert.Equal(t, "-Rp10.000", currency.Format(-10000, "IDR"))
}
