package scraper

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePriceGBP(t *testing.T) {
	n := NewPriceNormalizer(0.78)

	tests := []struct {
		name     string
		input    string
		expected float64
	}{
		{"Symbol with decimals", "£12.50", 12.50},
		{"Symbol with space", "£ 5.00", 5.00},
		{"Thousands separator", "£1,299.99", 1299.99},
		{"Currency code", "GBP 45", 45},
		{"Lowercase code", "gbp 45.50", 45.50},
		{"Embedded in text", "Sold for £20.00 inc postage", 20.00},
		{"Range takes first", "£5.00 to £10.00", 5.00},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := n.ParsePrice(tt.input)
			require.True(t, ok)
			assert.Equal(t, tt.expected, v)
		})
	}
}

func TestParsePriceUSDConversion(t *testing.T) {
	n := NewPriceNormalizer(0.78)

	tests := []struct {
		name     string
		input    string
		expected float64
	}{
		{"Dollar symbol", "$10.00", 7.80},
		{"US prefix", "US $10.00", 7.80},
		{"Currency code", "USD 100", 78.00},
		{"Thousands separator", "$1,000", 780.00},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := n.ParsePrice(tt.input)
			require.True(t, ok)
			assert.Equal(t, tt.expected, v)
		})
	}
}

func TestParsePriceBareNumber(t *testing.T) {
	n := NewPriceNormalizer(0.78)

	v, ok := n.ParsePrice("10.50")
	require.True(t, ok)
	assert.Equal(t, 10.50, v)

	v, ok = n.ParsePrice(" 1,250 ")
	require.True(t, ok)
	assert.Equal(t, 1250.0, v)
}

func TestParsePriceUnparseable(t *testing.T) {
	n := NewPriceNormalizer(0.78)

	for _, input := range []string{"", "N/A", "Free postage", "30in waist", "£"} {
		_, ok := n.ParsePrice(input)
		assert.False(t, ok, "input %q", input)
	}
}

func TestParsePriceGBPWinsOverUSD(t *testing.T) {
	n := NewPriceNormalizer(0.78)

	// When both markers appear, the base currency match wins unconverted.
	v, ok := n.ParsePrice("£20.00 (US $25.64)")
	require.True(t, ok)
	assert.Equal(t, 20.00, v)
}

func TestParsePriceIdempotentUnderFormatting(t *testing.T) {
	n := NewPriceNormalizer(0.78)

	for _, input := range []string{"£12.50", "$10.00", "£1,299.99", "7"} {
		first, ok := n.ParsePrice(input)
		require.True(t, ok)

		second, ok := n.ParsePrice(fmt.Sprintf("£%.2f", first))
		require.True(t, ok)
		assert.Equal(t, first, second, "input %q", input)
	}
}

func TestConvert(t *testing.T) {
	assert.Equal(t, 12.80, Convert(10.00, 1.28))
	assert.Equal(t, 7.80, Convert(10.00, 0.78))
	assert.Equal(t, 12.99, Convert(12.987, 1.0))
	assert.Equal(t, 0.0, Convert(0, 1.28))
}

func TestNewPriceNormalizerDefaultsRate(t *testing.T) {
	n := NewPriceNormalizer(0)
	v, ok := n.ParsePrice("$10.00")
	require.True(t, ok)
	assert.Equal(t, 7.80, v)
}
