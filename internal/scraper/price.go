package scraper

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// PriceNormalizer turns raw marketplace price text into a GBP amount.
// USD-denominated prices are converted with a configured approximate rate;
// the result is a display estimate, not an authoritative conversion.
type PriceNormalizer struct {
	usdToGBP float64
}

const DefaultUSDToGBPRate = 0.78

var (
	gbpPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)£\s*([0-9][0-9,]*(?:\.[0-9]{1,2})?)`),
		regexp.MustCompile(`(?i)GBP\s*([0-9][0-9,]*(?:\.[0-9]{1,2})?)`),
	}
	usdPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)US\s*\$\s*([0-9][0-9,]*(?:\.[0-9]{1,2})?)`),
		regexp.MustCompile(`(?i)\$\s*([0-9][0-9,]*(?:\.[0-9]{1,2})?)`),
		regexp.MustCompile(`(?i)USD\s*([0-9][0-9,]*(?:\.[0-9]{1,2})?)`),
	}
	bareNumberPattern = regexp.MustCompile(`^\s*([0-9][0-9,]*(?:\.[0-9]+)?)\s*$`)
)

func NewPriceNormalizer(usdToGBP float64) *PriceNormalizer {
	if usdToGBP <= 0 {
		usdToGBP = DefaultUSDToGBPRate
	}
	return &PriceNormalizer{usdToGBP: usdToGBP}
}

// ParsePrice extracts a GBP amount from price text. GBP markers win over
// USD markers; a bare numeric token is taken to already be GBP. The second
// return value is false when nothing parseable was found.
func (n *PriceNormalizer) ParsePrice(text string) (float64, bool) {
	if text == "" {
		return 0, false
	}

	for _, pattern := range gbpPatterns {
		if m := pattern.FindStringSubmatch(text); m != nil {
			if v, err := parseAmount(m[1]); err == nil {
				return v, true
			}
		}
	}

	for _, pattern := range usdPatterns {
		if m := pattern.FindStringSubmatch(text); m != nil {
			if v, err := parseAmount(m[1]); err == nil {
				return round2(v * n.usdToGBP), true
			}
		}
	}

	if m := bareNumberPattern.FindStringSubmatch(text); m != nil {
		if v, err := parseAmount(m[1]); err == nil {
			return v, true
		}
	}

	return 0, false
}

// Convert multiplies an amount by an exchange rate, rounded to 2 decimals.
func Convert(amount, rate float64) float64 {
	return round2(amount * rate)
}

func parseAmount(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
