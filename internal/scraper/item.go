package scraper

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ItemFields holds whatever a detail page yielded. Every field is
// best-effort: empty/nil on total miss, never an error.
type ItemFields struct {
	PriceText   string
	PriceAmount *float64
	Condition   string
	Shipping    string
	SoldInfo    string
	Image       string
}

// ItemPageExtractor extracts detail-page fields through ordered
// first-match-wins tier chains. Price has four tiers: modern display
// locators, legacy display locators, embedded structured data, and a raw
// HTML currency scan.
type ItemPageExtractor struct {
	prices *PriceNormalizer
	logger *slog.Logger
}

func NewItemPageExtractor(prices *PriceNormalizer, logger *slog.Logger) *ItemPageExtractor {
	return &ItemPageExtractor{
		prices: prices,
		logger: logger.With("component", "item_extractor"),
	}
}

var (
	modernPriceSelectors = []string{
		".x-price-primary span",
		`[data-testid="x-price-primary"] span`,
		`span[itemprop="price"]`,
		`.ux-labels-values__values .ux-textspans`,
	}
	legacyPriceSelectors = []string{
		".vi-price .notranslate",
		"#prcIsum",
		"#mm-saleDscPrc",
		".mainPrice",
		".display-price",
		".vi-price",
		".notranslate",
	}
	conditionSelectors = []string{
		".x-item-condition-text .ux-textspans",
		`[data-testid="x-item-condition-text"] .ux-textspans`,
		"#vi-itm-cond",
		`.ux-labels-values__values:has(.ux-textspans:has-text("Condition")) .ux-textspans`,
		".vi-condition",
	}
	shippingSelectors = []string{
		"#fshippingCost",
		`.ux-labels-values__values:has(.ux-textspans:has-text("Postage")) .ux-textspans`,
		`[data-testid="x-shipping-cost"]`,
		".vi-shipping",
		".sh-price",
		".frshippingCost",
	}
	soldInfoSelectors = []string{
		`span.ux-textspans:has-text("Ended") + span.ux-textspans`,
		`div.ux-labels-values__labels:has(span:has-text("Ended")) + div .ux-textspans`,
		`span:has-text("Sold")`,
		".vi-tm-pos",
		".vi-bboxrev-pos",
	}
	imageSelectors = []string{
		"#icImg",
		"#mainImg",
		".ux-image-filmstrip__item img",
		".vi-image-gallery__main-image img",
		".picture-panel img",
	}

	embeddedPricePattern = regexp.MustCompile(`(?i)"(?:price|priceValue|convertedFromValue)"\s*:\s*"?([0-9][0-9,]*(?:\.[0-9]{1,2})?)"?`)
	rawPricePattern      = regexp.MustCompile(`[£$]\s*[0-9][0-9,]*\.?[0-9]*`)

	conditionKeywords = []string{
		"new", "used", "refurbished", "pre-owned", "preowned", "open box",
		"opened", "for parts", "not working", "good", "very good",
		"excellent", "acceptable", "mint", "condition",
	}

	lowResImageTokens = []string{
		"s-l64", "s-l96", "s-l140", "s-l225", "s-l300", "s-l500",
	}
)

const highResImageToken = "s-l1600"

// Extract pulls every field independently. A field missing on the page
// simply stays empty.
func (e *ItemPageExtractor) Extract(page Page) ItemFields {
	var fields ItemFields

	fields.PriceText, fields.PriceAmount = e.extractPrice(page)
	fields.Condition = e.extractCondition(page)
	fields.Shipping = e.extractShipping(page)
	fields.SoldInfo = e.extractSoldInfo(page)
	fields.Image = e.extractImage(page)

	return fields
}

// extractPrice tries the locator tiers first, then the embedded-data tier,
// then the raw-HTML scan. Every tier stops at the first text that parses.
func (e *ItemPageExtractor) extractPrice(page Page) (string, *float64) {
	acceptPrice := func(s string) (string, bool) {
		_, ok := e.prices.ParsePrice(s)
		return s, ok
	}
	tiers := []tier{
		{name: "modern", selectors: modernPriceSelectors, limit: 3, accept: acceptPrice},
		{name: "legacy", selectors: legacyPriceSelectors, limit: 3, accept: acceptPrice},
	}
	if text, tierName, ok := firstMatch(page, tiers); ok {
		amount, _ := e.prices.ParsePrice(text)
		e.logger.Debug("price located", "tier", tierName, "text", text)
		return text, &amount
	}

	html, err := page.Content()
	if err != nil {
		return "", nil
	}
	if text, ok := e.embeddedPrice(html); ok {
		amount, _ := e.prices.ParsePrice(text)
		e.logger.Debug("price located", "tier", "embedded", "text", text)
		return text, &amount
	}
	if text, ok := e.rawHTMLPrice(html); ok {
		amount, _ := e.prices.ParsePrice(text)
		e.logger.Debug("price located", "tier", "raw_html", "text", text)
		return text, &amount
	}
	return "", nil
}

// embeddedPrice scans inline scripts for structured price fields.
func (e *ItemPageExtractor) embeddedPrice(html string) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", false
	}
	var found string
	doc.Find("script").EachWithBreak(func(_ int, script *goquery.Selection) bool {
		text := script.Text()
		if !strings.Contains(text, "price") && !strings.Contains(text, "Price") {
			return true
		}
		for _, m := range embeddedPricePattern.FindAllStringSubmatch(text, 5) {
			if _, ok := e.prices.ParsePrice(m[1]); ok {
				found = m[1]
				return false
			}
		}
		return true
	})
	return found, found != ""
}

// rawHTMLPrice is the last resort: any currency-prefixed token in the page.
func (e *ItemPageExtractor) rawHTMLPrice(html string) (string, bool) {
	for _, match := range rawPricePattern.FindAllString(html, 10) {
		if _, ok := e.prices.ParsePrice(match); ok {
			return match, true
		}
	}
	return "", false
}

// extractCondition validates the located text against a condition-keyword
// allow-list so unrelated page text is never captured as a condition.
func (e *ItemPageExtractor) extractCondition(page Page) string {
	tiers := []tier{{
		name:      "condition",
		selectors: conditionSelectors,
		limit:     3,
		accept: func(s string) (string, bool) {
			if isConditionText(s) {
				return s, true
			}
			return "", false
		},
	}}
	value, _, _ := firstMatch(page, tiers)
	return value
}

func (e *ItemPageExtractor) extractShipping(page Page) string {
	value, _, _ := firstMatch(page, []tier{{name: "shipping", selectors: shippingSelectors}})
	return value
}

func (e *ItemPageExtractor) extractSoldInfo(page Page) string {
	value, _, _ := firstMatch(page, []tier{{name: "sold_info", selectors: soldInfoSelectors}})
	return value
}

// extractImage rejects thumbnail-sized sources and upgrades known low-res
// URL tokens to the high-resolution variant.
func (e *ItemPageExtractor) extractImage(page Page) string {
	tiers := []tier{{
		name:      "image",
		selectors: imageSelectors,
		attr:      "src",
		limit:     3,
		accept: func(src string) (string, bool) {
			if isThumbnailImage(src) {
				return "", false
			}
			return upgradeImageURL(src), true
		},
	}}
	value, _, _ := firstMatch(page, tiers)
	return value
}

func isConditionText(s string) bool {
	lower := strings.ToLower(s)
	for _, keyword := range conditionKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// isThumbnailImage reports whether the source is one of the tiny gallery
// variants that cannot be upgraded into a usable record image.
func isThumbnailImage(src string) bool {
	return strings.Contains(src, "s-l64") || strings.Contains(src, "s-l96")
}

// upgradeImageURL rewrites known low-resolution size tokens to the
// high-resolution variant. Unknown URLs pass through untouched.
func upgradeImageURL(src string) string {
	for _, token := range lowResImageTokens {
		if strings.Contains(src, token) {
			return strings.Replace(src, token, highResImageToken, 1)
		}
	}
	return src
}
