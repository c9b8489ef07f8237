package scraper

import (
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// listingScript harvests candidate summaries in one DOM pass: every anchor
// pointing at a detail page, its enclosing listing card, and the card-level
// title/price/shipping/condition/image fallbacks.
const listingScript = `
(() => {
  const out = [];
  const seen = new Set();
  const anchors = Array.from(document.querySelectorAll('a[href*="/itm/"]'));
  for (const a of anchors) {
    const href = a.getAttribute('href') || '';
    if (!href || seen.has(href)) continue;
    const card = a.closest('li') || a.closest('[class*="s-item"]') || a.parentElement;
    const title = (card && (card.querySelector('.s-item__title, h3.s-item__title, [role="heading"]')?.textContent || '').trim())
                  || (a.textContent || '').trim();
    let image = '';
    const img = card?.querySelector('img');
    if (img) image = img.getAttribute('src') || img.getAttribute('data-src') || '';
    let priceText = '';
    const priceEl = card?.querySelector('.s-item__price');
    if (priceEl) priceText = priceEl.textContent.trim();
    let shippingText = '';
    const shippingEl = card?.querySelector('.s-item__shipping, .s-item__logisticsCost');
    if (shippingEl) shippingText = shippingEl.textContent.trim();
    let conditionText = '';
    const conditionEl = card?.querySelector('.s-item__subtitle .SECONDARY_INFO, .s-item__subtitle');
    if (conditionEl) conditionText = conditionEl.textContent.trim();
    out.push({title: title, url: href, image: image, price_text: priceText,
              shipping_text: shippingText, condition_text: conditionText});
    seen.add(href);
  }
  return out;
})()
`

// ListingPageExtractor turns a rendered results page into candidate
// summaries. Strategies run in order and the first one yielding a non-empty
// list wins; an empty final result is a normal outcome for the caller.
type ListingPageExtractor struct {
	logger *slog.Logger
}

func NewListingPageExtractor(logger *slog.Logger) *ListingPageExtractor {
	return &ListingPageExtractor{logger: logger.With("component", "listing_extractor")}
}

type listingStrategy struct {
	name    string
	extract func(page Page) []CandidateListing
}

func (e *ListingPageExtractor) Extract(page Page) []CandidateListing {
	strategies := []listingStrategy{
		{name: "dom_script", extract: e.extractViaScript},
		{name: "html_parse", extract: e.extractViaHTML},
	}
	for _, strategy := range strategies {
		candidates := strategy.extract(page)
		if len(candidates) > 0 {
			e.logger.Debug("listing strategy matched", "strategy", strategy.name, "candidates", len(candidates))
			return candidates
		}
	}
	return nil
}

func (e *ListingPageExtractor) extractViaScript(page Page) []CandidateListing {
	raw, err := page.Evaluate(listingScript)
	if err != nil {
		e.logger.Debug("listing script failed", "error", err)
		return nil
	}
	entries, ok := raw.([]interface{})
	if !ok {
		return nil
	}

	var candidates []CandidateListing
	for _, entry := range entries {
		fields, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		cand := CandidateListing{
			Title:         asString(fields["title"]),
			DetailURL:     asString(fields["url"]),
			Image:         upgradeImageURL(asString(fields["image"])),
			PriceText:     asString(fields["price_text"]),
			ShippingText:  asString(fields["shipping_text"]),
			ConditionText: asString(fields["condition_text"]),
		}
		if !acceptCandidate(&cand) {
			continue
		}
		candidates = append(candidates, cand)
	}
	return candidates
}

// extractViaHTML re-reads the same card structure from the raw HTML with
// goquery. Covers pages where script evaluation fails or returns nothing.
func (e *ListingPageExtractor) extractViaHTML(page Page) []CandidateListing {
	html, err := page.Content()
	if err != nil {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var candidates []CandidateListing
	seen := make(map[string]struct{})
	doc.Find(`a[href*="/itm/"]`).Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if href == "" {
			return
		}
		if _, dup := seen[href]; dup {
			return
		}
		seen[href] = struct{}{}

		card := a.Closest("li")
		if card.Length() == 0 {
			card = a.Closest(`[class*="s-item"]`)
		}
		if card.Length() == 0 {
			card = a.Parent()
		}

		title := strings.TrimSpace(card.Find(".s-item__title, h3.s-item__title, [role=heading]").First().Text())
		if title == "" {
			title = strings.TrimSpace(a.Text())
		}

		image := ""
		if img := card.Find("img").First(); img.Length() > 0 {
			image, _ = img.Attr("src")
			if image == "" {
				image, _ = img.Attr("data-src")
			}
		}

		cand := CandidateListing{
			Title:         title,
			DetailURL:     href,
			Image:         upgradeImageURL(image),
			PriceText:     strings.TrimSpace(card.Find(".s-item__price").First().Text()),
			ShippingText:  strings.TrimSpace(card.Find(".s-item__shipping, .s-item__logisticsCost").First().Text()),
			ConditionText: strings.TrimSpace(card.Find(".s-item__subtitle").First().Text()),
		}
		if !acceptCandidate(&cand) {
			return
		}
		candidates = append(candidates, cand)
	})
	return candidates
}

// acceptCandidate cleans the title and drops listings with no usable one.
func acceptCandidate(cand *CandidateListing) bool {
	cand.Title = cleanListingTitle(cand.Title)
	if cand.Title == "" || isBoilerplateTitle(cand.Title) {
		return false
	}
	return cand.DetailURL != ""
}

// cleanListingTitle strips the accessibility suffix the marketplace injects
// into listing anchors.
func cleanListingTitle(title string) string {
	title = strings.ReplaceAll(title, "Opens in a new window or tab", "")
	return strings.TrimSpace(title)
}

func isBoilerplateTitle(title string) bool {
	lower := strings.ToLower(title)
	return strings.Contains(lower, "shop on ebay")
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}
