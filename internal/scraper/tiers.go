package scraper

import "strings"

// tier is one fallback level in a first-match-wins extraction chain: an
// ordered list of locators plus an acceptance check on the value they read.
// Chains are declarative data; firstMatch is the only runner.
type tier struct {
	name      string
	selectors []string
	attr      string // "" reads text content, otherwise the attribute name
	limit     int    // max elements inspected per selector, 0 means 1
	accept    func(string) (string, bool)
}

// firstMatch walks tiers strictly in order and returns the first accepted
// value. Locator misses and element read errors are non-errors; they just
// fall through to the next candidate.
func firstMatch(page Page, tiers []tier) (value, tierName string, ok bool) {
	for _, t := range tiers {
		limit := t.limit
		if limit <= 0 {
			limit = 1
		}
		for _, selector := range t.selectors {
			elements, err := page.Locate(selector)
			if err != nil {
				continue
			}
			if len(elements) > limit {
				elements = elements[:limit]
			}
			for _, el := range elements {
				raw, err := readElement(el, t.attr)
				if err != nil {
					continue
				}
				raw = strings.TrimSpace(raw)
				if raw == "" {
					continue
				}
				if t.accept == nil {
					return raw, t.name, true
				}
				if v, ok := t.accept(raw); ok {
					return v, t.name, true
				}
			}
		}
	}
	return "", "", false
}

func readElement(el Element, attr string) (string, error) {
	if attr == "" {
		return el.Text()
	}
	return el.Attribute(attr)
}
