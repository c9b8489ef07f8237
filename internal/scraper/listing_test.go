package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listingEntry(title, href string, extra map[string]interface{}) map[string]interface{} {
	entry := map[string]interface{}{"title": title, "url": href}
	for k, v := range extra {
		entry[k] = v
	}
	return entry
}

func TestListingExtractViaScript(t *testing.T) {
	e := NewListingPageExtractor(testLogger())

	page := newFakePage(&fakeDoc{
		evalResult: []interface{}{
			listingEntry("Vintage Omega Watch Opens in a new window or tab", "/itm/111?hash=a", map[string]interface{}{
				"image":          "https://i.ebayimg.com/images/g/a/s-l225.jpg",
				"price_text":     "£120.00",
				"shipping_text":  "Free postage",
				"condition_text": "Pre-owned",
			}),
			listingEntry("Shop on eBay", "/itm/222", nil),
			listingEntry("", "/itm/333", nil),
			listingEntry("Seiko Diver", "/itm/444", nil),
		},
	})

	candidates := e.Extract(page)
	require.Len(t, candidates, 2)

	assert.Equal(t, "Vintage Omega Watch", candidates[0].Title)
	assert.Equal(t, "/itm/111?hash=a", candidates[0].DetailURL)
	assert.Equal(t, "https://i.ebayimg.com/images/g/a/s-l1600.jpg", candidates[0].Image)
	assert.Equal(t, "£120.00", candidates[0].PriceText)
	assert.Equal(t, "Free postage", candidates[0].ShippingText)
	assert.Equal(t, "Pre-owned", candidates[0].ConditionText)

	assert.Equal(t, "Seiko Diver", candidates[1].Title)
}

const listingHTMLFixture = `
<html><body>
<ul>
  <li class="s-item">
    <a href="/itm/111?hash=a"><h3 class="s-item__title">Vintage Omega Watch</h3></a>
    <img src="https://i.ebayimg.com/images/g/a/s-l225.jpg">
    <span class="s-item__price">£120.00</span>
    <span class="s-item__shipping">Free postage</span>
    <div class="s-item__subtitle">Pre-owned</div>
  </li>
  <li class="s-item">
    <a href="/itm/222"><h3 class="s-item__title">Shop on eBay</h3></a>
  </li>
  <li class="s-item">
    <a href="/itm/333?x=1"><h3 class="s-item__title">Seiko Diver</h3></a>
    <span class="s-item__price">US $80.00</span>
  </li>
  <li class="s-item">
    <a href="/itm/333?x=1"><h3 class="s-item__title">Seiko Diver duplicate anchor</h3></a>
  </li>
</ul>
</body></html>`

func TestListingExtractHTMLFallback(t *testing.T) {
	e := NewListingPageExtractor(testLogger())

	// No script result forces the goquery strategy.
	page := newFakePage(&fakeDoc{html: listingHTMLFixture})

	candidates := e.Extract(page)
	require.Len(t, candidates, 2)

	assert.Equal(t, "Vintage Omega Watch", candidates[0].Title)
	assert.Equal(t, "https://i.ebayimg.com/images/g/a/s-l1600.jpg", candidates[0].Image)
	assert.Equal(t, "£120.00", candidates[0].PriceText)
	assert.Equal(t, "Pre-owned", candidates[0].ConditionText)

	assert.Equal(t, "Seiko Diver", candidates[1].Title)
	assert.Equal(t, "US $80.00", candidates[1].PriceText)
}

func TestListingStrategiesAreNotUnioned(t *testing.T) {
	e := NewListingPageExtractor(testLogger())

	// Both strategies could match; the first non-empty one wins outright.
	page := newFakePage(&fakeDoc{
		evalResult: []interface{}{
			listingEntry("From Script", "/itm/111", nil),
		},
		html: listingHTMLFixture,
	})

	candidates := e.Extract(page)
	require.Len(t, candidates, 1)
	assert.Equal(t, "From Script", candidates[0].Title)
}

func TestListingExtractEmptyPageIsNormal(t *testing.T) {
	e := NewListingPageExtractor(testLogger())

	page := newFakePage(&fakeDoc{html: "<html><body><p>0 results</p></body></html>"})
	assert.Empty(t, e.Extract(page))
}

func TestCleanListingTitle(t *testing.T) {
	assert.Equal(t, "Widget", cleanListingTitle("Widget Opens in a new window or tab"))
	assert.Equal(t, "Widget", cleanListingTitle("  Widget  "))
}

func TestIsBoilerplateTitle(t *testing.T) {
	assert.True(t, isBoilerplateTitle("Shop on eBay"))
	assert.True(t, isBoilerplateTitle("SHOP ON EBAY now"))
	assert.False(t, isBoilerplateTitle("Widget shop sign"))
}
