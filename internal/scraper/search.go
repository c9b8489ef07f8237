package scraper

import (
	"fmt"
	"net/url"
)

// SearchQueryBuilder builds sold/completed listing search URLs. Building is
// pure; the base URL is validated once at construction because a malformed
// base is a configuration error, not a retryable condition.
type SearchQueryBuilder struct {
	baseURL      string
	itemsPerPage int
	condition    string
}

func NewSearchQueryBuilder(baseURL string, itemsPerPage int, condition string) (*SearchQueryBuilder, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid search base URL %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("search base URL %q must be absolute", baseURL)
	}
	if itemsPerPage <= 0 {
		itemsPerPage = 50
	}
	return &SearchQueryBuilder{
		baseURL:      baseURL,
		itemsPerPage: itemsPerPage,
		condition:    condition,
	}, nil
}

// Build returns the results-page URL for a query and 1-based page index.
// Fixed filters: sold + completed listings, newest-first sort.
func (b *SearchQueryBuilder) Build(query string, page int) string {
	if page < 1 {
		page = 1
	}
	q := url.Values{}
	q.Set("_nkw", query)
	q.Set("LH_Sold", "1")
	q.Set("LH_Complete", "1")
	q.Set("_sop", "13")
	q.Set("_ipg", fmt.Sprintf("%d", b.itemsPerPage))
	q.Set("_pgn", fmt.Sprintf("%d", page))
	if b.condition != "" {
		q.Set("LH_ItemCondition", b.condition)
	}
	return b.baseURL + "/sch/i.html?" + q.Encode()
}
