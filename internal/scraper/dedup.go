package scraper

import "strings"

// DedupRegistry canonicalizes listing URLs and remembers which canonical
// URLs have already been processed. Scope is a single run; nothing is
// persisted across runs.
type DedupRegistry struct {
	baseURL string
	seen    map[string]struct{}
}

func NewDedupRegistry(baseURL string) *DedupRegistry {
	return &DedupRegistry{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		seen:    make(map[string]struct{}),
	}
}

// Absolutize resolves protocol-relative and site-relative URLs against the
// base host. Already-absolute URLs pass through unchanged.
func (r *DedupRegistry) Absolutize(raw string) string {
	switch {
	case strings.HasPrefix(raw, "//"):
		return "https:" + raw
	case strings.HasPrefix(raw, "http://"), strings.HasPrefix(raw, "https://"):
		return raw
	case strings.HasPrefix(raw, "/"):
		return r.baseURL + raw
	default:
		return r.baseURL + "/" + raw
	}
}

// Canonicalize strips the query string and fragment from an absolutized
// URL. Canonical URLs are the dedup key; tracking parameters never
// distinguish two listings.
func (r *DedupRegistry) Canonicalize(raw string) string {
	u := r.Absolutize(raw)
	if i := strings.IndexByte(u, '?'); i >= 0 {
		u = u[:i]
	}
	if i := strings.IndexByte(u, '#'); i >= 0 {
		u = u[:i]
	}
	return u
}

func (r *DedupRegistry) Seen(canonical string) bool {
	_, ok := r.seen[canonical]
	return ok
}

func (r *DedupRegistry) Record(canonical string) {
	r.seen[canonical] = struct{}{}
}
