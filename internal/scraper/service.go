package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const (
	MaxPages       = 50
	MaxPerPage     = 200
	DefaultUSDRate = 1.28
)

// Pacer inserts a delay before each navigation.
type Pacer interface {
	Wait(ctx context.Context) error
}

// Options configures a scrape service. Validation happens in
// NewService because a bad base URL must fail before any browser work.
type Options struct {
	BaseURL         string
	ItemsPerPage    int
	ConditionFilter string
	MaxAttempts     int
	RetryBaseDelay  time.Duration
	NavTimeout      time.Duration
	PerPageVisitCap int
	USDToGBPRate    float64
	SmokeURL        string
}

// Service drives one browser session through search pages and detail pages,
// sequentially, and aggregates accepted records. One logical worker per
// run; the dedup registry and the accumulator are only ever touched by that
// single flow.
type Service struct {
	sessions SessionFactory
	pacer    Pacer
	search   *SearchQueryBuilder
	listing  *ListingPageExtractor
	items    *ItemPageExtractor
	prices   *PriceNormalizer
	retry    *RetryOrchestrator
	opts     Options
	logger   *slog.Logger
}

func NewService(sessions SessionFactory, pacer Pacer, opts Options, logger *slog.Logger) (*Service, error) {
	search, err := NewSearchQueryBuilder(opts.BaseURL, opts.ItemsPerPage, opts.ConditionFilter)
	if err != nil {
		return nil, err
	}
	if opts.NavTimeout <= 0 {
		opts.NavTimeout = 45 * time.Second
	}
	if opts.PerPageVisitCap <= 0 {
		opts.PerPageVisitCap = 10
	}
	if opts.SmokeURL == "" {
		opts.SmokeURL = "https://example.com"
	}

	prices := NewPriceNormalizer(opts.USDToGBPRate)
	return &Service{
		sessions: sessions,
		pacer:    pacer,
		search:   search,
		listing:  NewListingPageExtractor(logger),
		items:    NewItemPageExtractor(prices, logger),
		prices:   prices,
		retry:    NewRetryOrchestrator(opts.MaxAttempts, opts.RetryBaseDelay, logger),
		opts:     opts,
		logger:   logger.With("component", "scraper"),
	}, nil
}

// Clamped returns the request with out-of-range inputs pulled back into
// bounds. Out-of-range values are clamped, never rejected.
func (r ScrapeRequest) Clamped() ScrapeRequest {
	if r.Pages < 1 {
		r.Pages = 1
	}
	if r.Pages > MaxPages {
		r.Pages = MaxPages
	}
	if r.PerPage < 1 {
		r.PerPage = 1
	}
	if r.PerPage > MaxPerPage {
		r.PerPage = MaxPerPage
	}
	if r.USDRate <= 0 {
		r.USDRate = DefaultUSDRate
	}
	return r
}

// Scrape runs the full retry-wrapped scrape for one request.
func (s *Service) Scrape(ctx context.Context, req ScrapeRequest) *RunResult {
	req = req.Clamped()
	return s.retry.Run(ctx, req, func(ctx context.Context, attempt int) (*RunResult, error) {
		s.logger.Info("starting scrape attempt",
			"attempt", attempt, "query", req.Query, "pages", req.Pages, "per_page", req.PerPage)
		return s.runAttempt(ctx, req)
	})
}

// runAttempt is one complete pass over the requested pages. The browser
// session is released on every exit path, including panics; items already
// collected when something escapes the per-page scopes stay on the result.
func (s *Service) runAttempt(ctx context.Context, req ScrapeRequest) (res *RunResult, err error) {
	start := time.Now()
	res = newRunResult(req)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scrape attempt panicked: %v", r)
			res.finalize(start)
		}
	}()

	session, err := s.sessions(req.Headless, req.Mobile)
	if err != nil {
		res.finalize(start)
		return res, fmt.Errorf("open browser session: %w", err)
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			s.logger.Warn("session close failed", "error", cerr)
		}
	}()

	page, err := session.NewPage()
	if err != nil {
		res.finalize(start)
		return res, fmt.Errorf("open page: %w", err)
	}
	defer page.Close()

	dedup := NewDedupRegistry(s.opts.BaseURL)

	for pageNum := 1; pageNum <= req.Pages; pageNum++ {
		if len(res.Items) >= req.PerPage {
			break
		}
		if cerr := ctx.Err(); cerr != nil {
			res.finalize(start)
			return res, cerr
		}

		searchURL := s.search.Build(req.Query, pageNum)
		s.logger.Info("loading results page", "page", pageNum, "url", searchURL)

		if werr := s.pacer.Wait(ctx); werr != nil {
			res.finalize(start)
			return res, werr
		}
		if nerr := page.Navigate(ctx, searchURL, s.opts.NavTimeout); nerr != nil {
			s.logger.Warn("results page navigation failed, skipping page", "page", pageNum, "error", nerr)
			continue
		}

		s.scrollResults(page)

		candidates := s.listing.Extract(page)
		s.logger.Info("results page scanned", "page", pageNum, "candidates", len(candidates))

		visited := 0
		for _, cand := range candidates {
			if len(res.Items) >= req.PerPage || visited >= s.opts.PerPageVisitCap {
				break
			}
			if cerr := ctx.Err(); cerr != nil {
				res.finalize(start)
				return res, cerr
			}

			canonical := dedup.Canonicalize(cand.DetailURL)
			if dedup.Seen(canonical) {
				continue
			}
			dedup.Record(canonical)
			visited++

			if werr := s.pacer.Wait(ctx); werr != nil {
				res.finalize(start)
				return res, werr
			}
			if nerr := page.Navigate(ctx, dedup.Absolutize(cand.DetailURL), s.opts.NavTimeout); nerr != nil {
				s.logger.Warn("detail navigation failed, skipping item", "url", canonical, "error", nerr)
				continue
			}

			fields := s.items.Extract(page)
			item := s.buildItem(cand, fields, canonical, req.USDRate)
			res.Items = append(res.Items, item)
			s.logger.Info("collected item", "title", item.Title, "price_gbp", item.PriceGBP)
		}

		s.logger.Info("results page done", "page", pageNum, "total_items", len(res.Items))
	}

	res.finalize(start)
	return res, nil
}

// buildItem merges detail-page fields with the candidate-level fallbacks
// from the results page.
func (s *Service) buildItem(cand CandidateListing, fields ItemFields, canonicalURL string, usdRate float64) SoldItem {
	item := SoldItem{
		Title:    cand.Title,
		URL:      canonicalURL,
		SoldInfo: fields.SoldInfo,
	}

	amount := fields.PriceAmount
	if amount == nil {
		if v, ok := s.prices.ParsePrice(cand.PriceText); ok {
			amount = &v
		}
	}
	switch {
	case amount != nil:
		item.PriceGBP = amount
		usd := Convert(*amount, usdRate)
		item.PriceUSD = &usd
		item.PriceText = fmt.Sprintf("£%.2f", *amount)
	case cand.PriceText != "":
		item.PriceText = cand.PriceText
	default:
		item.PriceText = "N/A"
	}

	item.ShippingText = fields.Shipping
	if item.ShippingText == "" {
		item.ShippingText = cand.ShippingText
	}

	item.Condition = fields.Condition
	if item.Condition == "" && isConditionText(cand.ConditionText) {
		item.Condition = cand.ConditionText
	}

	item.Image = fields.Image
	if item.Image == "" {
		item.Image = cand.Image
	}

	return item
}

// scrollResults nudges lazy-loaded cards into the DOM before extraction.
func (s *Service) scrollResults(page Page) {
	for i := 0; i < 3; i++ {
		if _, err := page.Evaluate("window.scrollBy(0, 1400)"); err != nil {
			return
		}
	}
}

// Smoke navigates to one fixed, known-stable page and reports its title.
// Pure liveness check; no extraction involved.
func (s *Service) Smoke(ctx context.Context) *SmokeResult {
	session, err := s.sessions(true, false)
	if err != nil {
		return &SmokeResult{Error: fmt.Sprintf("open browser session: %v", err)}
	}
	defer session.Close()

	page, err := session.NewPage()
	if err != nil {
		return &SmokeResult{Error: fmt.Sprintf("open page: %v", err)}
	}
	defer page.Close()

	if err := page.Navigate(ctx, s.opts.SmokeURL, s.opts.NavTimeout); err != nil {
		return &SmokeResult{Error: fmt.Sprintf("navigate: %v", err)}
	}
	title, err := page.Title()
	if err != nil {
		return &SmokeResult{Error: fmt.Sprintf("read title: %v", err)}
	}
	return &SmokeResult{OK: true, Title: title}
}
