package scraper

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// CandidateListing is the lightweight summary scraped from a results page
// before its detail page is visited. It only lives until that visit.
type CandidateListing struct {
	Title         string
	DetailURL     string
	Image         string
	PriceText     string
	ShippingText  string
	ConditionText string
}

// SoldItem is one harvested record. Immutable once appended to a result.
type SoldItem struct {
	Title        string   `json:"title"`
	PriceText    string   `json:"price_text"`
	PriceGBP     *float64 `json:"price_gbp"`
	PriceUSD     *float64 `json:"price_usd"`
	ShippingText string   `json:"shipping_text,omitempty"`
	Condition    string   `json:"condition,omitempty"`
	SoldInfo     string   `json:"sold_info,omitempty"`
	URL          string   `json:"url"`
	Image        string   `json:"image,omitempty"`
}

// ScrapeRequest carries the clamped inputs of one run.
type ScrapeRequest struct {
	Query    string
	Pages    int
	PerPage  int
	Headless bool
	USDRate  float64
	Mobile   bool
}

// RunResult is the structured outcome of a run. Success is true iff at
// least one item was collected; Error is set iff Success is false.
type RunResult struct {
	Success          bool       `json:"success"`
	RunID            string     `json:"run_id"`
	Query            string     `json:"query"`
	PagesRequested   int        `json:"pages_requested"`
	PerPageRequested int        `json:"per_page_requested"`
	Count            int        `json:"count"`
	Items            []SoldItem `json:"items"`
	ElapsedSec       float64    `json:"elapsed_sec"`
	Error            string     `json:"error,omitempty"`
}

func newRunResult(req ScrapeRequest) *RunResult {
	return &RunResult{
		RunID:            uuid.New().String(),
		Query:            req.Query,
		PagesRequested:   req.Pages,
		PerPageRequested: req.PerPage,
		Items:            []SoldItem{},
	}
}

func failedRunResult(req ScrapeRequest, errMsg string) *RunResult {
	res := newRunResult(req)
	res.Success = false
	res.Error = errMsg
	return res
}

// finalize stamps count, elapsed time and the success flag. A run that
// collected nothing is a logical failure, not an execution fault.
func (r *RunResult) finalize(start time.Time) {
	r.Count = len(r.Items)
	r.ElapsedSec = math.Round(time.Since(start).Seconds()*1000) / 1000
	if r.Count > 0 {
		r.Success = true
		r.Error = ""
	} else {
		r.Success = false
		if r.Error == "" {
			r.Error = "No items collected"
		}
	}
}

// SmokeResult is the outcome of the browser liveness check.
type SmokeResult struct {
	OK    bool   `json:"ok"`
	Title string `json:"title,omitempty"`
	Error string `json:"error,omitempty"`
}
