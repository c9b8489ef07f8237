package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/certiauth/ebay-sold-scraper/internal/cache"
	"github.com/certiauth/ebay-sold-scraper/internal/scraper"
	"github.com/certiauth/ebay-sold-scraper/internal/storage"
)

// Handlers is the HTTP surface over the scrape service. Scrape failures are
// reported as structured payloads with success=false, not as 5xx responses;
// platforms polling the service must not conclude it is dead because a
// marketplace page changed shape.
type Handlers struct {
	scraper *scraper.Service
	cache   *cache.ResultCache // optional, nil when Redis is not configured
	store   *storage.RunStore  // optional, nil when Postgres is not configured
	logger  *slog.Logger
}

func NewHandlers(svc *scraper.Service, resultCache *cache.ResultCache, store *storage.RunStore, logger *slog.Logger) *Handlers {
	return &Handlers{
		scraper: svc,
		cache:   resultCache,
		store:   store,
		logger:  logger.With("component", "api"),
	}
}

// Index describes the service and its endpoints.
func (h *Handlers) Index(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"service": "ebay-sold-scraper",
		"endpoints": map[string]string{
			"health": "/health",
			"smoke":  "/smoke",
			"scrape": "/scrape?query=...&pages=1&per_page=30&headless=true",
			"runs":   "/runs",
		},
	})
}

// Health reports liveness plus which optional backends are wired.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"cache":   h.cache != nil,
		"storage": h.store != nil,
	})
}

// Smoke runs the browser liveness check against a fixed stable page.
func (h *Handlers) Smoke(w http.ResponseWriter, r *http.Request) {
	res := h.scraper.Smoke(r.Context())
	// Failures stay 200 so orchestration platforms don't restart the service.
	h.respondJSON(w, http.StatusOK, res)
}

// Scrape handles GET /scrape. Out-of-range inputs are clamped, not
// rejected; only a missing query is a client error.
func (h *Handlers) Scrape(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	query := q.Get("query")
	if query == "" {
		h.respondError(w, http.StatusBadRequest, "query is required")
		return
	}

	req := scraper.ScrapeRequest{
		Query:    query,
		Pages:    queryInt(q.Get("pages"), 1),
		PerPage:  queryInt(q.Get("per_page"), 30),
		Headless: queryBool(q.Get("headless"), true),
		USDRate:  queryFloat(q.Get("usd_rate"), scraper.DefaultUSDRate),
		Mobile:   queryBool(q.Get("mobile"), false),
	}.Clamped()

	if queryBool(q.Get("dummy"), false) {
		h.respondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"items":   []scraper.SoldItem{},
			"note":    "dummy response (no browser launched)",
			"params": map[string]interface{}{
				"query":    req.Query,
				"pages":    req.Pages,
				"per_page": req.PerPage,
				"headless": req.Headless,
				"usd_rate": req.USDRate,
				"mobile":   req.Mobile,
			},
		})
		return
	}

	if h.cache != nil {
		if payload, ok := h.cache.Get(r.Context(), cache.Key(req)); ok {
			h.logger.Info("serving cached result", "query", req.Query)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write(payload)
			return
		}
	}

	result := h.scraper.Scrape(r.Context(), req)

	if h.store != nil {
		if err := h.store.SaveRun(r.Context(), result); err != nil {
			h.logger.Warn("failed to record run", "run_id", result.RunID, "error", err)
		}
	}
	if h.cache != nil && result.Success {
		if payload, err := json.Marshal(result); err == nil {
			h.cache.Set(r.Context(), cache.Key(req), payload)
		}
	}

	h.respondJSON(w, http.StatusOK, result)
}

// Runs lists recent stored run summaries.
func (h *Handlers) Runs(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		h.respondError(w, http.StatusNotFound, "run history storage is not configured")
		return
	}
	records, err := h.store.RecentRuns(r.Context(), queryInt(r.URL.Query().Get("limit"), 50))
	if err != nil {
		h.logger.Error("failed to list runs", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	if records == nil {
		records = []storage.RunRecord{}
	}
	h.respondJSON(w, http.StatusOK, records)
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

func queryInt(raw string, defaultValue int) int {
	if raw == "" {
		return defaultValue
	}
	if v, err := strconv.Atoi(raw); err == nil {
		return v
	}
	return defaultValue
}

func queryFloat(raw string, defaultValue float64) float64 {
	if raw == "" {
		return defaultValue
	}
	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		return v
	}
	return defaultValue
}

func queryBool(raw string, defaultValue bool) bool {
	if raw == "" {
		return defaultValue
	}
	if v, err := strconv.ParseBool(raw); err == nil {
		return v
	}
	return defaultValue
}
