// Package handler exposes the search engine over HTTP.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Text-Search-Server/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/Text-Search-Server/internal/batch"
	"github.com/Adithya-Monish-Kumar-K/Text-Search-Server/internal/dedup"
	"github.com/Adithya-Monish-Kumar-K/Text-Search-Server/internal/paginate"
	"github.com/Adithya-Monish-Kumar-K/Text-Search-Server/internal/requests"
	"github.com/Adithya-Monish-Kumar-K/Text-Search-Server/internal/search"
	"github.com/Adithya-Monish-Kumar-K/Text-Search-Server/internal/service/cache"
	pkgerrors "github.com/Adithya-Monish-Kumar-K/Text-Search-Server/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Text-Search-Server/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Text-Search-Server/pkg/metrics"
)

// Handler serves the document and search endpoints. Cache, collector, and
// metrics are optional; a nil value disables that concern.
type Handler struct {
	engine        *search.Server
	window        *requests.Window
	cache         *cache.QueryCache
	collector     *analytics.Collector
	metrics       *metrics.Metrics
	defaultPolicy search.ExecutionPolicy
	logger        *slog.Logger
}

func New(
	engine *search.Server,
	window *requests.Window,
	queryCache *cache.QueryCache,
	collector *analytics.Collector,
	m *metrics.Metrics,
	defaultPolicy search.ExecutionPolicy,
) *Handler {
	return &Handler{
		engine:        engine,
		window:        window,
		cache:         queryCache,
		collector:     collector,
		metrics:       m,
		defaultPolicy: defaultPolicy,
		logger:        slog.Default().With("component", "search-handler"),
	}
}

// Register wires every route onto the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/documents", h.AddDocument)
	mux.HandleFunc("GET /api/v1/documents", h.ListDocuments)
	mux.HandleFunc("DELETE /api/v1/documents/{id}", h.RemoveDocument)
	mux.HandleFunc("GET /api/v1/documents/{id}/frequencies", h.WordFrequencies)
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("POST /api/v1/search/batch", h.BatchSearch)
	mux.HandleFunc("GET /api/v1/match", h.Match)
	mux.HandleFunc("GET /api/v1/stats", h.Stats)
	mux.HandleFunc("POST /api/v1/maintenance/deduplicate", h.Deduplicate)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
}

type addDocumentRequest struct {
	ID      int    `json:"id"`
	Text    string `json:"text"`
	Status  string `json:"status"`
	Ratings []int  `json:"ratings"`
}

func (h *Handler) AddDocument(w http.ResponseWriter, r *http.Request) {
	var req addDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	status := search.StatusActual
	if req.Status != "" {
		parsed, err := search.ParseStatus(req.Status)
		if err != nil {
			h.writeErr(w, r, err)
			return
		}
		status = parsed
	}

	if err := h.engine.AddDocument(req.ID, req.Text, status, req.Ratings); err != nil {
		h.writeErr(w, r, err)
		return
	}
	h.afterMutation(r)

	if h.metrics != nil {
		h.metrics.DocsIndexedTotal.Inc()
	}
	if h.collector != nil {
		h.collector.Track(analytics.DocumentEvent{
			Type:       analytics.EventAddDoc,
			DocumentID: req.ID,
			Status:     status.String(),
			WordCount:  len(h.engine.WordFrequencies(req.ID)),
			Timestamp:  time.Now().UTC(),
		})
	}
	h.writeJSON(w, http.StatusCreated, map[string]any{"id": req.ID})
}

func (h *Handler) RemoveDocument(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "document id must be an integer")
		return
	}
	policy, err := search.ParsePolicy(r.URL.Query().Get("policy"))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	h.engine.RemoveDocumentPolicy(policy, id)
	h.afterMutation(r)

	if h.metrics != nil {
		h.metrics.DocsRemovedTotal.Inc()
	}
	if h.collector != nil {
		h.collector.Track(analytics.DocumentEvent{
			Type:       analytics.EventRemoveDoc,
			DocumentID: id,
			Timestamp:  time.Now().UTC(),
		})
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	ids := h.engine.DocumentIDs()
	h.writeJSON(w, http.StatusOK, map[string]any{
		"count": len(ids),
		"ids":   ids,
	})
}

func (h *Handler) WordFrequencies(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "document id must be an integer")
		return
	}
	// Copy the live view so encoding cannot race a later mutation.
	freqs := make(map[string]float64)
	for word, tf := range h.engine.WordFrequencies(id) {
		freqs[word] = tf
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"id":          id,
		"frequencies": freqs,
	})
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	rawQuery := r.URL.Query().Get("q")
	if rawQuery == "" {
		h.writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}
	status := search.StatusActual
	if s := r.URL.Query().Get("status"); s != "" {
		parsed, err := search.ParseStatus(s)
		if err != nil {
			h.writeErr(w, r, err)
			return
		}
		status = parsed
	}
	policy := h.defaultPolicy
	if p := r.URL.Query().Get("policy"); p != "" {
		parsed, err := search.ParsePolicy(p)
		if err != nil {
			h.writeErr(w, r, err)
			return
		}
		policy = parsed
	}

	find := func() ([]search.Document, error) {
		return h.window.AddFindRequestPolicyStatus(policy, rawQuery, status)
	}
	var docs []search.Document
	var err error
	cacheHit := false
	if h.cache != nil {
		docs, cacheHit, err = h.cache.GetOrCompute(ctx, rawQuery, status, policy, find)
	} else {
		docs, err = find()
	}
	latency := time.Since(start)

	if h.metrics != nil {
		h.metrics.SearchLatency.WithLabelValues(policy.String()).Observe(latency.Seconds())
		switch {
		case err != nil:
			h.metrics.SearchesTotal.WithLabelValues("error").Inc()
		case len(docs) == 0:
			h.metrics.SearchesTotal.WithLabelValues("zero_result").Inc()
		default:
			h.metrics.SearchesTotal.WithLabelValues("ok").Inc()
		}
		if err == nil {
			h.metrics.SearchResultsCount.Observe(float64(len(docs)))
		}
		h.metrics.NoResultWindowCount.Set(float64(h.window.NoResultCount()))
	}
	if err != nil {
		log.Error("search failed", "query", rawQuery, "error", err)
		h.writeErr(w, r, err)
		return
	}

	log.Info("search completed",
		"query", rawQuery,
		"status", status.String(),
		"policy", policy.String(),
		"returned", len(docs),
		"cache_hit", cacheHit,
		"latency_ms", latency.Milliseconds(),
	)
	if h.collector != nil {
		h.collector.Track(analytics.SearchEvent{
			Type:      analytics.EventSearch,
			Query:     rawQuery,
			Policy:    policy.String(),
			Returned:  len(docs),
			LatencyMs: latency.Milliseconds(),
			CacheHit:  cacheHit,
			Timestamp: time.Now().UTC(),
			RequestID: logger.RequestID(ctx),
		})
	}

	page, pageSize, paged, err := h.applyPaging(r, docs)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	resp := map[string]any{
		"query":    rawQuery,
		"status":   status.String(),
		"policy":   policy.String(),
		"returned": len(docs),
		"results":  paged,
	}
	if pageSize > 0 {
		resp["page"] = page
		resp["page_size"] = pageSize
	}
	h.writeJSON(w, http.StatusOK, resp)
}

type batchSearchRequest struct {
	Queries []string `json:"queries"`
	Joined  bool     `json:"joined"`
}

func (h *Handler) BatchSearch(w http.ResponseWriter, r *http.Request) {
	var req batchSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Queries) == 0 {
		h.writeError(w, http.StatusBadRequest, "queries must be non-empty")
		return
	}

	if req.Joined {
		docs, err := batch.ProcessQueriesJoined(r.Context(), h.engine, req.Queries)
		if err != nil {
			h.writeErr(w, r, err)
			return
		}
		h.writeJSON(w, http.StatusOK, map[string]any{"results": docs})
		return
	}
	perQuery, err := batch.ProcessQueries(r.Context(), h.engine, req.Queries)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"results": perQuery})
}

func (h *Handler) Match(w http.ResponseWriter, r *http.Request) {
	rawQuery := r.URL.Query().Get("q")
	if rawQuery == "" {
		h.writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}
	id, err := strconv.Atoi(r.URL.Query().Get("id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "query parameter 'id' must be an integer")
		return
	}
	policy, err := search.ParsePolicy(r.URL.Query().Get("policy"))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	words, status, err := h.engine.MatchPolicy(policy, rawQuery, id)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"id":     id,
		"words":  words,
		"status": status.String(),
	})
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{
		"document_count":     h.engine.DocumentCount(),
		"distinct_words":     h.engine.WordCount(),
		"no_result_requests": h.window.NoResultCount(),
	})
}

func (h *Handler) Deduplicate(w http.ResponseWriter, r *http.Request) {
	removed := dedup.RemoveDuplicates(h.engine)
	if len(removed) > 0 {
		h.afterMutation(r)
		if h.metrics != nil {
			h.metrics.DocsRemovedTotal.Add(float64(len(removed)))
		}
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"removed_ids": removed,
		"count":       len(removed),
	})
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}
	hits, misses := h.cache.Stats()
	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":   hits,
		"misses": misses,
		"total":  hits + misses,
	})
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}
	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

// afterMutation keeps derived state (cache, gauges) in step with the index.
func (h *Handler) afterMutation(r *http.Request) {
	if h.cache != nil {
		if err := h.cache.Invalidate(r.Context()); err != nil {
			h.logger.Error("cache invalidation after mutation failed", "error", err)
		}
	}
	if h.metrics != nil {
		h.metrics.LiveDocuments.Set(float64(h.engine.DocumentCount()))
	}
}

// applyPaging slices docs per the page/page_size query parameters. Without
// page_size the full result list is returned and page is -1.
func (h *Handler) applyPaging(r *http.Request, docs []search.Document) (page, pageSize int, paged []search.Document, err error) {
	sizeStr := r.URL.Query().Get("page_size")
	if sizeStr == "" {
		return -1, 0, docs, nil
	}
	pageSize, err = strconv.Atoi(sizeStr)
	if err != nil {
		return 0, 0, nil, pkgerrors.Newf(pkgerrors.ErrInvalidArgument, http.StatusBadRequest, "page_size must be an integer")
	}
	page = 0
	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		page, err = strconv.Atoi(pageStr)
		if err != nil {
			return 0, 0, nil, pkgerrors.Newf(pkgerrors.ErrInvalidArgument, http.StatusBadRequest, "page must be an integer")
		}
	}
	paged, err = paginate.Page(docs, pageSize, page)
	if err != nil {
		return 0, 0, nil, err
	}
	return page, pageSize, paged, nil
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("writing response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

func (h *Handler) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	h.writeJSON(w, pkgerrors.HTTPStatusCode(err), map[string]string{"error": err.Error()})
}
