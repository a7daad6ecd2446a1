package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	nethttp "net/http"
	"strings"
	"time"

	"github.com/preston-bernstein/ntrp-rating-service/internal/app/ratings"
	"github.com/preston-bernstein/ntrp-rating-service/internal/domain"
	"github.com/preston-bernstein/ntrp-rating-service/internal/fetch"
	"github.com/preston-bernstein/ntrp-rating-service/internal/logging"
)

const (
	maxBatchSize      = 100
	maxBatchBodyBytes = 1 << 20
)

// Pinger reports whether the session store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options configures a Handler.
type Options struct {
	Cache  Pinger
	Logger *slog.Logger
	// RequestTimeout bounds each lookup or batch; zero leaves only the client's context.
	RequestTimeout time.Duration
}

// Handler wires HTTP routes to the ratings service.
type Handler struct {
	svc            *ratings.Service
	cache          Pinger
	logger         *slog.Logger
	requestTimeout time.Duration
}

// NewHandler constructs a Handler.
func NewHandler(svc *ratings.Service, opts Options) *Handler {
	return &Handler{
		svc:            svc,
		cache:          opts.Cache,
		logger:         opts.Logger,
		requestTimeout: opts.RequestTimeout,
	}
}

// Register adds the service routes to mux.
func (h *Handler) Register(mux *nethttp.ServeMux) {
	mux.HandleFunc("/health", h.Health)
	mux.HandleFunc("/ready", h.Ready)
	mux.HandleFunc("/ratings", h.RatingByLink)
	mux.HandleFunc("/ratings/batch", h.RatingsBatch)
	mux.HandleFunc("/ratings/", h.RatingByID)
}

// Health reports the service health.
func (h *Handler) Health(w nethttp.ResponseWriter, r *nethttp.Request) {
	if !requireMethod(w, r, nethttp.MethodGet, h.logger) {
		return
	}
	if err := r.Context().Err(); err != nil {
		writeError(w, r, nethttp.StatusServiceUnavailable, "shutting down", h.logger)
		return
	}
	writeJSON(w, nethttp.StatusOK, map[string]string{"status": "ok"}, h.logger)
}

// Ready reports readiness for traffic: the session store must answer a ping.
func (h *Handler) Ready(w nethttp.ResponseWriter, r *nethttp.Request) {
	if !requireMethod(w, r, nethttp.MethodGet, h.logger) {
		return
	}
	if h.cache != nil {
		if err := h.cache.Ping(r.Context()); err != nil {
			logging.Warn(loggerFromContext(r, h.logger), "cache ping failed", "error", err)
			writeError(w, r, nethttp.StatusServiceUnavailable, "cache unavailable", h.logger)
			return
		}
	}
	writeJSON(w, nethttp.StatusOK, map[string]string{"status": "ready"}, h.logger)
}

// RatingByID resolves /ratings/{id}.
func (h *Handler) RatingByID(w nethttp.ResponseWriter, r *nethttp.Request) {
	if !requireMethod(w, r, nethttp.MethodGet, h.logger) {
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/ratings/")
	if !domain.ValidPlayerID(id) {
		writeError(w, r, nethttp.StatusBadRequest, "invalid player id", h.logger)
		return
	}
	h.resolveOne(w, r, id)
}

// RatingByLink resolves /ratings?link=<roster player link>.
func (h *Handler) RatingByLink(w nethttp.ResponseWriter, r *nethttp.Request) {
	if !requireMethod(w, r, nethttp.MethodGet, h.logger) {
		return
	}
	link := strings.TrimSpace(r.URL.Query().Get("link"))
	if link == "" {
		writeError(w, r, nethttp.StatusBadRequest, "missing link", h.logger)
		return
	}
	id, err := domain.PlayerIDFromLink(link)
	if err != nil {
		writeError(w, r, nethttp.StatusBadRequest, "invalid player link", h.logger)
		return
	}
	h.resolveOne(w, r, id)
}

func (h *Handler) resolveOne(w nethttp.ResponseWriter, r *nethttp.Request, id domain.PlayerID) {
	if h.svc == nil {
		writeError(w, r, nethttp.StatusServiceUnavailable, "resolver not configured", h.logger)
		return
	}
	ctx, cancel := h.lookupContext(r)
	defer cancel()

	res, err := h.svc.Resolve(ctx, id)
	if err != nil {
		status, msg := resolveErrorStatus(ctx, err)
		logging.Warn(loggerFromContext(r, h.logger), "rating lookup failed",
			slog.String(logging.FieldPlayerID, id),
			"error", err,
		)
		writeError(w, r, status, msg, h.logger)
		return
	}
	writeJSON(w, nethttp.StatusOK, newRatingResponse(res), h.logger)
}

// BatchRequest lists roster links and/or bare player IDs.
type BatchRequest struct {
	Links []string `json:"links"`
	IDs   []string `json:"ids"`
}

// BatchResponse holds one result per requested player, links first, in request order.
type BatchResponse struct {
	Results []RatingResponse `json:"results"`
}

// RatingsBatch resolves several players concurrently. Per-player failures are
// reported inline; the request itself only fails on bad input.
func (h *Handler) RatingsBatch(w nethttp.ResponseWriter, r *nethttp.Request) {
	if !requireMethod(w, r, nethttp.MethodPost, h.logger) {
		return
	}
	if h.svc == nil {
		writeError(w, r, nethttp.StatusServiceUnavailable, "resolver not configured", h.logger)
		return
	}

	var req BatchRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBatchBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, r, nethttp.StatusBadRequest, "invalid request body", h.logger)
		return
	}
	refs := append(append([]string{}, req.Links...), req.IDs...)
	if len(refs) == 0 {
		writeError(w, r, nethttp.StatusBadRequest, "no players requested", h.logger)
		return
	}
	if len(refs) > maxBatchSize {
		writeError(w, r, nethttp.StatusBadRequest, "too many players requested", h.logger)
		return
	}

	ctx, cancel := h.lookupContext(r)
	defer cancel()

	results := make([]RatingResponse, 0, len(refs))
	for _, res := range h.svc.ResolveMany(ctx, refs) {
		results = append(results, batchItem(ctx, res))
	}

	logging.Info(loggerFromContext(r, h.logger), "batch resolved", slog.Int(logging.FieldCount, len(refs)))
	writeJSON(w, nethttp.StatusOK, BatchResponse{Results: results}, h.logger)
}

func batchItem(ctx context.Context, res ratings.Result) RatingResponse {
	if errors.Is(res.Err, domain.ErrInvalidPlayerLink) {
		return withRef(failedResponse("", "invalid player reference"), res.Ref)
	}
	if res.Err != nil {
		_, msg := resolveErrorStatus(ctx, res.Err)
		return withRef(failedResponse(res.Resolution.PlayerID, msg), res.Ref)
	}
	return withRef(newRatingResponse(res.Resolution), res.Ref)
}

func withRef(resp RatingResponse, ref string) RatingResponse {
	resp.Ref = ref
	return resp
}

// lookupContext derives the context a lookup runs under. The server's write
// timeout never cancels r.Context(), so the bound is applied here.
func (h *Handler) lookupContext(r *nethttp.Request) (context.Context, context.CancelFunc) {
	if h.requestTimeout <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), h.requestTimeout)
}

func resolveErrorStatus(ctx context.Context, err error) (int, string) {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nethttp.StatusGatewayTimeout, "lookup timed out"
	}
	if _, ok := fetch.AsTransportError(err); ok {
		return nethttp.StatusBadGateway, "upstream fetch failed"
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nethttp.StatusServiceUnavailable, "request cancelled"
	}
	return nethttp.StatusInternalServerError, "lookup failed"
}

func requireMethod(w nethttp.ResponseWriter, r *nethttp.Request, method string, logger *slog.Logger) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	writeError(w, r, nethttp.StatusMethodNotAllowed, "method not allowed", logger)
	return false
}
