package admin

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/Sokol111/ecommerce-store-sync/internal/core/logger"
	"github.com/Sokol111/ecommerce-store-sync/internal/http/problems"
	"github.com/Sokol111/ecommerce-store-sync/internal/outbox"
	"go.uber.org/zap"
)

// Handler exposes the operator surface over the outbox: stats, an on-demand
// relay run and replay of a time window for one aggregate.
type Handler struct {
	store     outbox.Store
	publisher outbox.Publisher
	metrics   *outbox.PublisherMetrics
}

func NewHandler(store outbox.Store, publisher outbox.Publisher, metrics *outbox.PublisherMetrics) *Handler {
	return &Handler{
		store:     store,
		publisher: publisher,
		metrics:   metrics,
	}
}

// Register mounts the admin routes on the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /admin/outbox/stats", h.stats)
	mux.HandleFunc("POST /admin/outbox/publish", h.publishNow)
	mux.HandleFunc("POST /admin/outbox/replay", h.replay)
}

type statsResponse struct {
	PendingCount                 int64 `json:"pendingCount"`
	FailedCount                  int64 `json:"failedCount"`
	PublishedCount               int64 `json:"publishedCount"`
	RelayPublishedCount          int64 `json:"relayPublishedCount"`
	RelayFailureCount            int64 `json:"relayFailureCount"`
	RelayAveragePublishLatencyMs int64 `json:"relayAveragePublishLatencyMs"`
}

// stats is a snapshot, not a transaction: the counts may be mutually
// inconsistent when the relay runs concurrently.
func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	pending, err := h.store.CountPending(ctx)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	failed, err := h.store.CountFailed(ctx)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	published, err := h.store.CountPublished(ctx)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, statsResponse{
		PendingCount:                 pending,
		FailedCount:                  failed,
		PublishedCount:               published,
		RelayPublishedCount:          h.metrics.Published(),
		RelayFailureCount:            h.metrics.Failed(),
		RelayAveragePublishLatencyMs: h.metrics.AveragePublishLatencyMs(),
	})
}

func (h *Handler) publishNow(w http.ResponseWriter, r *http.Request) {
	processed, err := h.publisher.PublishPending(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]int{"processed": processed})
}

func (h *Handler) replay(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	aggregateID := query.Get("aggregateId")
	if aggregateID == "" {
		problems.New(http.StatusBadRequest, "aggregateId is required").Write(w, r)
		return
	}
	from, err := parseTimestamp(query.Get("from"))
	if err != nil {
		problems.New(http.StatusBadRequest, "from must be a valid RFC3339 timestamp").Write(w, r)
		return
	}
	to, err := parseTimestamp(query.Get("to"))
	if err != nil {
		problems.New(http.StatusBadRequest, "to must be a valid RFC3339 timestamp").Write(w, r)
		return
	}
	if to.Before(from) {
		problems.New(http.StatusBadRequest, "to must not be before from").Write(w, r)
		return
	}

	affected, err := h.store.Replay(r.Context(), aggregateID, from, to, time.Now())
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	if query.Get("resetMetrics") == "true" {
		h.metrics.Reset()
	}

	logger.Get(r.Context()).Info("replayed outbox records",
		zap.String("aggregateId", aggregateID),
		zap.Time("from", from),
		zap.Time("to", to),
		zap.Int64("affected", affected))

	h.writeJSON(w, http.StatusOK, map[string]int64{"affected": affected})
}

func parseTimestamp(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errMissingTimestamp
	}
	return time.Parse(time.RFC3339, value)
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	logger.Get(r.Context()).Error("admin request failed",
		zap.String("path", r.URL.Path), zap.Error(err))
	problems.New(http.StatusInternalServerError, err.Error()).Write(w, r)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
