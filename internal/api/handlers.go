package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/overtake-labs/staking-monitor/internal/db"
	"github.com/overtake-labs/staking-monitor/internal/services"
	"github.com/overtake-labs/staking-monitor/internal/types"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type OpsService interface {
	Health(ctx context.Context) (*services.HealthStatus, error)
	Stats(ctx context.Context, forceRefresh bool) (*types.StatsSnapshot, error)
	StatsCacheStatus() types.CacheStatus
	SessionStatus(id string) types.SessionStatus
	ListSubscriptions(ctx context.Context) ([]services.SubscriptionView, error)
	Subscribe(ctx context.Context, id string, cfg types.SubscriptionConfig) error
	Unsubscribe(ctx context.Context, id string) error
	RemoveSubscription(ctx context.Context, id string) error
}

type Handler struct {
	service OpsService
}

func NewHandler(service OpsService) *Handler {
	return &Handler{service: service}
}

// Routes registers the ops endpoints on r, typically the metrics router.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/health", h.health)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/stats", h.stats)
		r.Get("/sessions/{id}", h.session)
		r.Route("/subscriptions", func(r chi.Router) {
			r.Get("/", h.listSubscriptions)
			r.Put("/{id}", h.subscribe)
			r.Post("/{id}/pause", h.unsubscribe)
			r.Delete("/{id}", h.removeSubscription)
		})
	})
}

type healthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	*services.HealthStatus
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	status, err := h.service.Health(r.Context())
	if err != nil {
		log.Ctx(r.Context()).Warn().Err(err).Msg("health check failed")
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unhealthy", Error: err.Error(), HealthStatus: status})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", HealthStatus: status})
}

type statsResponse struct {
	Stats *types.StatsSnapshot `json:"stats"`
	Cache types.CacheStatus    `json:"cache"`
}

// stats accepts ?refresh=true to bypass the cache.
func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	refresh := false
	if v := r.URL.Query().Get("refresh"); v != "" {
		var err error
		refresh, err = strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "refresh must be a boolean")
			return
		}
	}

	snapshot, err := h.service.Stats(r.Context(), refresh)
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("failed to get staking stats")
		writeError(w, http.StatusServiceUnavailable, "staking stats are unavailable")
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{Stats: snapshot, Cache: h.service.StatsCacheStatus()})
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	writeJSON(w, http.StatusOK, h.service.SessionStatus(id))
}

func (h *Handler) listSubscriptions(w http.ResponseWriter, r *http.Request) {
	views, err := h.service.ListSubscriptions(r.Context())
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("failed to list subscriptions")
		writeError(w, http.StatusInternalServerError, "failed to list subscriptions")
		return
	}
	writeJSON(w, http.StatusOK, views)
}

type subscribeRequest struct {
	ThresholdFiat decimal.Decimal `json:"threshold_fiat"`
	// PollInterval is a Go duration string such as "10s"; empty means the default.
	PollInterval string `json:"poll_interval"`
}

func (h *Handler) subscribe(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	cfg := types.SubscriptionConfig{ThresholdFiat: req.ThresholdFiat}
	if req.PollInterval != "" {
		interval, err := time.ParseDuration(req.PollInterval)
		if err != nil {
			writeError(w, http.StatusBadRequest, "poll_interval must be a duration")
			return
		}
		cfg.PollInterval = interval
	}

	if err := h.service.Subscribe(r.Context(), id, cfg); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.service.SessionStatus(id))
}

func (h *Handler) unsubscribe(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.Unsubscribe(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.service.SessionStatus(id))
}

func (h *Handler) removeSubscription(w http.ResponseWriter, r *http.Request) {
	if err := h.service.RemoveSubscription(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidSubscription):
		writeError(w, http.StatusBadRequest, err.Error())
	case db.IsNotFoundError(err):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		log.Ctx(r.Context()).Error().Err(err).Msg("subscription request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}
