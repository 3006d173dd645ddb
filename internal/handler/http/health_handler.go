package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

const readinessTimeout = 2 * time.Second

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthResponse struct {
	Status      string    `json:"status"`
	Environment string    `json:"environment,omitempty"`
	Database    string    `json:"database,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

type HealthHandler struct {
	db          Pinger
	environment string
	now         func() time.Time
}

func NewHealthHandler(db Pinger, environment string) *HealthHandler {
	return &HealthHandler{
		db:          db,
		environment: environment,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (h *HealthHandler) RegisterRoutes(router chi.Router) {
	router.Get("/health", h.handleHealth)
	router.Get("/health/db", h.handleDatabaseHealth)
}

// handleHealth reports liveness and never touches the database.
func (h *HealthHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, HealthResponse{
		Status:      "ok",
		Environment: h.environment,
		Timestamp:   h.now(),
	})
}

func (h *HealthHandler) handleDatabaseHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		log.Warn().Err(err).Str("request_id", middleware.GetReqID(r.Context())).Msg("database readiness check failed")
		respondWithError(w, http.StatusServiceUnavailable, "Database unavailable")
		return
	}

	respondWithJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Database:  "connected",
		Timestamp: h.now(),
	})
}
