// internal/api/handlers.go
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"recommendation-service/internal/domain"
	"recommendation-service/internal/recommend"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"
)

// Recommender is the engine as seen by the HTTP layer.
type Recommender interface {
	Recommend(ctx context.Context, q domain.RecommendationQuery) (*domain.RecommendationResponse, error)
}

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RecommendationHandler holds the dependencies of the HTTP handlers.
type RecommendationHandler struct {
	engine  Recommender
	catalog Pinger
	logger  *slog.Logger
	// verbose logs the full error chain of internal failures.
	verbose bool
}

func NewRecommendationHandler(engine Recommender, catalog Pinger, logger *slog.Logger, verbose bool) *RecommendationHandler {
	return &RecommendationHandler{
		engine:  engine,
		catalog: catalog,
		logger:  logger,
		verbose: verbose,
	}
}

type messageResponse struct {
	Message string `json:"message"`
}

func (h *RecommendationHandler) respondJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			h.logger.ErrorContext(r.Context(), "Failed to encode JSON response", slog.String("error", err.Error()), slog.String("path", r.URL.Path))
		}
	}
}

func (h *RecommendationHandler) respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	h.respondJSON(w, r, status, messageResponse{Message: message})
}

// GetRecommendations handles GET /films/{id}/recommendations.
func (h *RecommendationHandler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := domain.RecommendationQuery{
		FilmID: mux.Vars(r)["id"],
		Limit:  r.URL.Query().Get("limit"),
		Offset: r.URL.Query().Get("offset"),
	}
	h.logger.InfoContext(ctx, "HTTP GetRecommendations request received", slog.String("filmID", query.FilmID))

	resp, err := h.engine.Recommend(ctx, query)
	if err != nil {
		h.handleEngineError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, resp)
}

func (h *RecommendationHandler) handleEngineError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	var recErr *recommend.Error

	// Cancellation is checked first: upstream failures wrap it too.
	switch {
	case errors.Is(err, context.Canceled):
		h.logger.InfoContext(ctx, "Client went away before recommendations were ready")
	case errors.Is(err, recommend.ErrInvalidInput), errors.Is(err, recommend.ErrUnprocessableEntity):
		message := "unprocessable entity"
		if errors.As(err, &recErr) {
			message = recErr.Message
		}
		h.respondError(w, r, http.StatusUnprocessableEntity, message)
	case errors.Is(err, recommend.ErrUpstreamUnavailable):
		h.logger.ErrorContext(ctx, "Review source unavailable", slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusBadGateway, "review service unavailable")
	default:
		attrs := []any{slog.String("error", err.Error())}
		if h.verbose {
			attrs = append(attrs, slog.String("chain", errorChain(err)))
		}
		h.logger.ErrorContext(ctx, "Failed to compute recommendations", attrs...)
		h.respondError(w, r, http.StatusInternalServerError, "internal server error")
	}
}

// Healthz reports liveness.
func (h *RecommendationHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz reports whether the catalog answers a ping.
func (h *RecommendationHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.catalog.Ping(ctx); err != nil {
		h.logger.WarnContext(ctx, "Readiness check failed", slog.String("error", err.Error()))
		h.respondJSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	h.respondJSON(w, r, http.StatusOK, map[string]string{"status": "ready"})
}

// InvalidRoute answers every unmatched path or method.
func (h *RecommendationHandler) InvalidRoute(w http.ResponseWriter, r *http.Request) {
	h.respondError(w, r, http.StatusNotFound, "invalid route")
}

// errorChain renders each layer of a wrapped error on its own, outermost first.
func errorChain(err error) string {
	var out string
	for err != nil {
		if out != "" {
			out += " <- "
		}
		out += err.Error()
		err = errors.Unwrap(err)
	}
	return out
}
