// internal/api/router.go
package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(handler *RecommendationHandler, logger *slog.Logger) *mux.Router {
	router := mux.NewRouter()
	middlewares := []mux.MiddlewareFunc{RequestID, AccessLog(logger), Recover(logger)}
	router.Use(middlewares...)

	router.HandleFunc("/films/{id}/recommendations", handler.GetRecommendations).Methods(http.MethodGet)

	router.HandleFunc("/healthz", handler.Healthz).Methods(http.MethodGet)
	router.HandleFunc("/readyz", handler.Readyz).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	// mux skips router middleware for these, so they get the chain explicitly.
	var invalid http.Handler = http.HandlerFunc(handler.InvalidRoute)
	for i := len(middlewares) - 1; i >= 0; i-- {
		invalid = middlewares[i](invalid)
	}
	router.NotFoundHandler = invalid
	router.MethodNotAllowedHandler = invalid

	return router
}
