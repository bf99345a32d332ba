package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kjstillabower/city-weather/internal/observability"
)

// NewRouter wires the web views, health and metrics. limiter may be nil to
// disable rate limiting on the view routes.
func NewRouter(h *Handler, logger *zap.Logger, limiter *rate.Limiter, requestTimeout time.Duration) *mux.Router {
	router := mux.NewRouter()
	router.Use(CorrelationIDMiddleware(logger))
	router.Use(MetricsMiddleware)

	router.HandleFunc("/health", h.GetHealth).Methods(http.MethodGet)
	router.Handle("/metrics", observability.MetricsHandler()).Methods(http.MethodGet)

	views := router.NewRoute().Subrouter()
	views.Use(RateLimitMiddleware(limiter, h.refreshInterval))
	views.Use(TimeoutMiddleware(requestTimeout))
	views.Use(h.SessionMiddleware)
	views.HandleFunc("/", h.GetIndex).Methods(http.MethodGet)
	views.HandleFunc("/", h.PostIndex).Methods(http.MethodPost)
	views.HandleFunc("/weather", h.GetWeather).Methods(http.MethodGet)
	views.HandleFunc("/weather/back", h.PostBack).Methods(http.MethodPost)

	return router
}
