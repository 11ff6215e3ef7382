package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

func NewRouter(h *APIHandler, log zerolog.Logger, limiter *rate.Limiter, widgetSecret string) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)

	r.Get("/health", h.HealthHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(RateLimit(limiter))
		r.Use(WidgetAuth(widgetSecret))

		r.Post("/chat", h.ChatHandler)
		r.Post("/search/products", h.SearchProductsHandler)
		r.Post("/shipping/calculate", h.CalculateShippingHandler)
		r.Get("/sites", h.ListSitesHandler)
		r.Get("/sites/{siteName}/stats", h.SiteStatsHandler)
	})

	return r
}
