package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"pinot-bridge/internal/config"
	"pinot-bridge/internal/middleware"
)

// NewRouter assembles the chi router: health is public, the /v1 planning
// routes sit behind request-id, CORS, rate limiting, and (when a secret is
// configured) bearer auth.
func NewRouter(h *Handler, cfg *config.Config) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))
	r.Use(middleware.RateLimiter(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		Burst:             cfg.RateLimitBurst,
	}))

	r.Get("/health", h.Health)

	r.Route("/v1", func(r chi.Router) {
		if cfg.JWTSecret != "" {
			r.Use(middleware.Auth([]byte(cfg.JWTSecret)))
		}
		r.Post("/splits", h.PlanSplits)
		r.Get("/tables/{table}/routing", h.GetRoutingTable)
		r.Get("/tables/{table}/timeBoundary", h.GetTimeBoundary)
	})

	return r
}
