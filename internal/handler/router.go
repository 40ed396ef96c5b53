package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"health-directory-api/internal/metrics"
	"health-directory-api/internal/middleware"
)

// RouterDeps bundles what NewRouter needs besides the handlers themselves.
type RouterDeps struct {
	Log         zerolog.Logger
	Collector   *metrics.Collector
	Gatherer    prometheus.Gatherer
	RateLimiter *middleware.RateLimiter
}

// NewRouter wires every endpoint. Registration, login and refresh are
// rate-limited per IP; account mutation requires a bearer token. Everything
// else mirrors the open directory API.
func NewRouter(h *Handler, deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recover(deps.Log))
	r.Use(middleware.Logging(deps.Log, deps.Collector))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	if deps.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.Gatherer))
	}

	limited := func(next http.Handler) http.Handler { return next }
	if deps.RateLimiter != nil {
		limited = deps.RateLimiter.Middleware
	}
	authed := middleware.Auth(h.secret)

	r.Route("/api", func(r chi.Router) {
		r.Route("/usuarios", func(r chi.Router) {
			r.Get("/", h.ListUsuarios)
			r.With(limited).Post("/", h.CreateUsuario)

			r.Route("/{userId}", func(r chi.Router) {
				r.Get("/", h.GetUsuario)
				r.With(authed).Patch("/", h.UpdateUsuario)
				r.With(authed).Delete("/", h.DeleteUsuario)
			})
		})

		r.Route("/auth", func(r chi.Router) {
			r.With(limited).Post("/login", h.Login)
			r.With(limited).Post("/refresh", h.Refresh)
		})

		r.Route("/profesionales", func(r chi.Router) {
			r.Get("/", h.SearchProfesionales)
			r.Get("/{profesionalId}", h.GetProfesional)
		})

		r.Get("/seguros", h.ListSeguros)

		r.Route("/citas", func(r chi.Router) {
			r.Get("/", h.ListCitas)
			r.Post("/", h.CreateCita)
			r.Get("/{citaId}", h.GetCita)
		})
	})

	return r
}
