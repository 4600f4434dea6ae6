package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/Billy-Davies-2/fc-draft-simulator/internal/auth"
	"github.com/Billy-Davies-2/fc-draft-simulator/internal/logger"
)

// NewRouter wires the public read routes, the authenticated command routes,
// the login flow and the probes
func NewRouter(h *APIHandlers, authProvider auth.AuthProvider, health *Health) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(requestLogger)
	r.Use(chiMiddleware.Recoverer)

	r.Get("/healthz", health.LivenessHandler)
	r.Get("/readyz", health.ReadinessHandler)

	r.Route("/auth", func(r chi.Router) {
		r.Get("/login", authProvider.LoginHandler)
		r.Get("/callback", authProvider.CallbackHandler)
		r.Get("/logout", authProvider.LogoutHandler)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", health.HealthHandler)
		r.Get("/events", h.EventsSSE)
		r.Get("/formations", h.ListFormations)
		r.Get("/stats/most-drafted", h.MostDrafted)

		r.Route("/players", func(r chi.Router) {
			r.Get("/", h.ListPlayers)
			r.Get("/teams", h.ListTeams)
			r.Get("/nationalities", h.ListNationalities)
			r.Get("/{playerID}", h.GetPlayerProfile)
		})

		r.Route("/drafts", func(r chi.Router) {
			r.Get("/", h.ListDrafts)
			r.With(authProvider.Middleware).Post("/", h.CreateDraft)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetDraft)
				r.Get("/players", h.DraftPlayers)
				r.Get("/summary", h.DraftSummary)
				r.Get("/ws", h.DraftSocket)

				r.Group(func(r chi.Router) {
					r.Use(authProvider.Middleware)
					r.With(auth.RequireAdmin).Delete("/", h.DeleteDraft)
					r.Post("/pick", h.Pick)
					r.Post("/place/field", h.PlaceOnField)
					r.Post("/place/bench", h.PlaceOnBench)
					r.Post("/swap", h.SwapFieldSlots)
					r.Post("/move/bench-to-field", h.MoveBenchToField)
					r.Post("/move/field-to-bench", h.MoveFieldToBench)
					r.Put("/formation", h.SetFormation)
					r.Post("/undo", h.Undo)
					r.Post("/finish-turn", h.FinishTurn)
					r.Post("/finish", h.FinishDraft)
				})
			})
		})
	})

	return r
}

// requestLogger logs each request through the structured logger
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logger.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", chiMiddleware.GetReqID(r.Context()),
		)
	})
}
