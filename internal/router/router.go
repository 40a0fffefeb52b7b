package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"daybrief-backend/internal/handlers"
	"daybrief-backend/internal/middleware"
	"daybrief-backend/internal/websocket"
)

func New(
	jwtAuth *middleware.JWTAuth,
	authHandler *handlers.AuthHandler,
	eventHandler *handlers.EventHandler,
	summaryHandler *handlers.SummaryHandler,
	recapHandler *handlers.RecapHandler,
	userHandler *handlers.UserHandler,
	jobHandler *handlers.JobHandler,
	wsHub *websocket.Hub,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Auth rate limiter (10 req/min per IP)
	authLimiter := middleware.NewRateLimiter(10, time.Minute)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Auth Routes (public) ────
		r.Route("/auth", func(r chi.Router) {
			r.Use(authLimiter.Middleware)
			r.Get("/{provider}/login", authHandler.Login)
			r.Get("/{provider}/callback", authHandler.Callback)
			r.Post("/refresh", authHandler.Refresh)

			// Logout requires auth
			r.Group(func(r chi.Router) {
				r.Use(jwtAuth.Middleware)
				r.Post("/logout", authHandler.Logout)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(jwtAuth.Middleware)

			// ──── Calendar ────
			r.Get("/events", eventHandler.List)

			// ──── Summaries ────
			r.Post("/summarize", summaryHandler.Summarize)
			r.Route("/summaries", func(r chi.Router) {
				r.Get("/", summaryHandler.List)
				r.Put("/{id}/finalize", summaryHandler.Finalize)
			})

			// ──── Recap ────
			r.Post("/recap/send", recapHandler.Send)

			// ──── User & Settings ────
			r.Route("/user", func(r chi.Router) {
				r.Get("/me", userHandler.GetMe)
				r.Patch("/settings", userHandler.UpdateSettings)
				r.Delete("/data", userHandler.DeleteData)
			})

			// ──── Jobs ────
			r.Get("/jobs/{id}", jobHandler.GetJob)
		})

		// ──── WebSocket ────
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	return r
}
