package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/lexibird/lexibird-api/internal/api"
	apimiddleware "github.com/lexibird/lexibird-api/internal/api/middleware"
	"github.com/lexibird/lexibird-api/internal/api/shared"
)

// setupRouter creates and configures the application router with all routes
// and middleware. Everything except registration and the health probe sits
// behind token authentication.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Trace IDs go on first so every downstream log line can carry one.
	r.Use(apimiddleware.TraceMiddleware)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	authHandler := api.NewAuthHandler(app.userStore, app.jwtService, app.config.Auth.TokenExpiry)
	keywordHandler := api.NewKeywordHandler(app.progressService, app.logger)
	sessionHandler := api.NewSessionHandler(app.reviewService, app.logger)
	rescueHandler := api.NewRescueHandler(app.rescueService, app.logger)
	progressHandler := api.NewProgressHandler(app.progressService, app.logger)

	authMiddleware := apimiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		// Device registration is the only public endpoint.
		r.Post("/auth/register", authHandler.Register)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Post("/keywords", keywordHandler.CreateKeyword)
			r.Get("/keywords/due", keywordHandler.DueKeywords)
			r.Post("/keywords/{keywordID}/enroll", keywordHandler.EnrollKeyword)
			r.Post("/keywords/{keywordID}/attempts", keywordHandler.RecordAttempt)

			r.Post("/sessions", sessionHandler.CreateSession)
			r.Get("/sessions/{sessionID}", sessionHandler.GetSession)
			r.Post("/sessions/{sessionID}/answers", sessionHandler.SubmitAnswer)
			r.Post("/sessions/{sessionID}/complete", sessionHandler.CompleteSession)

			r.Get("/rescue", rescueHandler.GetState)
			r.Get("/rescue/threshold", rescueHandler.GetThreshold)
			r.Post("/rescue/score", rescueHandler.ApplyScore)
			r.Post("/rescue/failures", rescueHandler.RecordFailure)
			r.Post("/rescue/improvements", rescueHandler.RecordImprovement)
			r.Post("/rescue/exit", rescueHandler.Exit)
			r.Get("/rescue/stats", rescueHandler.GetStats)

			r.Get("/progress", progressHandler.GetOverview)
			r.Get("/progress/integrity", progressHandler.CheckIntegrity)
			r.Get("/rankings", progressHandler.GetRanking)
		})
	})

	// Health check endpoint
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		shared.RespondWithJSON(w, req, http.StatusOK, api.HealthResponse{Status: "ok"})
	})

	return r
}
