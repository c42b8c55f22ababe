package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/eventgames/internal/api/handler"
	"github.com/mcoot/eventgames/internal/api/middleware"
	"github.com/mcoot/eventgames/internal/api/sse"
	"github.com/mcoot/eventgames/internal/services/admin"
	"github.com/mcoot/eventgames/internal/services/leaderboard"
	"github.com/mcoot/eventgames/internal/services/progress"
	"github.com/mcoot/eventgames/internal/services/registration"
	"github.com/mcoot/eventgames/internal/services/session"
	"github.com/mcoot/eventgames/internal/services/submission"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger       *slog.Logger
	Storage      handler.Pinger
	Registration *registration.Service
	Resolver     *progress.Resolver
	Orchestrator *session.Orchestrator
	Gate         *submission.Gate
	Aggregator   *leaderboard.Aggregator
	Admin        *admin.Service
	Hub          *sse.Hub
	Broadcaster  *sse.Broadcaster
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	participantHandler := handler.NewParticipantHandler(cfg.Registration, cfg.Resolver, cfg.Orchestrator)
	resultHandler := handler.NewResultHandler(cfg.Gate)
	leaderboardHandler := handler.NewLeaderboardHandler(cfg.Aggregator, cfg.Hub, cfg.Broadcaster)
	teamHandler := handler.NewTeamHandler(cfg.Registration, cfg.Admin)
	adminHandler := handler.NewAdminHandler(cfg.Admin)
	healthHandler := handler.NewHealthHandler(cfg.Storage)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(middleware.Logging(cfg.Logger))

	// Participant and session routes
	api.HandleFunc("/participants", participantHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/participants/{id}", participantHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/participants/{id}/played", participantHandler.Played).Methods(http.MethodGet)
	api.HandleFunc("/participants/{id}/results", participantHandler.Results).Methods(http.MethodGet)
	api.HandleFunc("/participants/{id}/session", participantHandler.Session).Methods(http.MethodGet)

	// Result submission
	api.HandleFunc("/results", resultHandler.Submit).Methods(http.MethodPost)

	// Leaderboards
	api.HandleFunc("/leaderboard", leaderboardHandler.Snapshot).Methods(http.MethodGet)
	api.HandleFunc("/leaderboard/players", leaderboardHandler.Players).Methods(http.MethodGet)
	api.HandleFunc("/leaderboard/teams", leaderboardHandler.Teams).Methods(http.MethodGet)
	api.HandleFunc("/leaderboard/totals", leaderboardHandler.Totals).Methods(http.MethodGet)
	api.HandleFunc("/leaderboard/events", leaderboardHandler.Events).Methods(http.MethodGet)

	api.HandleFunc("/teams", teamHandler.List).Methods(http.MethodGet)

	// Admin routes (all require the admin secret)
	adminRoutes := api.PathPrefix("/admin").Subrouter()
	adminRoutes.Use(middleware.Admin(cfg.Admin))
	adminRoutes.HandleFunc("/results/reset", adminHandler.ResetResults).Methods(http.MethodPost)
	adminRoutes.HandleFunc("/teams/{name}", teamHandler.Save).Methods(http.MethodPut)
	adminRoutes.HandleFunc("/teams/{name}", teamHandler.Delete).Methods(http.MethodDelete)

	// Health check endpoint
	api.HandleFunc("/health", healthHandler.Health).Methods(http.MethodGet)

	return r
}
