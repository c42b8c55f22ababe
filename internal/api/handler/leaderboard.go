package handler

import (
	"net/http"

	"github.com/mcoot/eventgames/internal/api/response"
	"github.com/mcoot/eventgames/internal/api/sse"
	"github.com/mcoot/eventgames/internal/services/leaderboard"
)

// LeaderboardHandler handles leaderboard endpoints
type LeaderboardHandler struct {
	aggregator  *leaderboard.Aggregator
	hub         *sse.Hub
	broadcaster *sse.Broadcaster
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(aggregator *leaderboard.Aggregator, hub *sse.Hub, broadcaster *sse.Broadcaster) *LeaderboardHandler {
	return &LeaderboardHandler{
		aggregator:  aggregator,
		hub:         hub,
		broadcaster: broadcaster,
	}
}

// Players handles GET /api/v1/leaderboard/players?game=
func (h *LeaderboardHandler) Players(w http.ResponseWriter, r *http.Request) {
	kind, err := gameParam(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	entries, err := h.aggregator.PlayerBests(r.Context(), kind)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerLeaderboardResponse{
		Game:    string(kind),
		Entries: response.PlayerRankingsFromModel(entries),
	})
}

// Teams handles GET /api/v1/leaderboard/teams?game=
func (h *LeaderboardHandler) Teams(w http.ResponseWriter, r *http.Request) {
	kind, err := gameParam(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	entries, err := h.aggregator.TeamBests(r.Context(), kind)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.TeamLeaderboardResponse{
		Game:    string(kind),
		Entries: response.TeamRankingsFromModel(entries),
	})
}

// Totals handles GET /api/v1/leaderboard/totals
func (h *LeaderboardHandler) Totals(w http.ResponseWriter, r *http.Request) {
	entries, err := h.aggregator.TeamTotals(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.TeamTotalsResponse{
		Entries: response.TeamTotalsFromModel(entries),
	})
}

// Snapshot handles GET /api/v1/leaderboard
func (h *LeaderboardHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.aggregator.Snapshot(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SnapshotFromModel(snapshot))
}

// Events handles GET /api/v1/leaderboard/events.
// The stream opens with the current leaderboard so displays need no
// separate fetch.
func (h *LeaderboardHandler) Events(w http.ResponseWriter, r *http.Request) {
	subscriber := r.URL.Query().Get("client")
	if subscriber == "" {
		subscriber = r.RemoteAddr
	}
	if err := sse.ServeSSE(w, r, h.hub, subscriber, h.broadcaster.LeaderboardMessage); err != nil {
		WriteError(w, err)
	}
}
