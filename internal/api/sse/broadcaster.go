package sse

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mcoot/eventgames/internal/api/response"
	"github.com/mcoot/eventgames/internal/model"
)

// Event names sent to clients
const (
	EventConnected          = "connected"
	EventLeaderboardUpdated = "leaderboard-updated"
	EventResultsReset       = "results-reset"
)

// SnapshotSource computes the current leaderboard
type SnapshotSource interface {
	Snapshot(ctx context.Context) (*model.LeaderboardSnapshot, error)
}

// Broadcaster turns result changes into hub events. It listens to the
// submission gate and the admin reset.
type Broadcaster struct {
	hub    *Hub
	source SnapshotSource
	logger *slog.Logger
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hub *Hub, source SnapshotSource, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		hub:    hub,
		source: source,
		logger: logger.With(slog.String("component", "sse-broadcaster")),
	}
}

// ResultRecorded pushes a fresh leaderboard after a stored result
func (b *Broadcaster) ResultRecorded(ctx context.Context, _ *model.Submission) {
	b.BroadcastLeaderboard(ctx)
}

// ResultsReset tells clients the results were cleared, then pushes the
// now empty leaderboard
func (b *Broadcaster) ResultsReset(ctx context.Context, deleted int) {
	data, err := json.Marshal(response.ResetResponse{Deleted: deleted})
	if err != nil {
		b.logger.Error("sse failed to encode reset", slog.Any("error", err))
		return
	}
	b.hub.BroadcastEvent(EventResultsReset, string(data))
	b.BroadcastLeaderboard(ctx)
}

// BroadcastLeaderboard sends the current snapshot to every client.
// Nothing is computed when no client is connected.
func (b *Broadcaster) BroadcastLeaderboard(ctx context.Context) {
	if b.hub.ClientCount() == 0 {
		return
	}
	msg, err := b.LeaderboardMessage(ctx)
	if err != nil {
		b.logger.Error("sse failed to build leaderboard", slog.Any("error", err))
		return
	}
	b.hub.Broadcast(msg)
}

// LeaderboardMessage renders the current snapshot as an SSE message
func (b *Broadcaster) LeaderboardMessage(ctx context.Context) ([]byte, error) {
	snapshot, err := b.source.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(response.SnapshotFromModel(snapshot))
	if err != nil {
		return nil, err
	}
	return formatSSEMessage(EventLeaderboardUpdated, string(data)), nil
}
