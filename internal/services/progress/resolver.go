// Package progress resolves which game kinds a participant has already played.
package progress

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mcoot/eventgames/internal/model"
	"github.com/mcoot/eventgames/internal/storage"
)

// Resolver derives the played set straight from the result store.
// It keeps no cache, so a participant always sees their own writes.
type Resolver struct {
	storage storage.Storage
	logger  *slog.Logger
}

// NewResolver creates a new Resolver
func NewResolver(storage storage.Storage, logger *slog.Logger) *Resolver {
	return &Resolver{
		storage: storage,
		logger:  logger.With(slog.String("component", "progress")),
	}
}

// ResolvePlayed returns the kinds with a recorded result for the participant
func (r *Resolver) ResolvePlayed(ctx context.Context, id model.ParticipantID) (model.KindSet, error) {
	results, err := r.storage.GetResultsForParticipant(ctx, id)
	if err != nil {
		r.logger.Error("failed to resolve played set",
			slog.String("participant_id", string(id)),
			slog.Any("error", err))
		return nil, fmt.Errorf("%w: %w", model.ErrStoreUnavailable, err)
	}

	played := model.NewKindSet()
	for _, result := range results {
		played.Add(result.Kind)
	}
	return played, nil
}
