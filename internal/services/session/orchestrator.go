// Package session decides which game a participant plays next.
//
// Session progress is never stored. Every call recomputes it from the
// participant's played set, so the result store stays the only source of
// truth and a reload or a second device cannot replay a finished game.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mcoot/eventgames/internal/dependencies/random"
	"github.com/mcoot/eventgames/internal/model"
	"github.com/mcoot/eventgames/internal/storage"
)

// PlayedResolver returns the kinds a participant has completed
type PlayedResolver interface {
	ResolvePlayed(ctx context.Context, id model.ParticipantID) (model.KindSet, error)
}

// Orchestrator computes session progress on demand
type Orchestrator struct {
	storage  storage.Storage
	resolver PlayedResolver
	seeder   random.Seeder
	logger   *slog.Logger
}

// NewOrchestrator creates a new Orchestrator
func NewOrchestrator(
	storage storage.Storage,
	resolver PlayedResolver,
	seeder random.Seeder,
	logger *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		storage:  storage,
		resolver: resolver,
		seeder:   seeder,
		logger:   logger.With(slog.String("component", "session")),
	}
}

// Progress returns the participant's session state.
//
// knownOrder is the order the client was given earlier, if any. It is only
// advisory: kinds already played are removed without reordering the rest.
// Without a usable knownOrder the participant's own order is used. It is
// drawn from a source keyed by the participant ID, so a reload or another
// device that lost the client order still gets the same next game.
func (o *Orchestrator) Progress(ctx context.Context, id model.ParticipantID, knownOrder []model.GameKind) (*model.SessionProgress, error) {
	if _, err := o.storage.GetParticipant(ctx, id); err != nil {
		if errors.Is(err, model.ErrParticipantNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", model.ErrStoreUnavailable, err)
	}

	// Fail rather than guess: an empty played set here could replay a game
	played, err := o.resolver.ResolvePlayed(ctx, id)
	if err != nil {
		return nil, err
	}

	order := o.resolveOrder(id, knownOrder)
	remaining := make([]model.GameKind, 0, len(order))
	for _, kind := range order {
		if !played.Has(kind) {
			remaining = append(remaining, kind)
		}
	}

	state := model.SessionPending
	if len(remaining) == 0 {
		state = model.SessionComplete
	}

	o.logger.Debug("session progress resolved",
		slog.String("participant_id", string(id)),
		slog.String("state", string(state)),
		slog.Int("remaining", len(remaining)))

	return &model.SessionProgress{
		ParticipantID: id,
		State:         state,
		Order:         order,
		Remaining:     remaining,
		Played:        played.Sorted(),
	}, nil
}

// resolveOrder returns knownOrder when usable, completed with any kinds it
// is missing, or the participant's keyed order otherwise
func (o *Orchestrator) resolveOrder(id model.ParticipantID, knownOrder []model.GameKind) []model.GameKind {
	if len(knownOrder) == 0 {
		return o.ParticipantOrder(id)
	}

	if err := ValidateOrder(knownOrder); err != nil {
		o.logger.Warn("discarding client session order",
			slog.String("participant_id", string(id)),
			slog.Any("error", err))
		return o.ParticipantOrder(id)
	}

	order := make([]model.GameKind, len(knownOrder), len(model.AllGameKinds()))
	copy(order, knownOrder)

	// Missing kinds follow in the participant's own relative order
	seen := model.NewKindSet(knownOrder...)
	for _, kind := range o.ParticipantOrder(id) {
		if !seen.Has(kind) {
			order = append(order, kind)
		}
	}
	return order
}

// ParticipantOrder is the participant's stable permutation of every kind
func (o *Orchestrator) ParticipantOrder(id model.ParticipantID) []model.GameKind {
	kinds := model.AllGameKinds()
	Shuffle(kinds, o.seeder.ForKey(string(id)))
	return kinds
}

// ValidateOrder checks that an order only names known kinds, each at most once
func ValidateOrder(order []model.GameKind) error {
	seen := model.NewKindSet()
	for _, kind := range order {
		if !kind.Valid() {
			return fmt.Errorf("%w: %q", model.ErrUnknownGameKind, kind)
		}
		if seen.Has(kind) {
			return fmt.Errorf("duplicate game kind %q in order", kind)
		}
		seen.Add(kind)
	}
	return nil
}

// Shuffle permutes kinds in place with a Fisher-Yates shuffle, so every
// ordering is equally likely given a uniform rnd.Intn
func Shuffle(kinds []model.GameKind, rnd random.Random) {
	for i := len(kinds) - 1; i > 0; i-- {
		j := rnd.Intn(i + 1)
		kinds[i], kinds[j] = kinds[j], kinds[i]
	}
}
