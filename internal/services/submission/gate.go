// Package submission validates and records game results.
package submission

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mcoot/eventgames/internal/dependencies/clock"
	"github.com/mcoot/eventgames/internal/model"
	"github.com/mcoot/eventgames/internal/storage"
)

// ResultListener is told about every submission that changed a counted score
type ResultListener interface {
	ResultRecorded(ctx context.Context, submission *model.Submission)
}

// Config holds configuration for the gate
type Config struct {
	Policy model.ResultPolicy
}

// DefaultConfig returns the default gate configuration
func DefaultConfig() Config {
	return Config{
		Policy: model.PolicyFirst,
	}
}

// Gate is the single write path for results. Uniqueness per
// (participant, kind) is enforced by the store, not by a read before write.
type Gate struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
	policy  model.ResultPolicy

	mu        sync.RWMutex
	listeners []ResultListener
}

// New creates a new Gate
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger, cfg Config) *Gate {
	if !cfg.Policy.Valid() {
		cfg.Policy = DefaultConfig().Policy
	}
	return &Gate{
		storage: storage,
		clock:   clock,
		logger:  logger.With(slog.String("component", "submission")),
		policy:  cfg.Policy,
	}
}

// Policy returns the policy the gate applies to repeat submissions
func (g *Gate) Policy() model.ResultPolicy {
	return g.policy
}

// AddListener registers a listener for stored results
func (g *Gate) AddListener(l ResultListener) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.listeners = append(g.listeners, l)
}

// Submit records a score for the participant and kind.
//
// Under the first policy a repeat submission returns OutcomeAlreadyRecorded
// with the stored row, which is not an error. Under the best policy the
// lower score wins.
func (g *Gate) Submit(ctx context.Context, id model.ParticipantID, kind model.GameKind, score int) (*model.Submission, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownGameKind, kind)
	}
	if score < 0 || score > kind.MaxScore() {
		return nil, fmt.Errorf("%w: %s score must be between 0 and %d, got %d",
			model.ErrInvalidScore, kind, kind.MaxScore(), score)
	}

	if _, err := g.storage.GetParticipant(ctx, id); err != nil {
		if errors.Is(err, model.ErrParticipantNotFound) {
			return nil, err
		}
		return nil, g.storeError("get participant", id, kind, err)
	}

	result := &model.GameResult{
		ParticipantID: id,
		Kind:          kind,
		Score:         score,
		SubmittedAt:   g.clock.Now().UTC(),
	}

	var (
		submission *model.Submission
		err        error
	)
	switch g.policy {
	case model.PolicyBest:
		submission, err = g.submitBest(ctx, result)
	default:
		submission, err = g.submitFirst(ctx, result)
	}
	if err != nil {
		return nil, err
	}

	g.logger.Info("result submitted",
		slog.String("participant_id", string(id)),
		slog.String("kind", string(kind)),
		slog.Int("score", score),
		slog.String("outcome", string(submission.Outcome)))

	if submission.Outcome.Stored() {
		g.notify(ctx, submission)
	}
	return submission, nil
}

func (g *Gate) submitFirst(ctx context.Context, result *model.GameResult) (*model.Submission, error) {
	inserted, err := g.storage.InsertResult(ctx, result)
	if err != nil {
		return nil, g.storeError("insert result", result.ParticipantID, result.Kind, err)
	}
	if inserted {
		stored := *result
		stored.Attempts = 1
		return &model.Submission{Outcome: model.OutcomeAccepted, Result: &stored}, nil
	}

	existing, err := g.existingResult(ctx, result.ParticipantID, result.Kind)
	if err != nil {
		return nil, err
	}
	return &model.Submission{Outcome: model.OutcomeAlreadyRecorded, Result: existing}, nil
}

func (g *Gate) submitBest(ctx context.Context, result *model.GameResult) (*model.Submission, error) {
	outcome, stored, err := g.storage.UpsertBestResult(ctx, result)
	if err != nil {
		return nil, g.storeError("upsert result", result.ParticipantID, result.Kind, err)
	}
	return &model.Submission{Outcome: outcome, Result: stored}, nil
}

func (g *Gate) existingResult(ctx context.Context, id model.ParticipantID, kind model.GameKind) (*model.GameResult, error) {
	results, err := g.storage.GetResultsForParticipant(ctx, id)
	if err != nil {
		return nil, g.storeError("get results", id, kind, err)
	}
	for _, r := range results {
		if r.Kind == kind {
			return r, nil
		}
	}
	// Reset between the insert and the read
	return nil, fmt.Errorf("%w: result for %s/%s disappeared", model.ErrStoreUnavailable, id, kind)
}

func (g *Gate) notify(ctx context.Context, submission *model.Submission) {
	g.mu.RLock()
	listeners := make([]ResultListener, len(g.listeners))
	copy(listeners, g.listeners)
	g.mu.RUnlock()

	for _, l := range listeners {
		l.ResultRecorded(ctx, submission)
	}
}

func (g *Gate) storeError(op string, id model.ParticipantID, kind model.GameKind, err error) error {
	g.logger.Error("store operation failed",
		slog.String("op", op),
		slog.String("participant_id", string(id)),
		slog.String("kind", string(kind)),
		slog.Any("error", err))
	return fmt.Errorf("%w: %w", model.ErrStoreUnavailable, err)
}
