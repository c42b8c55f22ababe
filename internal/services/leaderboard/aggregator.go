// Package leaderboard turns stored results into ranked views.
//
// Rankings are computed at read time from the result store. Nothing here is
// cached, so a reset or a new result shows up on the next read.
package leaderboard

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mcoot/eventgames/internal/model"
	"github.com/mcoot/eventgames/internal/storage"
)

// Aggregator reads the store and ranks players and teams
type Aggregator struct {
	storage storage.Storage
	logger  *slog.Logger
}

// NewAggregator creates a new Aggregator
func NewAggregator(storage storage.Storage, logger *slog.Logger) *Aggregator {
	return &Aggregator{
		storage: storage,
		logger:  logger.With(slog.String("component", "leaderboard")),
	}
}

// PlayerBests ranks every participant's best score for a kind
func (a *Aggregator) PlayerBests(ctx context.Context, kind model.GameKind) ([]model.PlayerRankingEntry, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownGameKind, kind)
	}
	results, participants, err := a.load(ctx)
	if err != nil {
		return nil, err
	}
	return a.rankPlayers(kind, results, participants), nil
}

// TeamBests ranks every team's best score for a kind
func (a *Aggregator) TeamBests(ctx context.Context, kind model.GameKind) ([]model.TeamRankingEntry, error) {
	players, err := a.PlayerBests(ctx, kind)
	if err != nil {
		return nil, err
	}
	return RankTeams(kind, players), nil
}

// TeamTotals ranks teams across all kinds
func (a *Aggregator) TeamTotals(ctx context.Context) ([]model.TeamTotalEntry, error) {
	snapshot, err := a.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snapshot.TeamTotals, nil
}

// Snapshot computes every view from a single read of the store, so the
// views are consistent with each other
func (a *Aggregator) Snapshot(ctx context.Context) (*model.LeaderboardSnapshot, error) {
	results, participants, err := a.load(ctx)
	if err != nil {
		return nil, err
	}

	snapshot := &model.LeaderboardSnapshot{
		Players: make(map[model.GameKind][]model.PlayerRankingEntry),
		Teams:   make(map[model.GameKind][]model.TeamRankingEntry),
	}
	for _, kind := range model.AllGameKinds() {
		players := a.rankPlayers(kind, results, participants)
		snapshot.Players[kind] = players
		snapshot.Teams[kind] = RankTeams(kind, players)
	}
	snapshot.TeamTotals = RankTeamTotals(snapshot.Teams)
	return snapshot, nil
}

func (a *Aggregator) rankPlayers(
	kind model.GameKind,
	results []*model.GameResult,
	participants map[model.ParticipantID]*model.Participant,
) []model.PlayerRankingEntry {
	ranked, skipped := RankPlayers(kind, results, participants)
	for _, id := range skipped {
		a.logger.Warn("skipping result for unknown participant",
			slog.String("participant_id", string(id)),
			slog.String("kind", string(kind)))
	}
	return ranked
}

func (a *Aggregator) load(ctx context.Context) ([]*model.GameResult, map[model.ParticipantID]*model.Participant, error) {
	results, err := a.storage.ListResults(ctx)
	if err != nil {
		return nil, nil, a.storeError("list results", err)
	}
	if len(results) == 0 {
		return results, nil, nil
	}

	list, err := a.storage.ListParticipants(ctx)
	if err != nil {
		return nil, nil, a.storeError("list participants", err)
	}
	participants := make(map[model.ParticipantID]*model.Participant, len(list))
	for _, p := range list {
		participants[p.ID] = p
	}
	return results, participants, nil
}

func (a *Aggregator) storeError(op string, err error) error {
	a.logger.Error("store operation failed",
		slog.String("op", op),
		slog.Any("error", err))
	return fmt.Errorf("%w: %w", model.ErrStoreUnavailable, err)
}
