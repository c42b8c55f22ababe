package leaderboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/eventgames/internal/model"
	"github.com/mcoot/eventgames/internal/storage/memory"
	"github.com/mcoot/eventgames/internal/testutil"
)

var base = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type AggregatorSuite struct {
	suite.Suite
	storage    *memory.Storage
	aggregator *Aggregator
	ctx        context.Context
}

func TestAggregatorSuite(t *testing.T) {
	suite.Run(t, new(AggregatorSuite))
}

func (s *AggregatorSuite) SetupTest() {
	s.storage = memory.New()
	s.aggregator = NewAggregator(s.storage, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *AggregatorSuite) participant(id, name, team string) {
	testutil.CreateParticipant(s.T(), s.storage, id, name, team)
}

func (s *AggregatorSuite) result(id string, kind model.GameKind, score int, at time.Duration) {
	inserted, err := s.storage.InsertResult(s.ctx, &model.GameResult{
		ParticipantID: model.ParticipantID(id),
		Kind:          kind,
		Score:         score,
		SubmittedAt:   base.Add(at),
	})
	s.Require().NoError(err)
	s.Require().True(inserted)
}

func (s *AggregatorSuite) TestEmptyStore() {
	players, err := s.aggregator.PlayerBests(s.ctx, model.GameKindMemo)
	s.Require().NoError(err)
	s.Empty(players)

	teams, err := s.aggregator.TeamBests(s.ctx, model.GameKindMemo)
	s.Require().NoError(err)
	s.Empty(teams)

	totals, err := s.aggregator.TeamTotals(s.ctx)
	s.Require().NoError(err)
	s.NotNil(totals)
	s.Empty(totals)
}

func (s *AggregatorSuite) TestTeamBestComesFromBestPlayer() {
	s.participant("p_p", "P", "Alpha")
	s.participant("p_q", "Q", "Alpha")
	s.result("p_p", model.GameKindMemo, 12, 1*time.Minute)
	s.result("p_q", model.GameKindMemo, 8, 2*time.Minute)

	players, err := s.aggregator.PlayerBests(s.ctx, model.GameKindMemo)
	s.Require().NoError(err)
	s.Require().Len(players, 2)
	s.Equal(model.ParticipantID("p_q"), players[0].ParticipantID)
	s.Equal(1, players[0].Rank)
	s.Equal(2, players[1].Rank)

	teams, err := s.aggregator.TeamBests(s.ctx, model.GameKindMemo)
	s.Require().NoError(err)
	s.Require().Len(teams, 1)

	alpha := teams[0]
	s.Equal("Alpha", alpha.Team)
	s.Equal(8, alpha.BestScore)
	s.Equal(model.ParticipantID("p_q"), alpha.BestParticipantID)
	s.Equal("Q", alpha.BestDisplayName)
	s.Equal(base.Add(2*time.Minute), alpha.AchievedAt)
	s.Equal(2, alpha.Participants)
	s.Equal(2, alpha.Attempts)
}

func (s *AggregatorSuite) TestTeamNamesGroupIgnoringCase() {
	s.participant("p_p", "P", "Alpha")
	s.participant("p_q", "Q", "alpha ")
	s.result("p_p", model.GameKindMemo, 8, 1*time.Minute)
	s.result("p_q", model.GameKindMemo, 12, 2*time.Minute)
	s.result("p_q", model.GameKindReaction, 300, 3*time.Minute)

	teams, err := s.aggregator.TeamBests(s.ctx, model.GameKindMemo)
	s.Require().NoError(err)
	s.Require().Len(teams, 1)
	s.Equal("Alpha", teams[0].Team)
	s.Equal(2, teams[0].Participants)

	totals, err := s.aggregator.TeamTotals(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(totals, 1)
	s.Equal(2, totals[0].GamesPlayed)
	s.Equal(308, totals[0].TotalScore)
}

func (s *AggregatorSuite) TestMoreGamesPlayedOutranksLowerTotal() {
	s.participant("p_a", "Ann", "Alpha")
	s.participant("p_b", "Ben", "Beta")
	s.result("p_a", model.GameKindMemo, 5, 0)
	s.result("p_a", model.GameKindReaction, 5, 0)
	s.result("p_b", model.GameKindMemo, 50, 0)
	s.result("p_b", model.GameKindTruthOrMyth, 50, 0)
	s.result("p_b", model.GameKindReaction, 50, 0)

	totals, err := s.aggregator.TeamTotals(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(totals, 2)

	s.Equal("Beta", totals[0].Team)
	s.Equal(3, totals[0].GamesPlayed)
	s.Equal(150, totals[0].TotalScore)
	s.Equal(1, totals[0].Rank)

	s.Equal("Alpha", totals[1].Team)
	s.Equal(2, totals[1].GamesPlayed)
	s.Equal(10, totals[1].TotalScore)
	s.Equal(map[model.GameKind]int{model.GameKindMemo: 5, model.GameKindReaction: 5}, totals[1].Bests)
}

func (s *AggregatorSuite) TestLowerTotalWinsAtEqualGamesPlayed() {
	s.participant("p_a", "Ann", "Alpha")
	s.participant("p_b", "Ben", "Beta")
	s.result("p_a", model.GameKindMemo, 20, 0)
	s.result("p_b", model.GameKindMemo, 10, time.Hour)

	totals, err := s.aggregator.TeamTotals(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(totals, 2)
	s.Equal("Beta", totals[0].Team)
	s.Equal("Alpha", totals[1].Team)
}

func (s *AggregatorSuite) TestRankMonotonicWhenLowerScoreAppended() {
	s.participant("p_a", "Ann", "Alpha")
	s.participant("p_b", "Ben", "Beta")
	s.participant("p_c", "Cat", "Beta")
	s.result("p_a", model.GameKindReaction, 300, 0)
	s.result("p_b", model.GameKindReaction, 400, 0)

	before, err := s.aggregator.PlayerBests(s.ctx, model.GameKindReaction)
	s.Require().NoError(err)
	rankBefore := map[model.ParticipantID]int{}
	for _, e := range before {
		rankBefore[e.ParticipantID] = e.Rank
	}

	s.result("p_c", model.GameKindReaction, 100, time.Minute)

	after, err := s.aggregator.PlayerBests(s.ctx, model.GameKindReaction)
	s.Require().NoError(err)
	s.Equal(model.ParticipantID("p_c"), after[0].ParticipantID)
	for _, e := range after {
		if prev, ok := rankBefore[e.ParticipantID]; ok {
			s.GreaterOrEqual(e.Rank, prev, e.ParticipantID)
		}
	}
}

func (s *AggregatorSuite) TestPlayerTieBreaks() {
	s.participant("p_1", "bob", "Alpha")
	s.participant("p_2", "Alice", "Alpha")
	s.participant("p_3", "carl", "Beta")
	s.participant("p_4", "alice", "Beta")
	s.result("p_1", model.GameKindMemo, 10, time.Minute)
	s.result("p_2", model.GameKindMemo, 10, time.Minute)
	s.result("p_3", model.GameKindMemo, 10, 0)
	s.result("p_4", model.GameKindMemo, 10, time.Minute)

	players, err := s.aggregator.PlayerBests(s.ctx, model.GameKindMemo)
	s.Require().NoError(err)

	var ids []model.ParticipantID
	for _, p := range players {
		ids = append(ids, p.ParticipantID)
	}
	// earliest first, then name ignoring case, then id
	s.Equal([]model.ParticipantID{"p_3", "p_2", "p_4", "p_1"}, ids)
}

func (s *AggregatorSuite) TestTeamTieBreakOnTimestamp() {
	s.participant("p_a", "Ann", "Alpha")
	s.participant("p_b", "Ben", "Beta")
	s.result("p_a", model.GameKindMemo, 10, time.Minute)
	s.result("p_b", model.GameKindMemo, 10, 0)

	teams, err := s.aggregator.TeamBests(s.ctx, model.GameKindMemo)
	s.Require().NoError(err)
	s.Require().Len(teams, 2)
	s.Equal("Beta", teams[0].Team)
	s.Equal("Alpha", teams[1].Team)
}

func (s *AggregatorSuite) TestEqualTeamScoreUsesEarliestContributor() {
	s.participant("p_late", "Late", "Alpha")
	s.participant("p_early", "Early", "Alpha")
	s.result("p_late", model.GameKindMemo, 7, time.Hour)
	s.result("p_early", model.GameKindMemo, 7, time.Minute)

	teams, err := s.aggregator.TeamBests(s.ctx, model.GameKindMemo)
	s.Require().NoError(err)
	s.Require().Len(teams, 1)
	s.Equal(model.ParticipantID("p_early"), teams[0].BestParticipantID)
	s.Equal(base.Add(time.Minute), teams[0].AchievedAt)
}

func (s *AggregatorSuite) TestMissingParticipantIsSkipped() {
	s.participant("p_a", "Ann", "Alpha")
	s.result("p_a", model.GameKindMemo, 10, 0)
	s.result("p_ghost", model.GameKindMemo, 1, 0)

	players, err := s.aggregator.PlayerBests(s.ctx, model.GameKindMemo)
	s.Require().NoError(err)
	s.Require().Len(players, 1)
	s.Equal(model.ParticipantID("p_a"), players[0].ParticipantID)
	s.Equal(1, players[0].Rank)
}

func (s *AggregatorSuite) TestSnapshotCoversEveryKind() {
	s.participant("p_a", "Ann", "Alpha")
	s.result("p_a", model.GameKindTruthOrMyth, 40, 0)

	snapshot, err := s.aggregator.Snapshot(s.ctx)
	s.Require().NoError(err)

	for _, kind := range model.AllGameKinds() {
		s.Contains(snapshot.Players, kind)
		s.Contains(snapshot.Teams, kind)
	}
	s.Len(snapshot.Players[model.GameKindTruthOrMyth], 1)
	s.Empty(snapshot.Players[model.GameKindMemo])
	s.Require().Len(snapshot.TeamTotals, 1)
	s.Equal(40, snapshot.TeamTotals[0].TotalScore)
}

func (s *AggregatorSuite) TestUnknownKind() {
	_, err := s.aggregator.PlayerBests(s.ctx, "darts")
	s.ErrorIs(err, model.ErrUnknownGameKind)
}

func (s *AggregatorSuite) TestStoreFailure() {
	aggregator := NewAggregator(testutil.NewFailingStorage(errors.New("timeout")), testutil.NopLogger())

	_, err := aggregator.Snapshot(s.ctx)
	s.ErrorIs(err, model.ErrStoreUnavailable)
}

func TestRankPlayersMergesRowsPerParticipant(t *testing.T) {
	participants := map[model.ParticipantID]*model.Participant{
		"p_1": {ID: "p_1", DisplayName: "Pat", Team: "Alpha"},
	}
	results := []*model.GameResult{
		{ParticipantID: "p_1", Kind: model.GameKindMemo, Score: 9, Attempts: 2, SubmittedAt: base.Add(time.Hour)},
		{ParticipantID: "p_1", Kind: model.GameKindMemo, Score: 9, Attempts: 1, SubmittedAt: base},
		{ParticipantID: "p_1", Kind: model.GameKindReaction, Score: 1, Attempts: 1, SubmittedAt: base},
		{ParticipantID: "p_2", Kind: model.GameKindMemo, Score: 1, Attempts: 1, SubmittedAt: base},
	}

	ranked, skipped := RankPlayers(model.GameKindMemo, results, participants)

	require.Len(t, ranked, 1)
	assert.Equal(t, 9, ranked[0].BestScore)
	assert.Equal(t, 3, ranked[0].Attempts)
	assert.Equal(t, base, ranked[0].AchievedAt)
	assert.Equal(t, []model.ParticipantID{"p_2"}, skipped)
}
