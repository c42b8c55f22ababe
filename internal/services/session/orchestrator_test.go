package session

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/eventgames/internal/dependencies/mocks"
	"github.com/mcoot/eventgames/internal/dependencies/random"
	"github.com/mcoot/eventgames/internal/model"
	"github.com/mcoot/eventgames/internal/services/progress"
	"github.com/mcoot/eventgames/internal/storage/memory"
	"github.com/mcoot/eventgames/internal/testutil"
)

type OrchestratorSuite struct {
	suite.Suite
	storage      *memory.Storage
	random       *mocks.MockRandom
	orchestrator *Orchestrator
	ctx          context.Context
}

func TestOrchestratorSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorSuite))
}

func (s *OrchestratorSuite) SetupTest() {
	s.storage = memory.New()
	s.random = mocks.NewMockRandom()
	logger := testutil.NopLogger()
	s.orchestrator = NewOrchestrator(s.storage, progress.NewResolver(s.storage, logger), s.random, logger)
	s.ctx = context.Background()

	testutil.CreateParticipant(s.T(), s.storage, "p_1", "Pat", "Alpha")
}

func (s *OrchestratorSuite) record(kind model.GameKind) {
	inserted, err := s.storage.InsertResult(s.ctx, &model.GameResult{
		ParticipantID: "p_1",
		Kind:          kind,
		Score:         10,
		SubmittedAt:   time.Now(),
	})
	s.Require().NoError(err)
	s.Require().True(inserted)
}

func (s *OrchestratorSuite) TestFreshSessionCoversEveryKindOnce() {
	got, err := s.orchestrator.Progress(s.ctx, "p_1", nil)
	s.Require().NoError(err)

	s.Equal(model.SessionPending, got.State)
	s.ElementsMatch(model.AllGameKinds(), got.Order)
	s.Equal(got.Order, got.Remaining)
	s.Empty(got.Played)

	next, ok := got.Next()
	s.True(ok)
	s.Equal(got.Order[0], next)
}

func (s *OrchestratorSuite) TestShuffleUsesRandomSource() {
	// Zero draws rotate the canonical order
	got, err := s.orchestrator.Progress(s.ctx, "p_1", nil)
	s.Require().NoError(err)
	s.Equal([]model.GameKind{model.GameKindTruthOrMyth, model.GameKindReaction, model.GameKindMemo}, got.Order)

	s.random.QueueIntn(2, 1)
	got, err = s.orchestrator.Progress(s.ctx, "p_1", nil)
	s.Require().NoError(err)
	s.Equal(model.AllGameKinds(), got.Order)
}

func (s *OrchestratorSuite) TestResumeKeepsRelativeOrder() {
	order := []model.GameKind{model.GameKindReaction, model.GameKindMemo, model.GameKindTruthOrMyth}
	s.record(model.GameKindReaction)

	got, err := s.orchestrator.Progress(s.ctx, "p_1", order)
	s.Require().NoError(err)

	s.Equal(model.SessionPending, got.State)
	s.Equal(order, got.Order)
	s.Equal([]model.GameKind{model.GameKindMemo, model.GameKindTruthOrMyth}, got.Remaining)
	s.Equal([]model.GameKind{model.GameKindReaction}, got.Played)
}

func (s *OrchestratorSuite) TestPlayedKindOutOfOrderIsRemoved() {
	order := []model.GameKind{model.GameKindReaction, model.GameKindMemo, model.GameKindTruthOrMyth}
	s.record(model.GameKindMemo)

	got, err := s.orchestrator.Progress(s.ctx, "p_1", order)
	s.Require().NoError(err)
	s.Equal([]model.GameKind{model.GameKindReaction, model.GameKindTruthOrMyth}, got.Remaining)
}

func (s *OrchestratorSuite) TestCompleteWhenEverythingPlayed() {
	for _, kind := range model.AllGameKinds() {
		s.record(kind)
	}

	got, err := s.orchestrator.Progress(s.ctx, "p_1", nil)
	s.Require().NoError(err)

	s.True(got.IsComplete())
	s.Empty(got.Remaining)
	s.Equal(model.AllGameKinds(), got.Played)

	_, ok := got.Next()
	s.False(ok)
}

func (s *OrchestratorSuite) TestInvalidOrderIsDiscarded() {
	s.random.QueueIntn(2, 1)
	order := []model.GameKind{model.GameKindMemo, model.GameKindMemo, model.GameKindReaction}

	got, err := s.orchestrator.Progress(s.ctx, "p_1", order)
	s.Require().NoError(err)
	s.Equal(model.AllGameKinds(), got.Order)
}

func (s *OrchestratorSuite) TestUnknownKindInOrderIsDiscarded() {
	order := []model.GameKind{"darts", model.GameKindMemo}

	got, err := s.orchestrator.Progress(s.ctx, "p_1", order)
	s.Require().NoError(err)
	s.ElementsMatch(model.AllGameKinds(), got.Order)
}

func (s *OrchestratorSuite) TestMissingKindsAreAppended() {
	s.random.QueueIntn(1)
	order := []model.GameKind{model.GameKindReaction}

	got, err := s.orchestrator.Progress(s.ctx, "p_1", order)
	s.Require().NoError(err)
	s.Equal([]model.GameKind{model.GameKindReaction, model.GameKindMemo, model.GameKindTruthOrMyth}, got.Order)
}

func (s *OrchestratorSuite) TestUnknownParticipant() {
	_, err := s.orchestrator.Progress(s.ctx, "p_missing", nil)
	s.ErrorIs(err, model.ErrParticipantNotFound)
}

func (s *OrchestratorSuite) TestStoreFailureIsNotAnEmptySession() {
	failing := testutil.NewFailingStorage(errors.New("connection refused"))
	testutil.CreateParticipant(s.T(), failing, "p_1", "Pat", "Alpha")
	logger := testutil.NopLogger()
	orchestrator := NewOrchestrator(failing, progress.NewResolver(failing, logger), s.random, logger)

	got, err := orchestrator.Progress(s.ctx, "p_1", nil)
	s.ErrorIs(err, model.ErrStoreUnavailable)
	s.Nil(got)
}

func TestValidateOrder(t *testing.T) {
	tests := []struct {
		name    string
		order   []model.GameKind
		wantErr bool
	}{
		{"empty", nil, false},
		{"full", model.AllGameKinds(), false},
		{"partial", []model.GameKind{model.GameKindReaction}, false},
		{"duplicate", []model.GameKind{model.GameKindMemo, model.GameKindMemo}, true},
		{"unknown", []model.GameKind{"darts"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOrder(tt.order)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestShuffleIsUniform(t *testing.T) {
	const draws = 6000
	rnd := random.New()
	counts := make(map[string]int)

	for i := 0; i < draws; i++ {
		kinds := model.AllGameKinds()
		Shuffle(kinds, rnd)
		counts[fmt.Sprint(kinds)]++
	}

	// 3! orderings, each expected 1000 times
	require.Len(t, counts, 6)
	for perm, n := range counts {
		assert.GreaterOrEqual(t, n, 800, perm)
		assert.LessOrEqual(t, n, 1200, perm)
	}
}

func TestOrderIsStableWithoutClientState(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	logger := testutil.NopLogger()
	orchestrator := NewOrchestrator(store, progress.NewResolver(store, logger), random.NewKeyedSeeder(42), logger)

	for i := 0; i < 50; i++ {
		id := fmt.Sprintf("p_%d", i)
		testutil.CreateParticipant(t, store, id, "Pat", "Alpha")
		inserted, err := store.InsertResult(ctx, &model.GameResult{
			ParticipantID: model.ParticipantID(id),
			Kind:          model.GameKindReaction,
			Score:         10,
			SubmittedAt:   time.Now(),
		})
		require.NoError(t, err)
		require.True(t, inserted)

		first, err := orchestrator.Progress(ctx, model.ParticipantID(id), nil)
		require.NoError(t, err)
		second, err := orchestrator.Progress(ctx, model.ParticipantID(id), nil)
		require.NoError(t, err)

		assert.Equal(t, first.Order, second.Order, id)
		assert.Equal(t, first.Remaining, second.Remaining, id)
		assert.NotContains(t, first.Remaining, model.GameKindReaction, id)

		// A discarded client order falls back to the same order
		bad, err := orchestrator.Progress(ctx, model.ParticipantID(id), []model.GameKind{"darts"})
		require.NoError(t, err)
		assert.Equal(t, first.Order, bad.Order, id)
	}
}
