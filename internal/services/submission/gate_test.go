package submission

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"golang.org/x/sync/errgroup"

	"github.com/mcoot/eventgames/internal/dependencies/mocks"
	"github.com/mcoot/eventgames/internal/model"
	"github.com/mcoot/eventgames/internal/services/progress"
	"github.com/mcoot/eventgames/internal/services/session"
	"github.com/mcoot/eventgames/internal/storage/memory"
	"github.com/mcoot/eventgames/internal/testutil"
)

type recordingListener struct {
	mu          sync.Mutex
	submissions []*model.Submission
}

func (l *recordingListener) ResultRecorded(_ context.Context, s *model.Submission) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.submissions = append(l.submissions, s)
}

func (l *recordingListener) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.submissions)
}

type GateSuite struct {
	suite.Suite
	storage  *memory.Storage
	clock    *mocks.MockClock
	listener *recordingListener
	gate     *Gate
	ctx      context.Context
}

func TestGateSuite(t *testing.T) {
	suite.Run(t, new(GateSuite))
}

func (s *GateSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	s.listener = &recordingListener{}
	s.gate = s.newGate(model.PolicyFirst)
	s.ctx = context.Background()

	testutil.CreateParticipant(s.T(), s.storage, "p_1", "Pat", "Alpha")
}

func (s *GateSuite) newGate(policy model.ResultPolicy) *Gate {
	g := New(s.storage, s.clock, testutil.NopLogger(), Config{Policy: policy})
	g.AddListener(s.listener)
	return g
}

func (s *GateSuite) TestAcceptsFirstResult() {
	sub, err := s.gate.Submit(s.ctx, "p_1", model.GameKindMemo, 14)
	s.Require().NoError(err)

	s.Equal(model.OutcomeAccepted, sub.Outcome)
	s.Equal(14, sub.Result.Score)
	s.Equal(1, sub.Result.Attempts)
	s.Equal(s.clock.Now(), sub.Result.SubmittedAt)
	s.Equal(1, s.listener.count())
}

func (s *GateSuite) TestDuplicateIsAlreadyRecorded() {
	_, err := s.gate.Submit(s.ctx, "p_1", model.GameKindMemo, 14)
	s.Require().NoError(err)
	s.clock.Advance(time.Minute)

	sub, err := s.gate.Submit(s.ctx, "p_1", model.GameKindMemo, 3)
	s.Require().NoError(err)

	s.Equal(model.OutcomeAlreadyRecorded, sub.Outcome)
	s.Equal(14, sub.Result.Score)

	results, err := s.storage.GetResultsForParticipant(s.ctx, "p_1")
	s.Require().NoError(err)
	s.Require().Len(results, 1)
	s.Equal(14, results[0].Score)
	s.Equal(1, s.listener.count())
}

func (s *GateSuite) TestConcurrentSubmitsStoreOneRow() {
	const writers = 32
	var (
		mu       sync.Mutex
		accepted int
	)

	var g errgroup.Group
	for i := 0; i < writers; i++ {
		score := i + 1
		g.Go(func() error {
			sub, err := s.gate.Submit(s.ctx, "p_1", model.GameKindReaction, score)
			if err != nil {
				return err
			}
			if sub.Outcome == model.OutcomeAccepted {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
			return nil
		})
	}
	s.Require().NoError(g.Wait())

	s.Equal(1, accepted)
	results, err := s.storage.ListResults(s.ctx)
	s.Require().NoError(err)
	s.Len(results, 1)
}

func (s *GateSuite) TestScoreBounds() {
	tests := []struct {
		kind  model.GameKind
		score int
		ok    bool
	}{
		{model.GameKindMemo, 0, true},
		{model.GameKindMemo, model.MaxMemoScore, true},
		{model.GameKindMemo, model.MaxMemoScore + 1, false},
		{model.GameKindTruthOrMyth, model.MaxTruthOrMythScore + 1, false},
		{model.GameKindReaction, -1, false},
	}

	for _, tt := range tests {
		store := memory.New()
		testutil.CreateParticipant(s.T(), store, "p_1", "Pat", "Alpha")
		gate := New(store, s.clock, testutil.NopLogger(), DefaultConfig())

		_, err := gate.Submit(s.ctx, "p_1", tt.kind, tt.score)
		if tt.ok {
			s.NoError(err, "%s %d", tt.kind, tt.score)
		} else {
			s.ErrorIs(err, model.ErrInvalidScore, "%s %d", tt.kind, tt.score)
		}
	}
}

func (s *GateSuite) TestUnknownKind() {
	_, err := s.gate.Submit(s.ctx, "p_1", "darts", 1)
	s.ErrorIs(err, model.ErrUnknownGameKind)
}

func (s *GateSuite) TestUnknownParticipant() {
	_, err := s.gate.Submit(s.ctx, "p_missing", model.GameKindMemo, 1)
	s.ErrorIs(err, model.ErrParticipantNotFound)
}

func (s *GateSuite) TestRejectedSubmissionDoesNotAdvanceSession() {
	logger := testutil.NopLogger()
	orchestrator := session.NewOrchestrator(s.storage, progress.NewResolver(s.storage, logger), mocks.NewMockRandom(), logger)
	order := model.AllGameKinds()

	_, err := s.gate.Submit(s.ctx, "p_1", model.GameKindMemo, model.MaxMemoScore+1)
	s.Require().ErrorIs(err, model.ErrInvalidScore)

	got, err := orchestrator.Progress(s.ctx, "p_1", order)
	s.Require().NoError(err)
	s.Equal(order, got.Remaining)

	_, err = s.gate.Submit(s.ctx, "p_1", model.GameKindMemo, 10)
	s.Require().NoError(err)

	got, err = orchestrator.Progress(s.ctx, "p_1", order)
	s.Require().NoError(err)
	s.Equal([]model.GameKind{model.GameKindTruthOrMyth, model.GameKindReaction}, got.Remaining)
}

func (s *GateSuite) TestBestPolicyKeepsLowestScore() {
	gate := s.newGate(model.PolicyBest)
	s.Equal(model.PolicyBest, gate.Policy())

	sub, err := gate.Submit(s.ctx, "p_1", model.GameKindMemo, 12)
	s.Require().NoError(err)
	s.Equal(model.OutcomeAccepted, sub.Outcome)

	s.clock.Advance(time.Minute)
	sub, err = gate.Submit(s.ctx, "p_1", model.GameKindMemo, 15)
	s.Require().NoError(err)
	s.Equal(model.OutcomeAlreadyRecorded, sub.Outcome)
	s.Equal(12, sub.Result.Score)

	s.clock.Advance(time.Minute)
	sub, err = gate.Submit(s.ctx, "p_1", model.GameKindMemo, 9)
	s.Require().NoError(err)
	s.Equal(model.OutcomeImproved, sub.Outcome)
	s.Equal(9, sub.Result.Score)
	s.Equal(3, sub.Result.Attempts)
	s.Equal(s.clock.Now(), sub.Result.SubmittedAt)

	// accepted and improved only
	s.Equal(2, s.listener.count())
}

func (s *GateSuite) TestInvalidPolicyFallsBackToFirst() {
	gate := New(s.storage, s.clock, testutil.NopLogger(), Config{Policy: "latest"})
	s.Equal(model.PolicyFirst, gate.Policy())
}

func (s *GateSuite) TestStoreFailureIsReported() {
	failing := testutil.NewFailingStorage(errors.New("connection refused"))
	testutil.CreateParticipant(s.T(), failing, "p_1", "Pat", "Alpha")
	gate := New(failing, s.clock, testutil.NopLogger(), DefaultConfig())

	_, err := gate.Submit(s.ctx, "p_1", model.GameKindMemo, 10)
	s.ErrorIs(err, model.ErrStoreUnavailable)
}
