package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/eventgames/internal/model"
	"github.com/mcoot/eventgames/internal/storage"
	"github.com/mcoot/eventgames/internal/storage/storagetest"
)

func TestStorageSuite(t *testing.T) {
	suite.Run(t, &storagetest.Suite{
		NewStorage: func() storage.Storage { return New() },
	})
}

type MemorySuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestMemorySuite(t *testing.T) {
	suite.Run(t, new(MemorySuite))
}

func (s *MemorySuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
}

func (s *MemorySuite) TestReturnedResultsAreCopies() {
	_, err := s.storage.InsertResult(s.ctx, &model.GameResult{
		ParticipantID: "p_1",
		Kind:          model.GameKindMemo,
		Score:         10,
		SubmittedAt:   time.Now(),
	})
	s.Require().NoError(err)

	results, err := s.storage.ListResults(s.ctx)
	s.Require().NoError(err)
	results[0].Score = 0

	again, err := s.storage.GetResultsForParticipant(s.ctx, "p_1")
	s.Require().NoError(err)
	s.Equal(10, again[0].Score)
}

func (s *MemorySuite) TestCallerMutationDoesNotLeakIntoStore() {
	p := &model.Participant{ID: "p_1", DisplayName: "Alice", Team: "Alpha"}
	s.Require().NoError(s.storage.CreateParticipant(s.ctx, p))
	p.Team = "Beta"

	got, err := s.storage.GetParticipant(s.ctx, "p_1")
	s.Require().NoError(err)
	s.Equal("Alpha", got.Team)
}
