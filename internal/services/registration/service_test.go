package registration

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/eventgames/internal/dependencies/mocks"
	"github.com/mcoot/eventgames/internal/model"
	"github.com/mcoot/eventgames/internal/storage/memory"
	"github.com/mcoot/eventgames/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	random  *mocks.MockRandom
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.service = New(s.storage, s.clock, s.random, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ServiceSuite) seedTeams(names ...string) {
	for i, name := range names {
		s.Require().NoError(s.storage.SaveTeam(s.ctx, &model.Team{Name: name, SortOrder: i}))
	}
}

func (s *ServiceSuite) TestRegister() {
	s.random.QueueString("abc123")

	p, err := s.service.Register(s.ctx, Request{
		DisplayName: "  Pat Smith ",
		Email:       "pat@example.com",
		Team:        "Alpha",
	})
	s.Require().NoError(err)

	s.Equal(model.ParticipantID("p_abc123"), p.ID)
	s.Equal("Pat Smith", p.DisplayName)
	s.Equal("pat@example.com", p.Email)
	s.Equal("Alpha", p.Team)
	s.Equal(s.clock.Now(), p.CreatedAt)

	stored, err := s.service.Get(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(p, stored)
}

func (s *ServiceSuite) TestRegisterMatchesConfiguredTeamIgnoringCase() {
	s.seedTeams("Alpha", "Beta")
	s.random.QueueString("abc123")

	p, err := s.service.Register(s.ctx, Request{DisplayName: "Pat", Team: "beta"})
	s.Require().NoError(err)
	s.Equal("Beta", p.Team)
}

func (s *ServiceSuite) TestRegisterRejectsUnknownTeam() {
	s.seedTeams("Alpha", "Beta")

	_, err := s.service.Register(s.ctx, Request{DisplayName: "Pat", Team: "Gamma"})
	s.ErrorIs(err, model.ErrInvalidTeam)
}

func (s *ServiceSuite) TestRegisterValidation() {
	tests := []struct {
		name    string
		req     Request
		wantErr error
	}{
		{"short name", Request{DisplayName: "P", Team: "Alpha"}, model.ErrInvalidParticipant},
		{"long name", Request{DisplayName: strings.Repeat("x", MaxDisplayNameLength+1), Team: "Alpha"}, model.ErrInvalidParticipant},
		{"blank team", Request{DisplayName: "Pat", Team: "  "}, model.ErrInvalidTeam},
		{"long team", Request{DisplayName: "Pat", Team: strings.Repeat("t", MaxTeamLength+1)}, model.ErrInvalidTeam},
		{"bad email", Request{DisplayName: "Pat", Email: "not-an-email", Team: "Alpha"}, model.ErrInvalidParticipant},
		{"named email", Request{DisplayName: "Pat", Email: "Pat <pat@example.com>", Team: "Alpha"}, model.ErrInvalidParticipant},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.service.Register(s.ctx, tt.req)
			s.ErrorIs(err, tt.wantErr)
		})
	}

	participants, err := s.storage.ListParticipants(s.ctx)
	s.Require().NoError(err)
	s.Empty(participants)
}

func (s *ServiceSuite) TestRegisterRetriesOnIDCollision() {
	testutil.CreateParticipant(s.T(), s.storage, "p_taken", "Taken", "Alpha")
	s.random.QueueString("taken", "fresh")

	p, err := s.service.Register(s.ctx, Request{DisplayName: "Pat", Team: "Alpha"})
	s.Require().NoError(err)
	s.Equal(model.ParticipantID("p_fresh"), p.ID)
}

func (s *ServiceSuite) TestRegisterGivesUpAfterRepeatedCollisions() {
	testutil.CreateParticipant(s.T(), s.storage, "p_taken", "Taken", "Alpha")
	s.random.QueueString("taken", "taken", "taken")

	_, err := s.service.Register(s.ctx, Request{DisplayName: "Pat", Team: "Alpha"})
	s.ErrorIs(err, model.ErrParticipantExists)
}

func (s *ServiceSuite) TestGetUnknown() {
	_, err := s.service.Get(s.ctx, "p_missing")
	s.ErrorIs(err, model.ErrParticipantNotFound)
}

func (s *ServiceSuite) TestResultsInCanonicalOrder() {
	testutil.CreateParticipant(s.T(), s.storage, "p_1", "Pat", "Alpha")
	for _, kind := range []model.GameKind{model.GameKindReaction, model.GameKindMemo} {
		_, err := s.storage.InsertResult(s.ctx, &model.GameResult{
			ParticipantID: "p_1",
			Kind:          kind,
			Score:         3,
			SubmittedAt:   s.clock.Now(),
		})
		s.Require().NoError(err)
	}

	results, err := s.service.Results(s.ctx, "p_1")
	s.Require().NoError(err)
	s.Require().Len(results, 2)
	s.Equal(model.GameKindMemo, results[0].Kind)
	s.Equal(model.GameKindReaction, results[1].Kind)
}

func (s *ServiceSuite) TestResultsStoreFailure() {
	failing := testutil.NewFailingStorage(errors.New("timeout"))
	testutil.CreateParticipant(s.T(), failing, "p_1", "Pat", "Alpha")
	service := New(failing, s.clock, s.random, testutil.NopLogger())

	_, err := service.Results(s.ctx, "p_1")
	s.ErrorIs(err, model.ErrStoreUnavailable)
}

func (s *ServiceSuite) TestTeamsSorted() {
	s.Require().NoError(s.storage.SaveTeam(s.ctx, &model.Team{Name: "Zulu", SortOrder: 0}))
	s.Require().NoError(s.storage.SaveTeam(s.ctx, &model.Team{Name: "Alpha", SortOrder: 1}))

	teams, err := s.service.Teams(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(teams, 2)
	s.Equal("Zulu", teams[0].Name)
	s.Equal("Alpha", teams[1].Name)
}
