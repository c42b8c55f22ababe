// Package storagetest holds the behaviour every storage backend must share.
// Backend packages run Suite from their own tests.
package storagetest

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/eventgames/internal/model"
	"github.com/mcoot/eventgames/internal/storage"
)

// Suite exercises a storage.Storage implementation
type Suite struct {
	suite.Suite

	// NewStorage returns an empty store for each test
	NewStorage func() storage.Storage

	Storage storage.Storage
	Ctx     context.Context
}

var baseTime = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func (s *Suite) SetupTest() {
	s.Storage = s.NewStorage()
	s.Ctx = context.Background()
}

func (s *Suite) result(pid model.ParticipantID, kind model.GameKind, score int, offset time.Duration) *model.GameResult {
	return &model.GameResult{
		ParticipantID: pid,
		Kind:          kind,
		Score:         score,
		SubmittedAt:   baseTime.Add(offset),
	}
}

// Participant tests

func (s *Suite) TestCreateAndGetParticipant() {
	p := &model.Participant{
		ID:          "p_1",
		DisplayName: "Alice",
		Email:       "alice@example.com",
		Team:        "Alpha",
		CreatedAt:   baseTime,
	}
	s.Require().NoError(s.Storage.CreateParticipant(s.Ctx, p))

	got, err := s.Storage.GetParticipant(s.Ctx, "p_1")
	s.Require().NoError(err)
	s.Equal("Alice", got.DisplayName)
	s.Equal("alice@example.com", got.Email)
	s.Equal("Alpha", got.Team)
	s.True(baseTime.Equal(got.CreatedAt))
}

func (s *Suite) TestCreateParticipantTwiceFails() {
	p := &model.Participant{ID: "p_1", DisplayName: "Alice", Team: "Alpha", CreatedAt: baseTime}
	s.Require().NoError(s.Storage.CreateParticipant(s.Ctx, p))

	err := s.Storage.CreateParticipant(s.Ctx, p)
	s.ErrorIs(err, model.ErrParticipantExists)
}

func (s *Suite) TestGetParticipantNotFound() {
	_, err := s.Storage.GetParticipant(s.Ctx, "missing")
	s.ErrorIs(err, model.ErrParticipantNotFound)
}

func (s *Suite) TestListParticipants() {
	s.Require().NoError(s.Storage.CreateParticipant(s.Ctx, &model.Participant{ID: "p_b", DisplayName: "Bob", Team: "Beta", CreatedAt: baseTime}))
	s.Require().NoError(s.Storage.CreateParticipant(s.Ctx, &model.Participant{ID: "p_a", DisplayName: "Alice", Team: "Alpha", CreatedAt: baseTime}))

	participants, err := s.Storage.ListParticipants(s.Ctx)
	s.Require().NoError(err)
	s.Len(participants, 2)
	s.Equal(model.ParticipantID("p_a"), participants[0].ID)
	s.Equal(model.ParticipantID("p_b"), participants[1].ID)
}

// Team tests

func (s *Suite) TestSaveAndListTeamsSorted() {
	s.Require().NoError(s.Storage.SaveTeam(s.Ctx, &model.Team{Name: "beta", SortOrder: 1}))
	s.Require().NoError(s.Storage.SaveTeam(s.Ctx, &model.Team{Name: "Alpha", SortOrder: 1}))
	s.Require().NoError(s.Storage.SaveTeam(s.Ctx, &model.Team{Name: "Zeta", SortOrder: 0, MediaPath: "zeta/congrats.mp4"}))

	teams, err := s.Storage.ListTeams(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(teams, 3)
	s.Equal("Zeta", teams[0].Name)
	s.Equal("zeta/congrats.mp4", teams[0].MediaPath)
	s.Equal("Alpha", teams[1].Name)
	s.Equal("beta", teams[2].Name)
}

func (s *Suite) TestSaveTeamOverwrites() {
	s.Require().NoError(s.Storage.SaveTeam(s.Ctx, &model.Team{Name: "Alpha", SortOrder: 1}))
	s.Require().NoError(s.Storage.SaveTeam(s.Ctx, &model.Team{Name: "Alpha", SortOrder: 5, MediaPath: "a.mp4"}))

	team, err := s.Storage.GetTeam(s.Ctx, "alpha")
	s.Require().NoError(err)
	s.Equal(5, team.SortOrder)
	s.Equal("a.mp4", team.MediaPath)

	teams, err := s.Storage.ListTeams(s.Ctx)
	s.Require().NoError(err)
	s.Len(teams, 1)
}

func (s *Suite) TestDeleteTeam() {
	s.Require().NoError(s.Storage.SaveTeam(s.Ctx, &model.Team{Name: "Alpha"}))
	s.Require().NoError(s.Storage.DeleteTeam(s.Ctx, "Alpha"))

	_, err := s.Storage.GetTeam(s.Ctx, "Alpha")
	s.ErrorIs(err, model.ErrTeamNotFound)

	err = s.Storage.DeleteTeam(s.Ctx, "Alpha")
	s.ErrorIs(err, model.ErrTeamNotFound)
}

func (s *Suite) TestListTeamsEmpty() {
	teams, err := s.Storage.ListTeams(s.Ctx)
	s.Require().NoError(err)
	s.Empty(teams)
}

func (s *Suite) TestRenameTeamMovesParticipants() {
	s.Require().NoError(s.Storage.SaveTeam(s.Ctx, &model.Team{Name: "Alpha", SortOrder: 2}))
	s.Require().NoError(s.Storage.CreateParticipant(s.Ctx, &model.Participant{ID: "p_a", DisplayName: "Alice", Team: "Alpha", CreatedAt: baseTime}))
	s.Require().NoError(s.Storage.CreateParticipant(s.Ctx, &model.Participant{ID: "p_c", DisplayName: "Cy", Team: " alpha", CreatedAt: baseTime}))
	s.Require().NoError(s.Storage.CreateParticipant(s.Ctx, &model.Participant{ID: "p_b", DisplayName: "Bob", Team: "Beta", CreatedAt: baseTime}))

	moved, err := s.Storage.RenameTeam(s.Ctx, "ALPHA", &model.Team{Name: "Aces", SortOrder: 2, MediaPath: "aces.mp4"})
	s.Require().NoError(err)
	s.Equal(2, moved)

	_, err = s.Storage.GetTeam(s.Ctx, "Alpha")
	s.ErrorIs(err, model.ErrTeamNotFound)
	team, err := s.Storage.GetTeam(s.Ctx, "aces")
	s.Require().NoError(err)
	s.Equal("Aces", team.Name)
	s.Equal("aces.mp4", team.MediaPath)

	for id, want := range map[model.ParticipantID]string{"p_a": "Aces", "p_c": "Aces", "p_b": "Beta"} {
		p, err := s.Storage.GetParticipant(s.Ctx, id)
		s.Require().NoError(err)
		s.Equal(want, p.Team, id)
	}

	teams, err := s.Storage.ListTeams(s.Ctx)
	s.Require().NoError(err)
	s.Len(teams, 1)
}

func (s *Suite) TestRenameTeamChangesCase() {
	s.Require().NoError(s.Storage.SaveTeam(s.Ctx, &model.Team{Name: "alpha"}))
	s.Require().NoError(s.Storage.CreateParticipant(s.Ctx, &model.Participant{ID: "p_a", DisplayName: "Alice", Team: "alpha", CreatedAt: baseTime}))

	moved, err := s.Storage.RenameTeam(s.Ctx, "alpha", &model.Team{Name: "Alpha"})
	s.Require().NoError(err)
	s.Equal(1, moved)

	team, err := s.Storage.GetTeam(s.Ctx, "ALPHA")
	s.Require().NoError(err)
	s.Equal("Alpha", team.Name)
}

func (s *Suite) TestRenameTeamErrors() {
	_, err := s.Storage.RenameTeam(s.Ctx, "Ghost", &model.Team{Name: "Spirit"})
	s.ErrorIs(err, model.ErrTeamNotFound)

	s.Require().NoError(s.Storage.SaveTeam(s.Ctx, &model.Team{Name: "Alpha"}))
	s.Require().NoError(s.Storage.SaveTeam(s.Ctx, &model.Team{Name: "Beta"}))
	_, err = s.Storage.RenameTeam(s.Ctx, "Alpha", &model.Team{Name: "BETA"})
	s.ErrorIs(err, model.ErrTeamExists)

	_, err = s.Storage.GetTeam(s.Ctx, "Alpha")
	s.NoError(err)
}

// Result tests

func (s *Suite) TestInsertResultOnlyOncePerPair() {
	inserted, err := s.Storage.InsertResult(s.Ctx, s.result("p_1", model.GameKindMemo, 12, 0))
	s.Require().NoError(err)
	s.True(inserted)

	inserted, err = s.Storage.InsertResult(s.Ctx, s.result("p_1", model.GameKindMemo, 4, time.Minute))
	s.Require().NoError(err)
	s.False(inserted)

	results, err := s.Storage.GetResultsForParticipant(s.Ctx, "p_1")
	s.Require().NoError(err)
	s.Require().Len(results, 1)
	s.Equal(12, results[0].Score)
	s.Equal(1, results[0].Attempts)
	s.True(baseTime.Equal(results[0].SubmittedAt))
}

func (s *Suite) TestInsertResultDifferentKinds() {
	for i, kind := range model.AllGameKinds() {
		inserted, err := s.Storage.InsertResult(s.Ctx, s.result("p_1", kind, i, time.Duration(i)*time.Second))
		s.Require().NoError(err)
		s.True(inserted)
	}

	results, err := s.Storage.GetResultsForParticipant(s.Ctx, "p_1")
	s.Require().NoError(err)
	s.Len(results, 3)
}

func (s *Suite) TestConcurrentInsertStoresExactlyOneRow() {
	const writers = 16
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
		failures []error
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(score int) {
			defer wg.Done()
			inserted, err := s.Storage.InsertResult(s.Ctx, s.result("p_1", model.GameKindReaction, score, time.Duration(score)*time.Millisecond))
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = append(failures, err)
				return
			}
			if inserted {
				accepted++
			}
		}(i + 1)
	}
	wg.Wait()

	s.Empty(failures)
	s.Equal(1, accepted)

	results, err := s.Storage.ListResults(s.Ctx)
	s.Require().NoError(err)
	s.Len(results, 1)
}

func (s *Suite) TestUpsertBestResultKeepsMinimum() {
	outcome, stored, err := s.Storage.UpsertBestResult(s.Ctx, s.result("p_1", model.GameKindMemo, 12, 0))
	s.Require().NoError(err)
	s.Equal(model.OutcomeAccepted, outcome)
	s.Equal(12, stored.Score)
	s.Equal(1, stored.Attempts)

	outcome, stored, err = s.Storage.UpsertBestResult(s.Ctx, s.result("p_1", model.GameKindMemo, 15, time.Minute))
	s.Require().NoError(err)
	s.Equal(model.OutcomeAlreadyRecorded, outcome)
	s.Equal(12, stored.Score)
	s.Equal(2, stored.Attempts)
	s.True(baseTime.Equal(stored.SubmittedAt))

	outcome, stored, err = s.Storage.UpsertBestResult(s.Ctx, s.result("p_1", model.GameKindMemo, 9, 2*time.Minute))
	s.Require().NoError(err)
	s.Equal(model.OutcomeImproved, outcome)
	s.Equal(9, stored.Score)
	s.Equal(3, stored.Attempts)
	s.True(baseTime.Add(2 * time.Minute).Equal(stored.SubmittedAt))

	// An equal score is not an improvement and keeps the earlier timestamp
	outcome, stored, err = s.Storage.UpsertBestResult(s.Ctx, s.result("p_1", model.GameKindMemo, 9, 3*time.Minute))
	s.Require().NoError(err)
	s.Equal(model.OutcomeAlreadyRecorded, outcome)
	s.True(baseTime.Add(2 * time.Minute).Equal(stored.SubmittedAt))

	// The same score at the same instant is a replay, not an improvement
	outcome, stored, err = s.Storage.UpsertBestResult(s.Ctx, s.result("p_1", model.GameKindMemo, 9, 2*time.Minute))
	s.Require().NoError(err)
	s.Equal(model.OutcomeAlreadyRecorded, outcome)
	s.Equal(9, stored.Score)
	s.Equal(5, stored.Attempts)

	results, err := s.Storage.ListResults(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(results, 1)
	s.Equal(9, results[0].Score)
	s.Equal(5, results[0].Attempts)
}

func (s *Suite) TestConcurrentUpsertBestKeepsMinimum() {
	const writers = 12
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(score int) {
			defer wg.Done()
			_, _, err := s.Storage.UpsertBestResult(s.Ctx, s.result("p_1", model.GameKindTruthOrMyth, score, time.Duration(score)*time.Second))
			s.NoError(err)
		}(i + 3)
	}
	wg.Wait()

	results, err := s.Storage.GetResultsForParticipant(s.Ctx, "p_1")
	s.Require().NoError(err)
	s.Require().Len(results, 1)
	s.Equal(3, results[0].Score)
	s.Equal(writers, results[0].Attempts)
}

func (s *Suite) TestGetResultsForUnknownParticipantIsEmpty() {
	results, err := s.Storage.GetResultsForParticipant(s.Ctx, "nobody")
	s.Require().NoError(err)
	s.Empty(results)
}

func (s *Suite) TestListResultsEmptyStore() {
	results, err := s.Storage.ListResults(s.Ctx)
	s.Require().NoError(err)
	s.Empty(results)
}

func (s *Suite) TestDeleteAllResults() {
	_, err := s.Storage.InsertResult(s.Ctx, s.result("p_1", model.GameKindMemo, 10, 0))
	s.Require().NoError(err)
	_, err = s.Storage.InsertResult(s.Ctx, s.result("p_2", model.GameKindMemo, 11, 0))
	s.Require().NoError(err)
	s.Require().NoError(s.Storage.CreateParticipant(s.Ctx, &model.Participant{ID: "p_1", DisplayName: "Alice", Team: "Alpha", CreatedAt: baseTime}))

	deleted, err := s.Storage.DeleteAllResults(s.Ctx)
	s.Require().NoError(err)
	s.Equal(2, deleted)

	results, err := s.Storage.ListResults(s.Ctx)
	s.Require().NoError(err)
	s.Empty(results)

	// Participants survive a reset
	_, err = s.Storage.GetParticipant(s.Ctx, "p_1")
	s.NoError(err)

	// The pair can be played again after a reset
	inserted, err := s.Storage.InsertResult(s.Ctx, s.result("p_1", model.GameKindMemo, 7, time.Hour))
	s.Require().NoError(err)
	s.True(inserted)

	deleted, err = s.Storage.DeleteAllResults(s.Ctx)
	s.Require().NoError(err)
	s.Equal(1, deleted)
}

func (s *Suite) TestPing() {
	s.NoError(s.Storage.Ping(s.Ctx))
}
