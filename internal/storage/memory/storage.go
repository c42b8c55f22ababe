package memory

import (
	"context"
	"sync"

	"github.com/mcoot/eventgames/internal/model"
	"github.com/mcoot/eventgames/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	participants map[model.ParticipantID]*model.Participant
	teams        map[string]*model.Team
	results      map[resultKey]*model.GameResult
}

type resultKey struct {
	participantID model.ParticipantID
	kind          model.GameKind
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		participants: make(map[model.ParticipantID]*model.Participant),
		teams:        make(map[string]*model.Team),
		results:      make(map[resultKey]*model.GameResult),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Participant operations

func (s *Storage) CreateParticipant(ctx context.Context, p *model.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.participants[p.ID]; ok {
		return model.ErrParticipantExists
	}
	cp := *p
	s.participants[p.ID] = &cp
	return nil
}

func (s *Storage) GetParticipant(ctx context.Context, id model.ParticipantID) (*model.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.participants[id]
	if !ok {
		return nil, model.ErrParticipantNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *Storage) ListParticipants(ctx context.Context) ([]*model.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	participants := make([]*model.Participant, 0, len(s.participants))
	for _, p := range s.participants {
		cp := *p
		participants = append(participants, &cp)
	}
	storage.SortParticipants(participants)
	return participants, nil
}

// Team operations

func (s *Storage) SaveTeam(ctx context.Context, team *model.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *team
	s.teams[model.TeamKey(team.Name)] = &cp
	return nil
}

func (s *Storage) GetTeam(ctx context.Context, name string) (*model.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	team, ok := s.teams[model.TeamKey(name)]
	if !ok {
		return nil, model.ErrTeamNotFound
	}
	cp := *team
	return &cp, nil
}

func (s *Storage) ListTeams(ctx context.Context) ([]*model.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	teams := make([]*model.Team, 0, len(s.teams))
	for _, t := range s.teams {
		cp := *t
		teams = append(teams, &cp)
	}
	storage.SortTeams(teams)
	return teams, nil
}

func (s *Storage) DeleteTeam(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := model.TeamKey(name)
	if _, ok := s.teams[key]; !ok {
		return model.ErrTeamNotFound
	}
	delete(s.teams, key)
	return nil
}

func (s *Storage) RenameTeam(ctx context.Context, from string, team *model.Team) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	oldKey, newKey := model.TeamKey(from), model.TeamKey(team.Name)
	if _, ok := s.teams[oldKey]; !ok {
		return 0, model.ErrTeamNotFound
	}
	if _, ok := s.teams[newKey]; ok && newKey != oldKey {
		return 0, model.ErrTeamExists
	}

	delete(s.teams, oldKey)
	cp := *team
	s.teams[newKey] = &cp

	moved := 0
	for _, p := range s.participants {
		if model.TeamKey(p.Team) == oldKey {
			p.Team = team.Name
			moved++
		}
	}
	return moved, nil
}

// Result operations

func (s *Storage) InsertResult(ctx context.Context, result *model.GameResult) (bool, error) {
	key := resultKey{participantID: result.ParticipantID, kind: result.Kind}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.results[key]; ok {
		return false, nil
	}
	cp := *result
	cp.Attempts = 1
	s.results[key] = &cp
	return true, nil
}

func (s *Storage) UpsertBestResult(ctx context.Context, result *model.GameResult) (model.SubmitOutcome, *model.GameResult, error) {
	key := resultKey{participantID: result.ParticipantID, kind: result.Kind}

	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.results[key]
	if !ok {
		cp := *result
		cp.Attempts = 1
		s.results[key] = &cp
		stored := cp
		return model.OutcomeAccepted, &stored, nil
	}

	existing.Attempts++
	outcome := model.OutcomeAlreadyRecorded
	if result.Score < existing.Score {
		existing.Score = result.Score
		existing.SubmittedAt = result.SubmittedAt
		outcome = model.OutcomeImproved
	}
	stored := *existing
	return outcome, &stored, nil
}

func (s *Storage) GetResultsForParticipant(ctx context.Context, id model.ParticipantID) ([]*model.GameResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var results []*model.GameResult
	for _, kind := range model.AllGameKinds() {
		if r, ok := s.results[resultKey{participantID: id, kind: kind}]; ok {
			cp := *r
			results = append(results, &cp)
		}
	}
	return results, nil
}

func (s *Storage) ListResults(ctx context.Context) ([]*model.GameResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	results := make([]*model.GameResult, 0, len(s.results))
	for _, r := range s.results {
		cp := *r
		results = append(results, &cp)
	}
	return results, nil
}

func (s *Storage) DeleteAllResults(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.results)
	s.results = make(map[resultKey]*model.GameResult)
	return n, nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return nil
}
