// Package registration creates participants and serves the team roster.
package registration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/mcoot/eventgames/internal/dependencies/clock"
	"github.com/mcoot/eventgames/internal/dependencies/random"
	"github.com/mcoot/eventgames/internal/model"
	"github.com/mcoot/eventgames/internal/storage"
)

// Field limits for registration
const (
	MinDisplayNameLength = 2
	MaxDisplayNameLength = 200
	MaxTeamLength        = 100
	MaxEmailLength       = 254
)

const (
	idPrefix   = "p_"
	idLength   = 16
	idAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	// Attempts at a fresh ID before giving up on collisions
	maxIDAttempts = 3
)

// Request holds the fields a participant registers with
type Request struct {
	DisplayName string
	Email       string
	Team        string
}

// Service handles participant registration
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger
}

// New creates a new registration Service
func New(storage storage.Storage, clock clock.Clock, random random.Random, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		random:  random,
		logger:  logger.With(slog.String("component", "registration")),
	}
}

// Register validates req and creates a participant with a fresh ID.
// When teams are configured the team must match one of them, ignoring case,
// and the participant is stored with the configured spelling.
func (s *Service) Register(ctx context.Context, req Request) (*model.Participant, error) {
	displayName := strings.TrimSpace(req.DisplayName)
	if n := utf8.RuneCountInString(displayName); n < MinDisplayNameLength || n > MaxDisplayNameLength {
		return nil, fmt.Errorf("%w: display name must be %d-%d characters",
			model.ErrInvalidParticipant, MinDisplayNameLength, MaxDisplayNameLength)
	}

	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}

	team, err := s.resolveTeam(ctx, req.Team)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		p := &model.Participant{
			ID:          model.ParticipantID(idPrefix + s.random.String(idLength, idAlphabet)),
			DisplayName: displayName,
			Email:       email,
			Team:        team,
			CreatedAt:   s.clock.Now().UTC(),
		}

		err := s.storage.CreateParticipant(ctx, p)
		if errors.Is(err, model.ErrParticipantExists) {
			s.logger.Warn("participant id collision", slog.String("participant_id", string(p.ID)))
			continue
		}
		if err != nil {
			return nil, s.storeError("create participant", err)
		}

		s.logger.Info("participant registered",
			slog.String("participant_id", string(p.ID)),
			slog.String("team", p.Team))
		return p, nil
	}
	return nil, model.ErrParticipantExists
}

// Get returns a participant by ID
func (s *Service) Get(ctx context.Context, id model.ParticipantID) (*model.Participant, error) {
	p, err := s.storage.GetParticipant(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrParticipantNotFound) {
			return nil, err
		}
		return nil, s.storeError("get participant", err)
	}
	return p, nil
}

// Results returns the participant's recorded results in canonical kind order
func (s *Service) Results(ctx context.Context, id model.ParticipantID) ([]*model.GameResult, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	results, err := s.storage.GetResultsForParticipant(ctx, id)
	if err != nil {
		return nil, s.storeError("get results", err)
	}

	byKind := make(map[model.GameKind]*model.GameResult, len(results))
	for _, r := range results {
		byKind[r.Kind] = r
	}
	ordered := make([]*model.GameResult, 0, len(results))
	for _, kind := range model.AllGameKinds() {
		if r, ok := byKind[kind]; ok {
			ordered = append(ordered, r)
		}
	}
	return ordered, nil
}

// Teams returns the configured teams
func (s *Service) Teams(ctx context.Context) ([]*model.Team, error) {
	teams, err := s.storage.ListTeams(ctx)
	if err != nil {
		return nil, s.storeError("list teams", err)
	}
	return teams, nil
}

func (s *Service) resolveTeam(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if n := utf8.RuneCountInString(name); n == 0 || n > MaxTeamLength {
		return "", fmt.Errorf("%w: team must be 1-%d characters", model.ErrInvalidTeam, MaxTeamLength)
	}

	teams, err := s.Teams(ctx)
	if err != nil {
		return "", err
	}
	if len(teams) == 0 {
		return name, nil
	}
	for _, t := range teams {
		if strings.EqualFold(t.Name, name) {
			return t.Name, nil
		}
	}
	return "", fmt.Errorf("%w: unknown team %q", model.ErrInvalidTeam, name)
}

func normalizeEmail(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	if len(raw) > MaxEmailLength {
		return "", fmt.Errorf("%w: email too long", model.ErrInvalidParticipant)
	}
	addr, err := mail.ParseAddress(raw)
	if err != nil || addr.Address != raw {
		return "", fmt.Errorf("%w: invalid email address", model.ErrInvalidParticipant)
	}
	return addr.Address, nil
}

func (s *Service) storeError(op string, err error) error {
	s.logger.Error("store operation failed",
		slog.String("op", op),
		slog.Any("error", err))
	return fmt.Errorf("%w: %w", model.ErrStoreUnavailable, err)
}
