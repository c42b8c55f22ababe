// Package admin holds the operator actions: resetting results and
// managing the team roster.
package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/eventgames/internal/model"
	"github.com/mcoot/eventgames/internal/storage"
)

// ErrInvalidSecret is returned when the admin secret does not match or
// no secret is configured
var ErrInvalidSecret = errors.New("invalid admin secret")

const maxTeamNameLength = 100

// ResetListener is told when every result has been cleared
type ResetListener interface {
	ResultsReset(ctx context.Context, deleted int)
}

// Service performs admin operations
type Service struct {
	storage    storage.Storage
	logger     *slog.Logger
	secretHash []byte

	mu        sync.RWMutex
	listeners []ResetListener
}

// New creates a new admin Service. An empty secret disables every admin
// operation that requires authentication.
func New(storage storage.Storage, secret string, logger *slog.Logger) (*Service, error) {
	s := &Service{
		storage: storage,
		logger:  logger.With(slog.String("component", "admin")),
	}
	if secret != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash admin secret: %w", err)
		}
		s.secretHash = hash
	}
	return s, nil
}

// Enabled reports whether an admin secret is configured
func (s *Service) Enabled() bool {
	return len(s.secretHash) > 0
}

// Authenticate checks a presented secret
func (s *Service) Authenticate(secret string) error {
	if !s.Enabled() || secret == "" {
		return ErrInvalidSecret
	}
	if err := bcrypt.CompareHashAndPassword(s.secretHash, []byte(secret)); err != nil {
		return ErrInvalidSecret
	}
	return nil
}

// AddListener registers a listener for result resets
func (s *Service) AddListener(l ResetListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// ResetResults deletes every stored result and returns how many were removed.
// Participants and teams are kept.
func (s *Service) ResetResults(ctx context.Context) (int, error) {
	deleted, err := s.storage.DeleteAllResults(ctx)
	if err != nil {
		return 0, s.storeError("delete results", err)
	}

	s.logger.Warn("results reset", slog.Int("deleted", deleted))

	s.mu.RLock()
	listeners := make([]ResetListener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.RUnlock()
	for _, l := range listeners {
		l.ResultsReset(ctx, deleted)
	}
	return deleted, nil
}

// TeamUpdate creates or replaces the team called Name
type TeamUpdate struct {
	Name      string
	NewName   string // renames the team and moves its participants
	MediaPath string
	SortOrder *int // nil keeps an existing team's position or appends a new one
}

// SaveTeam creates or replaces a team and returns it as stored
func (s *Service) SaveTeam(ctx context.Context, u TeamUpdate) (*model.Team, error) {
	name, err := validTeamName(u.Name)
	if err != nil {
		return nil, err
	}
	target := name
	if u.NewName != "" {
		if target, err = validTeamName(u.NewName); err != nil {
			return nil, err
		}
	}

	existing, err := s.storage.GetTeam(ctx, name)
	switch {
	case errors.Is(err, model.ErrTeamNotFound):
		if u.NewName != "" {
			return nil, err
		}
		existing = nil
	case err != nil:
		return nil, s.storeError("get team", err)
	}

	team := &model.Team{Name: target, MediaPath: u.MediaPath}
	switch {
	case u.SortOrder != nil:
		team.SortOrder = *u.SortOrder
	case existing != nil:
		team.SortOrder = existing.SortOrder
	default:
		if team.SortOrder, err = s.nextSortOrder(ctx); err != nil {
			return nil, err
		}
	}

	if u.NewName == "" {
		if err := s.storage.SaveTeam(ctx, team); err != nil {
			return nil, s.storeError("save team", err)
		}
		s.logger.Info("team saved", slog.String("team", target))
		return team, nil
	}

	moved, err := s.storage.RenameTeam(ctx, existing.Name, team)
	if errors.Is(err, model.ErrTeamExists) || errors.Is(err, model.ErrTeamNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, s.storeError("rename team", err)
	}
	s.logger.Info("team renamed",
		slog.String("from", existing.Name),
		slog.String("team", target),
		slog.Int("participants", moved))
	return team, nil
}

// nextSortOrder places a new team after every existing one
func (s *Service) nextSortOrder(ctx context.Context) (int, error) {
	teams, err := s.storage.ListTeams(ctx)
	if err != nil {
		return 0, s.storeError("list teams", err)
	}
	next := 0
	for _, t := range teams {
		if t.SortOrder >= next {
			next = t.SortOrder + 1
		}
	}
	return next, nil
}

// DeleteTeam removes a team. Participants already registered to it keep
// their team name.
func (s *Service) DeleteTeam(ctx context.Context, name string) error {
	err := s.storage.DeleteTeam(ctx, name)
	if errors.Is(err, model.ErrTeamNotFound) {
		return err
	}
	if err != nil {
		return s.storeError("delete team", err)
	}
	s.logger.Info("team deleted", slog.String("team", name))
	return nil
}

// SeedTeams creates any of the named teams that do not exist yet, ordered
// as given. Existing teams are left untouched.
func (s *Service) SeedTeams(ctx context.Context, names []string) error {
	for i, raw := range names {
		name, err := validTeamName(raw)
		if err != nil {
			return err
		}
		_, err = s.storage.GetTeam(ctx, name)
		if err == nil {
			continue
		}
		if !errors.Is(err, model.ErrTeamNotFound) {
			return s.storeError("get team", err)
		}
		order := i
		if _, err := s.SaveTeam(ctx, TeamUpdate{Name: name, SortOrder: &order}); err != nil {
			return err
		}
	}
	return nil
}

func validTeamName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if n := utf8.RuneCountInString(name); n == 0 || n > maxTeamNameLength {
		return "", fmt.Errorf("%w: team name must be 1-%d characters", model.ErrInvalidTeam, maxTeamNameLength)
	}
	return name, nil
}

func (s *Service) storeError(op string, err error) error {
	s.logger.Error("store operation failed",
		slog.String("op", op),
		slog.Any("error", err))
	return fmt.Errorf("%w: %w", model.ErrStoreUnavailable, err)
}
