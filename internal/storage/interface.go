package storage

import (
	"context"

	"github.com/mcoot/eventgames/internal/model"
)

// Storage defines the interface for data persistence
type Storage interface {
	// Participant operations
	CreateParticipant(ctx context.Context, p *model.Participant) error
	GetParticipant(ctx context.Context, id model.ParticipantID) (*model.Participant, error)
	ListParticipants(ctx context.Context) ([]*model.Participant, error)

	// Team operations
	SaveTeam(ctx context.Context, team *model.Team) error
	GetTeam(ctx context.Context, name string) (*model.Team, error)
	ListTeams(ctx context.Context) ([]*model.Team, error)
	DeleteTeam(ctx context.Context, name string) error
	// RenameTeam replaces the team stored under from with team and moves
	// every participant registered to from onto team.Name, atomically.
	// Returns the number of participants moved, ErrTeamNotFound when from
	// does not exist, or ErrTeamExists when team.Name belongs to another team.
	RenameTeam(ctx context.Context, from string, team *model.Team) (int, error)

	// Result operations

	// InsertResult stores the result only if no row exists for its
	// (participant, kind) pair. The check and the write are a single atomic
	// operation. Returns false when a row already existed.
	InsertResult(ctx context.Context, result *model.GameResult) (bool, error)
	// UpsertBestResult atomically inserts the result or, when a row exists,
	// increments its attempts and keeps the lower of the two scores.
	UpsertBestResult(ctx context.Context, result *model.GameResult) (model.SubmitOutcome, *model.GameResult, error)
	GetResultsForParticipant(ctx context.Context, id model.ParticipantID) ([]*model.GameResult, error)
	ListResults(ctx context.Context) ([]*model.GameResult, error)
	// DeleteAllResults clears the result store and returns how many rows were removed
	DeleteAllResults(ctx context.Context) (int, error)

	// Ping checks the backend is reachable
	Ping(ctx context.Context) error
}
