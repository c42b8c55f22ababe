package model

import "errors"

// Common errors used across the application
var (
	// Participant errors
	ErrParticipantNotFound = errors.New("participant not found")
	ErrParticipantExists   = errors.New("participant already exists")
	ErrInvalidParticipant  = errors.New("invalid participant")

	// Team errors
	ErrTeamNotFound = errors.New("team not found")
	ErrTeamExists   = errors.New("team already exists")
	ErrInvalidTeam  = errors.New("invalid team")

	// Result errors
	ErrUnknownGameKind = errors.New("unknown game kind")
	ErrInvalidScore    = errors.New("invalid score")

	// ErrStoreUnavailable wraps any failure talking to the result store
	ErrStoreUnavailable = errors.New("result store unavailable")
)
