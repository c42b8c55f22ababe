package model

import (
	"strings"
	"time"
)

// ParticipantID uniquely identifies a registered participant
type ParticipantID string

// Participant is someone registered to play at the event.
// Participants are immutable once created, except that renaming a team
// moves its members to the new name.
type Participant struct {
	ID          ParticipantID
	DisplayName string
	Email       string
	Team        string
	CreatedAt   time.Time
}

// Team is one of the bounded set of teams participants can join
type Team struct {
	Name      string
	MediaPath string
	SortOrder int
}

// TeamKey is the case-insensitive identity of a team name
func TeamKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
