package redis

import (
	"fmt"

	"github.com/mcoot/eventgames/internal/model"
)

// Key prefix for all event data
const keyPrefix = "evgames"

// participantKey returns the Redis key for a Participant
func participantKey(id model.ParticipantID) string {
	return fmt.Sprintf("%s:participant:%s", keyPrefix, id)
}

// participantsIndexKey returns the Redis key for the SET of participant keys
func participantsIndexKey() string {
	return fmt.Sprintf("%s:idx:participants", keyPrefix)
}

// teamKey returns the Redis key for a Team. Names are case-insensitive.
func teamKey(name string) string {
	return fmt.Sprintf("%s:team:%s", keyPrefix, model.TeamKey(name))
}

// teamsIndexKey returns the Redis key for the SET of team keys
func teamsIndexKey() string {
	return fmt.Sprintf("%s:idx:teams", keyPrefix)
}

// resultKey returns the Redis key for the result HASH of a (participant, kind) pair
func resultKey(id model.ParticipantID, kind model.GameKind) string {
	return fmt.Sprintf("%s:result:%s:%s", keyPrefix, id, kind)
}

// resultsIndexKey returns the Redis key for the SET of all result keys
func resultsIndexKey() string {
	return fmt.Sprintf("%s:idx:results", keyPrefix)
}
