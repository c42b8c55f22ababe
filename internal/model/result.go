package model

import "time"

// GameResult is the counted result for one (participant, kind) pair.
// Lower scores are better for every kind.
type GameResult struct {
	ParticipantID ParticipantID
	Kind          GameKind
	Score         int
	Attempts      int
	SubmittedAt   time.Time
}

// SubmitOutcome describes what happened to a submitted result
type SubmitOutcome string

const (
	// OutcomeAccepted means the result was stored as the first row for its pair
	OutcomeAccepted SubmitOutcome = "accepted"
	// OutcomeAlreadyRecorded means a row already existed and nothing was changed.
	// Under the best policy the attempt counter still increases.
	OutcomeAlreadyRecorded SubmitOutcome = "already_recorded"
	// OutcomeImproved means the best policy replaced a higher stored score
	OutcomeImproved SubmitOutcome = "improved"
)

// Stored reports whether the outcome changed the counted score
func (o SubmitOutcome) Stored() bool {
	return o == OutcomeAccepted || o == OutcomeImproved
}

// ResultPolicy selects how repeat submissions for a pair are handled
type ResultPolicy string

const (
	// PolicyFirst keeps the first recorded score and ignores every later one
	PolicyFirst ResultPolicy = "first"
	// PolicyBest keeps the minimum score using an atomic upsert
	PolicyBest ResultPolicy = "best"
)

// Valid reports whether p is a known policy
func (p ResultPolicy) Valid() bool {
	return p == PolicyFirst || p == PolicyBest
}

// Submission is the result of passing a score through the submission gate
type Submission struct {
	Outcome SubmitOutcome
	Result  *GameResult
}
