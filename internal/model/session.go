package model

// SessionState represents where a participant is in their session
type SessionState string

const (
	SessionPending  SessionState = "pending"
	SessionComplete SessionState = "complete"
)

// SessionProgress is derived from the result store on every request and never persisted
type SessionProgress struct {
	ParticipantID ParticipantID
	State         SessionState
	// Order is the full order assigned to this session, including played kinds
	Order []GameKind
	// Remaining is Order with played kinds removed, order preserved
	Remaining []GameKind
	Played    []GameKind
}

// Next returns the game the participant should play now
func (p *SessionProgress) Next() (GameKind, bool) {
	if len(p.Remaining) == 0 {
		return "", false
	}
	return p.Remaining[0], true
}

// IsComplete returns true once every kind has been played
func (p *SessionProgress) IsComplete() bool {
	return p.State == SessionComplete
}
