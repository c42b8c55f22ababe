package request

// RegisterParticipantRequest is the request body for registering a participant
type RegisterParticipantRequest struct {
	DisplayName string `json:"display_name"`
	Email       string `json:"email,omitempty"`
	Team        string `json:"team"`
}

// SubmitResultRequest is the request body for submitting a game result
type SubmitResultRequest struct {
	ParticipantID string `json:"participant_id"`
	Game          string `json:"game"`
	// Score is a pointer so a missing score is not read as zero
	Score *int `json:"score"`
}

// SaveTeamRequest is the request body for creating or replacing a team
// A name renames the team. Without a sort order an existing team keeps
// its position and a new one is placed last.
type SaveTeamRequest struct {
	Name      string `json:"name,omitempty"`
	MediaPath string `json:"media_path,omitempty"`
	SortOrder *int   `json:"sort_order,omitempty"`
}
