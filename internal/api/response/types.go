package response

import (
	"time"

	"github.com/mcoot/eventgames/internal/model"
)

// Participant represents a participant in API responses
type Participant struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email,omitempty"`
	Team        string    `json:"team"`
	CreatedAt   time.Time `json:"created_at"`
}

// ParticipantFromModel converts a model.Participant to a response Participant
func ParticipantFromModel(p *model.Participant) Participant {
	return Participant{
		ID:          string(p.ID),
		DisplayName: p.DisplayName,
		Email:       p.Email,
		Team:        p.Team,
		CreatedAt:   p.CreatedAt,
	}
}

// Team represents a team in API responses
type Team struct {
	Name      string `json:"name"`
	MediaPath string `json:"media_path,omitempty"`
	SortOrder int    `json:"sort_order"`
}

// TeamFromModel converts a model.Team
func TeamFromModel(t *model.Team) Team {
	return Team{
		Name:      t.Name,
		MediaPath: t.MediaPath,
		SortOrder: t.SortOrder,
	}
}

// TeamsResponse lists teams
type TeamsResponse struct {
	Teams []Team `json:"teams"`
}

// TeamsFromModel converts a team list
func TeamsFromModel(teams []*model.Team) TeamsResponse {
	resp := TeamsResponse{Teams: make([]Team, len(teams))}
	for i, t := range teams {
		resp.Teams[i] = TeamFromModel(t)
	}
	return resp
}

// GameResult represents a stored result
type GameResult struct {
	ParticipantID string    `json:"participant_id"`
	Game          string    `json:"game"`
	Score         int       `json:"score"`
	Attempts      int       `json:"attempts"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

// GameResultFromModel converts a model.GameResult
func GameResultFromModel(r *model.GameResult) GameResult {
	return GameResult{
		ParticipantID: string(r.ParticipantID),
		Game:          string(r.Kind),
		Score:         r.Score,
		Attempts:      r.Attempts,
		SubmittedAt:   r.SubmittedAt,
	}
}

// ResultsResponse lists a participant's results
type ResultsResponse struct {
	Results []GameResult `json:"results"`
}

// ResultsFromModel converts a result list
func ResultsFromModel(results []*model.GameResult) ResultsResponse {
	resp := ResultsResponse{Results: make([]GameResult, len(results))}
	for i, r := range results {
		resp.Results[i] = GameResultFromModel(r)
	}
	return resp
}

// SubmitResultResponse is returned by the result submission endpoint
type SubmitResultResponse struct {
	Outcome string     `json:"outcome"`
	Result  GameResult `json:"result"`
}

// SubmitResultFromModel converts a model.Submission
func SubmitResultFromModel(s *model.Submission) SubmitResultResponse {
	return SubmitResultResponse{
		Outcome: string(s.Outcome),
		Result:  GameResultFromModel(s.Result),
	}
}

// PlayedResponse lists the kinds a participant has played
type PlayedResponse struct {
	ParticipantID string   `json:"participant_id"`
	Played        []string `json:"played"`
}

// SessionResponse describes where a participant is in their session
type SessionResponse struct {
	ParticipantID string   `json:"participant_id"`
	State         string   `json:"state"`
	NextGame      string   `json:"next_game,omitempty"`
	Order         []string `json:"order"`
	Remaining     []string `json:"remaining"`
	Played        []string `json:"played"`
}

// SessionFromModel converts model.SessionProgress
func SessionFromModel(p *model.SessionProgress) SessionResponse {
	resp := SessionResponse{
		ParticipantID: string(p.ParticipantID),
		State:         string(p.State),
		Order:         KindStrings(p.Order),
		Remaining:     KindStrings(p.Remaining),
		Played:        KindStrings(p.Played),
	}
	if next, ok := p.Next(); ok {
		resp.NextGame = string(next)
	}
	return resp
}

// KindStrings converts game kinds to strings, never returning nil
func KindStrings(kinds []model.GameKind) []string {
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = string(k)
	}
	return out
}

// PlayerRanking is one row of a per-game player leaderboard
type PlayerRanking struct {
	Rank          int       `json:"rank"`
	ParticipantID string    `json:"participant_id"`
	DisplayName   string    `json:"display_name"`
	Team          string    `json:"team"`
	BestScore     int       `json:"best_score"`
	Attempts      int       `json:"attempts"`
	AchievedAt    time.Time `json:"achieved_at"`
}

// PlayerRankingsFromModel converts ranked player entries
func PlayerRankingsFromModel(entries []model.PlayerRankingEntry) []PlayerRanking {
	out := make([]PlayerRanking, len(entries))
	for i, e := range entries {
		out[i] = PlayerRanking{
			Rank:          e.Rank,
			ParticipantID: string(e.ParticipantID),
			DisplayName:   e.DisplayName,
			Team:          e.Team,
			BestScore:     e.BestScore,
			Attempts:      e.Attempts,
			AchievedAt:    e.AchievedAt,
		}
	}
	return out
}

// TeamRanking is one row of a per-game team leaderboard
type TeamRanking struct {
	Rank              int       `json:"rank"`
	Team              string    `json:"team"`
	BestScore         int       `json:"best_score"`
	BestParticipantID string    `json:"best_participant_id"`
	BestDisplayName   string    `json:"best_display_name"`
	AchievedAt        time.Time `json:"achieved_at"`
	Participants      int       `json:"participants"`
	Attempts          int       `json:"attempts"`
}

// TeamRankingsFromModel converts ranked team entries
func TeamRankingsFromModel(entries []model.TeamRankingEntry) []TeamRanking {
	out := make([]TeamRanking, len(entries))
	for i, e := range entries {
		out[i] = TeamRanking{
			Rank:              e.Rank,
			Team:              e.Team,
			BestScore:         e.BestScore,
			BestParticipantID: string(e.BestParticipantID),
			BestDisplayName:   e.BestDisplayName,
			AchievedAt:        e.AchievedAt,
			Participants:      e.Participants,
			Attempts:          e.Attempts,
		}
	}
	return out
}

// TeamTotal is one row of the overall team leaderboard
type TeamTotal struct {
	Rank        int            `json:"rank"`
	Team        string         `json:"team"`
	GamesPlayed int            `json:"games_played"`
	TotalScore  int            `json:"total_score"`
	Bests       map[string]int `json:"bests"`
}

// TeamTotalsFromModel converts ranked team totals
func TeamTotalsFromModel(entries []model.TeamTotalEntry) []TeamTotal {
	out := make([]TeamTotal, len(entries))
	for i, e := range entries {
		bests := make(map[string]int, len(e.Bests))
		for kind, score := range e.Bests {
			bests[string(kind)] = score
		}
		out[i] = TeamTotal{
			Rank:        e.Rank,
			Team:        e.Team,
			GamesPlayed: e.GamesPlayed,
			TotalScore:  e.TotalScore,
			Bests:       bests,
		}
	}
	return out
}

// PlayerLeaderboardResponse is the per-game player leaderboard
type PlayerLeaderboardResponse struct {
	Game    string          `json:"game"`
	Entries []PlayerRanking `json:"entries"`
}

// TeamLeaderboardResponse is the per-game team leaderboard
type TeamLeaderboardResponse struct {
	Game    string        `json:"game"`
	Entries []TeamRanking `json:"entries"`
}

// TeamTotalsResponse is the overall team leaderboard
type TeamTotalsResponse struct {
	Entries []TeamTotal `json:"entries"`
}

// LeaderboardSnapshot holds every leaderboard view at once
type LeaderboardSnapshot struct {
	Players    map[string][]PlayerRanking `json:"players"`
	Teams      map[string][]TeamRanking   `json:"teams"`
	TeamTotals []TeamTotal                `json:"team_totals"`
}

// SnapshotFromModel converts a model.LeaderboardSnapshot
func SnapshotFromModel(s *model.LeaderboardSnapshot) LeaderboardSnapshot {
	resp := LeaderboardSnapshot{
		Players:    make(map[string][]PlayerRanking, len(s.Players)),
		Teams:      make(map[string][]TeamRanking, len(s.Teams)),
		TeamTotals: TeamTotalsFromModel(s.TeamTotals),
	}
	for kind, entries := range s.Players {
		resp.Players[string(kind)] = PlayerRankingsFromModel(entries)
	}
	for kind, entries := range s.Teams {
		resp.Teams[string(kind)] = TeamRankingsFromModel(entries)
	}
	return resp
}

// ResetResponse is returned by the admin reset endpoint
type ResetResponse struct {
	Deleted int `json:"deleted"`
}

// HealthResponse is returned by the health endpoint
type HealthResponse struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
}
