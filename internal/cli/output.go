package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		_, _ = fmt.Fprintln(o.w, string(data))
	} else {
		_, _ = fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Participant:
		o.printParticipant(v)
	case TeamsResult:
		o.printTeams(v)
	case Team:
		o.printTeams(TeamsResult{Teams: []Team{v}})
	case ResultsResult:
		o.printResults(v)
	case SubmitResult:
		o.printSubmitResult(v)
	case PlayedResult:
		o.printPlayed(v)
	case SessionResult:
		o.printSession(v)
	case PlayerLeaderboard:
		o.printPlayerLeaderboard(v)
	case TeamLeaderboard:
		o.printTeamLeaderboard(v)
	case TeamTotals:
		o.printTeamTotals(v)
	case ResetResult:
		_, _ = fmt.Fprintf(o.w, "Deleted %d results\n", v.Deleted)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Participant response type (matches API)
type Participant struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email,omitempty"`
	Team        string    `json:"team"`
	CreatedAt   time.Time `json:"created_at"`
}

// Team response type
type Team struct {
	Name      string `json:"name"`
	MediaPath string `json:"media_path,omitempty"`
	SortOrder int    `json:"sort_order"`
}

// TeamsResult lists teams
type TeamsResult struct {
	Teams []Team `json:"teams"`
}

// GameResult is one stored result
type GameResult struct {
	ParticipantID string    `json:"participant_id"`
	Game          string    `json:"game"`
	Score         int       `json:"score"`
	Attempts      int       `json:"attempts"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

// ResultsResult lists a participant's results
type ResultsResult struct {
	Results []GameResult `json:"results"`
}

// SubmitResult is returned when a result is submitted
type SubmitResult struct {
	Outcome string     `json:"outcome"`
	Result  GameResult `json:"result"`
}

// PlayedResult lists the games a participant has played
type PlayedResult struct {
	ParticipantID string   `json:"participant_id"`
	Played        []string `json:"played"`
}

// SessionResult describes a participant's session progress
type SessionResult struct {
	ParticipantID string   `json:"participant_id"`
	State         string   `json:"state"`
	NextGame      string   `json:"next_game,omitempty"`
	Order         []string `json:"order"`
	Remaining     []string `json:"remaining"`
	Played        []string `json:"played"`
}

// PlayerRanking is a player leaderboard row
type PlayerRanking struct {
	Rank          int       `json:"rank"`
	ParticipantID string    `json:"participant_id"`
	DisplayName   string    `json:"display_name"`
	Team          string    `json:"team"`
	BestScore     int       `json:"best_score"`
	Attempts      int       `json:"attempts"`
	AchievedAt    time.Time `json:"achieved_at"`
}

// PlayerLeaderboard is the per-game player leaderboard
type PlayerLeaderboard struct {
	Game    string          `json:"game"`
	Entries []PlayerRanking `json:"entries"`
}

// TeamRanking is a team leaderboard row
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

// TeamLeaderboard is the per-game team leaderboard
type TeamLeaderboard struct {
	Game    string        `json:"game"`
	Entries []TeamRanking `json:"entries"`
}

// TeamTotal is an overall team leaderboard row
type TeamTotal struct {
	Rank        int            `json:"rank"`
	Team        string         `json:"team"`
	GamesPlayed int            `json:"games_played"`
	TotalScore  int            `json:"total_score"`
	Bests       map[string]int `json:"bests"`
}

// TeamTotals is the overall team leaderboard
type TeamTotals struct {
	Entries []TeamTotal `json:"entries"`
}

// ResetResult is returned by the admin reset
type ResetResult struct {
	Deleted int `json:"deleted"`
}

// HealthResult response type
type HealthResult struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
}

func (o *Output) printParticipant(p Participant) {
	_, _ = fmt.Fprintf(o.w, "Participant: %s (%s)\n", p.DisplayName, p.ID)
	_, _ = fmt.Fprintf(o.w, "Team: %s\n", p.Team)
	if p.Email != "" {
		_, _ = fmt.Fprintf(o.w, "Email: %s\n", p.Email)
	}
}

func (o *Output) printTeams(t TeamsResult) {
	if len(t.Teams) == 0 {
		_, _ = fmt.Fprintln(o.w, "No teams configured")
		return
	}
	tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ORDER\tTEAM\tMEDIA")
	for _, team := range t.Teams {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\n", team.SortOrder, team.Name, team.MediaPath)
	}
	_ = tw.Flush()
}

func (o *Output) printResults(r ResultsResult) {
	if len(r.Results) == 0 {
		_, _ = fmt.Fprintln(o.w, "No results yet")
		return
	}
	for _, res := range r.Results {
		_, _ = fmt.Fprintf(o.w, "%s: %d (attempts %d)\n", res.Game, res.Score, res.Attempts)
	}
}

func (o *Output) printSubmitResult(s SubmitResult) {
	switch s.Outcome {
	case "accepted":
		_, _ = fmt.Fprintf(o.w, "Recorded %s score %d\n", s.Result.Game, s.Result.Score)
	case "improved":
		_, _ = fmt.Fprintf(o.w, "New best for %s: %d\n", s.Result.Game, s.Result.Score)
	default:
		_, _ = fmt.Fprintf(o.w, "Already recorded %s score %d\n", s.Result.Game, s.Result.Score)
	}
}

func (o *Output) printPlayed(p PlayedResult) {
	if len(p.Played) == 0 {
		_, _ = fmt.Fprintln(o.w, "Nothing played yet")
		return
	}
	_, _ = fmt.Fprintf(o.w, "Played: %s\n", strings.Join(p.Played, ", "))
}

func (o *Output) printSession(s SessionResult) {
	if s.State == "complete" {
		_, _ = fmt.Fprintln(o.w, "Session complete")
		return
	}
	_, _ = fmt.Fprintf(o.w, "Next game: %s\n", s.NextGame)
	_, _ = fmt.Fprintf(o.w, "Order: %s\n", strings.Join(s.Order, ","))
	_, _ = fmt.Fprintf(o.w, "Remaining: %s\n", strings.Join(s.Remaining, ", "))
}

func (o *Output) printPlayerLeaderboard(l PlayerLeaderboard) {
	_, _ = fmt.Fprintf(o.w, "Players: %s\n", l.Game)
	tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "RANK\tNAME\tTEAM\tSCORE\tATTEMPTS")
	for _, e := range l.Entries {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\n", e.Rank, e.DisplayName, e.Team, e.BestScore, e.Attempts)
	}
	_ = tw.Flush()
}

func (o *Output) printTeamLeaderboard(l TeamLeaderboard) {
	_, _ = fmt.Fprintf(o.w, "Teams: %s\n", l.Game)
	tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "RANK\tTEAM\tSCORE\tBY\tPLAYERS")
	for _, e := range l.Entries {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%d\n", e.Rank, e.Team, e.BestScore, e.BestDisplayName, e.Participants)
	}
	_ = tw.Flush()
}

func (o *Output) printTeamTotals(t TeamTotals) {
	tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "RANK\tTEAM\tGAMES\tTOTAL\tBESTS")
	for _, e := range t.Entries {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%s\n", e.Rank, e.Team, e.GamesPlayed, e.TotalScore, formatBests(e.Bests))
	}
	_ = tw.Flush()
}

func formatBests(bests map[string]int) string {
	games := make([]string, 0, len(bests))
	for game := range bests {
		games = append(games, game)
	}
	sort.Strings(games)

	parts := make([]string, len(games))
	for i, game := range games {
		parts[i] = fmt.Sprintf("%s=%d", game, bests[game])
	}
	return strings.Join(parts, " ")
}

func (o *Output) printHealthResult(h HealthResult) {
	_, _ = fmt.Fprintf(o.w, "Status: %s\n", h.Status)
	if h.Storage != "" {
		_, _ = fmt.Fprintf(o.w, "Storage: %s\n", h.Storage)
	}
}
