package model

import "time"

// PlayerRankingEntry is a participant's best score for one game kind
type PlayerRankingEntry struct {
	Rank          int
	ParticipantID ParticipantID
	DisplayName   string
	Team          string
	Kind          GameKind
	BestScore     int
	Attempts      int
	AchievedAt    time.Time
}

// TeamRankingEntry is a team's best score for one game kind
type TeamRankingEntry struct {
	Rank              int
	Team              string
	Kind              GameKind
	BestScore         int
	BestParticipantID ParticipantID
	BestDisplayName   string
	AchievedAt        time.Time
	Participants      int
	Attempts          int
}

// TeamTotalEntry ranks a team across all game kinds
type TeamTotalEntry struct {
	Rank        int
	Team        string
	GamesPlayed int
	TotalScore  int
	Bests       map[GameKind]int
}

// LeaderboardSnapshot holds all ranked views computed from a single read
type LeaderboardSnapshot struct {
	Players    map[GameKind][]PlayerRankingEntry
	Teams      map[GameKind][]TeamRankingEntry
	TeamTotals []TeamTotalEntry
}
