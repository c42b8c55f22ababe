package leaderboard

import (
	"sort"
	"strings"

	"github.com/mcoot/eventgames/internal/model"
)

// RankPlayers ranks each participant's best result for one kind.
// Results for other kinds are ignored. Participants missing from the
// lookup are returned in skipped and left out of the ranking.
func RankPlayers(
	kind model.GameKind,
	results []*model.GameResult,
	participants map[model.ParticipantID]*model.Participant,
) (ranked []model.PlayerRankingEntry, skipped []model.ParticipantID) {
	bests := make(map[model.ParticipantID]*model.PlayerRankingEntry)
	missing := make(map[model.ParticipantID]struct{})

	for _, r := range results {
		if r.Kind != kind {
			continue
		}
		p, ok := participants[r.ParticipantID]
		if !ok {
			if _, seen := missing[r.ParticipantID]; !seen {
				missing[r.ParticipantID] = struct{}{}
				skipped = append(skipped, r.ParticipantID)
			}
			continue
		}

		entry, ok := bests[r.ParticipantID]
		if !ok {
			bests[r.ParticipantID] = &model.PlayerRankingEntry{
				ParticipantID: p.ID,
				DisplayName:   p.DisplayName,
				Team:          p.Team,
				Kind:          kind,
				BestScore:     r.Score,
				Attempts:      r.Attempts,
				AchievedAt:    r.SubmittedAt,
			}
			continue
		}
		entry.Attempts += r.Attempts
		if r.Score < entry.BestScore || (r.Score == entry.BestScore && r.SubmittedAt.Before(entry.AchievedAt)) {
			entry.BestScore = r.Score
			entry.AchievedAt = r.SubmittedAt
		}
	}

	ranked = make([]model.PlayerRankingEntry, 0, len(bests))
	for _, entry := range bests {
		ranked = append(ranked, *entry)
	}
	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.BestScore != b.BestScore {
			return a.BestScore < b.BestScore
		}
		if !a.AchievedAt.Equal(b.AchievedAt) {
			return a.AchievedAt.Before(b.AchievedAt)
		}
		if an, bn := strings.ToLower(a.DisplayName), strings.ToLower(b.DisplayName); an != bn {
			return an < bn
		}
		return a.ParticipantID < b.ParticipantID
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}

	sort.Slice(skipped, func(i, j int) bool { return skipped[i] < skipped[j] })
	return ranked, skipped
}

// RankTeams groups ranked players by team. players must already be ranked
// by RankPlayers, so the first row seen for a team is its best contributor.
// Team names are grouped case-insensitively under the first spelling seen.
func RankTeams(kind model.GameKind, players []model.PlayerRankingEntry) []model.TeamRankingEntry {
	byTeam := make(map[string]*model.TeamRankingEntry)
	var order []string

	for _, p := range players {
		key := model.TeamKey(p.Team)
		entry, ok := byTeam[key]
		if !ok {
			byTeam[key] = &model.TeamRankingEntry{
				Team:              strings.TrimSpace(p.Team),
				Kind:              kind,
				BestScore:         p.BestScore,
				BestParticipantID: p.ParticipantID,
				BestDisplayName:   p.DisplayName,
				AchievedAt:        p.AchievedAt,
				Participants:      1,
				Attempts:          p.Attempts,
			}
			order = append(order, key)
			continue
		}
		entry.Participants++
		entry.Attempts += p.Attempts
	}

	ranked := make([]model.TeamRankingEntry, 0, len(order))
	for _, team := range order {
		ranked = append(ranked, *byTeam[team])
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.BestScore != b.BestScore {
			return a.BestScore < b.BestScore
		}
		if !a.AchievedAt.Equal(b.AchievedAt) {
			return a.AchievedAt.Before(b.AchievedAt)
		}
		return lessName(a.Team, b.Team)
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// RankTeamTotals combines per-kind team bests. More games played ranks
// higher, then a lower total. A kind the team has not played adds nothing.
func RankTeamTotals(teamBests map[model.GameKind][]model.TeamRankingEntry) []model.TeamTotalEntry {
	byTeam := make(map[string]*model.TeamTotalEntry)

	for _, kind := range model.AllGameKinds() {
		for _, t := range teamBests[kind] {
			key := model.TeamKey(t.Team)
			entry, ok := byTeam[key]
			if !ok {
				entry = &model.TeamTotalEntry{
					Team:  t.Team,
					Bests: make(map[model.GameKind]int),
				}
				byTeam[key] = entry
			}
			entry.GamesPlayed++
			entry.TotalScore += t.BestScore
			entry.Bests[kind] = t.BestScore
		}
	}

	ranked := make([]model.TeamTotalEntry, 0, len(byTeam))
	for _, entry := range byTeam {
		ranked = append(ranked, *entry)
	}
	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.GamesPlayed != b.GamesPlayed {
			return a.GamesPlayed > b.GamesPlayed
		}
		if a.TotalScore != b.TotalScore {
			return a.TotalScore < b.TotalScore
		}
		return lessName(a.Team, b.Team)
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

func lessName(a, b string) bool {
	if al, bl := strings.ToLower(a), strings.ToLower(b); al != bl {
		return al < bl
	}
	return a < b
}
