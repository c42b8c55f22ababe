package storage

import (
	"sort"
	"strings"

	"github.com/mcoot/eventgames/internal/model"
)

// SortTeams orders teams by SortOrder, then case-insensitive name.
// Every backend uses it so ListTeams is consistent across storage types.
func SortTeams(teams []*model.Team) {
	sort.Slice(teams, func(i, j int) bool {
		if teams[i].SortOrder != teams[j].SortOrder {
			return teams[i].SortOrder < teams[j].SortOrder
		}
		li, lj := strings.ToLower(teams[i].Name), strings.ToLower(teams[j].Name)
		if li != lj {
			return li < lj
		}
		return teams[i].Name < teams[j].Name
	})
}

// SortParticipants orders participants by ID
func SortParticipants(participants []*model.Participant) {
	sort.Slice(participants, func(i, j int) bool {
		return participants[i].ID < participants[j].ID
	})
}
