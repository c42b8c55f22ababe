package model

import (
	"fmt"
	"sort"
	"strings"
)

// GameKind identifies one of the event's mini-games
type GameKind string

const (
	GameKindMemo        GameKind = "memo"
	GameKindTruthOrMyth GameKind = "truth_or_myth"
	GameKindReaction    GameKind = "reaction"
)

// Score bounds per kind. Reaction uses 999 to record a loss.
const (
	MaxMemoScore        = 999
	MaxTruthOrMythScore = 100
	MaxReactionScore    = 999
)

// AllGameKinds returns every game kind in canonical order.
// A fresh slice is returned so callers may shuffle it in place.
func AllGameKinds() []GameKind {
	return []GameKind{GameKindMemo, GameKindTruthOrMyth, GameKindReaction}
}

// ParseGameKind converts a string to a GameKind
func ParseGameKind(s string) (GameKind, error) {
	kind := GameKind(strings.TrimSpace(s))
	if !kind.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownGameKind, s)
	}
	return kind, nil
}

// Valid reports whether k is a known game kind
func (k GameKind) Valid() bool {
	switch k {
	case GameKindMemo, GameKindTruthOrMyth, GameKindReaction:
		return true
	}
	return false
}

// MaxScore returns the highest score accepted for this kind
func (k GameKind) MaxScore() int {
	switch k {
	case GameKindMemo:
		return MaxMemoScore
	case GameKindTruthOrMyth:
		return MaxTruthOrMythScore
	case GameKindReaction:
		return MaxReactionScore
	}
	return 0
}

// canonicalIndex orders kinds the way AllGameKinds lists them
func (k GameKind) canonicalIndex() int {
	for i, kind := range AllGameKinds() {
		if kind == k {
			return i
		}
	}
	return len(AllGameKinds())
}

// KindSet is a set of game kinds
type KindSet map[GameKind]struct{}

// NewKindSet creates a set containing the given kinds
func NewKindSet(kinds ...GameKind) KindSet {
	set := make(KindSet, len(kinds))
	for _, k := range kinds {
		set.Add(k)
	}
	return set
}

// Add inserts a kind into the set
func (s KindSet) Add(k GameKind) {
	s[k] = struct{}{}
}

// Has reports whether the set contains k
func (s KindSet) Has(k GameKind) bool {
	_, ok := s[k]
	return ok
}

// Len returns the number of kinds in the set
func (s KindSet) Len() int {
	return len(s)
}

// Sorted returns the set's kinds in canonical order
func (s KindSet) Sorted() []GameKind {
	kinds := make([]GameKind, 0, len(s))
	for k := range s {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool {
		return kinds[i].canonicalIndex() < kinds[j].canonicalIndex()
	})
	return kinds
}
