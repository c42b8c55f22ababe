package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGameKind(t *testing.T) {
	for _, kind := range AllGameKinds() {
		parsed, err := ParseGameKind(string(kind))
		require.NoError(t, err)
		assert.Equal(t, kind, parsed)
	}

	_, err := ParseGameKind("chess")
	assert.ErrorIs(t, err, ErrUnknownGameKind)

	_, err = ParseGameKind("")
	assert.ErrorIs(t, err, ErrUnknownGameKind)
}

func TestAllGameKindsReturnsFreshSlice(t *testing.T) {
	kinds := AllGameKinds()
	kinds[0] = "mutated"
	assert.Equal(t, GameKindMemo, AllGameKinds()[0])
}

func TestKindSetSortedUsesCanonicalOrder(t *testing.T) {
	set := NewKindSet(GameKindReaction, GameKindMemo)
	assert.Equal(t, []GameKind{GameKindMemo, GameKindReaction}, set.Sorted())
	assert.True(t, set.Has(GameKindMemo))
	assert.False(t, set.Has(GameKindTruthOrMyth))
	assert.Equal(t, 2, set.Len())
}

func TestMaxScore(t *testing.T) {
	assert.Equal(t, MaxMemoScore, GameKindMemo.MaxScore())
	assert.Equal(t, MaxTruthOrMythScore, GameKindTruthOrMyth.MaxScore())
	assert.Equal(t, MaxReactionScore, GameKindReaction.MaxScore())
	assert.Equal(t, 0, GameKind("chess").MaxScore())
}

func TestSessionProgressNext(t *testing.T) {
	p := &SessionProgress{State: SessionPending, Remaining: []GameKind{GameKindReaction, GameKindMemo}}
	next, ok := p.Next()
	assert.True(t, ok)
	assert.Equal(t, GameKindReaction, next)

	done := &SessionProgress{State: SessionComplete}
	_, ok = done.Next()
	assert.False(t, ok)
	assert.True(t, done.IsComplete())
}
