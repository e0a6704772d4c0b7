package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validSingles() *Match {
	return &Match{
		GuildID:   "guild-1",
		MatchID:   "m1",
		Players:   []string{"a", "b"},
		MatchType: MatchTypeSingles,
		Status:    MatchStatusPendingConfirmation,
		StartTime: 1000,
		EndTime:   2000,
	}
}

func TestMatchValidate(t *testing.T) {
	t.Run("valid singles", func(t *testing.T) {
		assert.NoError(t, validSingles().Validate())
	})

	t.Run("valid doubles", func(t *testing.T) {
		m := validSingles()
		m.MatchType = MatchTypeDoubles
		m.Players = []string{"a", "b", "c", "d"}
		assert.NoError(t, m.Validate())
	})

	t.Run("no players", func(t *testing.T) {
		m := validSingles()
		m.Players = nil
		assert.ErrorIs(t, m.Validate(), ErrMatchNoPlayers)
	})

	t.Run("singles needs exactly two", func(t *testing.T) {
		m := validSingles()
		m.Players = []string{"a", "b", "c"}
		assert.ErrorIs(t, m.Validate(), ErrMatchSinglesPlayerCount)
	})

	t.Run("doubles needs exactly four", func(t *testing.T) {
		m := validSingles()
		m.MatchType = MatchTypeDoubles
		assert.ErrorIs(t, m.Validate(), ErrMatchDoublesPlayerCount)
	})

	t.Run("duplicate players", func(t *testing.T) {
		m := validSingles()
		m.Players = []string{"a", "a"}
		assert.ErrorIs(t, m.Validate(), ErrMatchDuplicatePlayers)
	})

	t.Run("inverted time range", func(t *testing.T) {
		m := validSingles()
		m.StartTime, m.EndTime = 2000, 1000
		assert.ErrorIs(t, m.Validate(), ErrMatchInvalidTimeRange)
	})

	t.Run("zero window is allowed", func(t *testing.T) {
		m := validSingles()
		m.StartTime, m.EndTime = 0, 0
		assert.NoError(t, m.Validate())
	})

	t.Run("unknown type", func(t *testing.T) {
		m := validSingles()
		m.MatchType = "triples"
		assert.ErrorIs(t, m.Validate(), ErrMatchInvalidType)
	})

	t.Run("unknown status", func(t *testing.T) {
		m := validSingles()
		m.Status = "limbo"
		assert.ErrorIs(t, m.Validate(), ErrMatchInvalidStatus)
	})
}

func TestSameParticipantsIsOrderIndependent(t *testing.T) {
	m := validSingles()
	assert.True(t, m.SameParticipants([]string{"b", "a"}))
	assert.False(t, m.SameParticipants([]string{"a", "c"}))
	assert.False(t, m.SameParticipants([]string{"a"}))
	assert.False(t, m.SameParticipants([]string{"a", "b", "c"}))
}

func TestOverlapsWindow(t *testing.T) {
	m := validSingles() // [1000, 2000)

	assert.True(t, m.OverlapsWindow(1500, 2500))
	assert.True(t, m.OverlapsWindow(0, 1001))
	assert.False(t, m.OverlapsWindow(2000, 3000)) // half-open boundary
	assert.False(t, m.OverlapsWindow(0, 1000))

	// A match without a stored window blocks every window.
	m.StartTime, m.EndTime = 0, 0
	assert.True(t, m.OverlapsWindow(5000, 6000))
}

func TestSortedParticipantsCopies(t *testing.T) {
	original := []string{"c", "a", "b"}
	sorted := SortedParticipants(original)

	assert.Equal(t, []string{"a", "b", "c"}, sorted)
	assert.Equal(t, []string{"c", "a", "b"}, original)
}
