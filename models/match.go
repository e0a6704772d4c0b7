package models

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

type MatchType string

const (
	MatchTypeSingles MatchType = "singles"
	MatchTypeDoubles MatchType = "doubles"
)

type MatchStatus string

const (
	MatchStatusPendingConfirmation MatchStatus = "pending_confirmation"
	MatchStatusScheduled           MatchStatus = "scheduled"
	MatchStatusInProgress          MatchStatus = "in_progress"
	MatchStatusCompleted           MatchStatus = "completed"
	MatchStatusCancelled           MatchStatus = "cancelled"
)

var (
	ErrMatchNoPlayers          = errors.New("match must have at least one player")
	ErrMatchSinglesPlayerCount = errors.New("singles matches must have exactly 2 players")
	ErrMatchDoublesPlayerCount = errors.New("doubles matches must have exactly 4 players")
	ErrMatchDuplicatePlayers   = errors.New("match players must be distinct")
	ErrMatchInvalidTimeRange   = errors.New("match end time must be after start time")
	ErrMatchInvalidType        = errors.New("invalid match type")
	ErrMatchInvalidStatus      = errors.New("invalid match status")
)

// Match is a proposed or confirmed pairing. Lifecycle:
// pending_confirmation -> scheduled -> in_progress -> completed | cancelled.
type Match struct {
	GuildID         string      `json:"guild_id"`
	MatchID         string      `json:"match_id"`
	Players         []string    `json:"players"` // user ids
	MatchType       MatchType   `json:"match_type"`
	Status          MatchStatus `json:"status"`
	CourtID         *string     `json:"court_id,omitempty"`
	StartTime       int64       `json:"start_time"`
	EndTime         int64       `json:"end_time"`
	Score           *string     `json:"score,omitempty"`
	Winner          *string     `json:"winner,omitempty"`
	QualityScore    *float64    `json:"quality_score,omitempty"` // 0-10, set at completion
	CancelledReason *string     `json:"cancelled_reason,omitempty"`
	Notes           *string     `json:"notes,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// Validate проверяет инварианты матча на границе сущности.
func (m *Match) Validate() error {
	if len(m.Players) == 0 {
		return ErrMatchNoPlayers
	}
	switch m.MatchType {
	case MatchTypeSingles:
		if len(m.Players) != 2 {
			return fmt.Errorf("%w: got %d", ErrMatchSinglesPlayerCount, len(m.Players))
		}
	case MatchTypeDoubles:
		if len(m.Players) != 4 {
			return fmt.Errorf("%w: got %d", ErrMatchDoublesPlayerCount, len(m.Players))
		}
	default:
		return fmt.Errorf("%w: %q", ErrMatchInvalidType, m.MatchType)
	}
	seen := make(map[string]struct{}, len(m.Players))
	for _, id := range m.Players {
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: %s", ErrMatchDuplicatePlayers, id)
		}
		seen[id] = struct{}{}
	}
	if m.StartTime != 0 && m.EndTime != 0 && m.StartTime >= m.EndTime {
		return ErrMatchInvalidTimeRange
	}
	switch m.Status {
	case MatchStatusPendingConfirmation, MatchStatusScheduled, MatchStatusInProgress,
		MatchStatusCompleted, MatchStatusCancelled:
	default:
		return fmt.Errorf("%w: %q", ErrMatchInvalidStatus, m.Status)
	}
	return nil
}

func (m *Match) HasPlayer(userID string) bool {
	for _, id := range m.Players {
		if id == userID {
			return true
		}
	}
	return false
}

// SameParticipants reports whether the match involves exactly the given set of
// players, regardless of order.
func (m *Match) SameParticipants(userIDs []string) bool {
	if len(m.Players) != len(userIDs) {
		return false
	}
	a := SortedParticipants(m.Players)
	b := SortedParticipants(userIDs)
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// OverlapsWindow reports whether the match window intersects [start, end).
// Matches without a stored window are treated as overlapping.
func (m *Match) OverlapsWindow(start, end int64) bool {
	if m.StartTime == 0 || m.EndTime == 0 {
		return true
	}
	return m.StartTime < end && start < m.EndTime
}

// SortedParticipants returns a sorted copy of the given user ids. Participant
// sets are stored and compared in sorted order so equality is order-independent.
func SortedParticipants(userIDs []string) []string {
	sorted := make([]string, len(userIDs))
	copy(sorted, userIDs)
	sort.Strings(sorted)
	return sorted
}
