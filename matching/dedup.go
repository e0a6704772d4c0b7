package matching

import (
	"context"
	"log/slog"
	"time"

	"github.com/courtmate/matchmaking-system/models"
)

// ExistingStatus classifies a prior match between the same participant set
// overlapping the proposed window.
type ExistingStatus string

const (
	ExistingNone              ExistingStatus = ""
	ExistingPending           ExistingStatus = "pending_confirmation"
	ExistingScheduled         ExistingStatus = "scheduled"
	ExistingRecentlyCancelled ExistingStatus = "recently_cancelled"
)

// Deduper reads prior match records to throttle duplicate suggestions. Lookup
// failures are treated as "unknown status" so suggestion generation degrades
// gracefully instead of hiding everything.
type Deduper struct {
	matches MatchSource
	recency time.Duration
	now     func() time.Time
	log     *slog.Logger
}

func NewDeduper(matches MatchSource, recency time.Duration, now func() time.Time, log *slog.Logger) *Deduper {
	if now == nil {
		now = time.Now
	}
	return &Deduper{matches: matches, recency: recency, now: now, log: log}
}

// StatusFor scans matches for the same participant set (order-independent)
// overlapping [start, end). Pending and scheduled matches report their status
// directly; a cancellation inside the recency window reports recently_cancelled.
func (d *Deduper) StatusFor(ctx context.Context, guildID string, participantIDs []string, start, end int64) ExistingStatus {
	existing, err := d.matches.ListByParticipants(ctx, guildID, participantIDs)
	if err != nil {
		d.log.WarnContext(ctx, "existing-match lookup failed, treating status as unknown",
			slog.String("guild_id", guildID), slog.Any("error", err))
		return ExistingNone
	}

	for _, match := range existing {
		if !match.OverlapsWindow(start, end) {
			continue
		}
		switch match.Status {
		case models.MatchStatusPendingConfirmation:
			return ExistingPending
		case models.MatchStatusScheduled:
			return ExistingScheduled
		case models.MatchStatusCancelled:
			if d.now().Sub(match.UpdatedAt) < d.recency {
				return ExistingRecentlyCancelled
			}
		}
	}
	return ExistingNone
}

// HasBlockingRequest reports whether a pending or accepted match already
// exists for the participant set and window. Used by the invitation path to
// hard-block duplicate proposals; recently cancelled matches do not block.
func (d *Deduper) HasBlockingRequest(ctx context.Context, guildID string, participantIDs []string, start, end int64) bool {
	status := d.StatusFor(ctx, guildID, participantIDs, start, end)
	return status == ExistingPending || status == ExistingScheduled
}

// Adjustment maps an existing-match status onto the soft score multiplier and
// display annotation applied to a suggestion. The suggestion stays visible.
func Adjustment(status ExistingStatus) (multiplier float64, reason string, adjusted bool) {
	switch status {
	case ExistingScheduled:
		return 0.8, "Match already accepted and scheduled", true
	case ExistingPending:
		return 0.5, "Match request pending confirmation", true
	case ExistingRecentlyCancelled:
		return 0.3, "Match request recently declined", true
	default:
		return 1.0, "", false
	}
}
