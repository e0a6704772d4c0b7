package matching

import (
	"context"
	"log/slog"

	"github.com/courtmate/matchmaking-system/models"
)

// proposedWindow derives the concrete playing window for a group of schedules:
// the common intersection, capped at the configured match duration, with the
// start offset by the warm-up buffer when the overlap leaves room for it.
func proposedWindow(cfg Config, schedules []*models.Schedule) (start, end int64) {
	if len(schedules) == 0 {
		return 0, 0
	}

	overlapStart := schedules[0].StartTime
	overlapEnd := schedules[0].EndTime
	for _, s := range schedules[1:] {
		if s.StartTime > overlapStart {
			overlapStart = s.StartTime
		}
		if s.EndTime < overlapEnd {
			overlapEnd = s.EndTime
		}
	}
	if overlapStart >= overlapEnd {
		return 0, 0
	}

	warmup := int64(cfg.WarmupBuffer.Seconds())
	maxDuration := int64(cfg.MatchDuration.Seconds())
	rawOverlap := overlapEnd - overlapStart

	// Skip the warm-up offset when it would consume the whole overlap.
	if rawOverlap <= warmup {
		return overlapStart, overlapEnd
	}

	duration := rawOverlap - warmup
	if duration > maxDuration {
		duration = maxDuration
	}
	start = overlapStart + warmup
	return start, start + duration
}

// pickCourt prefers a venue common to every participant's preferred-location
// set; participants without a location preference accept anything. Candidate
// ids are checked in sorted order so selection is deterministic. Falls back to
// the first configured court, or nil when no courts exist ("TBD").
func (e *Engine) pickCourt(ctx context.Context, participants []scoredParticipant) *models.Court {
	var common []string
	constrained := false
	for _, part := range participants {
		locations := part.prefs.Locations
		if len(locations) == 0 {
			continue
		}
		if !constrained {
			common = commonLocations(locations, locations)
			constrained = true
			continue
		}
		common = commonLocations(common, locations)
		if common == nil {
			break
		}
	}

	if constrained {
		for _, courtID := range common {
			court, err := e.courts.GetCourt(ctx, courtID)
			if err != nil {
				e.log.WarnContext(ctx, "court lookup failed during venue selection",
					slog.String("court_id", courtID), slog.Any("error", err))
				continue
			}
			if court != nil {
				return court
			}
		}
	}

	courts, err := e.courts.ListCourts(ctx)
	if err != nil {
		e.log.WarnContext(ctx, "court listing failed during venue selection", slog.Any("error", err))
		return nil
	}
	if len(courts) == 0 {
		return nil
	}
	return courts[0]
}
