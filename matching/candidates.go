package matching

import (
	"context"

	"github.com/courtmate/matchmaking-system/models"
)

// scoredParticipant pairs a player with the schedule (and effective
// preferences) they bring into a candidate group.
type scoredParticipant struct {
	player   *models.Player
	schedule *models.Schedule
	prefs    models.Preferences
}

func newScoredParticipant(p *models.Player, s *models.Schedule) scoredParticipant {
	return scoredParticipant{player: p, schedule: s, prefs: s.EffectivePreferences(p)}
}

// singlesCandidates scores every other schedule in the cluster against the
// anchor as an independent two-player candidate. The minimum-score cutoff
// applies to the raw compatibility; dedup adjustments are applied afterwards
// so an already-proposed pairing stays visible, just de-prioritized.
func (e *Engine) singlesCandidates(ctx context.Context, scorer *Scorer, anchor scoredParticipant,
	cluster []*models.Schedule, players map[string]*models.Player) []*Suggestion {

	var suggestions []*Suggestion
	for _, schedule := range cluster {
		if schedule.UserID == anchor.player.UserID {
			continue
		}
		other, ok := players[schedule.UserID]
		if !ok {
			continue
		}

		compat := scorer.Score(ctx, anchor.player, anchor.schedule, other, schedule)
		if compat.Overall <= e.cfg.MinSinglesScore {
			continue
		}

		participants := []scoredParticipant{anchor, newScoredParticipant(other, schedule)}
		suggestions = append(suggestions,
			e.buildSuggestion(ctx, models.MatchTypeSingles, participants, compat))
	}
	return suggestions
}

// doublesCandidates enumerates 3-subsets of the cluster's other schedules
// (pool capped at MaxDoublesPool), scores each foursome as the mean of its six
// pairwise compatibilities, and keeps the best MaxDoublesPerCluster groups
// that clear the doubles threshold.
func (e *Engine) doublesCandidates(ctx context.Context, scorer *Scorer, anchor scoredParticipant,
	cluster []*models.Schedule, players map[string]*models.Player) []*Suggestion {

	var pool []scoredParticipant
	seen := map[string]struct{}{anchor.player.UserID: {}}
	for _, schedule := range cluster {
		if len(pool) == e.cfg.MaxDoublesPool {
			break
		}
		if _, dup := seen[schedule.UserID]; dup {
			continue
		}
		other, ok := players[schedule.UserID]
		if !ok {
			continue
		}
		seen[schedule.UserID] = struct{}{}
		pool = append(pool, newScoredParticipant(other, schedule))
	}
	if len(pool) < 3 {
		return nil
	}

	var suggestions []*Suggestion
	for i := 0; i < len(pool)-2; i++ {
		for j := i + 1; j < len(pool)-1; j++ {
			for k := j + 1; k < len(pool); k++ {
				group := []scoredParticipant{anchor, pool[i], pool[j], pool[k]}
				compat := e.groupCompatibility(ctx, scorer, group)
				if compat.Overall <= e.cfg.MinDoublesScore {
					continue
				}
				suggestions = append(suggestions,
					e.buildSuggestion(ctx, models.MatchTypeDoubles, group, compat))
			}
		}
	}

	sortSuggestions(suggestions)
	if len(suggestions) > e.cfg.MaxDoublesPerCluster {
		suggestions = suggestions[:e.cfg.MaxDoublesPerCluster]
	}
	return suggestions
}

// groupCompatibility averages the pairwise compatibilities of all six pairs in
// a foursome, factor by factor.
func (e *Engine) groupCompatibility(ctx context.Context, scorer *Scorer, group []scoredParticipant) Compatibility {
	var agg Compatibility
	pairs := 0
	bestRating := 0.0

	for i := 0; i < len(group); i++ {
		for j := i + 1; j < len(group); j++ {
			pair := scorer.Score(ctx,
				group[i].player, group[i].schedule,
				group[j].player, group[j].schedule)
			agg.Overall += pair.Overall
			agg.Rating += pair.Rating
			agg.SkillPreference += pair.SkillPreference
			agg.Gender += pair.Gender
			agg.Location += pair.Location
			agg.TimeOverlap += pair.TimeOverlap
			agg.Engagement += pair.Engagement
			agg.History += pair.History
			if pair.Rating > bestRating {
				bestRating = pair.Rating
			}
			pairs++
		}
	}
	if pairs == 0 {
		return agg
	}

	n := float64(pairs)
	agg.Overall /= n
	agg.Rating /= n
	agg.SkillPreference /= n
	agg.Gender /= n
	agg.Location /= n
	agg.TimeOverlap /= n
	agg.Engagement /= n
	agg.History /= n

	if agg.Overall > 0.6 {
		agg.Reasons = append(agg.Reasons, "Good overall group compatibility")
	}
	if bestRating > 0.8 {
		agg.Reasons = append(agg.Reasons, "Balanced skill levels")
	}
	return agg
}

// buildSuggestion attaches the proposed window, venue and dedup adjustment to
// a scored candidate group.
func (e *Engine) buildSuggestion(ctx context.Context, matchType models.MatchType,
	participants []scoredParticipant, compat Compatibility) *Suggestion {

	playerList := make([]*models.Player, len(participants))
	scheduleList := make([]*models.Schedule, len(participants))
	ids := make([]string, len(participants))
	for i, part := range participants {
		playerList[i] = part.player
		scheduleList[i] = part.schedule
		ids[i] = part.player.UserID
	}

	start, end := proposedWindow(e.cfg, scheduleList)
	court := e.pickCourt(ctx, participants)

	score := compat.Overall
	reasons := make([]string, len(compat.Reasons))
	copy(reasons, compat.Reasons)

	status := e.dedup.StatusFor(ctx, playerList[0].GuildID, ids, start, end)
	if multiplier, reason, adjusted := Adjustment(status); adjusted {
		score *= multiplier
		reasons = append(reasons, reason)
	}

	return &Suggestion{
		Players:        playerList,
		Schedules:      scheduleList,
		SuggestedCourt: court,
		SuggestedStart: start,
		SuggestedEnd:   end,
		OverallScore:   score,
		MatchType:      matchType,
		Details:        compat.Details(),
		Reasons:        reasons,
	}
}
