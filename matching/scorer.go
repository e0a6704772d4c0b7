package matching

import (
	"context"
	"log/slog"
	"math"
	"sort"

	"github.com/courtmate/matchmaking-system/models"
)

// HistoryLookup resolves a player's completed matches for the match-history
// factor. The engine wraps its MatchSource with a per-invocation memo so the
// scorer never hits storage twice for the same player.
type HistoryLookup interface {
	CompletedMatches(ctx context.Context, guildID, userID string) ([]*models.Match, error)
}

// Compatibility is the scored breakdown for one pair of players/schedules.
// Every factor and the weighted overall lie in [0, 1].
type Compatibility struct {
	Overall         float64
	Rating          float64
	SkillPreference float64
	Gender          float64
	Location        float64
	TimeOverlap     float64
	Engagement      float64
	History         float64
	Reasons         []string
}

func (c Compatibility) Details() map[string]float64 {
	return map[string]float64{
		"rating":           c.Rating,
		"skill_preference": c.SkillPreference,
		"gender":           c.Gender,
		"location":         c.Location,
		"time_overlap":     c.TimeOverlap,
		"engagement":       c.Engagement,
		"match_history":    c.History,
	}
}

// Scorer computes pairwise compatibility. It never fails: missing optional
// preference data scores as a permissive/neutral signal, and history lookup
// errors degrade to a zero history factor.
type Scorer struct {
	cfg     Config
	history HistoryLookup
	log     *slog.Logger
}

func NewScorer(cfg Config, history HistoryLookup, log *slog.Logger) *Scorer {
	return &Scorer{cfg: cfg, history: history, log: log}
}

func (sc *Scorer) Score(ctx context.Context, playerA *models.Player, scheduleA *models.Schedule,
	playerB *models.Player, scheduleB *models.Schedule) Compatibility {

	prefsA := scheduleA.EffectivePreferences(playerA)
	prefsB := scheduleB.EffectivePreferences(playerB)

	c := Compatibility{
		Rating:          sc.ratingCompatibility(playerA, playerB),
		SkillPreference: sc.skillPreferenceCompatibility(playerA, prefsA, playerB, prefsB),
		Gender:          sc.genderCompatibility(playerA, prefsA, playerB, prefsB),
		Location:        sc.locationCompatibility(prefsA, prefsB),
		TimeOverlap:     sc.timeOverlap(scheduleA, scheduleB),
		Engagement:      sc.engagementBonus(playerA, playerB),
		History:         sc.historyFactor(ctx, playerA, playerB),
	}

	w := sc.cfg.Weights
	c.Overall = w.Rating*c.Rating +
		w.SkillPreference*c.SkillPreference +
		w.Gender*c.Gender +
		w.Location*c.Location +
		w.TimeOverlap*c.TimeOverlap +
		w.Engagement*c.Engagement +
		w.History*c.History

	c.Reasons = sc.buildReasons(c)
	return c
}

// ratingCompatibility maps the absolute NTRP difference onto fixed bands.
// Symmetric and monotonically non-increasing in the difference.
func (sc *Scorer) ratingCompatibility(a, b *models.Player) float64 {
	diff := math.Abs(a.NTRPRating - b.NTRPRating)
	bands := sc.cfg.RatingBands
	switch {
	case diff <= bands.Excellent:
		return 1.0
	case diff <= bands.Good:
		return 0.8
	case diff <= bands.Acceptable:
		return 0.6
	case diff <= bands.Poor:
		return 0.3
	default:
		return 0.0
	}
}

// skillPreferenceCompatibility evaluates each player's declared skill
// preference against the other player's rating and averages the two one-sided
// results. "any" (and an absent preference) earns the partial 0.5 credit.
func (sc *Scorer) skillPreferenceCompatibility(a *models.Player, prefsA models.Preferences,
	b *models.Player, prefsB models.Preferences) float64 {

	diff := math.Abs(a.NTRPRating - b.NTRPRating)
	return (sc.oneSidedSkillScore(prefsA, a.NTRPRating, b.NTRPRating, diff) +
		sc.oneSidedSkillScore(prefsB, b.NTRPRating, a.NTRPRating, diff)) / 2.0
}

func (sc *Scorer) oneSidedSkillScore(prefs models.Preferences, own, other, diff float64) float64 {
	switch {
	case len(prefs.SkillLevels) == 0, prefs.WantsSkillLevel(models.SkillLevelAny):
		return 0.5
	case prefs.WantsSkillLevel(models.SkillLevelSimilar) && diff <= sc.cfg.SimilarSkillWindow:
		return 1.0
	case prefs.WantsSkillLevel(models.SkillLevelAbove) && other > own:
		return 1.0
	case prefs.WantsSkillLevel(models.SkillLevelBelow) && other < own:
		return 1.0
	default:
		return 0.0
	}
}

// genderCompatibility: no declared preference on either side is fully
// compatible; a mutual set-membership match is 1.0, one-sided is 0.5.
func (sc *Scorer) genderCompatibility(a *models.Player, prefsA models.Preferences,
	b *models.Player, prefsB models.Preferences) float64 {

	if sc.genderUnconstrained(prefsA) || sc.genderUnconstrained(prefsB) {
		return 1.0
	}
	aAcceptsB := prefsA.AcceptsGender(b.Gender)
	bAcceptsA := prefsB.AcceptsGender(a.Gender)
	switch {
	case aAcceptsB && bAcceptsA:
		return 1.0
	case aAcceptsB || bAcceptsA:
		return 0.5
	default:
		return 0.0
	}
}

func (sc *Scorer) genderUnconstrained(prefs models.Preferences) bool {
	if len(prefs.Genders) == 0 {
		return true
	}
	for _, g := range prefs.Genders {
		if g == "none" {
			return true
		}
	}
	return false
}

// locationCompatibility: intersecting preferred venues score 1.0; an
// unconstrained side scores 0.5; disjoint non-empty sets score 0.
func (sc *Scorer) locationCompatibility(prefsA, prefsB models.Preferences) float64 {
	if commonLocations(prefsA.Locations, prefsB.Locations) != nil {
		return 1.0
	}
	if len(prefsA.Locations) == 0 || len(prefsB.Locations) == 0 {
		return 0.5
	}
	return 0.0
}

// timeOverlap is the overlapping duration relative to the shorter schedule, so
// near-total overlap of a short window beats partial overlap of a long one.
func (sc *Scorer) timeOverlap(a, b *models.Schedule) float64 {
	start, end, ok := a.OverlapWindow(b)
	if !ok {
		return 0.0
	}
	minDuration := a.Duration()
	if b.Duration() < minDuration {
		minDuration = b.Duration()
	}
	if minDuration <= 0 {
		return 0.0
	}
	return float64(end-start) / float64(minDuration)
}

func (sc *Scorer) engagementBonus(a, b *models.Player) float64 {
	return (sc.normalizedEngagement(a) + sc.normalizedEngagement(b)) / 2.0
}

func (sc *Scorer) normalizedEngagement(p *models.Player) float64 {
	score := p.EngagementScore
	if score < 0 {
		score = 0
	}
	return math.Min(score/sc.cfg.EngagementCeiling, 1.0)
}

// historyFactor rewards repeating a previously well-rated pairing: 1.0 for a
// completed match rated above 7/10, 0.5 above 5/10. Lookup failures degrade to
// 0 rather than failing the score.
func (sc *Scorer) historyFactor(ctx context.Context, a, b *models.Player) float64 {
	if sc.history == nil {
		return 0.0
	}
	completed, err := sc.history.CompletedMatches(ctx, a.GuildID, a.UserID)
	if err != nil {
		sc.log.WarnContext(ctx, "match history lookup failed, scoring without history",
			slog.String("guild_id", a.GuildID), slog.String("user_id", a.UserID), slog.Any("error", err))
		return 0.0
	}
	factor := 0.0
	for _, match := range completed {
		if !match.HasPlayer(b.UserID) || match.QualityScore == nil {
			continue
		}
		switch {
		case *match.QualityScore > 7:
			return 1.0
		case *match.QualityScore > 5 && factor < 0.5:
			factor = 0.5
		}
	}
	return factor
}

// buildReasons produces the human-readable trace of strong factors. Used by
// the presentation layer only, never for scoring.
func (sc *Scorer) buildReasons(c Compatibility) []string {
	var reasons []string
	if c.Rating > 0.8 {
		reasons = append(reasons, "Excellent skill level match")
	} else if c.Rating > 0.6 {
		reasons = append(reasons, "Good skill level match")
	}
	if c.SkillPreference > 0.8 {
		reasons = append(reasons, "Matches skill preferences")
	}
	if c.Gender > 0.8 {
		reasons = append(reasons, "Matches gender preferences")
	}
	if c.Location > 0.8 {
		reasons = append(reasons, "Same preferred location")
	}
	if c.TimeOverlap > 0.9 {
		reasons = append(reasons, "Perfect time overlap")
	}
	if c.Engagement > 0.5 {
		reasons = append(reasons, "High engagement players")
	}
	if c.History > 0.5 {
		reasons = append(reasons, "Previous match history")
	}
	return reasons
}

// commonLocations returns the sorted intersection of two venue id sets, nil
// when disjoint or either side is empty.
func commonLocations(a, b []string) []string {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	inA := make(map[string]struct{}, len(a))
	for _, id := range a {
		inA[id] = struct{}{}
	}
	var common []string
	seen := make(map[string]struct{})
	for _, id := range b {
		if _, ok := inA[id]; !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		common = append(common, id)
	}
	if common == nil {
		return nil
	}
	sort.Strings(common)
	return common
}
