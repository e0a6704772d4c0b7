package matching

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	ErrWeightsNotNormalized = errors.New("factor weights must sum to 1.0")
	ErrInvalidThreshold     = errors.New("score thresholds must lie in [0, 1]")
	ErrInvalidDuration      = errors.New("durations must be positive")
)

// Weights is the fixed weight vector combining the compatibility factors.
// The weights must sum to 1.0 so the overall score stays in [0, 1].
type Weights struct {
	Rating          float64
	SkillPreference float64
	Gender          float64
	Location        float64
	TimeOverlap     float64
	Engagement      float64
	History         float64
}

func (w Weights) Sum() float64 {
	return w.Rating + w.SkillPreference + w.Gender + w.Location +
		w.TimeOverlap + w.Engagement + w.History
}

// RatingBands holds the NTRP difference thresholds for the banded rating
// compatibility score (<=Excellent -> 1.0, <=Good -> 0.8, <=Acceptable -> 0.6,
// <=Poor -> 0.3, else 0.0).
type RatingBands struct {
	Excellent  float64
	Good       float64
	Acceptable float64
	Poor       float64
}

// Config is an immutable bundle of scoring weights and engine tunables,
// injected at construction time.
type Config struct {
	Weights     Weights
	RatingBands RatingBands

	// Minimum raw compatibility a candidate must exceed to be suggested.
	MinSinglesScore float64
	MinDoublesScore float64

	// SimilarSkillWindow is the NTRP difference still counted as "similar".
	SimilarSkillWindow float64

	// EngagementCeiling normalizes engagement scores; values at or above the
	// ceiling count as 1.0.
	EngagementCeiling float64

	// MatchDuration caps the proposed playing window; WarmupBuffer offsets the
	// proposed start from the beginning of the overlap.
	MatchDuration time.Duration
	WarmupBuffer  time.Duration

	// CancelRecency is how long a cancelled match keeps suppressing
	// re-proposals of the same pairing.
	CancelRecency time.Duration

	// MaxDoublesPool caps how many cluster members are considered when
	// enumerating 3-subsets for doubles; MaxDoublesPerCluster caps how many
	// doubles suggestions one cluster may emit.
	MaxDoublesPool       int
	MaxDoublesPerCluster int
}

func DefaultConfig() Config {
	return Config{
		Weights: Weights{
			Rating:          0.25,
			SkillPreference: 0.20,
			Gender:          0.15,
			Location:        0.15,
			TimeOverlap:     0.15,
			Engagement:      0.05,
			History:         0.05,
		},
		RatingBands: RatingBands{
			Excellent:  0.5,
			Good:       1.0,
			Acceptable: 1.5,
			Poor:       2.0,
		},
		MinSinglesScore:      0.3,
		MinDoublesScore:      0.25,
		SimilarSkillWindow:   0.5,
		EngagementCeiling:    100.0,
		MatchDuration:        90 * time.Minute,
		WarmupBuffer:         15 * time.Minute,
		CancelRecency:        24 * time.Hour,
		MaxDoublesPool:       8,
		MaxDoublesPerCluster: 3,
	}
}

func (c Config) Validate() error {
	if math.Abs(c.Weights.Sum()-1.0) > 1e-9 {
		return fmt.Errorf("%w: got %.4f", ErrWeightsNotNormalized, c.Weights.Sum())
	}
	for _, threshold := range []float64{c.MinSinglesScore, c.MinDoublesScore} {
		if threshold < 0 || threshold > 1 {
			return fmt.Errorf("%w: got %.4f", ErrInvalidThreshold, threshold)
		}
	}
	if c.MatchDuration <= 0 || c.CancelRecency <= 0 {
		return ErrInvalidDuration
	}
	if c.WarmupBuffer < 0 {
		return ErrInvalidDuration
	}
	if c.EngagementCeiling <= 0 {
		return fmt.Errorf("engagement ceiling must be positive, got %.2f", c.EngagementCeiling)
	}
	if c.MaxDoublesPool < 3 {
		return fmt.Errorf("doubles pool must allow at least 3 candidates, got %d", c.MaxDoublesPool)
	}
	if c.MaxDoublesPerCluster < 1 {
		return fmt.Errorf("at least one doubles suggestion per cluster required, got %d", c.MaxDoublesPerCluster)
	}
	return nil
}
