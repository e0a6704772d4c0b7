package matching

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtmate/matchmaking-system/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testPlayer(userID string, rating float64, mutate ...func(*models.Player)) *models.Player {
	p := &models.Player{
		GuildID:    "guild-1",
		UserID:     userID,
		Username:   userID,
		Gender:     models.GenderOther,
		NTRPRating: rating,
	}
	for _, m := range mutate {
		m(p)
	}
	return p
}

func testSchedule(userID string, start, end int64) *models.Schedule {
	return &models.Schedule{
		GuildID:    "guild-1",
		ScheduleID: "sch-" + userID,
		UserID:     userID,
		StartTime:  start,
		EndTime:    end,
		Status:     models.ScheduleStatusOpen,
	}
}

type stubHistory struct {
	matches []*models.Match
	err     error
}

func (s stubHistory) CompletedMatches(ctx context.Context, guildID, userID string) ([]*models.Match, error) {
	return s.matches, s.err
}

func newTestScorer(history HistoryLookup) *Scorer {
	return NewScorer(DefaultConfig(), history, testLogger())
}

func scorePair(t *testing.T, sc *Scorer, a, b *models.Player, sa, sb *models.Schedule) Compatibility {
	t.Helper()
	return sc.Score(context.Background(), a, sa, b, sb)
}

func TestRatingCompatibilityBands(t *testing.T) {
	sc := newTestScorer(nil)
	base := testPlayer("a", 4.0)

	cases := []struct {
		name   string
		rating float64
		want   float64
	}{
		{"equal ratings", 4.0, 1.0},
		{"half point apart", 4.5, 1.0},
		{"one point apart", 5.0, 0.8},
		{"one and a half", 5.5, 0.6},
		{"two points", 6.0, 0.3},
		{"beyond two points", 6.5, 0.0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			other := testPlayer("b", tc.rating)
			assert.Equal(t, tc.want, sc.ratingCompatibility(base, other))
			// Symmetric in both directions.
			assert.Equal(t, tc.want, sc.ratingCompatibility(other, base))
		})
	}
}

func TestSkillPreferenceCompatibility(t *testing.T) {
	sc := newTestScorer(nil)
	sa := testSchedule("a", 100, 200)
	sb := testSchedule("b", 100, 200)

	t.Run("no declared preference scores neutral on both sides", func(t *testing.T) {
		a := testPlayer("a", 4.0)
		b := testPlayer("b", 4.0)
		c := scorePair(t, sc, a, b, sa, sb)
		assert.InDelta(t, 0.5, c.SkillPreference, 1e-9)
	})

	t.Run("any preference scores neutral", func(t *testing.T) {
		a := testPlayer("a", 4.0, func(p *models.Player) {
			p.Preferences.SkillLevels = []string{models.SkillLevelAny}
		})
		b := testPlayer("b", 4.0)
		c := scorePair(t, sc, a, b, sa, sb)
		assert.InDelta(t, 0.5, c.SkillPreference, 1e-9)
	})

	t.Run("mutual similar within window is perfect", func(t *testing.T) {
		a := testPlayer("a", 4.0, func(p *models.Player) {
			p.Preferences.SkillLevels = []string{models.SkillLevelSimilar}
		})
		b := testPlayer("b", 4.5, func(p *models.Player) {
			p.Preferences.SkillLevels = []string{models.SkillLevelSimilar}
		})
		c := scorePair(t, sc, a, b, sa, sb)
		assert.InDelta(t, 1.0, c.SkillPreference, 1e-9)
	})

	t.Run("directional above and below are satisfied together", func(t *testing.T) {
		weaker := testPlayer("a", 3.5, func(p *models.Player) {
			p.Preferences.SkillLevels = []string{models.SkillLevelAbove}
		})
		stronger := testPlayer("b", 5.0, func(p *models.Player) {
			p.Preferences.SkillLevels = []string{models.SkillLevelBelow}
		})
		c := scorePair(t, sc, weaker, stronger, sa, sb)
		assert.InDelta(t, 1.0, c.SkillPreference, 1e-9)
	})

	t.Run("unsatisfied preference averaged with neutral side", func(t *testing.T) {
		a := testPlayer("a", 4.0, func(p *models.Player) {
			p.Preferences.SkillLevels = []string{models.SkillLevelAbove}
		})
		b := testPlayer("b", 3.0) // weaker, no preference
		c := scorePair(t, sc, a, b, sa, sb)
		assert.InDelta(t, 0.25, c.SkillPreference, 1e-9)
	})
}

func TestGenderCompatibility(t *testing.T) {
	sc := newTestScorer(nil)
	sa := testSchedule("a", 100, 200)
	sb := testSchedule("b", 100, 200)

	male := func(p *models.Player) { p.Gender = models.GenderMale }
	female := func(p *models.Player) { p.Gender = models.GenderFemale }

	t.Run("no preference on either side is fully compatible", func(t *testing.T) {
		c := scorePair(t, sc, testPlayer("a", 4.0, male), testPlayer("b", 4.0, female), sa, sb)
		assert.Equal(t, 1.0, c.Gender)
	})

	t.Run("explicit none disables the constraint", func(t *testing.T) {
		a := testPlayer("a", 4.0, male, func(p *models.Player) {
			p.Preferences.Genders = []string{"none"}
		})
		b := testPlayer("b", 4.0, female, func(p *models.Player) {
			p.Preferences.Genders = []string{"male"}
		})
		c := scorePair(t, sc, a, b, sa, sb)
		assert.Equal(t, 1.0, c.Gender)
	})

	t.Run("mutual acceptance", func(t *testing.T) {
		a := testPlayer("a", 4.0, male, func(p *models.Player) {
			p.Preferences.Genders = []string{"female"}
		})
		b := testPlayer("b", 4.0, female, func(p *models.Player) {
			p.Preferences.Genders = []string{"male"}
		})
		c := scorePair(t, sc, a, b, sa, sb)
		assert.Equal(t, 1.0, c.Gender)
	})

	t.Run("one-sided acceptance is partial", func(t *testing.T) {
		a := testPlayer("a", 4.0, male, func(p *models.Player) {
			p.Preferences.Genders = []string{"female"}
		})
		b := testPlayer("b", 4.0, female, func(p *models.Player) {
			p.Preferences.Genders = []string{"female"}
		})
		c := scorePair(t, sc, a, b, sa, sb)
		assert.Equal(t, 0.5, c.Gender)
	})

	t.Run("mutual rejection", func(t *testing.T) {
		a := testPlayer("a", 4.0, male, func(p *models.Player) {
			p.Preferences.Genders = []string{"male"}
		})
		b := testPlayer("b", 4.0, female, func(p *models.Player) {
			p.Preferences.Genders = []string{"female"}
		})
		c := scorePair(t, sc, a, b, sa, sb)
		assert.Equal(t, 0.0, c.Gender)
	})
}

func TestLocationCompatibility(t *testing.T) {
	sc := newTestScorer(nil)
	sa := testSchedule("a", 100, 200)
	sb := testSchedule("b", 100, 200)

	withLocations := func(ids ...string) func(*models.Player) {
		return func(p *models.Player) { p.Preferences.Locations = ids }
	}

	t.Run("shared venue", func(t *testing.T) {
		c := scorePair(t, sc,
			testPlayer("a", 4.0, withLocations("court-a", "court-b")),
			testPlayer("b", 4.0, withLocations("court-b", "court-c")), sa, sb)
		assert.Equal(t, 1.0, c.Location)
	})

	t.Run("one side unconstrained", func(t *testing.T) {
		c := scorePair(t, sc,
			testPlayer("a", 4.0, withLocations("court-a")),
			testPlayer("b", 4.0), sa, sb)
		assert.Equal(t, 0.5, c.Location)
	})

	t.Run("disjoint venues", func(t *testing.T) {
		c := scorePair(t, sc,
			testPlayer("a", 4.0, withLocations("court-a")),
			testPlayer("b", 4.0, withLocations("court-b")), sa, sb)
		assert.Equal(t, 0.0, c.Location)
	})
}

func TestTimeOverlapRatio(t *testing.T) {
	sc := newTestScorer(nil)
	a := testPlayer("a", 4.0)
	b := testPlayer("b", 4.0)

	t.Run("identical windows", func(t *testing.T) {
		c := scorePair(t, sc, a, b, testSchedule("a", 0, 7200), testSchedule("b", 0, 7200))
		assert.InDelta(t, 1.0, c.TimeOverlap, 1e-9)
	})

	t.Run("partial overlap measured against the shorter window", func(t *testing.T) {
		// 2h window vs 4h window, 1h overlap: ratio 0.5 of the 2h window.
		c := scorePair(t, sc, a, b, testSchedule("a", 0, 7200), testSchedule("b", 3600, 18000))
		assert.InDelta(t, 0.5, c.TimeOverlap, 1e-9)
	})

	t.Run("short window fully inside a long one", func(t *testing.T) {
		c := scorePair(t, sc, a, b, testSchedule("a", 0, 14400), testSchedule("b", 3600, 7200))
		assert.InDelta(t, 1.0, c.TimeOverlap, 1e-9)
	})

	t.Run("disjoint windows", func(t *testing.T) {
		c := scorePair(t, sc, a, b, testSchedule("a", 0, 3600), testSchedule("b", 7200, 10800))
		assert.Equal(t, 0.0, c.TimeOverlap)
	})
}

func TestEngagementBonus(t *testing.T) {
	sc := newTestScorer(nil)
	sa := testSchedule("a", 100, 200)
	sb := testSchedule("b", 100, 200)

	withEngagement := func(score float64) func(*models.Player) {
		return func(p *models.Player) { p.EngagementScore = score }
	}

	c := scorePair(t, sc,
		testPlayer("a", 4.0, withEngagement(50)),
		testPlayer("b", 4.0, withEngagement(100)), sa, sb)
	assert.InDelta(t, 0.75, c.Engagement, 1e-9)

	// Values above the ceiling clamp at 1.0.
	c = scorePair(t, sc,
		testPlayer("a", 4.0, withEngagement(500)),
		testPlayer("b", 4.0, withEngagement(100)), sa, sb)
	assert.InDelta(t, 1.0, c.Engagement, 1e-9)
}

func TestHistoryFactor(t *testing.T) {
	sa := testSchedule("a", 100, 200)
	sb := testSchedule("b", 100, 200)
	a := testPlayer("a", 4.0)
	b := testPlayer("b", 4.0)

	quality := func(q float64) *models.Match {
		return &models.Match{
			GuildID:      "guild-1",
			MatchID:      "m1",
			Players:      []string{"a", "b"},
			MatchType:    models.MatchTypeSingles,
			Status:       models.MatchStatusCompleted,
			QualityScore: &q,
		}
	}

	t.Run("great previous match", func(t *testing.T) {
		sc := newTestScorer(stubHistory{matches: []*models.Match{quality(8.5)}})
		c := scorePair(t, sc, a, b, sa, sb)
		assert.Equal(t, 1.0, c.History)
	})

	t.Run("decent previous match", func(t *testing.T) {
		sc := newTestScorer(stubHistory{matches: []*models.Match{quality(6.0)}})
		c := scorePair(t, sc, a, b, sa, sb)
		assert.Equal(t, 0.5, c.History)
	})

	t.Run("poorly rated match earns nothing", func(t *testing.T) {
		sc := newTestScorer(stubHistory{matches: []*models.Match{quality(4.0)}})
		c := scorePair(t, sc, a, b, sa, sb)
		assert.Equal(t, 0.0, c.History)
	})

	t.Run("history with a different opponent is ignored", func(t *testing.T) {
		m := quality(9.0)
		m.Players = []string{"a", "someone-else"}
		sc := newTestScorer(stubHistory{matches: []*models.Match{m}})
		c := scorePair(t, sc, a, b, sa, sb)
		assert.Equal(t, 0.0, c.History)
	})

	t.Run("lookup failure degrades to zero", func(t *testing.T) {
		sc := newTestScorer(stubHistory{err: errors.New("storage down")})
		c := scorePair(t, sc, a, b, sa, sb)
		assert.Equal(t, 0.0, c.History)
	})
}

func TestScoreIsSymmetricAndBounded(t *testing.T) {
	sc := newTestScorer(nil)
	a := testPlayer("a", 4.0, func(p *models.Player) {
		p.Preferences.Locations = []string{"court-a"}
		p.Preferences.SkillLevels = []string{models.SkillLevelSimilar}
		p.EngagementScore = 40
	})
	b := testPlayer("b", 4.5, func(p *models.Player) {
		p.Preferences.Locations = []string{"court-a", "court-b"}
		p.EngagementScore = 80
	})
	sa := testSchedule("a", 0, 7200)
	sb := testSchedule("b", 3600, 10800)

	ab := scorePair(t, sc, a, b, sa, sb)
	ba := scorePair(t, sc, b, a, sb, sa)

	assert.InDelta(t, ab.Overall, ba.Overall, 1e-9)
	assert.GreaterOrEqual(t, ab.Overall, 0.0)
	assert.LessOrEqual(t, ab.Overall, 1.0)
}

func TestScheduleOverridesShadowProfilePreferences(t *testing.T) {
	sc := newTestScorer(nil)
	a := testPlayer("a", 4.0, func(p *models.Player) {
		p.Preferences.Locations = []string{"court-a"}
	})
	b := testPlayer("b", 4.0, func(p *models.Player) {
		p.Preferences.Locations = []string{"court-b"}
	})
	sa := testSchedule("a", 0, 7200)
	sb := testSchedule("b", 0, 7200)

	// Disjoint profiles score zero on location.
	require.Equal(t, 0.0, scorePair(t, sc, a, b, sa, sb).Location)

	// An override on one window lines the venues up.
	sa.PreferenceOverrides = &models.PreferenceOverrides{Locations: []string{"court-b"}}
	assert.Equal(t, 1.0, scorePair(t, sc, a, b, sa, sb).Location)

	// An explicit empty override drops the constraint entirely.
	sa.PreferenceOverrides = &models.PreferenceOverrides{Locations: []string{}}
	assert.Equal(t, 0.5, scorePair(t, sc, a, b, sa, sb).Location)
}

func TestBuildReasons(t *testing.T) {
	sc := newTestScorer(nil)
	a := testPlayer("a", 4.0, func(p *models.Player) {
		p.Preferences.Locations = []string{"court-a"}
	})
	b := testPlayer("b", 4.0, func(p *models.Player) {
		p.Preferences.Locations = []string{"court-a"}
	})
	c := scorePair(t, sc, a, b, testSchedule("a", 0, 7200), testSchedule("b", 0, 7200))

	assert.Contains(t, c.Reasons, "Excellent skill level match")
	assert.Contains(t, c.Reasons, "Same preferred location")
	assert.Contains(t, c.Reasons, "Perfect time overlap")
	assert.NotContains(t, c.Reasons, "Previous match history")
}
