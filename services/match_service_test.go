package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtmate/matchmaking-system/models"
)

func pendingMatch(matchID string, players ...string) *models.Match {
	if len(players) == 0 {
		players = []string{"a", "b"}
	}
	return &models.Match{
		GuildID:   "guild-1",
		MatchID:   matchID,
		Players:   models.SortedParticipants(players),
		MatchType: models.MatchTypeSingles,
		Status:    models.MatchStatusPendingConfirmation,
		StartTime: 1000,
		EndTime:   2000,
	}
}

func newMatchFixture(matches ...*models.Match) (MatchService, *fakeMatchRepo, *fakeScheduleRepo, *fakePlayerRepo) {
	matchRepo := newFakeMatchRepo(matches...)
	scheduleRepo := newFakeScheduleRepo()
	playerRepo := newFakePlayerRepo(
		&models.Player{GuildID: "guild-1", UserID: "a"},
		&models.Player{GuildID: "guild-1", UserID: "b"},
	)
	svc := NewMatchService(matchRepo, scheduleRepo, playerRepo, nil, testLogger())
	return svc, matchRepo, scheduleRepo, playerRepo
}

func TestMatchServiceGetUnknown(t *testing.T) {
	svc, _, _, _ := newMatchFixture()
	_, err := svc.Get(context.Background(), "guild-1", "missing")
	assert.ErrorIs(t, err, ErrMatchNotFound)
}

func TestMatchServiceConfirm(t *testing.T) {
	t.Run("participant confirms a pending match", func(t *testing.T) {
		svc, repo, _, _ := newMatchFixture(pendingMatch("m1"))

		match, err := svc.Confirm(context.Background(), "guild-1", "m1", "a")
		require.NoError(t, err)
		assert.Equal(t, models.MatchStatusScheduled, match.Status)
		assert.Equal(t, models.MatchStatusScheduled, repo.matches["m1"].Status)
	})

	t.Run("outsiders cannot confirm", func(t *testing.T) {
		svc, _, _, _ := newMatchFixture(pendingMatch("m1"))

		_, err := svc.Confirm(context.Background(), "guild-1", "m1", "stranger")
		assert.ErrorIs(t, err, ErrForbiddenOperation)
	})

	t.Run("completed matches stay completed", func(t *testing.T) {
		done := pendingMatch("m1")
		done.Status = models.MatchStatusCompleted
		svc, _, _, _ := newMatchFixture(done)

		_, err := svc.Confirm(context.Background(), "guild-1", "m1", "a")
		assert.ErrorIs(t, err, ErrInvalidMatchTransition)
	})
}

func TestMatchServiceCancel(t *testing.T) {
	t.Run("cancellation reopens schedules and costs the canceller", func(t *testing.T) {
		scheduled := pendingMatch("m1")
		scheduled.Status = models.MatchStatusScheduled
		svc, repo, scheduleRepo, playerRepo := newMatchFixture(scheduled)

		match, err := svc.Cancel(context.Background(), "guild-1", "m1", "a", "rain")
		require.NoError(t, err)
		assert.Equal(t, models.MatchStatusCancelled, match.Status)
		require.NotNil(t, match.CancelledReason)
		assert.Equal(t, "rain", *match.CancelledReason)
		assert.Equal(t, models.MatchStatusCancelled, repo.matches["m1"].Status)

		assert.Equal(t, []string{"m1"}, scheduleRepo.releasedMatch)
		assert.Equal(t, []string{"a"}, playerRepo.adjustCalls)
		// Penalty never drives the score negative.
		assert.Equal(t, 0.0, playerRepo.engagement["a"])
	})

	t.Run("only participants cancel", func(t *testing.T) {
		svc, _, _, _ := newMatchFixture(pendingMatch("m1"))

		_, err := svc.Cancel(context.Background(), "guild-1", "m1", "stranger", "")
		assert.ErrorIs(t, err, ErrForbiddenOperation)
	})

	t.Run("cancelled matches cannot be re-cancelled", func(t *testing.T) {
		cancelled := pendingMatch("m1")
		cancelled.Status = models.MatchStatusCancelled
		svc, _, _, _ := newMatchFixture(cancelled)

		_, err := svc.Cancel(context.Background(), "guild-1", "m1", "a", "")
		assert.ErrorIs(t, err, ErrInvalidMatchTransition)
	})
}

func TestMatchServiceStart(t *testing.T) {
	scheduled := pendingMatch("m1")
	scheduled.Status = models.MatchStatusScheduled
	svc, _, _, _ := newMatchFixture(scheduled)

	match, err := svc.Start(context.Background(), "guild-1", "m1")
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusInProgress, match.Status)

	// Pending matches must be confirmed first.
	svc2, _, _, _ := newMatchFixture(pendingMatch("m2"))
	_, err = svc2.Start(context.Background(), "guild-1", "m2")
	assert.ErrorIs(t, err, ErrInvalidMatchTransition)
}

func TestMatchServiceComplete(t *testing.T) {
	inProgress := func() *models.Match {
		m := pendingMatch("m1")
		m.Status = models.MatchStatusInProgress
		return m
	}

	t.Run("records the result and rewards both players", func(t *testing.T) {
		svc, repo, _, playerRepo := newMatchFixture(inProgress())

		score := "6-4 6-2"
		winner := "a"
		quality := 8.5
		match, err := svc.Complete(context.Background(), "guild-1", "m1", CompleteMatchInput{
			Score:        &score,
			Winner:       &winner,
			QualityScore: &quality,
		})
		require.NoError(t, err)
		assert.Equal(t, models.MatchStatusCompleted, match.Status)
		assert.Equal(t, &score, match.Score)
		assert.Equal(t, &winner, match.Winner)
		assert.Equal(t, &quality, match.QualityScore)
		assert.Equal(t, models.MatchStatusCompleted, repo.matches["m1"].Status)

		assert.ElementsMatch(t, []string{"a", "b"}, playerRepo.adjustCalls)
		assert.Equal(t, 10.0, playerRepo.engagement["a"])
		assert.Equal(t, 10.0, playerRepo.engagement["b"])
	})

	t.Run("winner must be a participant", func(t *testing.T) {
		svc, _, _, _ := newMatchFixture(inProgress())

		winner := "stranger"
		_, err := svc.Complete(context.Background(), "guild-1", "m1", CompleteMatchInput{Winner: &winner})
		assert.ErrorIs(t, err, ErrWinnerNotInMatch)
	})

	t.Run("quality score bounded to 0-10", func(t *testing.T) {
		svc, _, _, _ := newMatchFixture(inProgress())

		quality := 11.0
		_, err := svc.Complete(context.Background(), "guild-1", "m1", CompleteMatchInput{QualityScore: &quality})
		assert.ErrorIs(t, err, ErrInvalidQualityScore)
	})

	t.Run("scheduled matches may complete directly", func(t *testing.T) {
		scheduled := pendingMatch("m1")
		scheduled.Status = models.MatchStatusScheduled
		svc, _, _, _ := newMatchFixture(scheduled)

		match, err := svc.Complete(context.Background(), "guild-1", "m1", CompleteMatchInput{})
		require.NoError(t, err)
		assert.Equal(t, models.MatchStatusCompleted, match.Status)
	})
}
