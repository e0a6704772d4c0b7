package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/courtmate/matchmaking-system/matching"
	"github.com/courtmate/matchmaking-system/models"
	"github.com/courtmate/matchmaking-system/repositories"
)

// Engagement deltas applied on lifecycle events. Completing a match rewards
// every participant; cancelling costs the player who pulled out.
const (
	engagementCompletedDelta = 10
	engagementCancelledDelta = -5
)

type MatchService interface {
	Get(ctx context.Context, guildID, matchID string) (*models.Match, error)
	ListForUser(ctx context.Context, guildID, userID string) ([]*models.Match, error)
	ListByGuild(ctx context.Context, guildID string, status models.MatchStatus) ([]*models.Match, error)
	// Confirm moves a proposed match to scheduled. Only participants confirm.
	Confirm(ctx context.Context, guildID, matchID, requestingUserID string) (*models.Match, error)
	Cancel(ctx context.Context, guildID, matchID, requestingUserID, reason string) (*models.Match, error)
	Start(ctx context.Context, guildID, matchID string) (*models.Match, error)
	Complete(ctx context.Context, guildID, matchID string, input CompleteMatchInput) (*models.Match, error)
}

type CompleteMatchInput struct {
	Score        *string  `json:"score,omitempty"`
	Winner       *string  `json:"winner,omitempty"`
	QualityScore *float64 `json:"quality_score,omitempty"`
}

type matchService struct {
	matchRepo    repositories.MatchRepository
	scheduleRepo repositories.ScheduleRepository
	playerRepo   repositories.PlayerRepository
	hub          *matching.Hub
	log          *slog.Logger
}

func NewMatchService(matchRepo repositories.MatchRepository, scheduleRepo repositories.ScheduleRepository,
	playerRepo repositories.PlayerRepository, hub *matching.Hub, log *slog.Logger) MatchService {
	return &matchService{
		matchRepo:    matchRepo,
		scheduleRepo: scheduleRepo,
		playerRepo:   playerRepo,
		hub:          hub,
		log:          log,
	}
}

func (s *matchService) Get(ctx context.Context, guildID, matchID string) (*models.Match, error) {
	match, err := s.matchRepo.GetMatch(ctx, guildID, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match %s: %w", matchID, err)
	}
	return match, nil
}

func (s *matchService) ListForUser(ctx context.Context, guildID, userID string) ([]*models.Match, error) {
	matches, err := s.matchRepo.ListForUser(ctx, guildID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches of user %s: %w", userID, err)
	}
	return matches, nil
}

func (s *matchService) ListByGuild(ctx context.Context, guildID string, status models.MatchStatus) ([]*models.Match, error) {
	matches, err := s.matchRepo.ListByGuild(ctx, guildID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches of guild %s: %w", guildID, err)
	}
	return matches, nil
}

func (s *matchService) Confirm(ctx context.Context, guildID, matchID, requestingUserID string) (*models.Match, error) {
	match, err := s.Get(ctx, guildID, matchID)
	if err != nil {
		return nil, err
	}
	if !match.HasPlayer(requestingUserID) {
		return nil, ErrForbiddenOperation
	}
	if err := s.transition(match, models.MatchStatusScheduled); err != nil {
		return nil, err
	}
	if err := s.persist(ctx, match); err != nil {
		return nil, err
	}
	s.broadcast(match)
	return match, nil
}

func (s *matchService) Cancel(ctx context.Context, guildID, matchID, requestingUserID, reason string) (*models.Match, error) {
	match, err := s.Get(ctx, guildID, matchID)
	if err != nil {
		return nil, err
	}
	if !match.HasPlayer(requestingUserID) {
		return nil, ErrForbiddenOperation
	}
	if err := s.transition(match, models.MatchStatusCancelled); err != nil {
		return nil, err
	}
	if reason != "" {
		match.CancelledReason = &reason
	}
	if err := s.persist(ctx, match); err != nil {
		return nil, err
	}

	// Окна участников снова открыты для подбора.
	if err := s.scheduleRepo.ReleaseMatch(ctx, guildID, matchID); err != nil {
		s.log.ErrorContext(ctx, "failed to reopen schedules of cancelled match",
			slog.String("guild_id", guildID), slog.String("match_id", matchID), slog.Any("error", err))
	}
	s.adjustEngagement(ctx, guildID, []string{requestingUserID}, engagementCancelledDelta)

	s.broadcast(match)
	return match, nil
}

func (s *matchService) Start(ctx context.Context, guildID, matchID string) (*models.Match, error) {
	match, err := s.Get(ctx, guildID, matchID)
	if err != nil {
		return nil, err
	}
	if err := s.transition(match, models.MatchStatusInProgress); err != nil {
		return nil, err
	}
	if err := s.persist(ctx, match); err != nil {
		return nil, err
	}
	s.broadcast(match)
	return match, nil
}

func (s *matchService) Complete(ctx context.Context, guildID, matchID string, input CompleteMatchInput) (*models.Match, error) {
	match, err := s.Get(ctx, guildID, matchID)
	if err != nil {
		return nil, err
	}
	if input.Winner != nil && !match.HasPlayer(*input.Winner) {
		return nil, ErrWinnerNotInMatch
	}
	if input.QualityScore != nil && (*input.QualityScore < 0 || *input.QualityScore > 10) {
		return nil, ErrInvalidQualityScore
	}
	if err := s.transition(match, models.MatchStatusCompleted); err != nil {
		return nil, err
	}
	match.Score = input.Score
	match.Winner = input.Winner
	match.QualityScore = input.QualityScore

	if err := s.persist(ctx, match); err != nil {
		return nil, err
	}
	s.adjustEngagement(ctx, guildID, match.Players, engagementCompletedDelta)

	s.broadcast(match)
	return match, nil
}

// transition enforces the lifecycle:
// pending_confirmation -> scheduled -> in_progress -> completed,
// with cancellation allowed until the match has finished.
func (s *matchService) transition(match *models.Match, next models.MatchStatus) error {
	allowed := map[models.MatchStatus][]models.MatchStatus{
		models.MatchStatusPendingConfirmation: {models.MatchStatusScheduled, models.MatchStatusCancelled},
		models.MatchStatusScheduled:           {models.MatchStatusInProgress, models.MatchStatusCompleted, models.MatchStatusCancelled},
		models.MatchStatusInProgress:          {models.MatchStatusCompleted, models.MatchStatusCancelled},
		models.MatchStatusCompleted:           {},
		models.MatchStatusCancelled:           {},
	}
	for _, status := range allowed[match.Status] {
		if status == next {
			match.Status = next
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidMatchTransition, match.Status, next)
}

func (s *matchService) persist(ctx context.Context, match *models.Match) error {
	if err := s.matchRepo.UpdateStatus(ctx, match); err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return ErrMatchNotFound
		}
		return fmt.Errorf("failed to update match %s: %w", match.MatchID, err)
	}
	return nil
}

func (s *matchService) adjustEngagement(ctx context.Context, guildID string, userIDs []string, delta float64) {
	for _, userID := range userIDs {
		if _, err := s.playerRepo.AdjustEngagement(ctx, guildID, userID, delta); err != nil {
			s.log.WarnContext(ctx, "failed to adjust engagement",
				slog.String("guild_id", guildID), slog.String("user_id", userID), slog.Any("error", err))
		}
	}
}

func (s *matchService) broadcast(match *models.Match) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastToGuild(match.GuildID, matching.WebSocketMessage{
		Type:    matching.EventMatchUpdated,
		Payload: match,
	})
}
