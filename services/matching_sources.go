package services

import (
	"context"
	"errors"

	"github.com/courtmate/matchmaking-system/models"
	"github.com/courtmate/matchmaking-system/repositories"
)

// engineSources adapts the repositories to the read contracts of the matching
// engine. The engine expects "not found" as a nil record with a nil error, so
// the repository sentinels are swallowed here.
type engineSources struct {
	players   repositories.PlayerRepository
	schedules repositories.ScheduleRepository
	courts    repositories.CourtRepository
	matches   repositories.MatchRepository
}

func (s engineSources) GetPlayer(ctx context.Context, guildID, userID string) (*models.Player, error) {
	player, err := s.players.GetPlayer(ctx, guildID, userID)
	if errors.Is(err, repositories.ErrPlayerNotFound) {
		return nil, nil
	}
	return player, err
}

func (s engineSources) GetSchedule(ctx context.Context, guildID, scheduleID string) (*models.Schedule, error) {
	schedule, err := s.schedules.GetSchedule(ctx, guildID, scheduleID)
	if errors.Is(err, repositories.ErrScheduleNotFound) {
		return nil, nil
	}
	return schedule, err
}

func (s engineSources) ListUserSchedules(ctx context.Context, guildID, userID string) ([]*models.Schedule, error) {
	return s.schedules.ListUserSchedules(ctx, guildID, userID)
}

func (s engineSources) ListOverlapping(ctx context.Context, guildID string, start, end int64, excludeUserID string) ([]*models.Schedule, error) {
	return s.schedules.ListOverlapping(ctx, guildID, start, end, excludeUserID)
}

func (s engineSources) GetCourt(ctx context.Context, courtID string) (*models.Court, error) {
	court, err := s.courts.GetCourt(ctx, courtID)
	if errors.Is(err, repositories.ErrCourtNotFound) {
		return nil, nil
	}
	return court, err
}

func (s engineSources) ListCourts(ctx context.Context) ([]*models.Court, error) {
	return s.courts.ListCourts(ctx)
}

func (s engineSources) ListByParticipants(ctx context.Context, guildID string, participantIDs []string) ([]*models.Match, error) {
	return s.matches.ListByParticipants(ctx, guildID, participantIDs)
}

func (s engineSources) ListCompletedForUser(ctx context.Context, guildID, userID string) ([]*models.Match, error) {
	return s.matches.ListCompletedForUser(ctx, guildID, userID)
}
