package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/courtmate/matchmaking-system/models"
	"github.com/courtmate/matchmaking-system/repositories"
)

type ScheduleService interface {
	Create(ctx context.Context, input CreateScheduleInput) (*models.Schedule, error)
	Get(ctx context.Context, guildID, scheduleID string) (*models.Schedule, error)
	ListForUser(ctx context.Context, guildID, userID string) ([]*models.Schedule, error)
	Cancel(ctx context.Context, guildID, scheduleID, requestingUserID string) error
	// ClearUserSchedules cancels every open availability window of the user and
	// returns how many were cancelled.
	ClearUserSchedules(ctx context.Context, guildID, userID string) (int64, error)
}

type CreateScheduleInput struct {
	GuildID   string                      `json:"guild_id"`
	UserID    string                      `json:"user_id"`
	StartTime int64                       `json:"start_time"`
	EndTime   int64                       `json:"end_time"`
	Overrides *models.PreferenceOverrides `json:"preference_overrides,omitempty"`
}

type scheduleService struct {
	scheduleRepo repositories.ScheduleRepository
	playerRepo   repositories.PlayerRepository
	now          func() time.Time
}

func NewScheduleService(scheduleRepo repositories.ScheduleRepository, playerRepo repositories.PlayerRepository) ScheduleService {
	return &scheduleService{
		scheduleRepo: scheduleRepo,
		playerRepo:   playerRepo,
		now:          time.Now,
	}
}

func (s *scheduleService) Create(ctx context.Context, input CreateScheduleInput) (*models.Schedule, error) {
	if input.GuildID == "" || input.UserID == "" {
		return nil, ErrValidationFailed
	}
	if input.EndTime <= input.StartTime {
		return nil, ErrInvalidTimeRange
	}
	if input.StartTime <= s.now().Unix() {
		return nil, ErrScheduleInPast
	}

	// Владелец должен существовать: окно без профиля бесполезно для подбора.
	if _, err := s.playerRepo.GetPlayer(ctx, input.GuildID, input.UserID); err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to verify schedule owner: %w", err)
	}

	schedule := &models.Schedule{
		GuildID:             input.GuildID,
		ScheduleID:          newID("sch"),
		UserID:              input.UserID,
		StartTime:           input.StartTime,
		EndTime:             input.EndTime,
		Status:              models.ScheduleStatusOpen,
		PreferenceOverrides: input.Overrides,
	}

	if err := s.scheduleRepo.Create(ctx, schedule); err != nil {
		if errors.Is(err, repositories.ErrSchedulePlayerInvalid) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to create schedule: %w", err)
	}
	return schedule, nil
}

func (s *scheduleService) Get(ctx context.Context, guildID, scheduleID string) (*models.Schedule, error) {
	schedule, err := s.scheduleRepo.GetSchedule(ctx, guildID, scheduleID)
	if err != nil {
		if errors.Is(err, repositories.ErrScheduleNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, fmt.Errorf("failed to get schedule %s: %w", scheduleID, err)
	}
	return schedule, nil
}

func (s *scheduleService) ListForUser(ctx context.Context, guildID, userID string) ([]*models.Schedule, error) {
	schedules, err := s.scheduleRepo.ListUserSchedules(ctx, guildID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules of user %s: %w", userID, err)
	}
	return schedules, nil
}

func (s *scheduleService) Cancel(ctx context.Context, guildID, scheduleID, requestingUserID string) error {
	schedule, err := s.Get(ctx, guildID, scheduleID)
	if err != nil {
		return err
	}
	if schedule.UserID != requestingUserID {
		return ErrForbiddenOperation
	}
	if schedule.Status != models.ScheduleStatusOpen {
		return ErrScheduleNotOpen
	}

	if err := s.scheduleRepo.UpdateStatus(ctx, guildID, scheduleID, models.ScheduleStatusCancelled); err != nil {
		if errors.Is(err, repositories.ErrScheduleNotFound) {
			return ErrScheduleNotFound
		}
		return fmt.Errorf("failed to cancel schedule %s: %w", scheduleID, err)
	}
	return nil
}

func (s *scheduleService) ClearUserSchedules(ctx context.Context, guildID, userID string) (int64, error) {
	cancelled, err := s.scheduleRepo.CancelAllOpenForUser(ctx, guildID, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear schedules of user %s: %w", userID, err)
	}
	return cancelled, nil
}
