package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/courtmate/matchmaking-system/models"
	"github.com/courtmate/matchmaking-system/repositories"
)

type PlayerService interface {
	GetProfile(ctx context.Context, guildID, userID string) (*models.Player, error)
	ListGuildPlayers(ctx context.Context, guildID string) ([]*models.Player, error)
	UpdateProfile(ctx context.Context, guildID, userID string, input UpdateProfileInput) (*models.Player, error)
	UpdatePreferences(ctx context.Context, guildID, userID string, prefs models.Preferences) (*models.Player, error)
	AdjustEngagement(ctx context.Context, guildID, userID string, delta float64) (float64, error)
}

type UpdateProfileInput struct {
	Username   *string        `json:"username,omitempty"`
	Gender     *models.Gender `json:"gender,omitempty"`
	NTRPRating *float64       `json:"ntrp_rating,omitempty"`
}

type playerService struct {
	playerRepo repositories.PlayerRepository
}

func NewPlayerService(playerRepo repositories.PlayerRepository) PlayerService {
	return &playerService{playerRepo: playerRepo}
}

func (s *playerService) GetProfile(ctx context.Context, guildID, userID string) (*models.Player, error) {
	player, err := s.playerRepo.GetPlayer(ctx, guildID, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player %s: %w", userID, err)
	}
	player.PasswordHash = ""
	return player, nil
}

func (s *playerService) ListGuildPlayers(ctx context.Context, guildID string) ([]*models.Player, error) {
	players, err := s.playerRepo.ListByGuild(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list players of guild %s: %w", guildID, err)
	}
	for _, p := range players {
		p.PasswordHash = ""
	}
	return players, nil
}

// UpdateProfile applies the non-nil fields of input to the profile. Rating
// changes are bounded to the NTRP scale.
func (s *playerService) UpdateProfile(ctx context.Context, guildID, userID string, input UpdateProfileInput) (*models.Player, error) {
	player, err := s.playerRepo.GetPlayer(ctx, guildID, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player %s: %w", userID, err)
	}

	if input.Username != nil {
		username := strings.TrimSpace(*input.Username)
		if username == "" {
			return nil, ErrUsernameRequired
		}
		player.Username = username
	}
	if input.Gender != nil {
		player.Gender = *input.Gender
	}
	if input.NTRPRating != nil {
		if *input.NTRPRating < models.NTRPMin || *input.NTRPRating > models.NTRPMax {
			return nil, ErrInvalidNTRPRating
		}
		player.NTRPRating = *input.NTRPRating
	}

	if err := s.playerRepo.UpdateProfile(ctx, player); err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to update player %s: %w", userID, err)
	}
	player.PasswordHash = ""
	return player, nil
}

func (s *playerService) UpdatePreferences(ctx context.Context, guildID, userID string, prefs models.Preferences) (*models.Player, error) {
	if err := validatePreferences(prefs); err != nil {
		return nil, err
	}
	if err := s.playerRepo.UpdatePreferences(ctx, guildID, userID, prefs); err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to update preferences of player %s: %w", userID, err)
	}
	return s.GetProfile(ctx, guildID, userID)
}

func (s *playerService) AdjustEngagement(ctx context.Context, guildID, userID string, delta float64) (float64, error) {
	score, err := s.playerRepo.AdjustEngagement(ctx, guildID, userID, delta)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return 0, ErrPlayerNotFound
		}
		return 0, fmt.Errorf("failed to adjust engagement of player %s: %w", userID, err)
	}
	return score, nil
}

func validatePreferences(prefs models.Preferences) error {
	for _, level := range prefs.SkillLevels {
		switch level {
		case models.SkillLevelSimilar, models.SkillLevelAbove, models.SkillLevelBelow, models.SkillLevelAny:
		default:
			return fmt.Errorf("%w: unknown skill level preference %q", ErrValidationFailed, level)
		}
	}
	for _, g := range prefs.Genders {
		switch models.Gender(g) {
		case models.GenderMale, models.GenderFemale, models.GenderOther, "none":
		default:
			return fmt.Errorf("%w: unknown gender preference %q", ErrValidationFailed, g)
		}
	}
	return nil
}
