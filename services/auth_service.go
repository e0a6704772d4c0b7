package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/courtmate/matchmaking-system/models"
	"github.com/courtmate/matchmaking-system/repositories"
)

const minPasswordLength = 8

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*models.Player, error)
	Login(ctx context.Context, input LoginInput) (*models.Player, error)
}

type RegisterInput struct {
	GuildID    string             `json:"guild_id"`
	UserID     string             `json:"user_id"`
	Username   string             `json:"username"`
	Email      string             `json:"email"`
	Password   string             `json:"password"`
	Gender     models.Gender      `json:"gender"`
	NTRPRating float64            `json:"ntrp_rating"`
	Prefs      models.Preferences `json:"preferences"`
}

type LoginInput struct {
	GuildID  string
	Email    string
	Password string
}

type authService struct {
	playerRepo repositories.PlayerRepository
}

func NewAuthService(playerRepo repositories.PlayerRepository) AuthService {
	return &authService{playerRepo: playerRepo}
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*models.Player, error) {
	if err := validateRegisterInput(input); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("ошибка хеширования пароля: %w", err)
	}

	player := &models.Player{
		GuildID:      input.GuildID,
		UserID:       input.UserID,
		Username:     strings.TrimSpace(input.Username),
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		PasswordHash: string(hashedPassword),
		Role:         models.RolePlayer,
		Gender:       input.Gender,
		NTRPRating:   input.NTRPRating,
		Preferences:  input.Prefs,
	}

	if err := s.playerRepo.Create(ctx, player); err != nil {
		switch {
		case errors.Is(err, repositories.ErrPlayerConflict):
			return nil, ErrPlayerConflict
		case errors.Is(err, repositories.ErrPlayerEmailConflict):
			return nil, ErrEmailConflict
		}
		return nil, fmt.Errorf("ошибка создания игрока: %w", err)
	}

	player.PasswordHash = ""
	return player, nil
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*models.Player, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	player, err := s.playerRepo.GetByEmail(ctx, input.GuildID, email)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find player by email: %w", err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(player.PasswordHash), []byte(input.Password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to compare password hash: %w", err)
	}

	player.PasswordHash = ""
	return player, nil
}

func validateRegisterInput(input RegisterInput) error {
	if input.GuildID == "" || input.UserID == "" || input.Email == "" {
		return ErrValidationFailed
	}
	if strings.TrimSpace(input.Username) == "" {
		return ErrUsernameRequired
	}
	if len(input.Password) < minPasswordLength {
		return ErrPasswordTooShort
	}
	if input.NTRPRating < models.NTRPMin || input.NTRPRating > models.NTRPMax {
		return ErrInvalidNTRPRating
	}
	return nil
}
