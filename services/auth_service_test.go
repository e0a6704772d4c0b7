package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtmate/matchmaking-system/models"
)

func registerInput() RegisterInput {
	return RegisterInput{
		GuildID:    "guild-1",
		UserID:     "u1",
		Username:   "serena",
		Email:      "Serena@Example.com",
		Password:   "topspin-slice",
		Gender:     models.GenderFemale,
		NTRPRating: 4.5,
	}
}

func TestAuthServiceRegister(t *testing.T) {
	t.Run("registers and strips the hash", func(t *testing.T) {
		repo := newFakePlayerRepo()
		svc := NewAuthService(repo)

		player, err := svc.Register(context.Background(), registerInput())
		require.NoError(t, err)
		assert.Equal(t, "serena@example.com", player.Email, "email normalized")
		assert.Equal(t, models.RolePlayer, player.Role)
		assert.Empty(t, player.PasswordHash)

		// Хеш остаётся в хранилище.
		assert.NotEmpty(t, repo.players["u1"].PasswordHash)
		assert.NotEqual(t, "topspin-slice", repo.players["u1"].PasswordHash)
	})

	t.Run("short password", func(t *testing.T) {
		svc := NewAuthService(newFakePlayerRepo())
		input := registerInput()
		input.Password = "short"
		_, err := svc.Register(context.Background(), input)
		assert.ErrorIs(t, err, ErrPasswordTooShort)
	})

	t.Run("rating outside the NTRP scale", func(t *testing.T) {
		svc := NewAuthService(newFakePlayerRepo())
		input := registerInput()
		input.NTRPRating = 8.0
		_, err := svc.Register(context.Background(), input)
		assert.ErrorIs(t, err, ErrInvalidNTRPRating)
	})

	t.Run("blank username", func(t *testing.T) {
		svc := NewAuthService(newFakePlayerRepo())
		input := registerInput()
		input.Username = "   "
		_, err := svc.Register(context.Background(), input)
		assert.ErrorIs(t, err, ErrUsernameRequired)
	})

	t.Run("duplicate registration", func(t *testing.T) {
		repo := newFakePlayerRepo()
		svc := NewAuthService(repo)

		_, err := svc.Register(context.Background(), registerInput())
		require.NoError(t, err)

		_, err = svc.Register(context.Background(), registerInput())
		assert.ErrorIs(t, err, ErrPlayerConflict)
	})

	t.Run("email already taken", func(t *testing.T) {
		repo := newFakePlayerRepo()
		svc := NewAuthService(repo)

		_, err := svc.Register(context.Background(), registerInput())
		require.NoError(t, err)

		input := registerInput()
		input.UserID = "u2"
		_, err = svc.Register(context.Background(), input)
		assert.ErrorIs(t, err, ErrEmailConflict)
	})
}

func TestAuthServiceLogin(t *testing.T) {
	repo := newFakePlayerRepo()
	svc := NewAuthService(repo)
	_, err := svc.Register(context.Background(), registerInput())
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		player, err := svc.Login(context.Background(), LoginInput{
			GuildID:  "guild-1",
			Email:    "serena@example.com",
			Password: "topspin-slice",
		})
		require.NoError(t, err)
		assert.Equal(t, "u1", player.UserID)
		assert.Empty(t, player.PasswordHash)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(context.Background(), LoginInput{
			GuildID:  "guild-1",
			Email:    "serena@example.com",
			Password: "wrong-password",
		})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(context.Background(), LoginInput{
			GuildID:  "guild-1",
			Email:    "nobody@example.com",
			Password: "topspin-slice",
		})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}
