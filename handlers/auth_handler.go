package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/courtmate/matchmaking-system/middleware"
	"github.com/courtmate/matchmaking-system/services"
)

type AuthHandler struct {
	authService services.AuthService
	auth        *middleware.Auth
}

func NewAuthHandler(authService services.AuthService, auth *middleware.Auth) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		auth:        auth,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input services.RegisterInput

	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if input.GuildID == "" || input.UserID == "" || input.Email == "" || input.Password == "" {
		badRequestResponse(w, r, errors.New("guild_id, user_id, email, and password are required"))
		return
	}

	player, err := h.authService.Register(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	token, err := h.auth.CreateToken(player)
	if err != nil {
		serverErrorResponse(w, r, fmt.Errorf("failed to sign token: %w", err))
		return
	}

	response := jsonResponse{
		"player": player,
		"token":  token,
	}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		GuildID  string `json:"guild_id"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if input.GuildID == "" || input.Email == "" || input.Password == "" {
		badRequestResponse(w, r, errors.New("guild_id, email, and password are required"))
		return
	}

	player, err := h.authService.Login(r.Context(), services.LoginInput{
		GuildID:  input.GuildID,
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	token, err := h.auth.CreateToken(player)
	if err != nil {
		serverErrorResponse(w, r, fmt.Errorf("failed to sign token: %w", err))
		return
	}

	response := jsonResponse{
		"player": player,
		"token":  token,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
