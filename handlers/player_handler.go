package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/courtmate/matchmaking-system/middleware"
	"github.com/courtmate/matchmaking-system/models"
	"github.com/courtmate/matchmaking-system/services"
)

type PlayerHandler struct {
	playerService services.PlayerService
}

func NewPlayerHandler(playerService services.PlayerService) *PlayerHandler {
	return &PlayerHandler{playerService: playerService}
}

func (h *PlayerHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	guildID, err := middleware.GetGuildIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	userID := chi.URLParam(r, "userID")

	player, err := h.playerService.GetProfile(r.Context(), guildID, userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"player": player}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PlayerHandler) ListGuildPlayers(w http.ResponseWriter, r *http.Request) {
	guildID, err := middleware.GetGuildIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	players, err := h.playerService.ListGuildPlayers(r.Context(), guildID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"players": players}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateProfile изменяет профиль текущего игрока (из токена).
func (h *PlayerHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	guildID, userID, ok := identityFromRequest(w, r)
	if !ok {
		return
	}

	var input services.UpdateProfileInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	player, err := h.playerService.UpdateProfile(r.Context(), guildID, userID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"player": player}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PlayerHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	guildID, userID, ok := identityFromRequest(w, r)
	if !ok {
		return
	}

	var prefs models.Preferences
	if err := readJSON(w, r, &prefs); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	player, err := h.playerService.UpdatePreferences(r.Context(), guildID, userID, prefs)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"player": player}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// identityFromRequest достаёт гильдию и пользователя из claims токена,
// отвечая 401 при любой проблеме.
func identityFromRequest(w http.ResponseWriter, r *http.Request) (guildID, userID string, ok bool) {
	guildID, err := middleware.GetGuildIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return "", "", false
	}
	userID, err = middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return "", "", false
	}
	return guildID, userID, true
}
