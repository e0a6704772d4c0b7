package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/courtmate/matchmaking-system/services"
)

const (
	defaultHoursAhead      = 48
	defaultSuggestionLimit = 10
)

type MatchmakingHandler struct {
	matchmaking services.MatchmakingService
}

func NewMatchmakingHandler(matchmaking services.MatchmakingService) *MatchmakingHandler {
	return &MatchmakingHandler{matchmaking: matchmaking}
}

// SuggestionsForMe возвращает ранжированные предложения для текущего игрока.
// Параметры запроса: hours_ahead (горизонт), limit.
func (h *MatchmakingHandler) SuggestionsForMe(w http.ResponseWriter, r *http.Request) {
	guildID, userID, ok := identityFromRequest(w, r)
	if !ok {
		return
	}
	hoursAhead := queryInt(r, "hours_ahead", defaultHoursAhead)
	limit := queryInt(r, "limit", defaultSuggestionLimit)

	suggestions := h.matchmaking.SuggestionsForPlayer(r.Context(), guildID, userID, hoursAhead, limit)

	if err := writeJSON(w, http.StatusOK, jsonResponse{"suggestions": suggestions}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchmakingHandler) SuggestionsForSchedule(w http.ResponseWriter, r *http.Request) {
	guildID, _, ok := identityFromRequest(w, r)
	if !ok {
		return
	}
	scheduleID := chi.URLParam(r, "scheduleID")
	limit := queryInt(r, "limit", defaultSuggestionLimit)

	suggestions := h.matchmaking.SuggestionsForSchedule(r.Context(), guildID, scheduleID, limit)

	if err := writeJSON(w, http.StatusOK, jsonResponse{"suggestions": suggestions}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Propose создаёт приглашение на матч из выбранного предложения.
func (h *MatchmakingHandler) Propose(w http.ResponseWriter, r *http.Request) {
	guildID, _, ok := identityFromRequest(w, r)
	if !ok {
		return
	}

	var input services.ProposeMatchInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	input.GuildID = guildID

	match, err := h.matchmaking.ProposeMatch(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
