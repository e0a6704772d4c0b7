package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/courtmate/matchmaking-system/models"
	"github.com/courtmate/matchmaking-system/services"
)

type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(matchService services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: matchService}
}

func (h *MatchHandler) Get(w http.ResponseWriter, r *http.Request) {
	guildID, _, ok := identityFromRequest(w, r)
	if !ok {
		return
	}
	matchID := chi.URLParam(r, "matchID")

	match, err := h.matchService.Get(r.Context(), guildID, matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	guildID, userID, ok := identityFromRequest(w, r)
	if !ok {
		return
	}

	matches, err := h.matchService.ListForUser(r.Context(), guildID, userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) ListGuild(w http.ResponseWriter, r *http.Request) {
	guildID, _, ok := identityFromRequest(w, r)
	if !ok {
		return
	}
	status := models.MatchStatus(r.URL.Query().Get("status"))

	matches, err := h.matchService.ListByGuild(r.Context(), guildID, status)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	guildID, userID, ok := identityFromRequest(w, r)
	if !ok {
		return
	}
	matchID := chi.URLParam(r, "matchID")

	match, err := h.matchService.Confirm(r.Context(), guildID, matchID, userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	guildID, userID, ok := identityFromRequest(w, r)
	if !ok {
		return
	}
	matchID := chi.URLParam(r, "matchID")

	var input struct {
		Reason string `json:"reason"`
	}
	// Тело опционально: отмена без причины допустима.
	_ = readJSON(w, r, &input)

	match, err := h.matchService.Cancel(r.Context(), guildID, matchID, userID, input.Reason)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) Start(w http.ResponseWriter, r *http.Request) {
	guildID, _, ok := identityFromRequest(w, r)
	if !ok {
		return
	}
	matchID := chi.URLParam(r, "matchID")

	match, err := h.matchService.Start(r.Context(), guildID, matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) Complete(w http.ResponseWriter, r *http.Request) {
	guildID, _, ok := identityFromRequest(w, r)
	if !ok {
		return
	}
	matchID := chi.URLParam(r, "matchID")

	var input services.CompleteMatchInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.Complete(r.Context(), guildID, matchID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
