package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/courtmate/matchmaking-system/services"
)

type ScheduleHandler struct {
	scheduleService services.ScheduleService
}

func NewScheduleHandler(scheduleService services.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduleService: scheduleService}
}

func (h *ScheduleHandler) Create(w http.ResponseWriter, r *http.Request) {
	guildID, userID, ok := identityFromRequest(w, r)
	if !ok {
		return
	}

	var input services.CreateScheduleInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	// Гильдия и владелец всегда берутся из токена.
	input.GuildID = guildID
	input.UserID = userID

	schedule, err := h.scheduleService.Create(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"schedule": schedule}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ScheduleHandler) Get(w http.ResponseWriter, r *http.Request) {
	guildID, _, ok := identityFromRequest(w, r)
	if !ok {
		return
	}
	scheduleID := chi.URLParam(r, "scheduleID")

	schedule, err := h.scheduleService.Get(r.Context(), guildID, scheduleID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"schedule": schedule}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ScheduleHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	guildID, userID, ok := identityFromRequest(w, r)
	if !ok {
		return
	}

	schedules, err := h.scheduleService.ListForUser(r.Context(), guildID, userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"schedules": schedules}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ScheduleHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	guildID, userID, ok := identityFromRequest(w, r)
	if !ok {
		return
	}
	scheduleID := chi.URLParam(r, "scheduleID")

	if err := h.scheduleService.Cancel(r.Context(), guildID, scheduleID, userID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Clear снимает все открытые окна текущего игрока одним запросом.
func (h *ScheduleHandler) Clear(w http.ResponseWriter, r *http.Request) {
	guildID, userID, ok := identityFromRequest(w, r)
	if !ok {
		return
	}

	cancelled, err := h.scheduleService.ClearUserSchedules(r.Context(), guildID, userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"cancelled": cancelled}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
