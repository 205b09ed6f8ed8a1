package handlers

import (
	"fmt"
	"net/http"

	"github.com/Dosada05/courtsched/algorithms"
	"github.com/Dosada05/courtsched/middleware"
	"github.com/Dosada05/courtsched/services"
)

type ScheduleHandler struct {
	scheduleService services.ScheduleService
}

func NewScheduleHandler(ss services.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduleService: ss}
}

// GenerateSchedule godoc
// @Summary Generate a draft schedule
// @Description Forwards the caller's token to the scheduling service and returns its draft with a locally computed report.
// @Tags schedules
// @Accept json
// @Produce json
// @Param body body services.GenerateInput true "Matches and courts to schedule"
// @Success 200 {object} services.Review
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 502 {object} map[string]string "Scheduling service rejected the request"
// @Failure 503 {object} map[string]string "Scheduling service unavailable"
// @Security BearerAuth
// @Router /schedules/generate [post]
func (h *ScheduleHandler) GenerateSchedule(w http.ResponseWriter, r *http.Request) {
	token, ok := middleware.GetTokenFromContext(r.Context())
	if !ok {
		unauthorizedResponse(w, r, "missing session token")
		return
	}

	var input services.GenerateInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	review, err := h.scheduleService.Generate(r.Context(), algorithms.Session{Token: token}, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, review, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// EvaluateSchedule godoc
// @Summary Re-evaluate an edited draft
// @Tags schedules
// @Accept json
// @Produce json
// @Param body body services.EvaluateInput true "Draft"
// @Success 200 {object} services.Review
// @Failure 400 {object} map[string]string "Invalid draft"
// @Router /schedules/evaluate [post]
func (h *ScheduleHandler) EvaluateSchedule(w http.ResponseWriter, r *http.Request) {
	var input services.EvaluateInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	review, err := h.scheduleService.Evaluate(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, review, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SaveSchedule godoc
// @Summary Approve and store a schedule
// @Description Drafts with court conflicts are refused with the report. Rest violations are allowed.
// @Tags schedules
// @Accept json
// @Produce json
// @Param body body services.SaveInput true "Approved draft"
// @Success 201 {object} services.ScheduleView
// @Failure 400 {object} map[string]string "Invalid draft"
// @Failure 409 {object} map[string]interface{} "Court conflicts"
// @Security BearerAuth
// @Router /schedules [post]
func (h *ScheduleHandler) SaveSchedule(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	var input services.SaveInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.scheduleService.Save(r.Context(), userID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	headers := make(http.Header)
	headers.Set("Location", fmt.Sprintf("/schedules/%s", view.Schedule.ID))
	if err := writeJSON(w, http.StatusCreated, view, headers); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ScheduleHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	scheduleID, err := getUUIDFromURL(r, "scheduleID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.scheduleService.GetSchedule(r.Context(), scheduleID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, view, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetScheduleCalendar godoc
// @Summary Export a schedule as iCalendar
// @Tags schedules
// @Produce text/calendar
// @Param scheduleID path string true "Schedule ID"
// @Success 200 {string} string "VCALENDAR document"
// @Failure 404 {object} map[string]string "Schedule not found"
// @Router /schedules/{scheduleID}/calendar.ics [get]
func (h *ScheduleHandler) GetScheduleCalendar(w http.ResponseWriter, r *http.Request) {
	scheduleID, err := getUUIDFromURL(r, "scheduleID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	ics, err := h.scheduleService.Calendar(r.Context(), scheduleID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="schedule-%s.ics"`, scheduleID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(ics))
}

func (h *ScheduleHandler) ListTournamentSchedules(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	schedules, err := h.scheduleService.ListTournamentSchedules(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"schedules": schedules}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
