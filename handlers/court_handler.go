package handlers

import (
	"fmt"
	"net/http"

	"github.com/Dosada05/courtsched/services"
	"github.com/google/uuid"
)

type CourtHandler struct {
	courtService   services.CourtService
	bookingService services.BookingService
}

func NewCourtHandler(cs services.CourtService, bs services.BookingService) *CourtHandler {
	return &CourtHandler{
		courtService:   cs,
		bookingService: bs,
	}
}

// CreateCourt godoc
// @Summary Create a court
// @Tags courts
// @Accept json
// @Produce json
// @Param body body services.CreateCourtInput true "Court"
// @Success 201 {object} map[string]interface{} "Court created"
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 403 {object} map[string]string "Admin only"
// @Failure 409 {object} map[string]string "Name already used in the club"
// @Security BearerAuth
// @Router /courts [post]
func (h *CourtHandler) CreateCourt(w http.ResponseWriter, r *http.Request) {
	var input services.CreateCourtInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	court, err := h.courtService.CreateCourt(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"court": court}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListCourts godoc
// @Summary List courts
// @Tags courts
// @Produce json
// @Param club_id query string false "Club ID"
// @Success 200 {object} map[string]interface{} "Courts"
// @Router /courts [get]
func (h *CourtHandler) ListCourts(w http.ResponseWriter, r *http.Request) {
	var clubID *uuid.UUID
	if raw := r.URL.Query().Get("club_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			badRequestResponse(w, r, fmt.Errorf("invalid club_id: %q", raw))
			return
		}
		clubID = &id
	}

	courts, err := h.courtService.ListCourts(r.Context(), clubID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"courts": courts}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CourtHandler) GetCourt(w http.ResponseWriter, r *http.Request) {
	courtID, err := getUUIDFromURL(r, "courtID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	court, err := h.courtService.GetCourt(r.Context(), courtID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"court": court}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListCourtBookings godoc
// @Summary Bookings of a court on one day
// @Description Returns every booking of the court on the date, cancelled ones included.
// @Tags courts
// @Produce json
// @Param courtID path string true "Court ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} map[string]interface{} "Bookings"
// @Failure 400 {object} map[string]string "Invalid date"
// @Failure 404 {object} map[string]string "Court not found"
// @Router /courts/{courtID}/bookings [get]
func (h *CourtHandler) ListCourtBookings(w http.ResponseWriter, r *http.Request) {
	courtID, err := getUUIDFromURL(r, "courtID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	bookings, err := h.bookingService.ListCourtBookings(r.Context(), courtID, r.URL.Query().Get("date"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"bookings": bookings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
