package handlers

import (
	"fmt"
	"net/http"

	"github.com/Dosada05/courtsched/middleware"
	"github.com/Dosada05/courtsched/services"
	"github.com/google/uuid"
)

type BookingHandler struct {
	bookingService services.BookingService
}

func NewBookingHandler(bs services.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bs}
}

// CheckAvailability godoc
// @Summary Check whether a court slot is free
// @Tags bookings
// @Produce json
// @Param court_id query string true "Court ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Param start_time query string true "Start (HH:MM)"
// @Param end_time query string true "End (HH:MM)"
// @Success 200 {object} map[string]bool "{\"available\": true}"
// @Failure 400 {object} map[string]string "Invalid slot"
// @Failure 404 {object} map[string]string "Court not found"
// @Failure 429 {object} map[string]string "Rate limited"
// @Router /bookings/availability [get]
func (h *BookingHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	courtID, err := uuid.Parse(q.Get("court_id"))
	if err != nil {
		badRequestResponse(w, r, fmt.Errorf("invalid court_id: %q", q.Get("court_id")))
		return
	}
	start, err := queryTimeOfDay(r, "start_time")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	end, err := queryTimeOfDay(r, "end_time")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	available, err := h.bookingService.CheckAvailability(r.Context(), courtID, q.Get("date"), start, end)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"available": available}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CreateBooking godoc
// @Summary Book a court
// @Tags bookings
// @Accept json
// @Produce json
// @Param body body services.CreateBookingInput true "Slot"
// @Success 201 {object} map[string]interface{} "Booking created"
// @Failure 400 {object} map[string]string "Invalid slot"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Court not found"
// @Failure 409 {object} map[string]interface{} "Overlapping confirmed bookings"
// @Security BearerAuth
// @Router /bookings [post]
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	var input services.CreateBookingInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	booking, err := h.bookingService.CreateBooking(r.Context(), userID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	headers := make(http.Header)
	headers.Set("Location", fmt.Sprintf("/bookings/%s", booking.ID))
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"booking": booking}, headers); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	userID, role, ok := currentUser(w, r)
	if !ok {
		return
	}
	bookingID, err := getUUIDFromURL(r, "bookingID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	booking, err := h.bookingService.GetBooking(r.Context(), userID, role, bookingID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"booking": booking}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CancelBooking godoc
// @Summary Cancel a booking
// @Description The booking is kept with status cancelled and stops blocking the slot.
// @Tags bookings
// @Produce json
// @Param bookingID path string true "Booking ID"
// @Success 200 {object} map[string]interface{} "Cancelled booking"
// @Failure 403 {object} map[string]string "Not the owner"
// @Failure 404 {object} map[string]string "Booking not found"
// @Failure 409 {object} map[string]string "Already cancelled"
// @Security BearerAuth
// @Router /bookings/{bookingID}/cancel [put]
func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	userID, role, ok := currentUser(w, r)
	if !ok {
		return
	}
	bookingID, err := getUUIDFromURL(r, "bookingID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	booking, err := h.bookingService.CancelBooking(r.Context(), userID, role, bookingID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"booking": booking}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *BookingHandler) ListMyBookings(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	bookings, err := h.bookingService.ListUserBookings(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"bookings": bookings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
