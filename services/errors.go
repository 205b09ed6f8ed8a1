package services

import "errors"

// Errors shared by the services and mapped to HTTP statuses by the handlers.
var (
	ErrValidationFailed   = errors.New("validation failed")
	ErrForbiddenOperation = errors.New("operation not allowed for the current user")

	ErrCourtNotFound    = errors.New("court not found")
	ErrBookingNotFound  = errors.New("booking not found")
	ErrScheduleNotFound = errors.New("schedule not found")

	ErrBookingOverlap          = errors.New("court is already booked for an overlapping time")
	ErrBookingAlreadyCancelled = errors.New("booking is already cancelled")
	ErrScheduleHasConflicts    = errors.New("schedule has court conflicts")
	ErrScheduleDuplicateMatch  = errors.New("schedule contains the same match id twice")

	ErrSchedulerUnavailable  = errors.New("scheduling service unavailable")
	ErrSchedulerUnauthorized = errors.New("scheduling service rejected the session")
	ErrSchedulerRejected     = errors.New("scheduling service rejected the request")
)
