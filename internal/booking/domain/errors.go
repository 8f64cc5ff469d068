package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrBookingConflict = errors.New("booking conflict")
	ErrBookingNotFound = errors.New("booking not found")
	ErrRoomUnavailable = errors.New("room not available")
	ErrNoRoomAvailable = errors.New("no available rooms found")
)

// Remote call outcomes from the hotel service.
var (
	ErrUnauthorized       = errors.New("authentication error with hotel service")
	ErrForbidden          = errors.New("access denied by hotel service")
	ErrRoomRejected       = errors.New("request rejected by hotel service")
	ErrServiceUnavailable = errors.New("hotel service temporarily unavailable")
)

// ConflictError wraps ErrBookingConflict with the number of committed
// bookings that overlap the requested dates.
func ConflictError(count int) error {
	return fmt.Errorf("%w: room is already booked for selected dates: %d conflicting booking(s)", ErrBookingConflict, count)
}
