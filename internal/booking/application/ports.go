package application

import (
	"context"
	"time"

	"github.com/stayflow/booking-saga/internal/booking/domain"
)

type BookingRepository interface {
	// CreateWithOutbox persists the booking and its outbox event in one
	// transaction and assigns the booking id.
	CreateWithOutbox(ctx context.Context, b *domain.Booking, eventType string, payload []byte, traceparent string) error
	UpdateStatusWithOutbox(ctx context.Context, id int64, status domain.BookingStatus, eventType string, payload []byte, traceparent string) error
	GetByIDAndUser(ctx context.Context, id, userID int64) (*domain.Booking, error)
	ListByUser(ctx context.Context, userID int64) ([]*domain.Booking, error)
	// FindConfirmedOverlapping returns CONFIRMED bookings on roomID whose
	// [start_date, end_date) intersects [start, end), skipping excludeID.
	FindConfirmedOverlapping(ctx context.Context, roomID int64, start, end time.Time, excludeID int64) ([]*domain.Booking, error)
	CancelStalePending(ctx context.Context, olderThan time.Duration) ([]int64, error)
}

// DateRange travels with the remote confirm call; CorrelationID makes
// retried confirms idempotent on the hotel side.
type DateRange struct {
	Start         time.Time
	End           time.Time
	CorrelationID string
}

type RoomSummary struct {
	ID          int64  `json:"id"`
	Number      string `json:"number"`
	TimesBooked int    `json:"times_booked"`
}

type HotelClient interface {
	ConfirmAvailability(ctx context.Context, roomID int64, rng DateRange) (bool, error)
	ReleaseLock(ctx context.Context, roomID int64, correlationID string) error
	RecommendedRooms(ctx context.Context) ([]RoomSummary, error)
}
