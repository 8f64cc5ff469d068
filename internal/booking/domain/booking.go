package domain

import "time"

type BookingStatus string

const (
	StatusPending   BookingStatus = "PENDING"
	StatusConfirmed BookingStatus = "CONFIRMED"
	StatusCancelled BookingStatus = "CANCELLED"
)

// Booking is one reservation attempt. Dates are half-open: the stay
// occupies [StartDate, EndDate).
type Booking struct {
	ID            int64         `json:"id"`
	UserID        int64         `json:"user_id"`
	RoomID        int64         `json:"room_id"`
	CorrelationID string        `json:"correlation_id"`
	StartDate     time.Time     `json:"start_date"`
	EndDate       time.Time     `json:"end_date"`
	Status        BookingStatus `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

func NewBooking(userID, roomID int64, start, end time.Time, correlationID string) *Booking {
	now := time.Now().UTC()
	return &Booking{
		UserID:        userID,
		RoomID:        roomID,
		CorrelationID: correlationID,
		StartDate:     start,
		EndDate:       end,
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Overlaps reports whether [b.StartDate, b.EndDate) intersects [start, end).
func (b *Booking) Overlaps(start, end time.Time) bool {
	return b.StartDate.Before(end) && start.Before(b.EndDate)
}
