package domain

import "time"

// BookingCreated is emitted before the booking id is assigned; the
// correlation id identifies the attempt.
type BookingCreated struct {
	UserID        int64     `json:"user_id"`
	RoomID        int64     `json:"room_id"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	CorrelationID string    `json:"correlation_id"`
}

type BookingConfirmed struct {
	BookingID     int64  `json:"booking_id"`
	RoomID        int64  `json:"room_id"`
	CorrelationID string `json:"correlation_id"`
}

type BookingCancelled struct {
	BookingID     int64  `json:"booking_id"`
	RoomID        int64  `json:"room_id"`
	CorrelationID string `json:"correlation_id"`
	Reason        string `json:"reason"`
}
