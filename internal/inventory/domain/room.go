package domain

import "errors"

var ErrRoomNotFound = errors.New("room not found")

// Room is the inventory authority's view of a bookable room.
// TimesBooked counts successful availability confirmations and drives
// recommendation ordering; Version is the optimistic concurrency token.
type Room struct {
	ID          int64  `json:"id"`
	Number      string `json:"number"`
	Available   bool   `json:"available"`
	TimesBooked int    `json:"times_booked"`
	Version     int64  `json:"-"`
}
