package application

import (
	"context"
	"time"

	"github.com/stayflow/booking-saga/internal/booking/domain"
)

// ConflictDetector answers whether a date range collides with committed
// bookings. Only CONFIRMED bookings count; PENDING and CANCELLED rows
// never block.
type ConflictDetector struct {
	repo BookingRepository
}

func NewConflictDetector(repo BookingRepository) *ConflictDetector {
	return &ConflictDetector{repo: repo}
}

// Conflicts lists the committed bookings overlapping [start, end) on the
// room, skipping excludeID (0 skips nothing).
func (d *ConflictDetector) Conflicts(ctx context.Context, roomID int64, start, end time.Time, excludeID int64) ([]*domain.Booking, error) {
	return d.repo.FindConfirmedOverlapping(ctx, roomID, start, end, excludeID)
}

func (d *ConflictDetector) HasConflict(ctx context.Context, roomID int64, start, end time.Time, excludeID int64) (bool, error) {
	conflicts, err := d.Conflicts(ctx, roomID, start, end, excludeID)
	if err != nil {
		return false, err
	}
	return len(conflicts) > 0, nil
}
