package application

import (
	"context"

	"github.com/stayflow/booking-saga/internal/inventory/domain"
)

type RoomRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Room, error)
	ListAvailableByPopularity(ctx context.Context) ([]*domain.Room, error)
	IncrementTimesBooked(ctx context.Context, id int64) error
}

// LockRegistry is the short-lived idempotency registry keyed by
// correlation id. PutIfAbsent must be atomic: of two concurrent inserts
// for the same correlation id exactly one reports true.
type LockRegistry interface {
	Contains(ctx context.Context, correlationID string) (bool, error)
	PutIfAbsent(ctx context.Context, correlationID string, roomID int64) (bool, error)
	Delete(ctx context.Context, correlationID string) error
}
