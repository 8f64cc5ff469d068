package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/stayflow/booking-saga/internal/inventory/domain"
)

// Service is the availability ledger. Confirm keeps a temporary lock
// per correlation id so that retried confirms replay instead of
// double-counting popularity.
type Service struct {
	log   *slog.Logger
	rooms RoomRepository
	locks LockRegistry
}

func NewService(log *slog.Logger, rooms RoomRepository, locks LockRegistry) *Service {
	return &Service{log: log, rooms: rooms, locks: locks}
}

// ConfirmAndLock answers whether the room can be held for this attempt.
// Internal failures surface as a plain false: the caller cannot tell
// them apart from genuine unavailability and must not retry on false.
func (s *Service) ConfirmAndLock(ctx context.Context, roomID int64, correlationID string) bool {
	seen, err := s.locks.Contains(ctx, correlationID)
	if err != nil {
		s.log.Error("lock registry lookup failed", "correlation_id", correlationID, "err", err)
		return false
	}
	if seen {
		s.log.Info("confirm replayed", "room_id", roomID, "correlation_id", correlationID)
		return true
	}

	room, err := s.rooms.GetByID(ctx, roomID)
	if errors.Is(err, domain.ErrRoomNotFound) {
		s.log.Warn("room not found", "room_id", roomID)
		return false
	}
	if err != nil {
		s.log.Error("room lookup failed", "room_id", roomID, "err", err)
		return false
	}
	if !room.Available {
		s.log.Warn("room not available", "room_id", roomID)
		return false
	}

	inserted, err := s.locks.PutIfAbsent(ctx, correlationID, roomID)
	if err != nil {
		s.log.Error("lock registry insert failed", "correlation_id", correlationID, "err", err)
		return false
	}
	if !inserted {
		// Lost the race against a concurrent retry of the same attempt.
		s.log.Info("confirm replayed", "room_id", roomID, "correlation_id", correlationID)
		return true
	}

	if err := s.rooms.IncrementTimesBooked(ctx, roomID); err != nil {
		s.log.Error("times booked increment failed", "room_id", roomID, "err", err)
		return false
	}

	s.log.Info("temporary lock created", "room_id", roomID, "correlation_id", correlationID)
	return true
}

// Release drops the temporary lock. Releasing an unknown correlation id
// is a no-op; popularity is never decremented.
func (s *Service) Release(ctx context.Context, roomID int64, correlationID string) {
	if err := s.locks.Delete(ctx, correlationID); err != nil {
		s.log.Error("lock release failed", "correlation_id", correlationID, "err", err)
		return
	}
	s.log.Info("temporary lock released", "room_id", roomID, "correlation_id", correlationID)
}

// RecommendedRooms lists available rooms, least booked first.
func (s *Service) RecommendedRooms(ctx context.Context) ([]*domain.Room, error) {
	return s.rooms.ListAvailableByPopularity(ctx)
}

func (s *Service) GetRoom(ctx context.Context, id int64) (*domain.Room, error) {
	return s.rooms.GetByID(ctx, id)
}
