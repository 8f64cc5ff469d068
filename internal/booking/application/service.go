package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/stayflow/booking-saga/internal/booking/domain"
	"github.com/stayflow/booking-saga/pkg/roomlock"
	"github.com/stayflow/booking-saga/pkg/tracing"
)

const maxBookingDays = 30

type CreateBookingInput struct {
	RoomID     int64
	StartDate  time.Time
	EndDate    time.Time
	AutoSelect bool
}

// Service runs the booking saga: validate, check conflicts, persist
// PENDING, confirm availability remotely, then commit or compensate.
type Service struct {
	log      *slog.Logger
	repo     BookingRepository
	hotel    HotelClient
	detector *ConflictDetector
	locks    *roomlock.Keyed
	now      func() time.Time
}

func NewService(log *slog.Logger, repo BookingRepository, hotel HotelClient) *Service {
	return &Service{
		log:      log,
		repo:     repo,
		hotel:    hotel,
		detector: NewConflictDetector(repo),
		locks:    roomlock.New(),
		now:      time.Now,
	}
}

func (s *Service) CreateBooking(ctx context.Context, userID int64, in CreateBookingInput) (*domain.Booking, error) {
	if err := s.validateDates(in.StartDate, in.EndDate); err != nil {
		return nil, err
	}

	roomID := in.RoomID
	if in.AutoSelect {
		rooms, err := s.hotel.RecommendedRooms(ctx)
		if err != nil {
			return nil, fmt.Errorf("recommend rooms: %w", err)
		}
		if len(rooms) == 0 {
			return nil, domain.ErrNoRoomAvailable
		}
		roomID = rooms[0].ID
		s.log.Info("auto-selected room", "room_id", roomID)
	}

	conflicts, err := s.detector.Conflicts(ctx, roomID, in.StartDate, in.EndDate, 0)
	if err != nil {
		return nil, fmt.Errorf("conflict check: %w", err)
	}
	if len(conflicts) > 0 {
		s.log.Warn("booking conflict detected", "room_id", roomID, "conflicts", len(conflicts))
		return nil, domain.ConflictError(len(conflicts))
	}

	correlationID := uuid.New().String()
	b := domain.NewBooking(userID, roomID, in.StartDate, in.EndDate, correlationID)

	payload, err := json.Marshal(domain.BookingCreated{
		UserID:        userID,
		RoomID:        roomID,
		StartDate:     in.StartDate,
		EndDate:       in.EndDate,
		CorrelationID: correlationID,
	})
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateWithOutbox(ctx, b, "BookingCreated", payload, tracing.Traceparent(ctx)); err != nil {
		return nil, fmt.Errorf("persist booking: %w", err)
	}
	s.log.Info("booking created in PENDING", "booking_id", b.ID, "correlation_id", correlationID)

	available, err := s.hotel.ConfirmAvailability(ctx, roomID, DateRange{
		Start:         in.StartDate,
		End:           in.EndDate,
		CorrelationID: correlationID,
	})
	if err != nil {
		s.cancel(ctx, b, "hotel service failure")
		s.releaseQuietly(ctx, roomID, correlationID)
		return nil, err
	}
	if !available {
		s.cancel(ctx, b, "room not available")
		s.log.Info("booking cancelled, room not available", "booking_id", b.ID, "correlation_id", correlationID)
		return nil, domain.ErrRoomUnavailable
	}

	// A competing saga may have committed between the first check and the
	// remote confirmation; the re-check and the CONFIRMED write hold the
	// room's lock so only one of them can win.
	unlock := s.locks.Lock(roomID)
	defer unlock()

	conflicts, err = s.detector.Conflicts(ctx, roomID, in.StartDate, in.EndDate, b.ID)
	if err != nil {
		s.cancel(ctx, b, "conflict re-check failure")
		s.releaseQuietly(ctx, roomID, correlationID)
		return nil, fmt.Errorf("conflict re-check: %w", err)
	}
	if len(conflicts) > 0 {
		s.cancel(ctx, b, "conflict detected before confirmation")
		s.log.Warn("booking cancelled, late conflict", "booking_id", b.ID, "correlation_id", correlationID)
		return nil, domain.ConflictError(len(conflicts))
	}

	confirmed, _ := json.Marshal(domain.BookingConfirmed{
		BookingID:     b.ID,
		RoomID:        roomID,
		CorrelationID: correlationID,
	})
	if err := s.repo.UpdateStatusWithOutbox(ctx, b.ID, domain.StatusConfirmed, "BookingConfirmed", confirmed, tracing.Traceparent(ctx)); err != nil {
		return nil, fmt.Errorf("confirm booking: %w", err)
	}
	b.Status = domain.StatusConfirmed
	b.UpdatedAt = s.now().UTC()
	s.log.Info("booking confirmed", "booking_id", b.ID, "correlation_id", correlationID)
	return b, nil
}

func (s *Service) GetUserBookings(ctx context.Context, userID int64) ([]*domain.Booking, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) GetBooking(ctx context.Context, id, userID int64) (*domain.Booking, error) {
	return s.repo.GetByIDAndUser(ctx, id, userID)
}

// CancelBooking is idempotent: only a CONFIRMED booking transitions, a
// PENDING or already CANCELLED one is left untouched.
func (s *Service) CancelBooking(ctx context.Context, id, userID int64) error {
	b, err := s.repo.GetByIDAndUser(ctx, id, userID)
	if err != nil {
		return err
	}
	if b.Status != domain.StatusConfirmed {
		return nil
	}

	payload, _ := json.Marshal(domain.BookingCancelled{
		BookingID:     b.ID,
		RoomID:        b.RoomID,
		CorrelationID: b.CorrelationID,
		Reason:        "cancelled by user",
	})
	if err := s.repo.UpdateStatusWithOutbox(ctx, b.ID, domain.StatusCancelled, "BookingCancelled", payload, tracing.Traceparent(ctx)); err != nil {
		return fmt.Errorf("cancel booking: %w", err)
	}
	s.log.Info("booking cancelled by user", "booking_id", id, "user_id", userID)
	return nil
}

// CancelExpiredPending gives interrupted sagas a terminal state.
func (s *Service) CancelExpiredPending(ctx context.Context, olderThan time.Duration) ([]int64, error) {
	ids, err := s.repo.CancelStalePending(ctx, olderThan)
	if err != nil {
		return nil, fmt.Errorf("cancel stale pending: %w", err)
	}
	if len(ids) > 0 {
		s.log.Info("stale pending bookings cancelled", "count", len(ids))
	}
	return ids, nil
}

func (s *Service) validateDates(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return fmt.Errorf("%w: start date and end date are required", domain.ErrValidation)
	}

	today := s.today()
	if start.Before(today) {
		return fmt.Errorf("%w: start date cannot be in the past", domain.ErrValidation)
	}
	if end.Before(start) {
		return fmt.Errorf("%w: end date cannot be before start date", domain.ErrValidation)
	}
	if start.Equal(end) {
		return fmt.Errorf("%w: minimum booking period is 1 day", domain.ErrValidation)
	}
	if start.AddDate(0, 0, maxBookingDays).Before(end) {
		return fmt.Errorf("%w: maximum booking period is 30 days", domain.ErrValidation)
	}
	return nil
}

func (s *Service) today() time.Time {
	return s.now().UTC().Truncate(24 * time.Hour)
}

// cancel drives the booking to its terminal CANCELLED state. It runs on a
// detached context: a caller that stopped waiting must not abort compensation.
func (s *Service) cancel(ctx context.Context, b *domain.Booking, reason string) {
	ctx = context.WithoutCancel(ctx)

	payload, _ := json.Marshal(domain.BookingCancelled{
		BookingID:     b.ID,
		RoomID:        b.RoomID,
		CorrelationID: b.CorrelationID,
		Reason:        reason,
	})
	if err := s.repo.UpdateStatusWithOutbox(ctx, b.ID, domain.StatusCancelled, "BookingCancelled", payload, tracing.Traceparent(ctx)); err != nil {
		s.log.Error("failed to persist booking cancellation", "booking_id", b.ID, "err", err)
		return
	}
	b.Status = domain.StatusCancelled
	b.UpdatedAt = s.now().UTC()
}

// releaseQuietly is best-effort compensation; its failure is logged and
// never masks the primary error.
func (s *Service) releaseQuietly(ctx context.Context, roomID int64, correlationID string) {
	ctx = context.WithoutCancel(ctx)

	if err := s.hotel.ReleaseLock(ctx, roomID, correlationID); err != nil {
		s.log.Warn("failed to release temporary lock", "room_id", roomID, "correlation_id", correlationID, "err", err)
	}
}
