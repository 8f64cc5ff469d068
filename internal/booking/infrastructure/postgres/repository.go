package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stayflow/booking-saga/internal/booking/domain"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) CreateWithOutbox(ctx context.Context, b *domain.Booking, eventType string, payload []byte, traceparent string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	err = tx.QueryRow(ctx, `INSERT INTO bookings (user_id, room_id, correlation_id, start_date, end_date, status, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
			RETURNING id`,
		b.UserID, b.RoomID, b.CorrelationID, b.StartDate, b.EndDate, b.Status, b.CreatedAt, b.UpdatedAt,
	).Scan(&b.ID)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `INSERT INTO outbox (aggregate_type, aggregate_id, type, payload, traceparent, status)
			VALUES ('booking',$1,$2,$3,$4,'pending')`,
		fmt.Sprint(b.ID), eventType, payload, traceparent)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *Repository) UpdateStatusWithOutbox(ctx context.Context, id int64, status domain.BookingStatus, eventType string, payload []byte, traceparent string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	ct, err := tx.Exec(ctx, `UPDATE bookings SET status=$2, updated_at=now() WHERE id=$1`, id, status)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrBookingNotFound
	}

	_, err = tx.Exec(ctx, `INSERT INTO outbox (aggregate_type, aggregate_id, type, payload, traceparent, status)
			VALUES ('booking',$1,$2,$3,$4,'pending')`,
		fmt.Sprint(id), eventType, payload, traceparent)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *Repository) GetByIDAndUser(ctx context.Context, id, userID int64) (*domain.Booking, error) {
	var b domain.Booking
	err := r.pool.QueryRow(ctx, `SELECT id, user_id, room_id, correlation_id, start_date, end_date, status, created_at, updated_at
			FROM bookings WHERE id=$1 AND user_id=$2`, id, userID).
		Scan(&b.ID, &b.UserID, &b.RoomID, &b.CorrelationID, &b.StartDate, &b.EndDate, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *Repository) ListByUser(ctx context.Context, userID int64) ([]*domain.Booking, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, user_id, room_id, correlation_id, start_date, end_date, status, created_at, updated_at
			FROM bookings WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanBookings(rows)
}

func (r *Repository) FindConfirmedOverlapping(ctx context.Context, roomID int64, start, end time.Time, excludeID int64) ([]*domain.Booking, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, user_id, room_id, correlation_id, start_date, end_date, status, created_at, updated_at
			FROM bookings
			WHERE room_id=$1 AND status='CONFIRMED' AND start_date < $3 AND end_date > $2 AND id <> $4`,
		roomID, start, end, excludeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanBookings(rows)
}

func (r *Repository) CancelStalePending(ctx context.Context, olderThan time.Duration) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `UPDATE bookings SET status='CANCELLED', updated_at=now()
			WHERE status='PENDING' AND created_at < now() - $1::interval
			RETURNING id`, olderThan.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanBookings(rows pgx.Rows) ([]*domain.Booking, error) {
	var out []*domain.Booking
	for rows.Next() {
		var b domain.Booking
		if err := rows.Scan(&b.ID, &b.UserID, &b.RoomID, &b.CorrelationID, &b.StartDate, &b.EndDate, &b.Status, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &b)
	}
	return out, rows.Err()
}
