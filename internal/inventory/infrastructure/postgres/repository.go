package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stayflow/booking-saga/internal/inventory/domain"
)

const incrementRetries = 3

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Room, error) {
	var room domain.Room
	err := r.pool.QueryRow(ctx, `SELECT id, number, available, times_booked, version FROM rooms WHERE id=$1`, id).
		Scan(&room.ID, &room.Number, &room.Available, &room.TimesBooked, &room.Version)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *Repository) ListAvailableByPopularity(ctx context.Context) ([]*domain.Room, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, number, available, times_booked, version
			FROM rooms WHERE available ORDER BY times_booked ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Room
	for rows.Next() {
		var room domain.Room
		if err := rows.Scan(&room.ID, &room.Number, &room.Available, &room.TimesBooked, &room.Version); err != nil {
			return nil, err
		}
		out = append(out, &room)
	}
	return out, rows.Err()
}

// IncrementTimesBooked bumps the popularity counter guarded by the
// room's version token, retrying a few times on concurrent updates.
func (r *Repository) IncrementTimesBooked(ctx context.Context, id int64) error {
	for attempt := 0; attempt < incrementRetries; attempt++ {
		var version int64
		err := r.pool.QueryRow(ctx, `SELECT version FROM rooms WHERE id=$1`, id).Scan(&version)
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrRoomNotFound
		}
		if err != nil {
			return err
		}

		ct, err := r.pool.Exec(ctx, `UPDATE rooms SET times_booked=times_booked+1, version=version+1
				WHERE id=$1 AND version=$2`, id, version)
		if err != nil {
			return err
		}
		if ct.RowsAffected() == 1 {
			return nil
		}
		r.log.Debug("room version conflict, retrying", "room_id", id, "version", version)
	}
	return fmt.Errorf("room %d: too many concurrent updates", id)
}
