package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/brickmart/booking-api/internal/model"
	apperrors "github.com/brickmart/booking-api/pkg/errors"
)

// Commit attempts run at SERIALIZABLE so a concurrent insert on the same
// (date, time) key aborts one of the racers with SQLSTATE 40001 instead
// of letting both pass the occupancy check. The retry budget covers the
// re-run; a retried attempt re-reads the count, so a loser is only
// rejected when the slot genuinely filled.
const maxCommitAttempts = 4

const occupyingPredicate = `status IN ('pending', 'confirmed', 'completed')`

const countOccupyingQuery = `
	SELECT COUNT(*)
	FROM bookings
	WHERE slot_date = $1 AND slot_time = $2 AND ` + occupyingPredicate

const selectBookingColumns = `
	SELECT id, human_id, slot_date, slot_time,
		   customer_name, customer_phone, customer_email,
		   purpose, message, status, created_at, updated_at
	FROM bookings
`

func (r *bookingRepository) CountOccupying(ctx context.Context, date time.Time, timeOfDay string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, countOccupyingQuery, date.Format(model.DateFormat), timeOfDay)
	if err != nil {
		return 0, apperrors.NewStorage(fmt.Errorf("failed to count occupying bookings: %w", err))
	}
	return count, nil
}

func (r *bookingRepository) InsertWithCapacity(ctx context.Context, booking *model.Booking, capacity int, event *model.OutboxEvent) error {
	for attempt := 1; ; attempt++ {
		err := r.tryInsert(ctx, booking, capacity, event)
		if err == nil {
			return nil
		}
		if isSerializationFailure(err) && attempt < maxCommitAttempts {
			continue
		}
		if isSerializationFailure(err) {
			return apperrors.NewStorage(fmt.Errorf("commit kept losing serialization races: %w", err))
		}
		return err
	}
}

func (r *bookingRepository) tryInsert(ctx context.Context, booking *model.Booking, capacity int, event *model.OutboxEvent) error {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return apperrors.NewStorage(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer tx.Rollback()

	date := booking.SlotDate.Format(model.DateFormat)

	var count int
	if err := tx.GetContext(ctx, &count, countOccupyingQuery, date, booking.SlotTime); err != nil {
		return apperrors.NewStorage(fmt.Errorf("failed to count occupying bookings: %w", err))
	}
	if count >= capacity {
		return apperrors.NewSlotFull(date, booking.SlotTime)
	}

	insertQuery := `
		INSERT INTO bookings (
			id, human_id, slot_date, slot_time,
			customer_name, customer_phone, customer_email,
			purpose, message, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	now := time.Now()
	booking.CreatedAt = now
	booking.UpdatedAt = now

	_, err = tx.ExecContext(ctx, insertQuery,
		booking.ID,
		booking.HumanID,
		date,
		booking.SlotTime,
		booking.CustomerName,
		booking.CustomerPhone,
		booking.CustomerEmail,
		booking.Purpose,
		booking.Message,
		booking.Status,
		booking.CreatedAt,
		booking.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return apperrors.NewConflict("confirmation code already taken", err)
	}
	if err != nil {
		return apperrors.NewStorage(fmt.Errorf("failed to insert booking: %w", err))
	}

	if event != nil {
		if err := insertOutboxEvent(ctx, tx, event); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		if isSerializationFailure(err) {
			return err
		}
		return apperrors.NewStorage(fmt.Errorf("failed to commit booking: %w", err))
	}
	return nil
}

func (r *bookingRepository) Get(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	var booking model.Booking
	err := r.db.GetContext(ctx, &booking, selectBookingColumns+" WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("booking", err)
	}
	if err != nil {
		return nil, apperrors.NewStorage(fmt.Errorf("failed to get booking: %w", err))
	}
	return &booking, nil
}

func (r *bookingRepository) GetByHumanID(ctx context.Context, humanID string) (*model.Booking, error) {
	var booking model.Booking
	err := r.db.GetContext(ctx, &booking, selectBookingColumns+" WHERE human_id = $1", humanID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("booking", err)
	}
	if err != nil {
		return nil, apperrors.NewStorage(fmt.Errorf("failed to get booking: %w", err))
	}
	return &booking, nil
}

func (r *bookingRepository) List(ctx context.Context, filters *model.BookingFilters) ([]*model.Booking, error) {
	query := selectBookingColumns + " WHERE 1=1"
	args := []interface{}{}
	argCount := 1

	if filters != nil && filters.Date != nil {
		query += fmt.Sprintf(" AND slot_date = $%d", argCount)
		args = append(args, filters.Date.Format(model.DateFormat))
		argCount++
	}
	if filters != nil && filters.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argCount)
		args = append(args, *filters.Status)
		argCount++
	}

	query += " ORDER BY slot_date ASC, slot_time ASC, created_at ASC"

	var bookings []*model.Booking
	if err := r.db.SelectContext(ctx, &bookings, query, args...); err != nil {
		return nil, apperrors.NewStorage(fmt.Errorf("failed to list bookings: %w", err))
	}
	return bookings, nil
}

// UpdateStatus flips a booking's status and records the change event in
// the same transaction, so a cancellation that frees capacity always
// reaches subscribers holding a stale availability view. The UPDATE is
// predicated on the status the caller read, so a transition decided
// against a stale row never overwrites a concurrent change: a cancelled
// booking whose freed seat was re-booked cannot be flipped back into
// the occupying set.
func (r *bookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.BookingStatus, event *model.OutboxEvent) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			UPDATE bookings
			SET status = $1, updated_at = $2
			WHERE id = $3 AND status = $4
		`
		result, err := tx.ExecContext(ctx, query, to, time.Now(), id, from)
		if err != nil {
			return apperrors.NewStorage(fmt.Errorf("failed to update booking status: %w", err))
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return apperrors.NewStorage(fmt.Errorf("failed to get rows affected: %w", err))
		}
		if rows == 0 {
			var current string
			err := tx.GetContext(ctx, &current, "SELECT status FROM bookings WHERE id = $1", id)
			if errors.Is(err, sql.ErrNoRows) {
				return apperrors.NewNotFound("booking", nil)
			}
			if err != nil {
				return apperrors.NewStorage(fmt.Errorf("failed to get booking status: %w", err))
			}
			return apperrors.NewConflict(fmt.Sprintf("booking status is %s, expected %s", current, from), nil)
		}

		if event != nil {
			return insertOutboxEvent(ctx, tx, event)
		}
		return nil
	})
}

func (r *bookingRepository) withTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return apperrors.NewStorage(fmt.Errorf("failed to begin transaction: %w", err))
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewStorage(fmt.Errorf("failed to commit transaction: %w", err))
	}
	return nil
}
