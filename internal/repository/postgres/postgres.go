package postgres

import (
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/brickmart/booking-api/internal/repository"
)

type slotTemplateRepository struct {
	db *sqlx.DB
}

type bookingRepository struct {
	db *sqlx.DB
}

type outboxRepository struct {
	db *sqlx.DB
}

func NewSlotTemplateRepository(db *sqlx.DB) repository.SlotTemplateRepository {
	return &slotTemplateRepository{db: db}
}

func NewBookingRepository(db *sqlx.DB) repository.BookingRepository {
	return &bookingRepository{db: db}
}

func NewOutboxRepository(db *sqlx.DB) repository.OutboxRepository {
	return &outboxRepository{db: db}
}

// Postgres error classification used by the commit path.

func pqErrorCode(err error) pq.ErrorCode {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code
	}
	return ""
}

// isSerializationFailure matches SQLSTATE 40001 (serialization_failure)
// and 40P01 (deadlock_detected); both mean the transaction lost a race
// and should be re-run from the occupancy check.
func isSerializationFailure(err error) bool {
	code := pqErrorCode(err)
	return code == "40001" || code == "40P01"
}

func isUniqueViolation(err error) bool {
	return pqErrorCode(err) == "23505"
}
