package model

import (
	"time"

	"github.com/google/uuid"
)

// Base contains common fields for all models
type Base struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// DateFormat and TimeFormat are the wire formats for calendar dates and
// local times of day. Times of day carry no date or zone component; the
// (date, time) pair is the occupancy key of the booking ledger.
const (
	DateFormat = "2006-01-02"
	TimeFormat = "15:04"
)

// JSONMap represents a generic JSON object
type JSONMap map[string]interface{}
