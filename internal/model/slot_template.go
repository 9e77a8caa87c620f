package model

import (
	"time"

	"github.com/google/uuid"
)

// SlotTemplate is a recurring weekly availability rule: a bookable time
// window replayed every week on DayOfWeek. Deactivated templates stop
// appearing in availability but bookings already placed against their
// windows stay valid.
type SlotTemplate struct {
	ID        uuid.UUID `json:"id" db:"id"`
	DayOfWeek int       `json:"day_of_week" db:"day_of_week"`
	StartTime string    `json:"start_time" db:"start_time"`
	EndTime   string    `json:"end_time" db:"end_time"`
	Capacity  int       `json:"capacity" db:"capacity"`
	Active    bool      `json:"active" db:"active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type CreateSlotTemplateRequest struct {
	DayOfWeek int    `json:"day_of_week" binding:"min=0,max=6"`
	StartTime string `json:"start_time" binding:"required,timeofday"`
	EndTime   string `json:"end_time" binding:"required,timeofday"`
	Capacity  int    `json:"capacity" binding:"required,min=1"`
}

type UpdateSlotTemplateRequest struct {
	StartTime *string `json:"start_time" binding:"omitempty,timeofday"`
	EndTime   *string `json:"end_time" binding:"omitempty,timeofday"`
	Capacity  *int    `json:"capacity" binding:"omitempty,min=1"`
	Active    *bool   `json:"active"`
}
