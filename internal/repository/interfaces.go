package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/brickmart/booking-api/internal/model"
)

// All repository interfaces in one file
type (
	// SlotTemplateRepository is the slot template store. The booking flow
	// only reads it; mutation belongs to the admin surface.
	SlotTemplateRepository interface {
		Create(ctx context.Context, tpl *model.SlotTemplate) error
		Get(ctx context.Context, id uuid.UUID) (*model.SlotTemplate, error)
		Update(ctx context.Context, tpl *model.SlotTemplate) error
		Deactivate(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context) ([]*model.SlotTemplate, error)
		// ListActiveForDayOfWeek returns active templates for the weekday
		// ordered by start time ascending.
		ListActiveForDayOfWeek(ctx context.Context, dayOfWeek int) ([]*model.SlotTemplate, error)
	}

	// BookingRepository is the append-only booking ledger.
	BookingRepository interface {
		// CountOccupying returns the number of bookings holding capacity on
		// the (date, time) key, computed with a single aggregate query.
		CountOccupying(ctx context.Context, date time.Time, timeOfDay string) (int, error)
		// InsertWithCapacity persists the booking only while the occupancy
		// of its (date, time) key stays below capacity. The count and the
		// insert run inside one serializable transaction, so two racers for
		// the last seat cannot both commit regardless of how requests
		// interleave across service instances. Returns ErrSlotFull when the
		// key is at capacity and ErrConflict on a human_id collision.
		InsertWithCapacity(ctx context.Context, booking *model.Booking, capacity int, event *model.OutboxEvent) error
		Get(ctx context.Context, id uuid.UUID) (*model.Booking, error)
		GetByHumanID(ctx context.Context, humanID string) (*model.Booking, error)
		List(ctx context.Context, filters *model.BookingFilters) ([]*model.Booking, error)
		// UpdateStatus moves the booking from the status the caller
		// observed to the new one. The write is conditional on the observed
		// status; if another actor moved the booking in between, the write
		// does not land and ErrConflict is returned.
		UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.BookingStatus, event *model.OutboxEvent) error
	}

	// OutboxRepository stores pending change events awaiting publication.
	OutboxRepository interface {
		GetPendingEventsWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errorMessage *string) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
