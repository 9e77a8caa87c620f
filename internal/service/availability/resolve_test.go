package availability

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brickmart/booking-api/internal/model"
)

func TestDayOfWeek(t *testing.T) {
	// 2025-06-01 was a Sunday
	sunday := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 0, DayOfWeek(sunday))
	assert.Equal(t, 1, DayOfWeek(sunday.AddDate(0, 0, 1)))
	assert.Equal(t, 6, DayOfWeek(sunday.AddDate(0, 0, 6)))
}

func TestMatchTemplate(t *testing.T) {
	templates := []*model.SlotTemplate{
		{ID: uuid.New(), StartTime: "09:00", EndTime: "10:00"},
		{ID: uuid.New(), StartTime: "10:00", EndTime: "11:00"},
	}

	assert.Equal(t, templates[0], MatchTemplate(templates, "09:00"))
	assert.Equal(t, templates[1], MatchTemplate(templates, "10:00"))
	assert.Nil(t, MatchTemplate(templates, "09:30"))
	assert.Nil(t, MatchTemplate(nil, "09:00"))
}

func TestBuildView(t *testing.T) {
	date := time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC)
	templates := []*model.SlotTemplate{
		{ID: uuid.New(), StartTime: "09:00", EndTime: "10:00", Capacity: 2},
		{ID: uuid.New(), StartTime: "10:00", EndTime: "11:00", Capacity: 3},
		{ID: uuid.New(), StartTime: "11:00", EndTime: "12:00", Capacity: 1},
	}

	view := BuildView(date, templates, []int{0, 3, 5})

	require.Len(t, view.Slots, 3)
	assert.Equal(t, "2025-06-04", view.Date)

	free := view.Slots[0]
	assert.Equal(t, 2, free.Remaining)
	assert.True(t, free.Available)

	full := view.Slots[1]
	assert.Equal(t, 0, full.Remaining)
	assert.False(t, full.Available)

	// Overbooked windows clamp at zero instead of going negative;
	// capacity may have been lowered after bookings were taken.
	over := view.Slots[2]
	assert.Equal(t, 5, over.Booked)
	assert.Equal(t, 0, over.Remaining)
	assert.False(t, over.Available)
}

func TestBuildViewEmptyDay(t *testing.T) {
	date := time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC)

	view := BuildView(date, nil, nil)

	require.NotNil(t, view)
	assert.Equal(t, "2025-06-08", view.Date)
	assert.Empty(t, view.Slots)
	assert.NotNil(t, view.Slots)
}

func TestBuildViewPreservesTemplateOrder(t *testing.T) {
	date := time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC)
	templates := []*model.SlotTemplate{
		{ID: uuid.New(), StartTime: "08:00", EndTime: "09:00", Capacity: 1},
		{ID: uuid.New(), StartTime: "13:00", EndTime: "14:00", Capacity: 1},
	}

	view := BuildView(date, templates, []int{0, 0})

	require.Len(t, view.Slots, 2)
	assert.Equal(t, "08:00", view.Slots[0].StartTime)
	assert.Equal(t, "13:00", view.Slots[1].StartTime)
}
