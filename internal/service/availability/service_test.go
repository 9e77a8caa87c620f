package availability

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brickmart/booking-api/internal/model"
	"github.com/brickmart/booking-api/pkg/metrics"
)

var testMetrics = metrics.NewMetrics("availability_test")

type fakeTemplateRepo struct {
	templates []*model.SlotTemplate
	calls     int
}

func (f *fakeTemplateRepo) Create(ctx context.Context, tpl *model.SlotTemplate) error { return nil }
func (f *fakeTemplateRepo) Get(ctx context.Context, id uuid.UUID) (*model.SlotTemplate, error) {
	return nil, nil
}
func (f *fakeTemplateRepo) Update(ctx context.Context, tpl *model.SlotTemplate) error { return nil }
func (f *fakeTemplateRepo) Deactivate(ctx context.Context, id uuid.UUID) error        { return nil }
func (f *fakeTemplateRepo) List(ctx context.Context) ([]*model.SlotTemplate, error)   { return nil, nil }

func (f *fakeTemplateRepo) ListActiveForDayOfWeek(ctx context.Context, dayOfWeek int) ([]*model.SlotTemplate, error) {
	f.calls++
	var out []*model.SlotTemplate
	for _, tpl := range f.templates {
		if tpl.DayOfWeek == dayOfWeek && tpl.Active {
			out = append(out, tpl)
		}
	}
	return out, nil
}

type fakeBookingCounter struct {
	counts map[string]int
}

func (f *fakeBookingCounter) CountOccupying(ctx context.Context, date time.Time, timeOfDay string) (int, error) {
	return f.counts[date.Format(model.DateFormat)+" "+timeOfDay], nil
}

func (f *fakeBookingCounter) InsertWithCapacity(ctx context.Context, booking *model.Booking, capacity int, event *model.OutboxEvent) error {
	return nil
}
func (f *fakeBookingCounter) Get(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	return nil, nil
}
func (f *fakeBookingCounter) GetByHumanID(ctx context.Context, humanID string) (*model.Booking, error) {
	return nil, nil
}
func (f *fakeBookingCounter) List(ctx context.Context, filters *model.BookingFilters) ([]*model.Booking, error) {
	return nil, nil
}
func (f *fakeBookingCounter) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.BookingStatus, event *model.OutboxEvent) error {
	return nil
}

func TestGetAvailability(t *testing.T) {
	// 2025-06-04 is a Wednesday
	date := time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC)
	templates := &fakeTemplateRepo{templates: []*model.SlotTemplate{
		{ID: uuid.New(), DayOfWeek: 3, StartTime: "09:00", EndTime: "10:00", Capacity: 2, Active: true},
		{ID: uuid.New(), DayOfWeek: 3, StartTime: "10:00", EndTime: "11:00", Capacity: 1, Active: true},
		{ID: uuid.New(), DayOfWeek: 3, StartTime: "11:00", EndTime: "12:00", Capacity: 1, Active: false},
		{ID: uuid.New(), DayOfWeek: 4, StartTime: "09:00", EndTime: "10:00", Capacity: 5, Active: true},
	}}
	bookings := &fakeBookingCounter{counts: map[string]int{
		"2025-06-04 09:00": 1,
		"2025-06-04 10:00": 1,
	}}

	svc := NewService(templates, bookings, time.Minute, testMetrics)

	view, err := svc.GetAvailability(context.Background(), date)
	require.NoError(t, err)
	require.Len(t, view.Slots, 2, "inactive and other-weekday templates are not offered")

	assert.Equal(t, 1, view.Slots[0].Remaining)
	assert.True(t, view.Slots[0].Available)
	assert.Equal(t, 0, view.Slots[1].Remaining)
	assert.False(t, view.Slots[1].Available)
}

func TestGetAvailabilityCaches(t *testing.T) {
	date := time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC)
	templates := &fakeTemplateRepo{templates: []*model.SlotTemplate{
		{ID: uuid.New(), DayOfWeek: 3, StartTime: "09:00", EndTime: "10:00", Capacity: 2, Active: true},
	}}
	bookings := &fakeBookingCounter{counts: map[string]int{}}

	svc := NewService(templates, bookings, time.Minute, testMetrics)

	_, err := svc.GetAvailability(context.Background(), date)
	require.NoError(t, err)
	_, err = svc.GetAvailability(context.Background(), date)
	require.NoError(t, err)

	assert.Equal(t, 1, templates.calls, "second lookup must come from cache")
}

func TestInvalidateDropsCachedView(t *testing.T) {
	date := time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC)
	templates := &fakeTemplateRepo{templates: []*model.SlotTemplate{
		{ID: uuid.New(), DayOfWeek: 3, StartTime: "09:00", EndTime: "10:00", Capacity: 2, Active: true},
	}}
	bookings := &fakeBookingCounter{counts: map[string]int{}}

	svc := NewService(templates, bookings, time.Minute, testMetrics)

	view, err := svc.GetAvailability(context.Background(), date)
	require.NoError(t, err)
	assert.Equal(t, 0, view.Slots[0].Booked)

	// A booking lands and the notifier invalidates the date
	bookings.counts["2025-06-04 09:00"] = 1
	svc.Invalidate("2025-06-04")

	view, err = svc.GetAvailability(context.Background(), date)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Slots[0].Booked)
	assert.Equal(t, 2, templates.calls)
}

func TestGetAvailabilityEmptyDay(t *testing.T) {
	// 2025-06-08 is a Sunday with no templates
	date := time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC)
	templates := &fakeTemplateRepo{}
	bookings := &fakeBookingCounter{counts: map[string]int{}}

	svc := NewService(templates, bookings, time.Minute, testMetrics)

	view, err := svc.GetAvailability(context.Background(), date)
	require.NoError(t, err)
	assert.Equal(t, "2025-06-08", view.Date)
	assert.Empty(t, view.Slots)
}
