package availability

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/brickmart/booking-api/internal/model"
	"github.com/brickmart/booking-api/internal/repository"
	"github.com/brickmart/booking-api/pkg/metrics"
)

const (
	defaultCacheTTL      = 30 * time.Second
	cacheCleanupInterval = 5 * time.Minute
)

// Service resolves a calendar date into the availability view of its
// weekday's active templates. Views are cached per date with a short TTL
// and dropped whenever the notifier signals a ledger change, so a view
// is never reused across a commit without invalidation.
type Service struct {
	templates repository.SlotTemplateRepository
	bookings  repository.BookingRepository
	cache     *gocache.Cache
	metrics   *metrics.Metrics
}

func NewService(templates repository.SlotTemplateRepository, bookings repository.BookingRepository, cacheTTL time.Duration, m *metrics.Metrics) *Service {
	if cacheTTL <= 0 {
		cacheTTL = defaultCacheTTL
	}
	return &Service{
		templates: templates,
		bookings:  bookings,
		cache:     gocache.New(cacheTTL, cacheCleanupInterval),
		metrics:   m,
	}
}

// GetAvailability is date-agnostic: past dates resolve like any other,
// rejecting them is the booking flow's policy, not the resolver's.
func (s *Service) GetAvailability(ctx context.Context, date time.Time) (*model.AvailabilityView, error) {
	s.metrics.AvailabilityRequests.Inc()

	key := date.Format(model.DateFormat)
	if cached, ok := s.cache.Get(key); ok {
		s.metrics.AvailabilityCacheHits.Inc()
		return cached.(*model.AvailabilityView), nil
	}

	view, err := s.resolve(ctx, date)
	if err != nil {
		return nil, err
	}

	s.cache.Set(key, view, gocache.DefaultExpiration)
	return view, nil
}

func (s *Service) resolve(ctx context.Context, date time.Time) (*model.AvailabilityView, error) {
	templates, err := s.templates.ListActiveForDayOfWeek(ctx, DayOfWeek(date))
	if err != nil {
		return nil, err
	}

	counts := make([]int, len(templates))
	for i, tpl := range templates {
		count, err := s.bookings.CountOccupying(ctx, date, tpl.StartTime)
		if err != nil {
			return nil, err
		}
		counts[i] = count
	}

	return BuildView(date, templates, counts), nil
}

// Invalidate implements notifier.Observer.
func (s *Service) Invalidate(date string) {
	s.cache.Delete(date)
}
