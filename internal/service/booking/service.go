package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/brickmart/booking-api/internal/model"
	"github.com/brickmart/booking-api/internal/repository"
	"github.com/brickmart/booking-api/internal/service/availability"
	apperrors "github.com/brickmart/booking-api/pkg/errors"
	"github.com/brickmart/booking-api/pkg/humanid"
	"github.com/brickmart/booking-api/pkg/messaging"
	"github.com/brickmart/booking-api/pkg/metrics"
)

// Booking horizon policy of the storefront. The resolver stays
// date-agnostic; these bounds are enforced here, at admission.
const (
	MaxAdvanceBooking = 90 * 24 * time.Hour

	// Confirmation codes collide with negligible probability; a couple of
	// regenerations is already overkill, anything beyond that means the
	// ledger is in trouble.
	maxHumanIDAttempts = 3
)

// ChangeNotifier propagates a committed ledger mutation to open
// availability views.
type ChangeNotifier interface {
	BookingChanged(ctx context.Context, date, timeOfDay string)
}

// Service is the admission controller: it turns a raw submission into
// either a committed ledger row or a typed rejection. A submission is
// validated first, then re-checked against live occupancy at commit
// time inside the repository's serializable transaction, closing the
// gap between what the customer saw and what is still free.
type Service struct {
	bookings  repository.BookingRepository
	templates repository.SlotTemplateRepository
	notifier  ChangeNotifier
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewService(bookings repository.BookingRepository, templates repository.SlotTemplateRepository, notifier ChangeNotifier, m *metrics.Metrics) *Service {
	return &Service{
		bookings:  bookings,
		templates: templates,
		notifier:  notifier,
		metrics:   m,
		now:       time.Now,
	}
}

func (s *Service) SubmitBooking(ctx context.Context, req *model.CreateBookingRequest) (*model.Booking, error) {
	date, tpl, err := s.validate(ctx, req)
	if err != nil {
		s.metrics.BookingsRejected.WithLabelValues(rejectionReason(err)).Inc()
		return nil, err
	}

	booking := &model.Booking{
		ID:            uuid.New(),
		SlotDate:      date,
		SlotTime:      tpl.StartTime,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		Purpose:       req.Purpose,
		Status:        model.BookingStatusPending,
	}
	if req.CustomerEmail != "" {
		booking.CustomerEmail = &req.CustomerEmail
	}
	if req.Message != "" {
		booking.Message = &req.Message
	}

	if err := s.commit(ctx, booking, tpl.Capacity); err != nil {
		s.metrics.BookingsRejected.WithLabelValues(rejectionReason(err)).Inc()
		return nil, err
	}

	s.metrics.BookingsCommitted.Inc()
	s.notifier.BookingChanged(ctx, booking.SlotDate.Format(model.DateFormat), booking.SlotTime)

	return booking, nil
}

// validate performs the structural checks of the admission state
// machine. It deliberately does not look at occupancy; that check only
// counts at commit time.
func (s *Service) validate(ctx context.Context, req *model.CreateBookingRequest) (time.Time, *model.SlotTemplate, error) {
	date, err := time.ParseInLocation(model.DateFormat, req.Date, time.Local)
	if err != nil {
		return time.Time{}, nil, apperrors.NewValidation(fmt.Sprintf("invalid date %q, expected %s", req.Date, model.DateFormat))
	}

	parsedTime, err := time.Parse(model.TimeFormat, req.Time)
	if err != nil {
		return time.Time{}, nil, apperrors.NewValidation(fmt.Sprintf("invalid time %q, expected %s", req.Time, model.TimeFormat))
	}
	timeOfDay := parsedTime.Format(model.TimeFormat)

	today := s.today()
	if date.Before(today) {
		return time.Time{}, nil, apperrors.NewValidation("date is in the past")
	}
	if date.After(today.Add(MaxAdvanceBooking)) {
		return time.Time{}, nil, apperrors.NewValidation("date is too far ahead")
	}

	templates, err := s.templates.ListActiveForDayOfWeek(ctx, availability.DayOfWeek(date))
	if err != nil {
		return time.Time{}, nil, err
	}

	tpl := availability.MatchTemplate(templates, timeOfDay)
	if tpl == nil {
		return time.Time{}, nil, apperrors.NewValidation("time does not match an offered slot")
	}

	return date, tpl, nil
}

// commit runs the capacity-guarded insert, regenerating the confirmation
// code on the rare unique-index collision. The outbox event rides in the
// same transaction as the insert, so the change notification can never
// outlive a rolled-back booking or be lost after a committed one.
func (s *Service) commit(ctx context.Context, booking *model.Booking, capacity int) error {
	for attempt := 1; attempt <= maxHumanIDAttempts; attempt++ {
		code, err := humanid.New(booking.SlotDate)
		if err != nil {
			return apperrors.NewInternal(fmt.Errorf("failed to generate confirmation code: %w", err))
		}
		booking.HumanID = code

		event, err := confirmationEvent(booking)
		if err != nil {
			return apperrors.NewInternal(err)
		}

		err = s.bookings.InsertWithCapacity(ctx, booking, capacity, event)
		if apperrors.IsConflict(err) {
			s.metrics.AdmissionRetries.Inc()
			continue
		}
		return err
	}
	return apperrors.NewStorage(fmt.Errorf("confirmation code kept colliding after %d attempts", maxHumanIDAttempts))
}

func (s *Service) GetBooking(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	return s.bookings.Get(ctx, id)
}

func (s *Service) GetBookingByCode(ctx context.Context, code string) (*model.Booking, error) {
	if !humanid.Valid(code) {
		return nil, apperrors.NewValidation("malformed confirmation code")
	}
	return s.bookings.GetByHumanID(ctx, code)
}

func (s *Service) ListBookings(ctx context.Context, filters *model.BookingFilters) ([]*model.Booking, error) {
	return s.bookings.List(ctx, filters)
}

// UpdateStatus is the admin collaborator surface. The legality check
// runs against a snapshot of the booking, so the write is conditional
// on that same snapshot status: if another admin or a customer moved
// the booking in between, the write is rejected with a conflict instead
// of dragging the booking back into the occupying set.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status model.BookingStatus) (*model.Booking, error) {
	booking, err := s.bookings.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !booking.Status.CanTransitionTo(status) {
		return nil, apperrors.NewValidation(fmt.Sprintf("cannot transition booking from %s to %s", booking.Status, status))
	}

	event, err := changeEvent(booking)
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}

	if err := s.bookings.UpdateStatus(ctx, id, booking.Status, status, event); err != nil {
		return nil, err
	}

	booking.Status = status
	s.notifier.BookingChanged(ctx, booking.SlotDate.Format(model.DateFormat), booking.SlotTime)

	return booking, nil
}

func (s *Service) today() time.Time {
	now := s.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

func confirmationEvent(booking *model.Booking) (*model.OutboxEvent, error) {
	payload, err := json.Marshal(model.BookingConfirmation{
		HumanID:       booking.HumanID,
		Date:          booking.SlotDate.Format(model.DateFormat),
		Time:          booking.SlotTime,
		CustomerName:  booking.CustomerName,
		CustomerPhone: booking.CustomerPhone,
		CustomerEmail: booking.CustomerEmail,
		Purpose:       booking.Purpose,
		Message:       booking.Message,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal confirmation payload: %w", err)
	}
	return &model.OutboxEvent{EventType: messaging.TopicBookingCreated, Payload: payload}, nil
}

func changeEvent(booking *model.Booking) (*model.OutboxEvent, error) {
	payload, err := json.Marshal(map[string]string{
		"date": booking.SlotDate.Format(model.DateFormat),
		"time": booking.SlotTime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal change payload: %w", err)
	}
	return &model.OutboxEvent{EventType: messaging.TopicBookingChanged, Payload: payload}, nil
}

func rejectionReason(err error) string {
	switch {
	case apperrors.IsValidation(err):
		return "validation"
	case apperrors.IsSlotFull(err):
		return "slot_full"
	case apperrors.IsStorage(err):
		return "storage"
	default:
		return "internal"
	}
}
