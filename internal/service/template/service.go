package template

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/brickmart/booking-api/internal/model"
	"github.com/brickmart/booking-api/internal/repository"
	apperrors "github.com/brickmart/booking-api/pkg/errors"
)

// Service is the administrative surface of the slot template store. The
// booking flow never mutates templates; it only reads them through the
// repository's day-of-week listing.
type Service struct {
	repo repository.SlotTemplateRepository
}

func NewService(repo repository.SlotTemplateRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateTemplate(ctx context.Context, req *model.CreateSlotTemplateRequest) (*model.SlotTemplate, error) {
	start, err := parseTimeOfDay(req.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := parseTimeOfDay(req.EndTime)
	if err != nil {
		return nil, err
	}
	if !start.Before(end) {
		return nil, apperrors.NewValidation("start_time must be before end_time")
	}

	tpl := &model.SlotTemplate{
		DayOfWeek: req.DayOfWeek,
		StartTime: start.Format(model.TimeFormat),
		EndTime:   end.Format(model.TimeFormat),
		Capacity:  req.Capacity,
	}

	if err := s.checkOverlap(ctx, tpl, uuid.Nil); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, tpl); err != nil {
		return nil, err
	}
	return tpl, nil
}

func (s *Service) GetTemplate(ctx context.Context, id uuid.UUID) (*model.SlotTemplate, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) ListTemplates(ctx context.Context) ([]*model.SlotTemplate, error) {
	return s.repo.List(ctx)
}

func (s *Service) UpdateTemplate(ctx context.Context, id uuid.UUID, req *model.UpdateSlotTemplateRequest) (*model.SlotTemplate, error) {
	tpl, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.StartTime != nil {
		start, err := parseTimeOfDay(*req.StartTime)
		if err != nil {
			return nil, err
		}
		tpl.StartTime = start.Format(model.TimeFormat)
	}
	if req.EndTime != nil {
		end, err := parseTimeOfDay(*req.EndTime)
		if err != nil {
			return nil, err
		}
		tpl.EndTime = end.Format(model.TimeFormat)
	}
	if tpl.StartTime >= tpl.EndTime {
		return nil, apperrors.NewValidation("start_time must be before end_time")
	}
	if req.Capacity != nil {
		// Capacity accounting is capacity-at-query-time: lowering capacity
		// below a window's current occupancy stops new admissions but does
		// not touch existing bookings.
		tpl.Capacity = *req.Capacity
	}
	if req.Active != nil {
		tpl.Active = *req.Active
	}

	if err := s.checkOverlap(ctx, tpl, tpl.ID); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, tpl); err != nil {
		return nil, err
	}
	return tpl, nil
}

// DeactivateTemplate removes the window from future availability.
// Templates are never hard-deleted; historical bookings keep their
// (date, time) grouping either way.
func (s *Service) DeactivateTemplate(ctx context.Context, id uuid.UUID) error {
	return s.repo.Deactivate(ctx, id)
}

// checkOverlap rejects a window that would collide with another active
// window on the same weekday; two templates sharing a start time would
// make the (date, time) occupancy key ambiguous.
func (s *Service) checkOverlap(ctx context.Context, tpl *model.SlotTemplate, selfID uuid.UUID) error {
	existing, err := s.repo.ListActiveForDayOfWeek(ctx, tpl.DayOfWeek)
	if err != nil {
		return err
	}
	for _, other := range existing {
		if other.ID == selfID {
			continue
		}
		if tpl.StartTime < other.EndTime && other.StartTime < tpl.EndTime {
			return apperrors.NewValidation(fmt.Sprintf("window overlaps existing template %s-%s", other.StartTime, other.EndTime))
		}
	}
	return nil
}

func parseTimeOfDay(value string) (time.Time, error) {
	t, err := time.Parse(model.TimeFormat, value)
	if err != nil {
		return time.Time{}, apperrors.NewValidation(fmt.Sprintf("invalid time %q, expected %s", value, model.TimeFormat))
	}
	return t, nil
}
