package availability

import (
	"time"

	"github.com/brickmart/booking-api/internal/model"
)

// DayOfWeek maps a calendar date onto the template recurrence key.
// Sunday is 0, matching both time.Weekday and the stored templates.
func DayOfWeek(date time.Time) int {
	return int(date.Weekday())
}

// MatchTemplate returns the template whose window starts at timeOfDay,
// or nil when the time does not line up with any offered window.
func MatchTemplate(templates []*model.SlotTemplate, timeOfDay string) *model.SlotTemplate {
	for _, tpl := range templates {
		if tpl.StartTime == timeOfDay {
			return tpl
		}
	}
	return nil
}

// BuildView annotates each template window with its occupancy for one
// concrete date. counts must be positionally aligned with templates;
// template ordering is preserved. Pure so the resolver algorithm stays
// testable without a database.
func BuildView(date time.Time, templates []*model.SlotTemplate, counts []int) *model.AvailabilityView {
	view := &model.AvailabilityView{
		Date:  date.Format(model.DateFormat),
		Slots: make([]model.AvailabilitySlot, 0, len(templates)),
	}

	for i, tpl := range templates {
		booked := counts[i]
		remaining := tpl.Capacity - booked
		if remaining < 0 {
			remaining = 0
		}
		view.Slots = append(view.Slots, model.AvailabilitySlot{
			TemplateID: tpl.ID.String(),
			StartTime:  tpl.StartTime,
			EndTime:    tpl.EndTime,
			Capacity:   tpl.Capacity,
			Booked:     booked,
			Remaining:  remaining,
			Available:  remaining > 0,
		})
	}

	return view
}
