package model

// AvailabilitySlot annotates one template window with its occupancy on a
// concrete date.
type AvailabilitySlot struct {
	TemplateID string `json:"template_id"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	Capacity   int    `json:"capacity"`
	Booked     int    `json:"booked"`
	Remaining  int    `json:"remaining"`
	Available  bool   `json:"available"`
}

// AvailabilityView is the derived, never-persisted availability of one
// calendar date: the active windows for that weekday ordered by start
// time. An empty Slots list means no slots are offered that day, which
// the UI must distinguish from all slots being full.
type AvailabilityView struct {
	Date  string             `json:"date"`
	Slots []AvailabilitySlot `json:"slots"`
}
