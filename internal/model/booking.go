package model

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// OccupyingStatuses are the statuses that count against slot capacity.
// Completed bookings still occupy their slot (they consumed a real
// appointment); only cancellation frees capacity.
var OccupyingStatuses = []BookingStatus{
	BookingStatusPending,
	BookingStatusConfirmed,
	BookingStatusCompleted,
}

// Valid reports whether s is one of the known statuses.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCompleted, BookingStatusCancelled:
		return true
	}
	return false
}

// Occupies reports whether a booking in this status consumes capacity.
func (s BookingStatus) Occupies() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCompleted:
		return true
	}
	return false
}

// CanTransitionTo encodes the admin status workflow. Bookings are never
// deleted, so cancelled and completed are terminal.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	switch s {
	case BookingStatusPending:
		return next == BookingStatusConfirmed || next == BookingStatusCancelled
	case BookingStatusConfirmed:
		return next == BookingStatusCompleted || next == BookingStatusCancelled
	}
	return false
}

// Booking is one committed appointment in the ledger. SlotDate and
// SlotTime form the capacity key; the key deliberately is not the
// template id, so later edits to a template never regroup historical
// bookings.
type Booking struct {
	ID            uuid.UUID     `json:"id" db:"id"`
	HumanID       string        `json:"human_id" db:"human_id"`
	SlotDate      time.Time     `json:"slot_date" db:"slot_date"`
	SlotTime      string        `json:"slot_time" db:"slot_time"`
	CustomerName  string        `json:"customer_name" db:"customer_name"`
	CustomerPhone string        `json:"customer_phone" db:"customer_phone"`
	CustomerEmail *string       `json:"customer_email,omitempty" db:"customer_email"`
	Purpose       string        `json:"purpose" db:"purpose"`
	Message       *string       `json:"message,omitempty" db:"message"`
	Status        BookingStatus `json:"status" db:"status"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at" db:"updated_at"`
}

type CreateBookingRequest struct {
	Date          string `json:"date" binding:"required,isodate"`
	Time          string `json:"time" binding:"required,timeofday"`
	CustomerName  string `json:"customer_name" binding:"required,max=120"`
	CustomerPhone string `json:"customer_phone" binding:"required,max=32"`
	CustomerEmail string `json:"customer_email" binding:"omitempty,email,max=254"`
	Purpose       string `json:"purpose" binding:"required,max=120"`
	Message       string `json:"message" binding:"max=1000"`
}

type UpdateBookingStatusRequest struct {
	Status BookingStatus `json:"status" binding:"required,oneof=pending confirmed completed cancelled"`
}

type BookingFilters struct {
	Date   *time.Time
	Status *BookingStatus
}

// BookingConfirmation is the payload emitted to the notification
// collaborator when a booking commits. Delivery is fire-and-forget
// relative to the booking transaction.
type BookingConfirmation struct {
	HumanID       string  `json:"human_id"`
	Date          string  `json:"date"`
	Time          string  `json:"time"`
	CustomerName  string  `json:"customer_name"`
	CustomerPhone string  `json:"customer_phone"`
	CustomerEmail *string `json:"customer_email,omitempty"`
	Purpose       string  `json:"purpose"`
	Message       *string `json:"message,omitempty"`
}
