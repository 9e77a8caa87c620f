package api_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brickmart/booking-api/internal/model"
)

// slotInAWeek returns a bookable date one week out plus its weekday.
func slotInAWeek() (string, int) {
	date := time.Now().AddDate(0, 0, 7)
	return date.Format(model.DateFormat), int(date.Weekday())
}

func TestBookingFlow(t *testing.T) {
	srv := newTestServer(t)
	token := adminToken(t)
	date, dayOfWeek := slotInAWeek()

	// Admin publishes a slot template
	status, resp := makeRequest(t, srv, "POST", "/admin/templates", map[string]interface{}{
		"day_of_week": dayOfWeek,
		"start_time":  "09:00",
		"end_time":    "10:00",
		"capacity":    2,
	}, token)
	require.Equal(t, http.StatusCreated, status)
	require.True(t, resp.Success)

	var tpl model.SlotTemplate
	decodeData(t, resp, &tpl)
	require.NotEmpty(t, tpl.ID)

	// Storefront sees the open slot
	status, resp = makeRequest(t, srv, "GET", "/availability?date="+date, nil, "")
	require.Equal(t, http.StatusOK, status)

	var view model.AvailabilityView
	decodeData(t, resp, &view)
	require.Len(t, view.Slots, 1)
	assert.Equal(t, 2, view.Slots[0].Remaining)
	assert.True(t, view.Slots[0].Available)

	// Customer books it
	status, resp = makeRequest(t, srv, "POST", "/bookings", map[string]interface{}{
		"date":           date,
		"time":           "09:00",
		"customer_name":  "Ola Nordmann",
		"customer_phone": "+4740012345",
		"customer_email": "ola@example.com",
		"purpose":        "Pick up flooring order",
	}, "")
	require.Equal(t, http.StatusCreated, status, "booking failed: %v", resp.Error)

	var booking model.Booking
	decodeData(t, resp, &booking)
	assert.NotEmpty(t, booking.HumanID)
	assert.Equal(t, model.BookingStatusPending, booking.Status)

	// The committed booking is immediately visible in availability
	status, resp = makeRequest(t, srv, "GET", "/availability?date="+date, nil, "")
	require.Equal(t, http.StatusOK, status)
	decodeData(t, resp, &view)
	assert.Equal(t, 1, view.Slots[0].Remaining)

	// Customer looks the booking up by confirmation code
	status, resp = makeRequest(t, srv, "GET", "/bookings/"+booking.HumanID, nil, "")
	require.Equal(t, http.StatusOK, status)

	var found model.Booking
	decodeData(t, resp, &found)
	assert.Equal(t, booking.ID, found.ID)

	// Admin confirms it
	status, resp = makeRequest(t, srv, "PATCH",
		fmt.Sprintf("/admin/bookings/%s/status", booking.ID), map[string]interface{}{
			"status": "confirmed",
		}, token)
	require.Equal(t, http.StatusOK, status)
	decodeData(t, resp, &found)
	assert.Equal(t, model.BookingStatusConfirmed, found.Status)
}

func TestBookingCapacityExhaustion(t *testing.T) {
	srv := newTestServer(t)
	token := adminToken(t)
	date, dayOfWeek := slotInAWeek()

	status, _ := makeRequest(t, srv, "POST", "/admin/templates", map[string]interface{}{
		"day_of_week": dayOfWeek,
		"start_time":  "13:00",
		"end_time":    "14:00",
		"capacity":    1,
	}, token)
	require.Equal(t, http.StatusCreated, status)

	book := func(name string) (int, apiResponse) {
		return makeRequest(t, srv, "POST", "/bookings", map[string]interface{}{
			"date":           date,
			"time":           "13:00",
			"customer_name":  name,
			"customer_phone": "+4740012345",
			"purpose":        "Lumber pickup",
		}, "")
	}

	status, _ = book("Ola Nordmann")
	require.Equal(t, http.StatusCreated, status)

	status, resp := book("Kari Nordmann")
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "slot_full", resp.errorCode())
	assert.NotEmpty(t, resp.Error["hint"], "rejection carries a retry hint")

	// The full slot still shows up, marked unavailable
	status, resp = makeRequest(t, srv, "GET", "/availability?date="+date, nil, "")
	require.Equal(t, http.StatusOK, status)

	var view model.AvailabilityView
	decodeData(t, resp, &view)
	require.Len(t, view.Slots, 1)
	assert.False(t, view.Slots[0].Available)
	assert.Equal(t, 0, view.Slots[0].Remaining)
}

func TestBookingValidationErrors(t *testing.T) {
	srv := newTestServer(t)
	date, _ := slotInAWeek()

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"missing name", map[string]interface{}{
			"date": date, "time": "09:00", "customer_phone": "+4740012345", "purpose": "Pickup",
		}},
		{"bad email", map[string]interface{}{
			"date": date, "time": "09:00", "customer_name": "Ola", "customer_phone": "+4740012345",
			"customer_email": "not-an-email", "purpose": "Pickup",
		}},
		{"bad date format", map[string]interface{}{
			"date": "07.06.2025", "time": "09:00", "customer_name": "Ola",
			"customer_phone": "+4740012345", "purpose": "Pickup",
		}},
		{"time not offered", map[string]interface{}{
			"date": date, "time": "03:00", "customer_name": "Ola",
			"customer_phone": "+4740012345", "purpose": "Pickup",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := makeRequest(t, srv, "POST", "/bookings", tt.body, "")
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, "validation_failed", resp.errorCode())
		})
	}
}

func TestBookingLookupErrors(t *testing.T) {
	srv := newTestServer(t)

	status, resp := makeRequest(t, srv, "GET", "/bookings/not-a-code", nil, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "validation_failed", resp.errorCode())

	status, resp = makeRequest(t, srv, "GET", "/bookings/BK-20250604-ABCDE", nil, "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "not_found", resp.errorCode())
}

func TestAdminEndpointsRequireAuth(t *testing.T) {
	srv := newTestServer(t)

	status, resp := makeRequest(t, srv, "GET", "/admin/templates", nil, "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "unauthorized", resp.errorCode())

	status, resp = makeRequest(t, srv, "GET", "/admin/templates", nil, "garbage-token")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "unauthorized", resp.errorCode())
}

func TestTemplateDeactivationRemovesAvailability(t *testing.T) {
	srv := newTestServer(t)
	token := adminToken(t)
	date, dayOfWeek := slotInAWeek()

	status, resp := makeRequest(t, srv, "POST", "/admin/templates", map[string]interface{}{
		"day_of_week": dayOfWeek,
		"start_time":  "09:00",
		"end_time":    "10:00",
		"capacity":    3,
	}, token)
	require.Equal(t, http.StatusCreated, status)

	var tpl model.SlotTemplate
	decodeData(t, resp, &tpl)

	status, _ = makeRequest(t, srv, "DELETE", "/admin/templates/"+tpl.ID.String(), nil, token)
	require.Equal(t, http.StatusOK, status)

	status, resp = makeRequest(t, srv, "GET", "/availability?date="+date, nil, "")
	require.Equal(t, http.StatusOK, status)

	var view model.AvailabilityView
	decodeData(t, resp, &view)
	assert.Empty(t, view.Slots)
}
