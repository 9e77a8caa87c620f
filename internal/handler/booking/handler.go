package booking

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/brickmart/booking-api/internal/model"
	"github.com/brickmart/booking-api/internal/service/booking"
	apperrors "github.com/brickmart/booking-api/pkg/errors"
	"github.com/brickmart/booking-api/pkg/httputil"
)

type Handler struct {
	service *booking.Service
}

func NewHandler(service *booking.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the public booking endpoints
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/bookings", h.SubmitBooking)
	r.GET("/bookings/:humanID", h.GetBooking)
}

// RegisterAdminRoutes mounts the back-office endpoints
func (h *Handler) RegisterAdminRoutes(r *gin.RouterGroup) {
	r.GET("/bookings", h.ListBookings)
	r.PATCH("/bookings/:id/status", h.UpdateStatus)
}

func (h *Handler) SubmitBooking(c *gin.Context) {
	var req model.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation(err.Error()))
		return
	}

	b, err := h.service.SubmitBooking(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, b)
}

func (h *Handler) GetBooking(c *gin.Context) {
	b, err := h.service.GetBookingByCode(c.Request.Context(), c.Param("humanID"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, b)
}

func (h *Handler) ListBookings(c *gin.Context) {
	filters := &model.BookingFilters{}

	if raw := c.Query("date"); raw != "" {
		date, err := time.ParseInLocation(model.DateFormat, raw, time.Local)
		if err != nil {
			httputil.RespondWithError(c, apperrors.NewValidation("date must be formatted as YYYY-MM-DD"))
			return
		}
		filters.Date = &date
	}

	if raw := c.Query("status"); raw != "" {
		status := model.BookingStatus(raw)
		if !status.Valid() {
			httputil.RespondWithError(c, apperrors.NewValidation("unknown booking status"))
			return
		}
		filters.Status = &status
	}

	bookings, err := h.service.ListBookings(c.Request.Context(), filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, bookings)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation("invalid booking ID"))
		return
	}

	var req model.UpdateBookingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation(err.Error()))
		return
	}

	b, err := h.service.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, b)
}
