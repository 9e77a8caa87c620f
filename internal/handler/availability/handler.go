package availability

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/brickmart/booking-api/internal/model"
	"github.com/brickmart/booking-api/internal/service/availability"
	apperrors "github.com/brickmart/booking-api/pkg/errors"
	"github.com/brickmart/booking-api/pkg/httputil"
)

type Handler struct {
	service *availability.Service
}

func NewHandler(service *availability.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/availability", h.GetAvailability)
}

// GetAvailability returns the slot-by-slot picture for a single calendar day.
// Full slots are included with available=false so the client can render them
// greyed out rather than missing.
func (h *Handler) GetAvailability(c *gin.Context) {
	raw := c.Query("date")
	if raw == "" {
		httputil.RespondWithError(c, apperrors.NewValidation("date query parameter is required"))
		return
	}

	date, err := time.ParseInLocation(model.DateFormat, raw, time.Local)
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation("date must be formatted as YYYY-MM-DD"))
		return
	}

	view, err := h.service.GetAvailability(c.Request.Context(), date)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, view)
}
