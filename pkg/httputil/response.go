package httputil

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/brickmart/booking-api/pkg/errors"
)

// Response wraps all API responses
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}

// Error represents API error
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
}

// RespondWithSuccess sends a success response
func RespondWithSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

// RespondWithCreated sends a 201 response
func RespondWithCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    data,
	})
}

// RespondWithError maps an error onto the API error envelope. Slot-full
// responses carry a hint telling the client to re-fetch availability: the
// slot it saw may have just filled, retrying the same slot is pointless.
func RespondWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	out := Error{Code: "internal", Message: "internal server error"}

	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		switch appErr.Code {
		case errors.ErrValidation, errors.ErrBadRequest:
			status = http.StatusBadRequest
			out = Error{Code: "validation_failed", Message: appErr.Message}
		case errors.ErrSlotFull:
			status = http.StatusConflict
			out = Error{
				Code:    "slot_full",
				Message: appErr.Message,
				Hint:    "re-fetch availability and pick another slot",
			}
		case errors.ErrConflict:
			status = http.StatusConflict
			out = Error{Code: "conflict", Message: appErr.Message}
		case errors.ErrNotFound:
			status = http.StatusNotFound
			out = Error{Code: "not_found", Message: appErr.Message}
		case errors.ErrUnauthorized:
			status = http.StatusUnauthorized
			out = Error{Code: "unauthorized", Message: appErr.Message}
		case errors.ErrForbidden:
			status = http.StatusForbidden
			out = Error{Code: "forbidden", Message: appErr.Message}
		case errors.ErrStorage:
			status = http.StatusServiceUnavailable
			out = Error{
				Code:    "storage_unavailable",
				Message: appErr.Message,
				Hint:    "transient failure, safe to retry the request",
			}
		}
	}

	c.JSON(status, Response{
		Success: false,
		Error:   &out,
	})
}
