package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brickmart/booking-api/pkg/errors"
)

func record(fn func(c *gin.Context)) (*httptest.ResponseRecorder, Response) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	fn(c)

	var resp Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		panic(err)
	}
	return w, resp
}

func TestRespondWithSuccess(t *testing.T) {
	w, resp := record(func(c *gin.Context) {
		RespondWithSuccess(c, gin.H{"value": 42})
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Error)
}

func TestRespondWithError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantHint   bool
	}{
		{"validation", errors.NewValidation("bad date"), http.StatusBadRequest, "validation_failed", false},
		{"slot full", errors.NewSlotFull("2025-06-04", "09:00"), http.StatusConflict, "slot_full", true},
		{"conflict", errors.NewConflict("duplicate", nil), http.StatusConflict, "conflict", false},
		{"not found", errors.NewNotFound("booking", nil), http.StatusNotFound, "not_found", false},
		{"storage", errors.NewStorage(nil), http.StatusServiceUnavailable, "storage_unavailable", true},
		{"plain error", assert.AnError, http.StatusInternalServerError, "internal", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := record(func(c *gin.Context) {
				RespondWithError(c, tt.err)
			})

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			if tt.wantHint {
				assert.NotEmpty(t, resp.Error.Hint)
			} else {
				assert.Empty(t, resp.Error.Hint)
			}
		})
	}
}

func TestRespondWithErrorHidesInternals(t *testing.T) {
	_, resp := record(func(c *gin.Context) {
		RespondWithError(c, errors.NewInternal(assert.AnError))
	})

	require.NotNil(t, resp.Error)
	assert.NotContains(t, resp.Error.Message, assert.AnError.Error())
}
