package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestTimeoutSlowHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), Timeout(TimeoutConfig{Duration: 20 * time.Millisecond}))

	release := make(chan struct{})
	handlerDone := make(chan struct{})
	r.GET("/slow", func(c *gin.Context) {
		<-release
		c.JSON(http.StatusOK, gin.H{"late": true})
		close(handlerDone)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/slow", nil))

	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	assert.Contains(t, w.Body.String(), "request timeout")

	// The handler finishes after the deadline response went out; its
	// write must be discarded, not appended to the timeout body.
	body := w.Body.String()
	close(release)
	<-handlerDone
	assert.Equal(t, body, w.Body.String())
}

func TestTimeoutFastHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Timeout(TimeoutConfig{Duration: time.Second}))
	r.GET("/fast", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fast", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}
