package web

import (
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDCtxKey = "request_id"
)

// RequestLogger tags every request with an ID and logs its outcome.
func RequestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDCtxKey, requestID)
		c.Header(requestIDHeader, requestID)

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		event := logger.Info()
		if status >= http.StatusInternalServerError {
			event = logger.Error()
		}
		event.
			Str("request_id", requestID).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("handled request")
	}
}

// AllowMethods rejects requests whose method isn't listed with
// 405 Method Not Allowed.
func AllowMethods(methods ...string) gin.HandlerFunc {
	allow := strings.Join(methods, ", ")
	return func(c *gin.Context) {
		if slices.Contains(methods, c.Request.Method) {
			c.Next()
			return
		}
		c.Header("Allow", allow)
		abort(c, newStatusTextError(http.StatusMethodNotAllowed))
	}
}
