// Package respond standard response envelope and HTTP helpers
package respond

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Response standard response structure
type Response struct {
	Code    int         `json:"code"`              // 0 = success, non-zero = error
	Message string      `json:"message"`           // Human-readable message
	Data    interface{} `json:"data,omitempty"`    // Payload
	Elapsed string      `json:"elapsed,omitempty"` // Request handling time
}

// Success respond with data
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
		Elapsed: elapsed(c),
	})
}

// InvalidParam respond with 400
func InvalidParam(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Response{Code: http.StatusBadRequest, Message: message, Elapsed: elapsed(c)})
}

// Unauthorized respond with 401
func Unauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, Response{Code: http.StatusUnauthorized, Message: message, Elapsed: elapsed(c)})
}

// Forbidden respond with 403
func Forbidden(c *gin.Context, message string) {
	c.JSON(http.StatusForbidden, Response{Code: http.StatusForbidden, Message: message, Elapsed: elapsed(c)})
}

// NotFound respond with 404
func NotFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, Response{Code: http.StatusNotFound, Message: message, Elapsed: elapsed(c)})
}

// Conflict respond with 409
func Conflict(c *gin.Context, message string) {
	c.JSON(http.StatusConflict, Response{Code: http.StatusConflict, Message: message, Elapsed: elapsed(c)})
}

// ServerError respond with 500
func ServerError(c *gin.Context, message string) {
	c.JSON(http.StatusInternalServerError, Response{Code: http.StatusInternalServerError, Message: message, Elapsed: elapsed(c)})
}

const startTimeKey = "request_start_time"

// TimingMiddleware records per-request handling time
func TimingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Set(startTimeKey, start)
		c.Next()
		if d := time.Since(start); d > time.Second {
			log.Printf("[http] slow request: %s %s took %s", c.Request.Method, c.Request.URL.Path, d)
		}
	}
}

func elapsed(c *gin.Context) string {
	if v, ok := c.Get(startTimeKey); ok {
		if start, ok := v.(time.Time); ok {
			return time.Since(start).String()
		}
	}
	return ""
}
