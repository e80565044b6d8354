package server

import (
	"strconv"
	"time"

	"github.com/MarcoPoloResearchLab/notebot/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	requestIDHeader     = "X-Request-ID"
	requestIDContextKey = "notebot_request_id"
	maxRequestIDLength  = 128
)

// requestIDMiddleware propagates the caller's request id or issues a UUIDv7.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" || len(requestID) > maxRequestIDLength {
			if generated, err := uuid.NewV7(); err == nil {
				requestID = generated.String()
			} else {
				requestID = uuid.NewString()
			}
		}
		c.Set(requestIDContextKey, requestID)
		c.Header(requestIDHeader, requestID)
		c.Next()
	}
}

func requestIDField(c *gin.Context) zap.Field {
	return zap.String("request_id", c.GetString(requestIDContextKey))
}

func metricsMiddleware(registry *metrics.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()
		registry.Counter("http_requests_total").Inc()
		registry.Counter("http_responses_" + strconv.Itoa(c.Writer.Status())).Inc()
		registry.Latency("http_request_ms").Observe(time.Since(started))
	}
}
