package middleware

import (
	"time" // Request latency

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/google/uuid"     // Request id generation
	"github.com/sirupsen/logrus" // Logging library
)

// RequestIDHeader carries the request id in both directions
const RequestIDHeader = "X-Request-ID"

// RequestIDKey is the gin context key holding the request id
const RequestIDKey = "requestID"

// RequestIDMiddleware tags each request with an id and logs it on completion
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader) // Reuse the caller's id when present
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Set(RequestIDKey, id)
		c.Header(RequestIDHeader, id)
		start := time.Now()
		c.Next()
		logrus.WithFields(logrus.Fields{
			"request_id": id,
			"method":     c.Request.Method,
			"path":       c.FullPath(),
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
		}).Info("Request handled")
	}
}

// RequestLogger returns a logrus entry carrying the request id of c
func RequestLogger(c *gin.Context) *logrus.Entry {
	return logrus.WithField("request_id", c.GetString(RequestIDKey))
}
