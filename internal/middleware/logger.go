package middleware

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/PartyProtect/revive-your-hair-website/internal/logger"
	"github.com/gin-gonic/gin"
)

const requestIDHeader = "X-Request-ID"

// Logger attaches a request-scoped logger and logs each request's start and
// completion. Query strings are not logged because stats requests may carry
// the API key there.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" || len(requestID) > 64 {
			requestID = logger.NewRequestID()
		}
		c.Header(requestIDHeader, requestID)

		ctx := logger.WithRequestID(c.Request.Context(), requestID)
		c.Request = c.Request.WithContext(ctx)

		log := logger.FromContext(ctx)
		path := c.Request.URL.Path

		log.Debug("HTTP request started",
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.String("user_agent", c.Request.UserAgent()),
		)

		c.Next()

		duration := time.Since(start)

		logLevel := slog.LevelInfo
		if c.Writer.Status() >= 500 {
			logLevel = slog.LevelError
		} else if c.Writer.Status() >= 400 {
			logLevel = slog.LevelWarn
		}

		log.Log(c.Request.Context(), logLevel, "HTTP request completed",
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("duration", duration),
			slog.Int("size", c.Writer.Size()),
		)

		for _, err := range c.Errors {
			log.Error("Request error occurred",
				slog.String("error", err.Error()),
				slog.String("type", strconv.FormatUint(uint64(err.Type), 10)),
			)
		}
	}
}
