package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"

	"github.com/chachabrian/swiftparcel-backend/internal/logger"
)

const LoggerKey = "logger"

// ContextLogger stores a request-scoped child of base on the gin context and
// on the request context.
func ContextLogger(base zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		l := base.With().
			Str("request_id", GetRequestID(c)).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Str("ip", c.ClientIP()).
			Logger()

		if txn := newrelic.FromContext(c.Request.Context()); txn != nil {
			l = logger.WithTraceContext(l, txn)
		}

		c.Set(LoggerKey, &l)
		c.Request = c.Request.WithContext(l.WithContext(c.Request.Context()))
		c.Next()
	}
}

// GetLogger returns the request logger, or a no-op logger when
// ContextLogger did not run.
func GetLogger(c *gin.Context) *zerolog.Logger {
	if l, ok := c.Get(LoggerKey); ok {
		if zl, ok := l.(*zerolog.Logger); ok {
			return zl
		}
	}
	nop := zerolog.Nop()
	return &nop
}

// RequestLogger writes one API line per request at a level chosen by the
// response status. The query string is left out since it may carry a token.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		l := GetLogger(c)

		var e *zerolog.Event
		switch {
		case status >= 500:
			e = l.Error()
			if err := c.Errors.Last(); err != nil {
				e = e.Err(err.Err)
			}
		case status >= 400:
			e = l.Warn()
		default:
			e = l.Info()
		}

		if email := GetEmail(c); email != "" {
			e = e.Str("email", email)
		}

		e.Dur("latency", time.Since(start)).
			Int("status", status).
			Str("uri", c.Request.URL.Path).
			Str("user_agent", c.Request.UserAgent()).
			Msg("API")
	}
}
