// Package middleware contains the Gin middleware shared by the site's HTTP
// layer.
//
// This file provides the correlation ID, the structured access log and panic
// recovery. Recommended order:
//
//  1. RequestID()
//  2. Logger(...)
//  3. Recovery()
//
// Logger stores a request-scoped zerolog.Logger both in the Gin context (key
// "logger", see LoggerFrom) and in the request's context.Context, so services
// can log with log.Ctx(ctx) and inherit request_id and client_ip.
package middleware

import (
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// HeaderRequestID carries the correlation id in both directions.
const HeaderRequestID = "X-Request-ID"

const (
	requestIDKey    = "requestID"
	requestIDHeader = HeaderRequestID
	loggerKey       = "logger"
	// maxQueryLogLength caps the logged raw query in bytes.
	maxQueryLogLength = 2048
	// maxRequestIDLength bounds client supplied correlation IDs.
	maxRequestIDLength = 128
)

// RequestID reuses an incoming X-Request-ID or generates a UUIDv4, then
// echoes it on the response and stores it under "requestID".
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if rid == "" || len(rid) > maxRequestIDLength {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Writer.Header().Set(requestIDHeader, rid)
		c.Next()
	}
}

// LoggerOptions configures Logger.
//
// MaskHeaders adds header names (case-insensitive) whose values are replaced
// with "[REDACTED]"; Authorization, Cookie and Set-Cookie are always masked.
// LogHeaders includes the scrubbed request headers in each access log line.
type LoggerOptions struct {
	MaskHeaders []string
	LogHeaders  bool
}

// Logger writes one structured access log line per request. Query strings and
// referers are scrubbed of e-mail addresses, phone numbers and UUIDs. The
// level follows the outcome: error for 5xx or gin errors, warn for 4xx, info
// otherwise.
func Logger(opts LoggerOptions) gin.HandlerFunc {
	red := NewRedactor(opts.MaskHeaders...)
	return func(c *gin.Context) {
		start := time.Now()

		rid, _ := c.Get(requestIDKey)
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		l := log.With().
			Str("request_id", asString(rid)).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("client_ip", c.ClientIP()).
			Logger()

		c.Set(loggerKey, &l)
		c.Request = c.Request.WithContext(l.WithContext(c.Request.Context()))

		c.Next()

		status := c.Writer.Status()
		ev := l.With().
			Str("user_agent", c.Request.UserAgent()).
			Str("referer", red.Redact(c.Request.Referer())).
			Str("query", truncate(red.Redact(c.Request.URL.RawQuery), maxQueryLogLength)).
			Int64("bytes_in", c.Request.ContentLength).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Int("bytes_out", c.Writer.Size())
		if admin := AdminUsername(c); admin != "" {
			ev = ev.Str("admin", admin)
		}
		if opts.LogHeaders {
			ev = ev.Interface("headers", red.Headers(c.Request.Header))
		}
		el := ev.Logger()

		switch {
		case len(c.Errors) > 0:
			el.Error().Str("errors", c.Errors.String()).Msg("request")
		case status >= 500:
			el.Error().Msg("request")
		case status >= 400:
			el.Warn().Msg("request")
		default:
			el.Info().Msg("request")
		}
	}
}

// Recovery turns a panic into a JSON 500 and logs the stack with the
// request ID. If the response was already started only the status is set.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			v, _ := c.Get(requestIDKey)
			rid := asString(v)
			LoggerFrom(c).Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Msg("panic recovered")

			if c.Writer.Written() {
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
			c.Header(requestIDHeader, rid)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success":    false,
				"request_id": rid,
				"code":       "internal_error",
				"message":    "خطای داخلی سرور",
			})
		}()
		c.Next()
	}
}

// LoggerFrom returns the request-scoped logger set by Logger, or the global
// logger when none is attached.
func LoggerFrom(c *gin.Context) *zerolog.Logger {
	if v, ok := c.Get(loggerKey); ok {
		if lg, ok := v.(*zerolog.Logger); ok {
			return lg
		}
	}
	l := log.With().Logger()
	return &l
}

func asString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// truncate cuts s to max bytes and appends an ellipsis; max <= 0 disables it.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
