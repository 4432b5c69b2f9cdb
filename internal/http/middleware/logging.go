// Package middleware contains the Gin middleware used by the catalog HTTP
// layer.
//
// This file covers request identity: correlation IDs, caller identity for
// rate limiting and idempotency, panic recovery, and the request-scoped
// logger lookup. Recommended order is RequestID, ClientID, RedactingLogger,
// Recovery so that panics are logged with both identifiers.
package middleware

import (
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-error-catalog/internal/sysutil"
)

const (
	requestIDKey = "requestID"
	clientIDKey  = "clientID"
	loggerKey    = "logger"

	// HeaderRequestID carries the correlation ID in both directions.
	HeaderRequestID = "X-Request-ID"
	// HeaderClientID lets API clients identify themselves for per-client
	// rate limits and idempotency scopes.
	HeaderClientID = "X-Client-ID"

	maxQueryLogLength = 2048
	maxClientIDLength = 128
)

// RequestID reuses an incoming X-Request-ID or generates a UUIDv4, stores it
// in the Gin context and echoes it on the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := strings.TrimSpace(c.GetHeader(HeaderRequestID))
		if rid == "" || len(rid) > 200 {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Writer.Header().Set(HeaderRequestID, rid)
		c.Next()
	}
}

// ClientID resolves the caller identity: the X-Client-ID header when it is
// present and short enough, otherwise "ip:<client ip>".
func ClientID() gin.HandlerFunc {
	return func(c *gin.Context) {
		hdr := strings.TrimSpace(c.GetHeader(HeaderClientID))
		if len(hdr) > maxClientIDLength {
			hdr = ""
		}
		id := sysutil.FirstNonEmpty(hdr, "ip:"+c.ClientIP())
		c.Set(clientIDKey, id)
		c.Next()
	}
}

// RequestIDFrom returns the correlation ID stored by RequestID, or "".
func RequestIDFrom(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// ClientIDFrom returns the identity stored by ClientID, falling back to the
// client IP when the middleware did not run.
func ClientIDFrom(c *gin.Context) string {
	if s := c.GetString(clientIDKey); s != "" {
		return s
	}
	return "ip:" + c.ClientIP()
}

// Recovery turns panics into a JSON 500 using the standard error envelope
// and logs the stack with the request ID.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			rid := RequestIDFrom(c)
			LoggerFrom(c).Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Msg("panic recovered")

			if c.Writer.Written() {
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
			c.Header(HeaderRequestID, rid)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"request_id": rid,
				"code":       "internal_error",
				"message":    "internal server error",
			})
		}()
		c.Next()
	}
}

// LoggerFrom returns the request-scoped logger attached by RedactingLogger,
// or the global logger when none is attached. The result is never nil.
func LoggerFrom(c *gin.Context) *zerolog.Logger {
	if v, ok := c.Get(loggerKey); ok {
		if lg, ok := v.(*zerolog.Logger); ok {
			return lg
		}
	}
	l := log.With().Str("request_id", RequestIDFrom(c)).Logger()
	return &l
}

// routeOf returns the matched route template, or the raw path for
// unmatched requests.
func routeOf(c *gin.Context) string {
	if p := c.FullPath(); p != "" {
		return p
	}
	return c.Request.URL.Path
}

// truncate caps s at max bytes and appends an ellipsis. max <= 0 disables it.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
