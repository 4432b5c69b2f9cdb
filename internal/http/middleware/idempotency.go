package middleware

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey carries the client-chosen key for unsafe requests.
const HeaderIdempotencyKey = "Idempotency-Key"

// HeaderIdempotencyReplayed is set to "true" on responses served from a
// previously completed request.
const HeaderIdempotencyReplayed = "Idempotency-Replayed"

const (
	ctxKeyIdemKey      = "idem.key"
	ctxKeyIdemScope    = "idem.scope"
	ctxKeyIdemResource = "idem.resource"
)

var defaultKeyPattern = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)

// IdempotencyOptions configures header validation.
type IdempotencyOptions struct {
	// MaxLen caps the key length; <= 0 means 200.
	MaxLen int
	// Pattern restricts allowed characters; nil means ^[A-Za-z0-9._~\-:]+$.
	Pattern *regexp.Regexp
}

// IdempotencyLookup reports the resource created by an earlier request with
// the same (clientID, scope, key) whose replay window is still open at now.
// Errors are treated as "not found" so lookups never block a request.
type IdempotencyLookup func(ctx context.Context, clientID, scope, key string, now time.Time) (resourceID uint, found bool, err error)

// IdempotencyValidator validates the Idempotency-Key header on POST, PUT and
// PATCH requests and stashes key and scope ("METHOD /route") for handlers.
// When lookup finds a prior result the resource ID is stashed too; the handler
// then serves the replay and the rate limiter lets it through.
//
// Missing header: no-op. Malformed header: 400 bad_idempotency_key.
func IdempotencyValidator(opts IdempotencyOptions, lookup IdempotencyLookup) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = 200
	}
	pat := opts.Pattern
	if pat == nil {
		pat = defaultKeyPattern
	}

	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
		default:
			c.Next()
			return
		}
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"request_id": RequestIDFrom(c),
				"code":       "bad_idempotency_key",
				"message":    "invalid Idempotency-Key",
			})
			return
		}

		scope := c.Request.Method + " " + routeOf(c)
		c.Set(ctxKeyIdemKey, key)
		c.Set(ctxKeyIdemScope, scope)

		if lookup != nil {
			id, found, err := lookup(c.Request.Context(), ClientIDFrom(c), scope, key, time.Now().UTC())
			if err == nil && found {
				c.Set(ctxKeyIdemResource, id)
			}
		}
		c.Next()
	}
}

// IdempotencyFrom returns the validated key and its scope.
func IdempotencyFrom(c *gin.Context) (key, scope string, ok bool) {
	key = c.GetString(ctxKeyIdemKey)
	scope = c.GetString(ctxKeyIdemScope)
	return key, scope, key != ""
}

// ReplayedResource returns the resource ID recorded for this request's key,
// if any.
func ReplayedResource(c *gin.Context) (uint, bool) {
	v, ok := c.Get(ctxKeyIdemResource)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// IsReplay reports whether the request repeats a completed one.
func IsReplay(c *gin.Context) bool {
	_, ok := ReplayedResource(c)
	return ok
}
