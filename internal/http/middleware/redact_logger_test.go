package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRedact_Patterns(t *testing.T) {
	in := "id=3f2504e0-4f89-41d3-9a0c-0305e82c3301&email=jane.doe@example.com&phone=212-555-1212"
	out := redact(in)
	for _, leak := range []string{"3f2504e0", "jane.doe@example.com", "555-1212"} {
		if strings.Contains(out, leak) {
			t.Fatalf("redact leaked %q: %s", leak, out)
		}
	}
	for _, tag := range []string{"[REDACTED:id]", "[REDACTED:email]", "[REDACTED:phone]"} {
		if !strings.Contains(out, tag) {
			t.Fatalf("redact missing %s: %s", tag, out)
		}
	}
	if redact("") != "" || redact("name=TypeError") != "name=TypeError" {
		t.Fatalf("redact should leave clean input alone")
	}
}

func TestRedactingLogger_ScrubsAndAttachesScopedLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(RequestID(), ClientID(), RedactingLogger(RedactOptions{MaskHeaders: []string{" x-api-key ", ""}}))
	r.GET("/errors/by-name", func(c *gin.Context) {
		LoggerFrom(c).Info().Msg("inside handler")
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/errors/by-name?name=x&contact=bob@example.org", nil)
	req.Header.Set("Authorization", "Bearer secret")
	req.Header.Set("X-API-Key", "k-123")
	req.Header.Set("X-Note", "call 212-555-1212")
	req.Header.Set(HeaderRequestID, "rid-log")
	req.Header.Set(HeaderClientID, "ops@example.org")
	r.ServeHTTP(w, req)

	out := buf.String()
	for _, leak := range []string{"secret", "k-123", "bob@example.org", "555-1212", "ops@example.org"} {
		if strings.Contains(out, leak) {
			t.Fatalf("log leaked %q: %s", leak, out)
		}
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected handler log + access log, got %d lines", len(lines))
	}
	if !strings.Contains(lines[0], `"request_id":"rid-log"`) || !strings.Contains(lines[0], `"path":"/errors/by-name"`) {
		t.Fatalf("handler log not request-scoped: %s", lines[0])
	}

	m := lastLogLine(t, buf)
	if m["message"] != "http_request" || m["level"] != "info" || m["status"] != float64(200) {
		t.Fatalf("unexpected access log: %#v", m)
	}
	headers := m["headers"].(map[string]any)
	if headers["Authorization"] != "[REDACTED]" || headers["X-Api-Key"] != "[REDACTED]" {
		t.Fatalf("headers not masked: %#v", headers)
	}
}

func TestRedactingLogger_Levels(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(RedactingLogger(RedactOptions{}))
	r.GET("/warn", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/err", func(c *gin.Context) { c.Status(http.StatusServiceUnavailable) })
	r.GET("/ginerr", func(c *gin.Context) {
		_ = c.Error(errors.New("store down"))
		c.Status(http.StatusOK)
	})

	cases := map[string]string{"/warn": "warn", "/err": "error", "/ginerr": "error"}
	for path, want := range cases {
		buf.Reset()
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
		m := lastLogLine(t, buf)
		if m["level"] != want {
			t.Fatalf("%s: level %v, want %s", path, m["level"], want)
		}
		if path == "/ginerr" && !strings.Contains(m["errors"].(string), "store down") {
			t.Fatalf("gin errors not logged: %#v", m)
		}
	}
}
