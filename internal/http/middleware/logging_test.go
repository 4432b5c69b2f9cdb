package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func captureLogger(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })
	log.Logger = zerolog.New(&buf)
	return &buf
}

// lastLogLine decodes the final JSON line written to buf.
func lastLogLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	var m map[string]any
	if err := json.Unmarshal([]byte(lines[len(lines)-1]), &m); err != nil {
		t.Fatalf("bad log line %q: %v", lines[len(lines)-1], err)
	}
	return m
}

func TestRequestID_GenerateAndPropagate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/rid", func(c *gin.Context) {
		if RequestIDFrom(c) == "" {
			t.Fatalf("requestID not set in context")
		}
		c.String(http.StatusOK, RequestIDFrom(c))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/rid", nil))
	if gen := w.Header().Get(HeaderRequestID); gen == "" || gen != w.Body.String() {
		t.Fatalf("expected generated id echoed, header=%q body=%q", gen, w.Body.String())
	}

	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/rid", nil)
	req2.Header.Set(strings.ToLower(HeaderRequestID), "abc-123")
	r.ServeHTTP(w2, req2)
	if got := w2.Header().Get(HeaderRequestID); got != "abc-123" {
		t.Fatalf("expected propagated request id, got %q", got)
	}

	w3 := httptest.NewRecorder()
	req3 := httptest.NewRequest(http.MethodGet, "/rid", nil)
	req3.Header.Set(HeaderRequestID, strings.Repeat("x", 300))
	r.ServeHTTP(w3, req3)
	if got := w3.Header().Get(HeaderRequestID); len(got) == 300 {
		t.Fatalf("oversized request id should be replaced")
	}
}

func TestClientID_HeaderThenIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ClientID())
	r.GET("/who", func(c *gin.Context) { c.String(http.StatusOK, ClientIDFrom(c)) })

	cases := []struct {
		header string
		want   string
	}{
		{"team-a", "team-a"},
		{"  ", "ip:192.0.2.1"},
		{strings.Repeat("z", maxClientIDLength+1), "ip:192.0.2.1"},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/who", nil)
		req.RemoteAddr = "192.0.2.1:1234"
		if tc.header != "" {
			req.Header.Set(HeaderClientID, tc.header)
		}
		r.ServeHTTP(w, req)
		if w.Body.String() != tc.want {
			t.Fatalf("header %q: got %q want %q", tc.header, w.Body.String(), tc.want)
		}
	}
}

func TestClientIDFrom_WithoutMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/who", func(c *gin.Context) { c.String(http.StatusOK, ClientIDFrom(c)) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/who", nil)
	req.RemoteAddr = "198.51.100.7:80"
	r.ServeHTTP(w, req)
	if w.Body.String() != "ip:198.51.100.7" {
		t.Fatalf("unexpected fallback: %q", w.Body.String())
	}
}

func TestRecovery_WritesEnvelopeAndLogs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(RequestID(), Recovery())
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set(HeaderRequestID, "rid-p")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if body["code"] != "internal_error" || body["request_id"] != "rid-p" {
		t.Fatalf("unexpected body: %#v", body)
	}
	m := lastLogLine(t, buf)
	if m["panic"] != "kaboom" || m["request_id"] != "rid-p" {
		t.Fatalf("panic log missing fields: %#v", m)
	}
}

func TestRecovery_AfterWriteKeepsStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	_ = captureLogger(t)

	r := gin.New()
	r.Use(Recovery())
	r.GET("/late", func(c *gin.Context) {
		c.String(http.StatusOK, "partial")
		panic("late")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/late", nil))
	if w.Body.String() != "partial" {
		t.Fatalf("body should not be rewritten after write, got %q", w.Body.String())
	}
}

func TestLoggerFrom_Fallback(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if LoggerFrom(c) == nil {
		t.Fatalf("LoggerFrom should never return nil")
	}
	c.Set(loggerKey, "not a logger")
	if LoggerFrom(c) == nil {
		t.Fatalf("LoggerFrom should ignore wrong types")
	}
}

func TestTruncateAndRouteOf(t *testing.T) {
	if truncate("abc", 0) != "abc" || truncate("abc", 5) != "abc" {
		t.Fatalf("truncate should be a no-op within bounds")
	}
	if got := truncate("abcdef", 3); got != "abc…" {
		t.Fatalf("truncate got %q", got)
	}

	gin.SetMode(gin.TestMode)
	r := gin.New()
	var seen string
	r.GET("/errors/:id", func(c *gin.Context) { seen = routeOf(c) })
	r.NoRoute(func(c *gin.Context) { seen = routeOf(c) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/errors/42", nil))
	if seen != "/errors/:id" {
		t.Fatalf("expected route template, got %q", seen)
	}
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))
	if seen != "/nope" {
		t.Fatalf("expected raw path fallback, got %q", seen)
	}
}
