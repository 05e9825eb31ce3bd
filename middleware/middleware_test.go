// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/a-h/templ"

	"github.com/danielhkuo/quickly-seed/models"
)

// captureLogs routes the default logger into a buffer for the test
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestWithLoggingRecordsStatus(t *testing.T) {
	logs := captureLogs(t)
	handler := WithLogging(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("locked"))
	})

	req := httptest.NewRequest("POST", "/stages/s1/seeding", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	w := httptest.NewRecorder()
	handler(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("Expected first status to win, got %d", w.Code)
	}
	if w.Body.String() != "locked" {
		t.Errorf("Expected body to pass through, got %q", w.Body.String())
	}

	var completed map[string]any
	for _, line := range strings.Split(strings.TrimSpace(logs.String()), "\n") {
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("Failed to parse log line %q: %v", line, err)
		}
		if entry["msg"] == "request started" && entry["remote"] != "203.0.113.7" {
			t.Errorf("Expected remote 203.0.113.7, got %v", entry["remote"])
		}
		if entry["msg"] == "request completed" {
			completed = entry
		}
	}
	if completed == nil {
		t.Fatal("Expected a completion log line")
	}
	if completed["status"] != float64(http.StatusConflict) {
		t.Errorf("Expected logged status 409, got %v", completed["status"])
	}
}

func TestWithLoggingDefaultsToOK(t *testing.T) {
	logs := captureLogs(t)
	handler := WithLogging(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest("GET", "/health", nil))

	if !strings.Contains(logs.String(), `"status":200`) {
		t.Errorf("Expected status 200 to be logged, got %s", logs.String())
	}
}

func TestStatusRecorderUnwraps(t *testing.T) {
	w := httptest.NewRecorder()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	if err := http.NewResponseController(rec).Flush(); err != nil {
		t.Errorf("Expected Flush through the recorder, got %v", err)
	}
	if !w.Flushed {
		t.Error("Expected the underlying writer to be flushed")
	}
}

func TestErrorResponse(t *testing.T) {
	w := httptest.NewRecorder()
	ErrorResponse(w, http.StatusConflict, "Seeding is locked once matches are reported")

	if w.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", w.Code)
	}
	if w.Header().Get("Content-Type") != "application/json" {
		t.Errorf("Expected JSON content type, got %q", w.Header().Get("Content-Type"))
	}
	var resp models.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Error != "Conflict" || resp.Message != "Seeding is locked once matches are reported" {
		t.Errorf("Unexpected error body %+v", resp)
	}
}

func TestParseJSONBody(t *testing.T) {
	var req models.ViewEventRequest
	r := httptest.NewRequest("POST", "/views/v1/events", strings.NewReader(`{"type":"drop","source":"#a","extra":1}`))
	if err := ParseJSONBody(r, &req); err != nil {
		t.Fatalf("ParseJSONBody() error = %v", err)
	}
	if req.Type != "drop" || req.Source != "#a" {
		t.Errorf("Unexpected request %+v", req)
	}

	r = httptest.NewRequest("POST", "/views/v1/events", strings.NewReader(`{"type":`))
	if err := ParseJSONBody(r, &req); err == nil {
		t.Error("Expected error for truncated JSON")
	}
}

func TestCORS(t *testing.T) {
	nextCalled := false
	handler := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
	}))

	t.Run("preflight allows admin and htmx headers", func(t *testing.T) {
		nextCalled = false
		req := httptest.NewRequest("OPTIONS", "/views/v1/events", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}
		if nextCalled {
			t.Error("Expected preflight to stop before the handler")
		}
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
			t.Errorf("Expected the origin to be reflected, got %q", got)
		}
		allowed := w.Header().Get("Access-Control-Allow-Headers")
		for _, h := range []string{"X-Admin-Key", "HX-Request", "HX-Target"} {
			if !strings.Contains(allowed, h) {
				t.Errorf("Expected %s in allowed headers, got %q", h, allowed)
			}
		}
		if !strings.Contains(w.Header().Get("Access-Control-Allow-Methods"), "DELETE") {
			t.Error("Expected DELETE to be allowed for closing views")
		}
	})

	t.Run("request without origin", func(t *testing.T) {
		nextCalled = false
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

		if !nextCalled {
			t.Error("Expected the handler to run")
		}
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
			t.Errorf("Expected wildcard origin, got %q", got)
		}
	})
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		expected   string
	}{
		{"first forwarded address", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, "10.0.0.2:1234", "203.0.113.7"},
		{"real ip header", map[string]string{"X-Real-IP": "198.51.100.4"}, "10.0.0.2:1234", "198.51.100.4"},
		{"remote address without port", nil, "192.0.2.9:5555", "192.0.2.9"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tc.remoteAddr
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			if got := GetClientIP(req); got != tc.expected {
				t.Errorf("Expected %s, got %s", tc.expected, got)
			}
		})
	}
}

func TestHTMLResponse(t *testing.T) {
	component := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, "<p>"+templ.EscapeString("<seeded>")+"</p>")
		return err
	})

	w := httptest.NewRecorder()
	HTMLResponse(w, httptest.NewRequest("GET", "/", nil), http.StatusNotFound, component)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
	if !strings.HasPrefix(w.Header().Get("Content-Type"), "text/html") {
		t.Errorf("Expected HTML content type, got %q", w.Header().Get("Content-Type"))
	}
	if w.Body.String() != "<p>&lt;seeded&gt;</p>" {
		t.Errorf("Unexpected body %q", w.Body.String())
	}
}

func TestHTMLFragment(t *testing.T) {
	w := httptest.NewRecorder()
	HTMLFragment(w, http.StatusOK, `<div id="sortable-seeding"></div>`)

	if w.Header().Get("Content-Type") != "text/html; charset=utf-8" {
		t.Errorf("Unexpected content type %q", w.Header().Get("Content-Type"))
	}
	if w.Body.String() != `<div id="sortable-seeding"></div>` {
		t.Errorf("Unexpected body %q", w.Body.String())
	}
}
