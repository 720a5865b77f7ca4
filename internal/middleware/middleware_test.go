package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"media-editor/internal/metrics"
)

func TestResponseWriter(t *testing.T) {
	w := httptest.NewRecorder()
	rw := newResponseWriter(w)

	if rw.statusCode != http.StatusOK || rw.wroteHeader || rw.bytesWritten != 0 {
		t.Fatalf("unexpected initial state %+v", rw)
	}

	rw.WriteHeader(http.StatusNotFound)
	rw.WriteHeader(http.StatusInternalServerError)
	if rw.statusCode != http.StatusNotFound {
		t.Errorf("statusCode = %d, want the first header 404", rw.statusCode)
	}

	n, err := rw.Write([]byte("test data"))
	if err != nil || n != 9 {
		t.Fatalf("Write() = %d, %v", n, err)
	}
	if rw.bytesWritten != 9 {
		t.Errorf("bytesWritten = %d, want 9", rw.bytesWritten)
	}
}

func TestShouldSkip(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		config LoggingConfig
		want   bool
	}{
		{"regular request", "/api/edits", DefaultLoggingConfig(), false},
		{"health logged when enabled", "/health", LoggingConfig{LogHealthChecks: true}, false},
		{"health skipped when disabled", "/health", LoggingConfig{LogHealthChecks: false}, true},
		{"readyz skipped when disabled", "/readyz", LoggingConfig{LogHealthChecks: false}, true},
		{"configured prefix", "/version", LoggingConfig{SkipPaths: []string{"/version"}, LogHealthChecks: true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shouldSkip(tt.path, tt.config); got != tt.want {
				t.Errorf("shouldSkip(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestFormatLine(t *testing.T) {
	l := NewW3CLogger(DefaultLoggingConfig(), "test")
	req := httptest.NewRequest(http.MethodPost, "/api/edits?x=1", http.NoBody)
	req.RemoteAddr = "10.0.0.5:51234"
	req.Header.Set("User-Agent", "curl/8.0 (linux)\nforged")

	rw := newResponseWriter(httptest.NewRecorder())
	rw.WriteHeader(http.StatusAccepted)
	rw.Write([]byte(`{"id":"abc"}`))

	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	line := l.formatLine(now, req, rw, 15*time.Millisecond)

	want := `2026-03-04 05:06:07 10.0.0.5 POST /api/edits x=1 202 12 15 "curl/8.0 (linux) forged" -`
	if line != want {
		t.Errorf("formatLine() =\n%q\nwant\n%q", line, want)
	}
}

func TestSanitizeLogField(t *testing.T) {
	tests := map[string]string{
		"plain":              "plain",
		"line\nbreak":        "line break",
		"cr\rreturn":         "cr return",
		"nul\x00byte":        "nulbyte",
		"\x1b[31mred\x1b[0m": "[31mred[0m",
		"tab\tkept":          "tab\tkept",
		"bell\x07":           "bell",
	}
	for in, want := range tests {
		if got := sanitizeLogField(in); got != want {
			t.Errorf("sanitizeLogField(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded for", map[string]string{"X-Forwarded-For": "1.2.3.4, 5.6.7.8"}, "9.9.9.9:1", "1.2.3.4"},
		{"real ip", map[string]string{"X-Real-IP": "4.3.2.1"}, "9.9.9.9:1", "4.3.2.1"},
		{"remote addr", nil, "9.9.9.9:1234", "9.9.9.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := getClientIP(req); got != tt.want {
				t.Errorf("getClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoggerPassesThrough(t *testing.T) {
	handler := Logger(DefaultLoggingConfig())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/edits", http.NoBody))
	if w.Code != http.StatusTeapot {
		t.Errorf("status = %d, want 418", w.Code)
	}
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	r := mux.NewRouter()
	r.Use(Metrics(DefaultMetricsConfig()))
	r.HandleFunc("/api/edits/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}).Methods(http.MethodGet)

	counter := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/api/edits/{id}", "404")
	before := testutil.ToFloat64(counter)

	for _, id := range []string{"a", "b", "c"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/edits/"+id, http.NoBody))
	}

	if got := testutil.ToFloat64(counter) - before; got != 3 {
		t.Errorf("route counter increased by %v, want 3", got)
	}
}

func TestMetricsSkipPaths(t *testing.T) {
	called := false
	handler := Metrics(MetricsConfig{SkipPaths: []string{"/health"}})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
	}))

	counter := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/health", "200")
	before := testutil.ToFloat64(counter)

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", http.NoBody))

	if !called {
		t.Error("handler not called")
	}
	if testutil.ToFloat64(counter) != before {
		t.Error("skipped path was recorded")
	}
}

func TestNormalizePath(t *testing.T) {
	tests := map[string]string{
		"/":                    "/",
		"/health":              "/health",
		"/api/edits":           "/api/edits",
		"/api/edits/abc":       "/api/edits/abc",
		"/api/edits/abc/extra": "/api/edits/abc/{path}",
		"/a/b/c/d/e/f":         "/a/b/c/{path}",
	}
	for in, want := range tests {
		if got := normalizePath(in); got != want {
			t.Errorf("normalizePath(%q) = %q, want %q", in, got, want)
		}
	}

	for _, p := range []string{"/x/y/z/1/2/3", "/very/deep/nested/path/structure/file"} {
		if n := strings.Count(normalizePath(p), "/"); n > 4 {
			t.Errorf("normalizePath(%q) kept %d segments", p, n)
		}
	}
}
