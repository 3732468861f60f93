package middleware

import (
	"bytes"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevOut, prevFlags := log.Writer(), log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(prevOut)
		log.SetFlags(prevFlags)
	})
	return &buf
}

func TestLoggingMiddlewareRecordsStatus(t *testing.T) {
	buf := captureLog(t)

	handler := LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "No data available in the database", http.StatusNotFound)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/get_currencies", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status to pass through, got %d", rec.Code)
	}
	line := buf.String()
	if !strings.HasPrefix(line, "[HTTP] GET /get_currencies 404 ") {
		t.Fatalf("unexpected log line %q", line)
	}
}

func TestLoggingMiddlewareDefaultsToOK(t *testing.T) {
	buf := captureLog(t)

	handler := LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if !strings.Contains(buf.String(), " 200 2B ") {
		t.Fatalf("expected 200 and byte count in %q", buf.String())
	}
}

func TestRecovererReturns500(t *testing.T) {
	captureLog(t)

	handler := Recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/reload_currencies", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
