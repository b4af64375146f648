package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// captureLogs routes the default logger into a JSON buffer for the test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func lastRecord(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	var rec map[string]any
	if err := json.Unmarshal(lines[len(lines)-1], &rec); err != nil {
		t.Fatalf("log line %q: %v", lines[len(lines)-1], err)
	}
	return rec
}

func TestLoggerLevelFollowsStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
		write  bool
		level  string
	}{
		{"created project", http.StatusCreated, false, "INFO"},
		{"implicit 200 on write", 0, true, "INFO"},
		{"unknown content type", http.StatusNotFound, false, "WARN"},
		{"rate limited", http.StatusTooManyRequests, false, "WARN"},
		{"provider failure", http.StatusBadGateway, false, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureLogs(t)
			handler := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.status != 0 {
					w.WriteHeader(tt.status)
				}
				if tt.write {
					w.Write([]byte(`{"success":true}`))
				}
			}))

			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/projects", nil))

			rec := lastRecord(t, buf)
			if rec["level"] != tt.level {
				t.Errorf("level: got %v, want %s", rec["level"], tt.level)
			}
			want := tt.status
			if want == 0 {
				want = http.StatusOK
			}
			if rec["status"] != float64(want) || rec["method"] != http.MethodPost || rec["path"] != "/api/projects" {
				t.Errorf("record: %v", rec)
			}
			if rr.Code != want {
				t.Errorf("response status: got %d, want %d", rr.Code, want)
			}
		})
	}
}

func TestLoggerRecordsRequestID(t *testing.T) {
	buf := captureLogs(t)
	handler := chimw.RequestID(Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/niches", nil))

	if id, _ := lastRecord(t, buf)["request_id"].(string); id == "" {
		t.Error("request_id attribute missing")
	}
}

func TestLoggerWithoutRequestID(t *testing.T) {
	buf := captureLogs(t)
	Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).
		ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	if _, ok := lastRecord(t, buf)["request_id"]; ok {
		t.Error("request_id should be absent without chimw.RequestID")
	}
}

func TestResponseWriterKeepsFirstStatus(t *testing.T) {
	rw := &responseWriter{ResponseWriter: httptest.NewRecorder(), statusCode: http.StatusOK}

	rw.WriteHeader(http.StatusUnprocessableEntity)
	rw.WriteHeader(http.StatusInternalServerError)
	rw.Write([]byte(`{"success":false}`))

	if rw.statusCode != http.StatusUnprocessableEntity || !rw.written {
		t.Errorf("got status %d written=%v", rw.statusCode, rw.written)
	}
}
