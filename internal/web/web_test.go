package web

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aknowles/ssbball/internal/config"
)

func TestRouter(t *testing.T) {
	dir := t.TempDir()
	for name, content := range map[string]string{
		"index.html":          "<html>calendars</html>",
		"milton-5b-white.ics": "BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n",
		"status.json":         `{"town":"Milton"}`,
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	cfg := config.DefaultConfig()
	cfg.OutputDir = dir
	srv := NewServer(cfg, nil)
	router := srv.Router()

	tests := []struct {
		path     string
		status   int
		contains string
	}{
		{"/health", http.StatusOK, `"status":"ok"`},
		{"/", http.StatusOK, "calendars"},
		{"/milton-5b-white.ics", http.StatusOK, "BEGIN:VCALENDAR"},
		{"/status.json", http.StatusOK, "Milton"},
		{"/missing.ics", http.StatusNotFound, ""},
	}
	for _, tc := range tests {
		req := httptest.NewRequest(http.MethodGet, tc.path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != tc.status {
			t.Errorf("GET %s = %d, want %d", tc.path, rec.Code, tc.status)
		}
		if tc.contains != "" && !strings.Contains(rec.Body.String(), tc.contains) {
			t.Errorf("GET %s body = %q, missing %q", tc.path, rec.Body.String(), tc.contains)
		}
	}
}

func TestRouterCORS(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.OutputDir = t.TempDir()
	router := NewServer(cfg, nil).Router()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://example.org")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("allow-origin = %q", rec.Header().Get("Access-Control-Allow-Origin"))
	}
}
