// Package web hosts the published calendars over HTTP and refreshes
// them on a cron schedule. This is serve mode; scrape mode writes the
// same files and exits.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/robfig/cron/v3"
	"github.com/rs/cors"

	"github.com/aknowles/ssbball/internal/config"
	appLog "github.com/aknowles/ssbball/internal/log"
)

// RefreshFunc runs one pipeline pass and rewrites the output directory.
type RefreshFunc func(ctx context.Context) error

// Server serves the output directory and keeps it fresh.
type Server struct {
	cfg     *config.Config
	refresh RefreshFunc
}

// NewServer constructs a Server around the given refresh function.
func NewServer(cfg *config.Config, refresh RefreshFunc) *Server {
	return &Server{cfg: cfg, refresh: refresh}
}

// Router builds the HTTP handler: health endpoint plus static serving
// of the calendar files. CORS is open so the status page can be
// fetched from anywhere, matching its public GitHub Pages deployment.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	outputDir := s.cfg.OutputDir
	fileServer := http.FileServer(http.Dir(outputDir))
	r.Get("/*", func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path == "/" {
			http.ServeFile(w, req, filepath.Join(outputDir, "index.html"))
			return
		}
		fileServer.ServeHTTP(w, req)
	})

	return cors.AllowAll().Handler(r)
}

// Start runs an initial refresh, schedules periodic refreshes from
// cfg.RefreshCron, and serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if _, err := os.Stat(s.cfg.OutputDir); err != nil {
		if err := os.MkdirAll(s.cfg.OutputDir, 0o755); err != nil {
			return err
		}
	}

	// First refresh happens inline so subscribers never see an empty
	// directory after a restart. A failure here is logged, not fatal;
	// previously published files stay valid.
	if err := s.refresh(ctx); err != nil {
		appLog.Error("initial refresh failed", err)
	}

	c := cron.New()
	_, err := c.AddFunc(s.cfg.RefreshCron, func() {
		appLog.Info("scheduled refresh starting", "cron", s.cfg.RefreshCron)
		if err := s.refresh(ctx); err != nil {
			appLog.Error("scheduled refresh failed", err)
		}
	})
	if err != nil {
		return err
	}
	c.Start()
	defer c.Stop()

	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("http server listening", "listen", "http://"+s.cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
