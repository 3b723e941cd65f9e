// Package web serves the local HTTP API the widget UI polls: the dashboard
// snapshot, the live period status, settings, and an ICS export of the
// merged schedule.
package web

import (
	"context"
	"crypto/subtle"
	"embed"
	"encoding/json"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"classdash/internal/app"
	"classdash/internal/config"
	"classdash/internal/ics"
	appLog "classdash/internal/log"
	"classdash/internal/model"
)

// embeddedStatic holds the widget UI: a self-contained dashboard page that
// polls the JSON API and flags itself ready via data-ready="true" once the
// first render lands (the capture pipeline waits on that marker).
//
//go:embed all:static
var embeddedStatic embed.FS

// Server exposes the dashboard engine over HTTP.
type Server struct {
	app   *app.App
	debug bool
	mux   *http.ServeMux

	// lastAlarm keeps the most recent firing for the UI banner; the widget
	// polls /api/alarm once per second.
	alarmMu   sync.RWMutex
	lastAlarm *alarmDTO
}

// alarmDTO is the JSON shape for /api/alarm.
type alarmDTO struct {
	Period  int              `json:"period"`
	Phase   model.AlarmPhase `json:"type"`
	FiredAt time.Time        `json:"firedAt"`
}

// NewServer constructs a Server and starts draining alarm events.
func NewServer(ctx context.Context, a *app.App, debug bool) *Server {
	s := &Server{
		app:   a,
		debug: debug,
		mux:   http.NewServeMux(),
	}
	s.registerRoutes()

	go s.drainAlarms(ctx)
	return s
}

func (s *Server) drainAlarms(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-s.app.AlarmEvents():
			s.alarmMu.Lock()
			s.lastAlarm = &alarmDTO{Period: ev.Period, Phase: ev.Phase, FiredAt: time.Now()}
			s.alarmMu.Unlock()
		}
	}
}

// Handler returns the http.Handler, wrapped with basic auth.
func (s *Server) Handler() http.Handler {
	return s.basicAuthMiddleware(s.mux)
}

// basicAuthMiddleware protects everything except /health. Credentials are
// read from the active config per request, so enabling or rotating them via
// PUT /api/settings takes effect without a restart.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ba := s.app.Config().BasicAuth
		if ba == nil || ba.Username == "" || ba.Password == "" || r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, ba.Username) || !secureCompare(p, ba.Password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="classdash", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// Serve runs the HTTP server until ctx is canceled.
func Serve(ctx context.Context, a *app.App, debug bool) error {
	s := NewServer(ctx, a, debug)
	listen := a.Config().Listen

	srv := &http.Server{
		Addr:    listen,
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutCtx)
	}()

	appLog.Info("starting HTTP server", "listen", "http://"+listen, "debug", debug)
	err := srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/dashboard", s.handleDashboard)
	s.mux.HandleFunc("/api/status", s.handleStatus)
	s.mux.HandleFunc("/api/alarm", s.handleAlarm)
	s.mux.HandleFunc("/api/settings", s.handleSettings)
	s.mux.HandleFunc("/api/refresh", s.handleRefresh)
	s.mux.HandleFunc("/api/schools", s.handleSchools)
	s.mux.HandleFunc("/api/geocode", s.handleGeocode)
	s.mux.HandleFunc("/api/events.ics", s.handleEventsICS)
	s.mux.HandleFunc("/preview.png", s.handlePreview)

	// Embedded widget UI catches everything else.
	s.mux.Handle("/", s.staticFileServer())
}

// staticFileServer serves the embedded dashboard page from
// internal/web/static. API paths never fall through to it: an unregistered
// /api/* route must 404, not answer with HTML.
func (s *Server) staticFileServer() http.Handler {
	sub, err := fs.Sub(embeddedStatic, "static")
	if err != nil {
		appLog.Error("failed to initialize embedded static filesystem", err)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "widget UI not available", http.StatusServiceUnavailable)
		})
	}

	fileServer := http.FileServer(http.FS(sub))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if path == "/api" || strings.HasPrefix(path, "/api/") {
			http.NotFound(w, r)
			return
		}
		fileServer.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, s.app.Snapshot())
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, s.app.Status())
}

func (s *Server) handleAlarm(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	s.alarmMu.RLock()
	last := s.lastAlarm
	s.alarmMu.RUnlock()

	if last == nil {
		writeJSON(w, http.StatusOK, struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, last)
}

// handleSettings reads (GET) or replaces (PUT) the daemon settings. PUT
// persists, activates, and kicks a background refresh.
func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.app.Config())

	case http.MethodPut:
		var cfg config.Config
		if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
			writeError(w, http.StatusBadRequest, "invalid settings payload")
			return
		}
		if err := s.app.UpdateConfig(&cfg); err != nil {
			appLog.Error("settings save failed", err)
			writeError(w, http.StatusInternalServerError, "failed to save settings")
			return
		}
		writeJSON(w, http.StatusOK, s.app.Config())

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()
	s.app.Refresh(ctx)
	writeJSON(w, http.StatusOK, s.app.Snapshot())
}

func (s *Server) handleSchools(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	q := strings.TrimSpace(r.URL.Query().Get("q"))
	results, err := s.app.SearchSchools(r.Context(), q)
	if err != nil {
		appLog.Error("school search failed", err, "query", q)
		writeError(w, http.StatusBadGateway, "school search failed")
		return
	}
	if results == nil {
		results = []model.SchoolInfo{}
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleGeocode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	q := strings.TrimSpace(r.URL.Query().Get("q"))
	coords, err := s.app.Geocode(r.Context(), q)
	if err != nil {
		appLog.Error("geocode failed", err, "query", q)
		writeError(w, http.StatusBadGateway, "geocode failed")
		return
	}
	if coords == nil {
		writeJSON(w, http.StatusOK, struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, coords)
}

// handleEventsICS serves the merged schedule as a subscribable calendar.
func (s *Server) handleEventsICS(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	snap := s.app.Snapshot()
	name := s.app.Config().School.Name
	if name == "" {
		name = "학사일정"
	}

	body := ics.Export(snap.Events, name, s.app.Location())
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

// handlePreview serves the last captured dashboard snapshot PNG from the
// cache directory; see internal/capture.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	previewPath := filepath.Join(s.app.Config().CacheDir, "preview.png")
	http.ServeFile(w, r, previewPath)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
