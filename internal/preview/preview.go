// Package preview serves a built site locally and rebuilds it whenever the
// source or layout directories change.
package preview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/sitebuilder/internal/build"
	"git.home.luguber.info/inful/sitebuilder/internal/config"
	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/output"
)

const (
	// StatusPath serves the last build outcome as JSON.
	StatusPath = "/_sitebuilder/status"
	// MetricsPath serves Prometheus metrics when enabled.
	MetricsPath = "/metrics"

	shutdownTimeout = 5 * time.Second
)

// Server is a local preview server.
type Server struct {
	cfg      *config.Config
	builder  *build.Builder
	output   *output.Directory
	recorder metrics.Recorder
	registry *prom.Registry
	status   *buildStatus
}

// New creates a preview server for cfg. Metrics are collected in a private
// registry when enabled in the configuration.
func New(cfg *config.Config) *Server {
	s := &Server{
		cfg:      cfg,
		output:   output.NewDirectory(cfg.Output.Directory),
		recorder: metrics.NoopRecorder{},
		status:   &buildStatus{},
	}
	if cfg.Preview.MetricsEnabled() {
		s.registry = prom.NewRegistry()
		s.recorder = metrics.NewPrometheusRecorder(s.registry)
	}
	s.builder = build.New(cfg, build.WithRecorder(s.recorder))
	return s
}

// Run performs an initial build, serves the output directory on the configured
// port and rebuilds on change until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.Preview.Port))
	if err != nil {
		return ferrors.RuntimeError("failed to start preview server").
			WithCause(err).
			WithContext("port", s.cfg.Preview.Port).
			Build()
	}
	return s.Serve(ctx, ln)
}

// Serve is Run with a caller-provided listener. The listener is closed on return.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.rebuild(ctx, "initial")

	watcher, err := setupFileWatcher(s.watchRoots(), s.ignoreEvent)
	if err != nil {
		_ = ln.Close()
		return err
	}
	defer func() { _ = watcher.Close() }()

	srv := &http.Server{Handler: s.Handler(), ReadTimeout: 30 * time.Second, WriteTimeout: 30 * time.Second, IdleTimeout: 120 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("preview server error", logfields.Error(err))
		}
	}()
	slog.Info("Preview server listening",
		slog.String("addr", ln.Addr().String()),
		logfields.Path(s.cfg.Output.Directory))

	rebuildReq, trigger := setupRebuildDebouncer(s.cfg.Preview.DebounceDuration())
	done := s.startRebuildWorker(ctx, rebuildReq)

	err = runPreviewLoop(ctx, watcher, s.ignoreEvent, trigger)

	slog.Info("Shutting down preview server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if serr := srv.Shutdown(shutdownCtx); serr != nil {
		slog.Warn("HTTP server shutdown error", logfields.Error(serr))
	}
	<-done
	return err
}

// Handler returns the HTTP handler: the output directory, the status endpoint
// and, when enabled, /metrics.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(StatusPath, s.handleStatus)
	if s.registry != nil {
		mux.Handle(MetricsPath, metrics.HTTPHandler(s.registry))
	}
	files := http.FileServer(http.Dir(s.cfg.Output.Directory))
	mux.Handle("/", files)
	return mux
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	snap := s.status.snapshot()
	w.Header().Set("Content-Type", "application/json")
	if !snap.HasGoodBuild && snap.Error != "" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(snap)
}

func (s *Server) rebuild(ctx context.Context, trigger string) {
	s.recorder.IncRebuild(trigger)
	report, err := s.builder.Run(ctx)
	s.status.record(report, err)
	if err != nil {
		slog.Warn("Build failed", slog.String("trigger", trigger), logfields.Error(err))
		return
	}
	slog.Info(report.Summary(), slog.String("trigger", trigger))
}

func (s *Server) watchRoots() []string {
	roots := []string{s.cfg.Source.Directory}
	if s.cfg.Layouts.Directory != "" {
		roots = append(roots, s.cfg.Layouts.Directory)
	}
	return roots
}

// ignoreEvent reports whether a change at path must not trigger a rebuild.
// Writes into the output directory are ignored so an output directory nested
// in the source tree does not rebuild itself forever.
func (s *Server) ignoreEvent(path string) bool {
	return shouldIgnoreEvent(path) || s.output.IsInside(path)
}

// setupFileWatcher creates a watcher over every directory below roots, skipping
// ignored directories. Roots that do not exist are skipped.
func setupFileWatcher(roots []string, ignore func(string) bool) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, ferrors.RuntimeError("failed to create file watcher").WithCause(err).Build()
	}
	for _, root := range roots {
		if st, err := os.Stat(root); err != nil || !st.IsDir() {
			slog.Warn("Not watching missing directory", logfields.Path(root))
			continue
		}
		if err := addDirsRecursive(watcher, root, ignore); err != nil {
			_ = watcher.Close()
			return nil, err
		}
	}
	return watcher, nil
}

// setupRebuildDebouncer returns a rebuild channel and a trigger. Triggers that
// arrive within the quiet window collapse into a single request.
func setupRebuildDebouncer(quiet time.Duration) (chan struct{}, func()) {
	var mu sync.Mutex
	var timer *time.Timer
	rebuildReq := make(chan struct{}, 1)

	trigger := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(quiet, func() {
			select {
			case rebuildReq <- struct{}{}:
			default:
			}
		})
	}

	return rebuildReq, trigger
}

// startRebuildWorker processes rebuild requests one at a time. The returned
// channel is closed once the worker has stopped.
func (s *Server) startRebuildWorker(ctx context.Context, rebuildReq <-chan struct{}) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case <-rebuildReq:
				slog.Info("Change detected; rebuilding site")
				s.rebuild(ctx, "fsnotify")
			}
		}
	}()
	return done
}

// runPreviewLoop forwards filesystem events to trigger until ctx is done.
func runPreviewLoop(ctx context.Context, watcher *fsnotify.Watcher, ignore func(string) bool, trigger func()) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			handleFileEvent(watcher, ev, ignore, trigger)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watcher error", logfields.Error(err))
		}
	}
}

// handleFileEvent processes a filesystem event and triggers rebuild if needed.
func handleFileEvent(watcher *fsnotify.Watcher, ev fsnotify.Event, ignore func(string) bool, trigger func()) {
	if ignore(ev.Name) {
		return
	}
	if ev.Op&fsnotify.Create == fsnotify.Create {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			_ = addDirsRecursive(watcher, ev.Name, ignore)
		}
	}
	slog.Debug("File change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
	trigger()
}

func addDirsRecursive(w *fsnotify.Watcher, root string, ignore func(string) bool) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != root && ignore(path) {
				return filepath.SkipDir
			}
			if err := w.Add(path); err != nil {
				slog.Warn("watch add failed", logfields.Path(path), logfields.Error(err))
			}
		}
		return nil
	})
}

// shouldIgnoreEvent returns true for filesystem events that should not trigger rebuilds.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)

	if strings.HasPrefix(base, ".") {
		return true
	}

	// Editor temp/swap files
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return true
	}

	return base == "Thumbs.db"
}
