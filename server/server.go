// Package server serves a browser preview of a single scratchpad file.
// The page polls nothing: it fetches the rendered fragment once, then
// re-fetches whenever the event stream reports that the file changed on
// disk. Clicks on tagged preview nodes post back to the sync endpoint,
// which maps them to source positions.
package server

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/texlet/texlet"
	"github.com/texlet/texlet/analysis"
	"github.com/texlet/texlet/render"
	"github.com/texlet/texlet/watch"
)

// Server renders one file and serves the preview page, the rendered
// fragment, the change event stream, and the click-sync endpoint.
type Server struct {
	echo     *echo.Echo
	logger   *zap.Logger
	analyzer *analysis.Analyzer
	path     string

	// OnSync, when set, receives every resolved preview click. When nil
	// the target is only logged.
	OnSync func(render.SyncTarget)

	mu      sync.RWMutex
	doc     *analysis.Document
	readErr string

	subMu sync.Mutex
	subs  map[chan string]struct{}

	watcher *watch.Watcher
}

// New renders path once and returns a server ready to Start. The math
// renderer comes from the config's per-file mapping, so a file routed to
// the unicode renderer previews as plain text even in the browser.
func New(path string, cfg *texlet.Config, logger *zap.Logger) (*Server, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	if cfg == nil {
		cfg = &texlet.Config{}
	}

	math, err := render.NewMath(cfg.RendererFor(abs))
	if err != nil {
		return nil, err
	}

	s := &Server{
		echo:     echo.New(),
		logger:   logger,
		analyzer: analysis.NewAnalyzer(math),
		path:     abs,
		subs:     make(map[chan string]struct{}),
	}

	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.Use(middleware.Recover())
	s.routes()

	if err := s.load(); err != nil {
		return nil, fmt.Errorf("load %s: %w", abs, err)
	}

	return s, nil
}

// Watch starts re-rendering after changes to the served file, with delay
// debouncing editor save bursts.
func (s *Server) Watch(delay time.Duration) error {
	w, err := watch.New(s.path, delay, s.logger, s.Reload)
	if err != nil {
		return err
	}

	s.watcher = w

	return nil
}

// Start serves until Shutdown or listener failure.
func (s *Server) Start(addr string) error {
	s.logger.Info("Preview server listening",
		zap.String("addr", addr),
		zap.String("file", s.path))

	return s.echo.Start(addr)
}

// Shutdown stops the watcher and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.watcher != nil {
		if err := s.watcher.Close(); err != nil {
			s.logger.Warn("Closing watcher", zap.Error(err))
		}
	}

	return s.echo.Shutdown(ctx)
}

// Reload re-reads the served file, re-renders it, and notifies event
// stream subscribers. A read failure keeps the last good render and is
// reported through the preview banner instead.
func (s *Server) Reload() {
	if err := s.load(); err != nil {
		s.logger.Warn("Reload failed", zap.Error(err))
	}

	s.broadcast("reload")
}

func (s *Server) load() error {
	data, err := os.ReadFile(s.path)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.readErr = fmt.Sprintf("read %s: %v", filepath.Base(s.path), err)
		return err
	}

	s.readErr = ""
	s.doc = s.analyzer.Analyze(s.path, data)

	s.logger.Debug("Analyzed",
		zap.Int("segments", len(s.doc.Segments)),
		zap.Int("failures", s.doc.Render.Failures),
		zap.Int("diagnostics", len(s.doc.Diagnostics)))

	return nil
}

func (s *Server) subscribe() chan string {
	ch := make(chan string, 4)

	s.subMu.Lock()
	s.subs[ch] = struct{}{}
	s.subMu.Unlock()

	return ch
}

func (s *Server) unsubscribe(ch chan string) {
	s.subMu.Lock()
	delete(s.subs, ch)
	s.subMu.Unlock()
}

// broadcast never blocks; a subscriber that cannot keep up misses the
// event and catches up on its next fetch.
func (s *Server) broadcast(event string) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	for ch := range s.subs {
		select {
		case ch <- event:
		default:
		}
	}
}
