package server

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/texlet/texlet/render"
)

func (s *Server) routes() {
	s.echo.GET("/", s.page)

	api := s.echo.Group("/api")
	api.GET("/preview", s.preview)
	api.GET("/events", s.events)
	api.POST("/sync", s.sync)
}

// Handler exposes the route table for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) page(c echo.Context) error {
	return c.HTML(http.StatusOK, previewPage)
}

type previewResponse struct {
	Path     string `json:"path"`
	HTML     string `json:"html"`
	Banner   string `json:"banner,omitempty"`
	Failures int    `json:"failures"`
}

// preview returns the rendered fragment. Fragment failures are part of
// the payload, never an HTTP error: broken spans render as opaque or
// error nodes and the first failure message rides along as the banner.
func (s *Server) preview(c echo.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	resp := previewResponse{Path: filepath.Base(s.path)}

	if s.doc != nil {
		resp.HTML = render.HTML(s.doc.Render.Root)
		resp.Banner = s.doc.Render.Banner
		resp.Failures = s.doc.Render.Failures
	}

	if s.readErr != "" {
		resp.Banner = s.readErr
	}

	return c.JSON(http.StatusOK, resp)
}

// events streams server-sent events. The only event is "reload", sent
// after every re-render; the page responds by re-fetching the fragment.
func (s *Server) events(c echo.Context) error {
	ch := s.subscribe()
	defer s.unsubscribe(ch)

	h := c.Response().Header()
	h.Set(echo.HeaderContentType, "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Flush()

	for {
		select {
		case <-c.Request().Context().Done():
			return nil
		case event := <-ch:
			if _, err := fmt.Fprintf(c.Response(), "data: %s\n\n", event); err != nil {
				return nil
			}
			c.Response().Flush()
		}
	}
}

type syncRequest struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

type syncResponse struct {
	Start   int    `json:"start"`
	End     int    `json:"end"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Excerpt string `json:"excerpt"`
}

// sync maps a clicked preview range back to a source position. A range
// that falls outside the current document is a silent no-op: the file
// may have changed since the page rendered, and a stale click must not
// jump the editor anywhere.
func (s *Server) sync(c echo.Context) error {
	var req syncRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed sync request")
	}

	s.mu.RLock()
	doc := s.doc
	s.mu.RUnlock()

	if doc == nil {
		return c.NoContent(http.StatusNoContent)
	}

	target, ok := doc.SourceMap.Resolve(req.Start, req.End)
	if !ok {
		return c.NoContent(http.StatusNoContent)
	}

	line, col := lineColumn(doc.Source, target.Start)
	resp := syncResponse{
		Start:   target.Start,
		End:     target.End,
		Line:    line,
		Column:  col,
		Excerpt: excerpt(doc.Source, target.Start, target.End),
	}

	s.forwardSync(target, resp)

	return c.JSON(http.StatusOK, resp)
}

func (s *Server) forwardSync(target render.SyncTarget, resp syncResponse) {
	if s.OnSync != nil {
		s.OnSync(target)
		return
	}

	s.logger.Info("Sync",
		zap.Int("line", resp.Line),
		zap.Int("column", resp.Column),
		zap.String("excerpt", resp.Excerpt))
}

// lineColumn converts a byte offset into 1-based line and column. The
// column counts runes so it matches what editors display.
func lineColumn(source string, offset int) (line, col int) {
	line, col = 1, 1

	for _, r := range source[:offset] {
		if r == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}

	return line, col
}

const excerptLimit = 80

// excerpt clips the resolved range to a single log-friendly line.
func excerpt(source string, start, end int) string {
	if end > len(source) {
		end = len(source)
	}

	text := strings.ReplaceAll(source[start:end], "\n", " ")

	runes := []rune(text)
	if len(runes) > excerptLimit {
		text = string(runes[:excerptLimit]) + "..."
	}

	return text
}
