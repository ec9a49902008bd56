package server_test

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/texlet/texlet"
	"github.com/texlet/texlet/render"
	"github.com/texlet/texlet/server"
)

type previewPayload struct {
	Path     string `json:"path"`
	HTML     string `json:"html"`
	Banner   string `json:"banner"`
	Failures int    `json:"failures"`
}

type syncPayload struct {
	Start   int    `json:"start"`
	End     int    `json:"end"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Excerpt string `json:"excerpt"`
}

func newTestServer(t *testing.T, content string) (*server.Server, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "notes.tex")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	srv, err := server.New(path, &texlet.Config{Renderer: "html"}, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	return srv, path
}

func fetchPreview(t *testing.T, srv *server.Server) previewPayload {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/api/preview", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/preview = %d, want %d", rec.Code, http.StatusOK)
	}

	var out previewPayload
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode preview response: %v", err)
	}

	return out
}

func postSync(t *testing.T, srv *server.Server, body string) (int, syncPayload) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/sync", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	var out syncPayload
	if rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode sync response: %v", err)
		}
	}

	return rec.Code, out
}

func TestServer_PageServesShell(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, "hello\n")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("GET / = %d, want %d", rec.Code, http.StatusOK)
	}

	body := rec.Body.String()
	for _, want := range []string{"/api/preview", "/api/sync", "EventSource"} {
		if !strings.Contains(body, want) {
			t.Errorf("page is missing %q", want)
		}
	}
}

func TestServer_PreviewFragment(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, "Value of $E = mc^2$ here.\n")

	got := fetchPreview(t, srv)

	if got.Path != "notes.tex" {
		t.Errorf("Path = %q, want %q", got.Path, "notes.tex")
	}
	if got.Failures != 0 {
		t.Errorf("Failures = %d, want 0", got.Failures)
	}
	if got.Banner != "" {
		t.Errorf("Banner = %q, want empty", got.Banner)
	}
	if !strings.Contains(got.HTML, "katex-src") {
		t.Errorf("HTML lacks a katex-src span: %q", got.HTML)
	}
	if !strings.Contains(got.HTML, "Value of") {
		t.Errorf("HTML lacks the surrounding text: %q", got.HTML)
	}
}

func TestServer_PreviewBannerOnBrokenMath(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, "broken $a{b$ math\n")

	got := fetchPreview(t, srv)

	if got.Failures != 1 {
		t.Errorf("Failures = %d, want 1", got.Failures)
	}
	if got.Banner == "" {
		t.Error("Banner is empty, want the failure message")
	}
	if !strings.Contains(got.HTML, "math-error") {
		t.Errorf("HTML lacks a math-error span: %q", got.HTML)
	}
}

func TestServer_SyncResolvesClick(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, "Intro $x$ done.\n")

	code, got := postSync(t, srv, `{"start": 6, "end": 9}`)

	if code != http.StatusOK {
		t.Fatalf("sync = %d, want %d", code, http.StatusOK)
	}
	if got.Start != 6 || got.End != 9 {
		t.Errorf("range = [%d, %d), want [6, 9)", got.Start, got.End)
	}
	if got.Line != 1 || got.Column != 7 {
		t.Errorf("position = %d:%d, want 1:7", got.Line, got.Column)
	}
	if got.Excerpt != "$x$" {
		t.Errorf("Excerpt = %q, want %q", got.Excerpt, "$x$")
	}
}

func TestServer_SyncClampsEnd(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, "Intro $x$ done.\n")

	code, got := postSync(t, srv, `{"start": 10, "end": 9999}`)

	if code != http.StatusOK {
		t.Fatalf("sync = %d, want %d", code, http.StatusOK)
	}
	if got.End != 16 {
		t.Errorf("End = %d, want the document length 16", got.End)
	}
	if got.Excerpt != "done. " {
		t.Errorf("Excerpt = %q, want %q", got.Excerpt, "done. ")
	}
}

func TestServer_SyncOutOfRangeIsNoOp(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, "Intro $x$ done.\n")

	for _, body := range []string{
		`{"start": 9999, "end": 10000}`,
		`{"start": -1, "end": 3}`,
		`{"start": 5, "end": 2}`,
	} {
		if code, _ := postSync(t, srv, body); code != http.StatusNoContent {
			t.Errorf("sync %s = %d, want %d", body, code, http.StatusNoContent)
		}
	}
}

func TestServer_SyncMalformedBody(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, "hello\n")

	if code, _ := postSync(t, srv, `{"start":`); code != http.StatusBadRequest {
		t.Errorf("sync = %d, want %d", code, http.StatusBadRequest)
	}
}

func TestServer_SyncCallback(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, "Intro $x$ done.\n")

	var captured render.SyncTarget
	srv.OnSync = func(target render.SyncTarget) { captured = target }

	if code, _ := postSync(t, srv, `{"start": 6, "end": 9}`); code != http.StatusOK {
		t.Fatalf("sync = %d, want %d", code, http.StatusOK)
	}

	want := render.SyncTarget{Start: 6, End: 9}
	if captured != want {
		t.Errorf("OnSync received %+v, want %+v", captured, want)
	}
}

func TestServer_ReloadPicksUpChanges(t *testing.T) {
	t.Parallel()

	srv, path := newTestServer(t, "one\n")

	if err := os.WriteFile(path, []byte("two $y$\n"), 0o644); err != nil {
		t.Fatalf("rewrite fixture: %v", err)
	}
	srv.Reload()

	got := fetchPreview(t, srv)
	if !strings.Contains(got.HTML, "two") {
		t.Errorf("HTML = %q, want the rewritten content", got.HTML)
	}
}

func TestServer_ReloadMissingFileKeepsRender(t *testing.T) {
	t.Parallel()

	srv, path := newTestServer(t, "still here\n")

	if err := os.Remove(path); err != nil {
		t.Fatalf("remove fixture: %v", err)
	}
	srv.Reload()

	got := fetchPreview(t, srv)
	if !strings.Contains(got.HTML, "still here") {
		t.Errorf("HTML = %q, want the last good render", got.HTML)
	}
	if !strings.Contains(got.Banner, "read") {
		t.Errorf("Banner = %q, want a read failure", got.Banner)
	}
}

func TestServer_EventsStreamsReload(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, "hello\n")

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/events", nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /api/events: %v", err)
	}
	defer res.Body.Close()

	if ct := res.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Errorf("Content-Type = %q, want text/event-stream", ct)
	}

	lines := make(chan string, 1)
	go func() {
		sc := bufio.NewScanner(res.Body)
		for sc.Scan() {
			if line := sc.Text(); line != "" {
				lines <- line
				return
			}
		}
	}()

	// The handler subscribes before it writes the response header, so by
	// the time Do returned the subscription exists.
	srv.Reload()

	select {
	case line := <-lines:
		if line != "data: reload" {
			t.Errorf("event = %q, want %q", line, "data: reload")
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for the reload event")
	}
}

func TestServer_UnknownRenderer(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "notes.tex")
	if err := os.WriteFile(path, []byte("hello\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	_, err := server.New(path, &texlet.Config{Renderer: "painterly"}, zap.NewNop())
	if !errors.Is(err, render.ErrUnknownRenderer) {
		t.Errorf("New = %v, want ErrUnknownRenderer", err)
	}
}

func TestServer_MissingFileAtStartup(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ghost.tex")

	if _, err := server.New(path, &texlet.Config{Renderer: "html"}, zap.NewNop()); err == nil {
		t.Error("New succeeded on a missing file, want an error")
	}
}
