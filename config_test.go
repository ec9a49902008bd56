package texlet_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/texlet/texlet"
)

func TestLoadConfig_WalksUp(t *testing.T) {
	t.Parallel()

	root := t.TempDir()

	content := []byte("renderer: unicode\ndebounce_ms: 150\ntheme: plain\nserve:\n  addr: \":7070\"\n")
	if err := os.WriteFile(filepath.Join(root, ".texlet.yaml"), content, 0o600); err != nil {
		t.Fatal(err)
	}

	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o750); err != nil {
		t.Fatal(err)
	}

	cfg, err := texlet.LoadConfig(nested)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	if cfg.Renderer != "unicode" {
		t.Errorf("Renderer = %q, want %q", cfg.Renderer, "unicode")
	}

	if got := cfg.Debounce(); got != 150*time.Millisecond {
		t.Errorf("Debounce() = %v, want 150ms", got)
	}

	if got := cfg.PreviewTheme(); got != "plain" {
		t.Errorf("PreviewTheme() = %q, want %q", got, "plain")
	}

	if got := cfg.ListenAddr(); got != ":7070" {
		t.Errorf("ListenAddr() = %q, want %q", got, ":7070")
	}
}

func TestLoadConfigFile_Missing(t *testing.T) {
	t.Parallel()

	_, err := texlet.LoadConfigFile(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("LoadConfigFile() succeeded on a missing file")
	}
}

func TestConfig_Defaults(t *testing.T) {
	t.Parallel()

	var cfg texlet.Config

	if got := cfg.Debounce(); got != texlet.DefaultDebounceMS*time.Millisecond {
		t.Errorf("Debounce() = %v, want default", got)
	}

	if got := cfg.ListenAddr(); got != texlet.DefaultAddr {
		t.Errorf("ListenAddr() = %q, want %q", got, texlet.DefaultAddr)
	}

	if got := cfg.PreviewTheme(); got != texlet.DefaultTheme {
		t.Errorf("PreviewTheme() = %q, want %q", got, texlet.DefaultTheme)
	}

	if got := cfg.RendererFor("doc.tex"); got != texlet.DefaultRenderer {
		t.Errorf("RendererFor() = %q, want %q", got, texlet.DefaultRenderer)
	}
}

func TestConfig_RendererFor(t *testing.T) {
	t.Parallel()

	cfg := texlet.Config{
		Renderer: "html",
		Files: map[string]string{
			"notes/*.tex": "unicode",
		},
	}

	if got := cfg.RendererFor("notes/todo.tex"); got != "unicode" {
		t.Errorf("RendererFor(notes/todo.tex) = %q, want pattern override", got)
	}

	if got := cfg.RendererFor("paper.tex"); got != "html" {
		t.Errorf("RendererFor(paper.tex) = %q, want default renderer", got)
	}
}

func TestConfig_RendererForAbsolutePath(t *testing.T) {
	t.Parallel()

	root := t.TempDir()

	content := []byte("renderer: html\nfiles:\n  \"notes/*.tex\": unicode\n")
	if err := os.WriteFile(filepath.Join(root, ".texlet.yaml"), content, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := texlet.LoadConfig(root)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	// A pattern relative to the config file matches files addressed by
	// absolute path, which is how the preview server sees them.
	abs := filepath.Join(root, "notes", "todo.tex")
	if got := cfg.RendererFor(abs); got != "unicode" {
		t.Errorf("RendererFor(%s) = %q, want pattern override", abs, got)
	}

	if got := cfg.RendererFor(filepath.Join(root, "paper.tex")); got != "html" {
		t.Errorf("RendererFor(paper.tex) = %q, want default renderer", got)
	}
}
