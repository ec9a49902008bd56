// Package preview renders a scratchpad file in the terminal and keeps
// the view current as the file changes on disk. Math goes through the
// unicode renderer regardless of configuration; a terminal cannot hand
// markup to KaTeX.
package preview

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"

	"github.com/texlet/texlet"
	"github.com/texlet/texlet/render"
	"github.com/texlet/texlet/watch"
)

// Run previews path until the user quits.
func Run(path string, cfg *texlet.Config, logger *zap.Logger, out io.Writer) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}

	if cfg == nil {
		cfg = &texlet.Config{}
	}

	m := newModel(abs, StylesFor(cfg.PreviewTheme()))
	if err := m.reload(); err != nil {
		return fmt.Errorf("load %s: %w", abs, err)
	}

	opts := []tea.ProgramOption{
		tea.WithOutput(out),
		tea.WithAltScreen(), // Use alternate screen so the preview doesn't pollute scrollback
	}

	// Only use input if we have a TTY
	if f, ok := out.(*os.File); !ok || !isatty.IsTerminal(f.Fd()) {
		opts = append(opts, tea.WithInput(nil))
	}

	p := tea.NewProgram(m, opts...)

	w, err := watch.New(abs, cfg.Debounce(), logger, func() {
		p.Send(fileChangedMsg{})
	})
	if err != nil {
		return fmt.Errorf("watch %s: %w", abs, err)
	}

	defer func() { _ = w.Close() }()

	_, err = p.Run()

	return err
}

// Render renders path once as styled terminal text. It is the
// non-interactive fallback when stdout is not a terminal.
func Render(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	res := render.New(render.UnicodeMath{}).Render(string(data))
	out := Text(res.Root, DefaultStyles())

	if res.Banner != "" {
		out = strings.TrimSuffix(out, "\n") + "\n\n" +
			DefaultStyles().Banner.Render(res.Banner) + "\n"
	}

	return out, nil
}
