package preview

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/texlet/texlet/analysis"
	"github.com/texlet/texlet/render"
)

// fileChangedMsg reports that the watched file changed on disk.
type fileChangedMsg struct{}

// model is the bubbletea model for the preview. The viewport scrolls the
// rendered document; the chrome around it is one header line and a
// two-line footer with the status and the key help.
type model struct {
	styles   *Styles
	path     string
	analyzer *analysis.Analyzer

	viewport viewport.Model
	ready    bool

	doc     *analysis.Document
	readErr string

	width  int
	height int
}

func newModel(path string, st *Styles) *model {
	return &model{
		styles:   st,
		path:     path,
		analyzer: analysis.NewAnalyzer(render.UnicodeMath{}),
		width:    80,
		height:   24,
	}
}

// reload re-reads the file and re-analyzes. A read failure keeps the
// last good render on screen and reports through the status line.
func (m *model) reload() error {
	data, err := os.ReadFile(m.path)
	if err != nil {
		m.readErr = fmt.Sprintf("read %s: %v", filepath.Base(m.path), err)
		return err
	}

	m.readErr = ""
	m.doc = m.analyzer.Analyze(m.path, data)

	if m.ready {
		m.viewport.SetContent(Text(m.doc.Render.Root, m.styles))
	}

	return nil
}

func (m *model) Init() tea.Cmd {
	return nil
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) { //nolint:ireturn // bubbletea.Model interface required by tea.Program
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			return m, tea.Quit

		case "r":
			// Manual refresh skips the watcher debounce.
			_ = m.reload()

			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vh := max(m.height-chromeHeight, 1)

		if !m.ready {
			m.viewport = viewport.New(m.width, vh)
			m.ready = true

			if m.doc != nil {
				m.viewport.SetContent(Text(m.doc.Render.Root, m.styles))
			}
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vh
		}

		return m, nil

	case fileChangedMsg:
		_ = m.reload()

		return m, nil
	}

	// Remaining keys scroll the viewport.
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)

	return m, cmd
}

// chromeHeight is the header line plus the two footer lines.
const chromeHeight = 3

func (m *model) View() string {
	if !m.ready {
		return "loading..."
	}

	return m.header() + "\n" + m.viewport.View() + "\n" + m.footer()
}

func (m *model) header() string {
	return m.styles.Title.Render("texlet") +
		m.styles.Dim.Render(" preview  ") +
		m.styles.Path.Render(filepath.Base(m.path))
}

func (m *model) footer() string {
	help := m.styles.Dim.Render("  r refresh · j/k scroll · q quit")

	return m.statusLine() + "\n" + help
}

func (m *model) statusLine() string {
	switch {
	case m.readErr != "":
		return m.styles.Banner.Render("  " + m.readErr)

	case m.doc != nil && m.doc.Render.Banner != "":
		return m.styles.Banner.Render("  " + m.doc.Render.Banner)

	case m.doc != nil && len(m.doc.Diagnostics) > 0:
		return m.styles.Warn.Render(fmt.Sprintf("  %d segments · %d warnings",
			len(m.doc.Segments), len(m.doc.Diagnostics)))

	case m.doc != nil:
		return m.styles.Muted.Render(fmt.Sprintf("  %d segments", len(m.doc.Segments)))

	default:
		return ""
	}
}
