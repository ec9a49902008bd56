package preview

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func writeFixture(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "notes.tex")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	return path
}

func loadedModel(t *testing.T, content string) (*model, string) {
	t.Helper()

	path := writeFixture(t, content)

	m := newModel(path, DefaultStyles())
	if err := m.reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}

	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	return m, path
}

func TestModel_ViewShowsContent(t *testing.T) {
	t.Parallel()

	m, _ := loadedModel(t, `Euler: $\alpha$ done.`+"\n")

	view := m.View()

	if !strings.Contains(view, "α") {
		t.Errorf("View lacks the typeset math:\n%s", view)
	}
	if !strings.Contains(view, "notes.tex") {
		t.Errorf("View lacks the file name:\n%s", view)
	}
	if !strings.Contains(view, "segments") {
		t.Errorf("View lacks the segment count:\n%s", view)
	}
}

func TestModel_FileChangedReloads(t *testing.T) {
	t.Parallel()

	m, path := loadedModel(t, "one\n")

	if err := os.WriteFile(path, []byte("two\n"), 0o644); err != nil {
		t.Fatalf("rewrite fixture: %v", err)
	}

	m.Update(fileChangedMsg{})

	view := m.View()
	if !strings.Contains(view, "two") {
		t.Errorf("View was not refreshed:\n%s", view)
	}
	if strings.Contains(view, "one") {
		t.Errorf("View still shows the old content:\n%s", view)
	}
}

func TestModel_ReadFailureKeepsRender(t *testing.T) {
	t.Parallel()

	m, path := loadedModel(t, "keep me\n")

	if err := os.Remove(path); err != nil {
		t.Fatalf("remove fixture: %v", err)
	}

	m.Update(fileChangedMsg{})

	view := m.View()
	if !strings.Contains(view, "keep me") {
		t.Errorf("View dropped the last good render:\n%s", view)
	}
	if !strings.Contains(view, "read notes.tex") {
		t.Errorf("View lacks the read failure:\n%s", view)
	}
}

func TestModel_BannerOnRenderFailure(t *testing.T) {
	t.Parallel()

	m, _ := loadedModel(t, "broken $a{b$ here\n")

	view := m.View()
	if !strings.Contains(view, "unbalanced") && !strings.Contains(view, "brace") {
		t.Errorf("View lacks the failure banner:\n%s", view)
	}
}

func TestModel_StatusShowsWarningCount(t *testing.T) {
	t.Parallel()

	m, _ := loadedModel(t, "\\usepackage{graphicx}\n\\usepackage{graphicx}\n")

	view := m.View()
	if !strings.Contains(view, "1 warnings") {
		t.Errorf("View lacks the diagnostic count:\n%s", view)
	}
}

func TestModel_ManualRefresh(t *testing.T) {
	t.Parallel()

	m, path := loadedModel(t, "one\n")

	if err := os.WriteFile(path, []byte("two\n"), 0o644); err != nil {
		t.Fatalf("rewrite fixture: %v", err)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})

	if view := m.View(); !strings.Contains(view, "two") {
		t.Errorf("View was not refreshed:\n%s", view)
	}
}

func TestModel_QuitKeys(t *testing.T) {
	t.Parallel()

	keys := []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune{'q'}},
		{Type: tea.KeyEsc},
		{Type: tea.KeyCtrlC},
	}

	for _, key := range keys {
		m, _ := loadedModel(t, "hello\n")

		_, cmd := m.Update(key)
		if cmd == nil {
			t.Fatalf("key %q produced no command", key.String())
		}

		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("key %q = %T, want tea.QuitMsg", key.String(), cmd())
		}
	}
}

func TestModel_ScrollKeysReachViewport(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("line of prose\n", 100)
	m, _ := loadedModel(t, long)

	before := m.viewport.YOffset
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})

	if m.viewport.YOffset != before+1 {
		t.Errorf("YOffset = %d after scroll, want %d", m.viewport.YOffset, before+1)
	}
}
