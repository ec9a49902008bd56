package texlet_test

import (
	"strings"
	"testing"

	"github.com/texlet/texlet"
)

func TestOptionKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		token    string
		expected string
	}{
		{"red", "red"},
		{"line width=2pt", "line"},
		{"margin=1in", "margin"},
		{"  spaced  ", "spaced"},
		{"very thick", "very"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			t.Parallel()

			if got := texlet.OptionKey(tt.token); got != tt.expected {
				t.Errorf("OptionKey(%q) = %q, want %q", tt.token, got, tt.expected)
			}
		})
	}
}

func TestClassOptions_Union(t *testing.T) {
	t.Parallel()

	book := texlet.ClassOptions("book")

	for _, want := range []string{"10pt", "openany", "titlepage", "fleqn"} {
		if !containsString(book, want) {
			t.Errorf("book options missing %q", want)
		}
	}

	article := texlet.ClassOptions("article")
	if containsString(article, "openany") {
		t.Error("article options contain openany, which belongs to report")
	}

	unknown := texlet.ClassOptions("fancy")
	if containsString(unknown, "titlepage") {
		t.Error("unknown class got class-specific options")
	}
}

func TestPackageOptions_Unknown(t *testing.T) {
	t.Parallel()

	if opts, ok := texlet.PackageOptions("mystery"); ok {
		t.Errorf("PackageOptions(mystery) = %v, want none", opts)
	}
}

func TestCatalog_AccessorsCopy(t *testing.T) {
	t.Parallel()

	first := texlet.StyleOptions()
	first[0] = "mutated"

	second := texlet.StyleOptions()
	if second[0] == "mutated" {
		t.Error("StyleOptions() exposed the underlying table")
	}
}

func TestSkeletons_CursorOffsets(t *testing.T) {
	t.Parallel()

	for _, sk := range texlet.Skeletons() {
		if sk.Cursor == -1 {
			continue
		}

		if sk.Cursor <= 0 || sk.Cursor > len(sk.Insert) {
			t.Errorf("%s: cursor %d out of bounds for %q", sk.Name, sk.Cursor, sk.Insert)

			continue
		}

		if sk.Insert[sk.Cursor-1] != '{' {
			t.Errorf("%s: cursor %d does not sit inside a brace of %q", sk.Name, sk.Cursor, sk.Insert)
		}
	}
}

func TestSkeletons_NamesMatchInserts(t *testing.T) {
	t.Parallel()

	for _, sk := range texlet.Skeletons() {
		if !strings.HasPrefix(sk.Insert, `\`+sk.Name) {
			t.Errorf("%s: insert %q does not start with the command", sk.Name, sk.Insert)
		}
	}
}

func containsString(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}

	return false
}
