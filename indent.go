package texlet

import "strings"

// EnvBreak describes the edit synthesized when a line break lands right
// after an unterminated environment-begin marker.
type EnvBreak struct {
	// Insert is the text placed at the cursor in place of a plain newline.
	Insert string

	// CursorLine is how many lines below the original line the cursor
	// lands; CursorCol is its byte column on that line.
	CursorLine int
	CursorCol  int
}

// BreakEnvironment decides whether a line break at col expands into an
// environment body. It fires only when the cursor sits at the absolute end
// of the line and the line ends with an environment-begin marker. The edit
// opens a blank line indented one level deeper and closes the environment
// at the original indentation, leaving the cursor on the blank line.
func BreakEnvironment(line string, col int) (EnvBreak, bool) {
	if col != len(line) {
		return EnvBreak{}, false
	}

	name, ok := trailingBegin(line)
	if !ok {
		return EnvBreak{}, false
	}

	indent := leadingIndent(line)
	inner := indent + indentUnit(indent)

	insert := "\n" + inner + "\n" + indent + `\end{` + name + `}`

	return EnvBreak{
		Insert:     insert,
		CursorLine: 1,
		CursorCol:  len(inner),
	}, true
}

// trailingBegin returns the environment name when the line ends with an
// unescaped \begin{name} marker.
func trailingBegin(line string) (string, bool) {
	i := strings.LastIndex(line, `\begin{`)
	if i < 0 {
		return "", false
	}
	if i > 0 && line[i-1] == '\\' {
		return "", false
	}

	name, ok := environmentAt(line, i)
	if !ok {
		return "", false
	}

	if i+len(`\begin{`)+len(name)+1 != len(line) {
		return "", false
	}

	return name, true
}

func leadingIndent(line string) string {
	i := 0
	for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}

	return line[:i]
}

// indentUnit picks one extra indent level in the style the line already
// uses: space indentation deepens with spaces, anything else with a tab.
func indentUnit(indent string) string {
	if indent != "" && !strings.Contains(indent, "\t") {
		return "  "
	}

	return "\t"
}
