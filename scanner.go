// Package texlet provides the language core for a LaTeX scratchpad editor:
// a fragment scanner that classifies source into renderable segments, grid
// models for tabular environments, and a cursor-context resolver for
// autocompletion.
package texlet

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// SegmentKind classifies a scanned fragment of source text.
type SegmentKind int

// Segment kinds in scan priority order. Text is the fallback kind covering
// everything between recognized fragments.
const (
	SegText SegmentKind = iota
	SegInlineMath
	SegDisplayMath
	SegTabular
	SegTableEnv
)

// String returns a readable name for the segment kind.
func (k SegmentKind) String() string {
	switch k {
	case SegText:
		return "text"
	case SegInlineMath:
		return "inline-math"
	case SegDisplayMath:
		return "display-math"
	case SegTabular:
		return "tabular"
	case SegTableEnv:
		return "table"
	default:
		return "unknown"
	}
}

// Segment is a contiguous, offset-tagged slice of source.
//
// Raw is the verbatim source slice including delimiters. Body is the
// delimiter-stripped math source for math segments; for environment-delimited
// display math and for non-math segments it equals Raw.
type Segment struct {
	Kind SegmentKind
	Span Span
	Raw  string
	Body string
}

// displayEnvironments are environment names treated as display math when they
// appear as \begin{name}...\end{name}. Starred variants are listed explicitly
// because the name match is exact.
var displayEnvironments = map[string]bool{
	"equation":    true,
	"equation*":   true,
	"align":       true,
	"align*":      true,
	"gather":      true,
	"gather*":     true,
	"multline":    true,
	"multline*":   true,
	"matrix":      true,
	"pmatrix":     true,
	"bmatrix":     true,
	"vmatrix":     true,
	"Vmatrix":     true,
	"cases":       true,
	"aligned":     true,
	"smallmatrix": true,
}

// Environment names that outrank display math during scanning.
const (
	envTable   = "table"
	envTabular = "tabular"
)

// Scan splits source text into an ordered, gap-free sequence of segments.
//
// At each position the scanner tries fragment rules in fixed priority order:
// table environment, standalone tabular, display math ($$...$$, \[...\], or a
// whitelisted display environment), then inline math ($...$ or \(...\)).
// Earliest position wins; the priority order breaks ties at the same
// position. Text between matches becomes SegText segments, so concatenating
// every segment's Raw in order reconstructs the input exactly. Unterminated
// constructs fail their rule and are absorbed as plain text.
func Scan(src string) []Segment {
	s := newScanState("", src)

	return s.scan()
}

// ScanFile behaves like Scan but records the filename in segment positions.
func ScanFile(filename, src string) []Segment {
	s := newScanState(filename, src)

	return s.scan()
}

// scanState walks the input byte by byte, tracking line and column the same
// way a lexer would so every segment carries full positions.
type scanState struct {
	filename string
	input    string
	offset   int
	line     int
	col      int
}

func newScanState(filename, input string) *scanState {
	return &scanState{
		filename: filename,
		input:    input,
		offset:   0,
		line:     1,
		col:      1,
	}
}

func (s *scanState) scan() []Segment {
	var segments []Segment

	textStart := s.pos()

	flushText := func(end lexer.Position) {
		if end.Offset > textStart.Offset {
			segments = append(segments, Segment{
				Kind: SegText,
				Span: spanBetween(textStart, end),
				Raw:  s.input[textStart.Offset:end.Offset],
				Body: s.input[textStart.Offset:end.Offset],
			})
		}
	}

	for !s.eof() {
		kind, end, body, ok := matchFragment(s.input, s.offset)
		if !ok {
			s.advanceText()

			continue
		}

		start := s.pos()
		flushText(start)
		s.advanceTo(end)

		raw := s.input[start.Offset:end]
		if body == "" {
			body = raw
		}

		segments = append(segments, Segment{
			Kind: kind,
			Span: spanBetween(start, s.pos()),
			Raw:  raw,
			Body: body,
		})

		textStart = s.pos()
	}

	flushText(s.pos())

	return segments
}

func (s *scanState) pos() lexer.Position {
	return lexer.Position{
		Filename: s.filename,
		Offset:   s.offset,
		Line:     s.line,
		Column:   s.col,
	}
}

func (s *scanState) eof() bool {
	return s.offset >= len(s.input)
}

func (s *scanState) advance() {
	if s.eof() {
		return
	}

	if s.input[s.offset] == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}

	s.offset++
}

// advanceText moves past one text character. A backslash escapes the
// following character, so \$ never opens math and the second half of a \\
// hard-break marker never starts \[ display math.
func (s *scanState) advanceText() {
	if s.input[s.offset] == '\\' && s.offset+1 < len(s.input) {
		s.advance()
	}

	s.advance()
}

func (s *scanState) advanceTo(offset int) {
	for s.offset < offset {
		s.advance()
	}
}

// matchFragment tries the fragment rules at offset i in priority order.
// It returns the segment kind, the end offset of the match, and the
// delimiter-stripped body (empty when the body equals the raw slice).
func matchFragment(input string, i int) (SegmentKind, int, string, bool) {
	switch input[i] {
	case '\\':
		if name, ok := environmentAt(input, i); ok {
			return matchEnvironment(input, i, name)
		}

		if end, body, ok := matchDelimited(input, i, `\[`, `\]`); ok {
			return SegDisplayMath, end, body, true
		}

		if end, body, ok := matchDelimited(input, i, `\(`, `\)`); ok {
			return SegInlineMath, end, body, true
		}

	case '$':
		if end, body, ok := matchDelimited(input, i, "$$", "$$"); ok {
			return SegDisplayMath, end, body, true
		}

		if end, body, ok := matchDelimited(input, i, "$", "$"); ok {
			return SegInlineMath, end, body, true
		}
	}

	return SegText, 0, "", false
}

// matchEnvironment resolves a \begin{name} at offset i against the priority
// order: table environment, tabular, whitelisted display environments.
func matchEnvironment(input string, i int, name string) (SegmentKind, int, string, bool) {
	var kind SegmentKind

	switch {
	case name == envTable:
		kind = SegTableEnv
	case name == envTabular:
		kind = SegTabular
	case displayEnvironments[name]:
		kind = SegDisplayMath
	default:
		return SegText, 0, "", false
	}

	closer := `\end{` + name + `}`

	end := findUnescaped(input, i+len(`\begin{`+name+`}`), closer)
	if end < 0 {
		return SegText, 0, "", false
	}

	// Environment-delimited fragments keep their delimiters in the body.
	return kind, end + len(closer), "", true
}

// environmentAt parses a \begin{name} marker at offset i and returns the
// environment name. Names are letters with an optional trailing star.
func environmentAt(input string, i int) (string, bool) {
	const prefix = `\begin{`

	if !strings.HasPrefix(input[i:], prefix) {
		return "", false
	}

	j := i + len(prefix)
	start := j

	for j < len(input) && (isEnvLetter(input[j]) || input[j] == '*') {
		j++
	}

	if j == start || j >= len(input) || input[j] != '}' {
		return "", false
	}

	return input[start:j], true
}

func isEnvLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// matchDelimited matches open...close at offset i with a non-empty body,
// ignoring escaped occurrences of the close marker.
func matchDelimited(input string, i int, open, close string) (int, string, bool) {
	if !strings.HasPrefix(input[i:], open) {
		return 0, "", false
	}

	bodyStart := i + len(open)

	end := findUnescaped(input, bodyStart, close)
	if end < 0 || end == bodyStart {
		return 0, "", false
	}

	return end + len(close), input[bodyStart:end], true
}

// findUnescaped returns the byte offset of the first occurrence of marker at
// or after from that is not preceded by a backslash escape. A backslash not
// starting the marker itself consumes the following character, so \$ and \\
// never terminate a math span. Returns -1 when the marker is absent.
func findUnescaped(input string, from int, marker string) int {
	for k := from; k+len(marker) <= len(input); {
		if strings.HasPrefix(input[k:], marker) {
			return k
		}

		if input[k] == '\\' {
			k += 2

			continue
		}

		k++
	}

	return -1
}

// InlineSpan locates one inline-math occurrence inside arbitrary text.
// Offsets are relative to the scanned text; Body excludes the delimiters.
type InlineSpan struct {
	Start int
	End   int
	Body  string
}

// FindInlineMath scans text for inline-math spans using the same two inline
// rules as the fragment scanner, applied repeatedly. Returned spans are
// ordered and non-overlapping; text between them is left to the caller.
func FindInlineMath(text string) []InlineSpan {
	var spans []InlineSpan

	for i := 0; i < len(text); {
		if text[i] == '\\' {
			if end, body, ok := matchDelimited(text, i, `\(`, `\)`); ok {
				spans = append(spans, InlineSpan{Start: i, End: end, Body: body})
				i = end

				continue
			}

			i += 2

			continue
		}

		if text[i] == '$' {
			if end, body, ok := matchDelimited(text, i, "$", "$"); ok {
				spans = append(spans, InlineSpan{Start: i, End: end, Body: body})
				i = end

				continue
			}
		}

		i++
	}

	return spans
}
