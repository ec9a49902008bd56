package analysis

import (
	"strconv"
	"strings"

	"github.com/texlet/texlet"
	"github.com/texlet/texlet/render"
)

// Rule represents a single analysis check.
// Inspired by go/analysis.Analyzer pattern.
type Rule struct {
	// Name is a short identifier for the rule (used in diagnostic codes).
	Name string

	// Doc is a brief description of what the rule checks.
	Doc string

	// Severity is the default severity for diagnostics from this rule.
	Severity DiagnosticSeverity

	// Run executes the rule and appends any diagnostics to the document.
	Run func(doc *Document)
}

// DefaultRules returns all built-in analysis rules.
func DefaultRules() []*Rule {
	return []*Rule{
		// Error-level checks.
		unterminatedEnvironmentRule,

		// Warning-level checks.
		invalidMathRule,
		degradedFragmentRule,
		overflowCellsRule,
		duplicatePackageRule,

		// Hint-level checks.
		unknownPackageRule,
	}
}

// ----------------------------------------------------------------------------
// Rule: unterminated-environment
// ----------------------------------------------------------------------------

var unterminatedEnvironmentRule = &Rule{
	Name:     "unterminated-environment",
	Doc:      "Reports \\begin markers that never close.",
	Severity: SeverityError,
	Run:      checkUnterminatedEnvironments,
}

func checkUnterminatedEnvironments(doc *Document) {
	// Matched math/tabular environments never reach a text segment, so any
	// begin marker seen here either belongs to an unscanned environment
	// (fine when balanced) or to a construct the scanner gave up on.
	var open []envEvent

	for _, ev := range environmentEvents(doc) {
		if ev.open {
			open = append(open, ev)
			continue
		}

		// Close the innermost environment with a matching name.
		for i := len(open) - 1; i >= 0; i-- {
			if open[i].name == ev.name {
				open = append(open[:i], open[i+1:]...)

				break
			}
		}
	}

	for _, ev := range open {
		doc.Diagnostics = append(doc.Diagnostics, Diagnostic{
			Span:     SpanAt(doc, ev.offset, ev.offset+ev.length),
			Severity: SeverityError,
			Message:  "unterminated environment: " + ev.name,
			Code:     "unterminated-environment",
			Source:   "texlet",
		})
	}
}

const (
	beginMarker = `\begin{`
	endMarker   = `\end{`
)

// envEvent is one \begin or \end marker found in a text segment.
type envEvent struct {
	name   string
	offset int // absolute byte offset of the backslash
	length int // marker length through the closing brace
	open   bool
}

// environmentEvents collects begin/end markers from text segments in
// document order. Escaped backslashes are skipped the same way the
// scanner skips them.
func environmentEvents(doc *Document) []envEvent {
	var events []envEvent

	for _, seg := range doc.Segments {
		if seg.Kind != texlet.SegText {
			continue
		}

		text := seg.Raw
		base := seg.Span.StartOffset()

		for i := 0; i < len(text); {
			if text[i] != '\\' {
				i++

				continue
			}

			var (
				marker string
				open   bool
			)

			switch {
			case strings.HasPrefix(text[i:], beginMarker):
				marker, open = beginMarker, true
			case strings.HasPrefix(text[i:], endMarker):
				marker, open = endMarker, false
			default:
				// Skip the escaped character so \\begin stays text.
				i += 2

				continue
			}

			name, ok := environmentName(text, i+len(marker))
			if !ok {
				i += 2

				continue
			}

			length := len(marker) + len(name) + 1
			events = append(events, envEvent{
				name:   name,
				offset: base + i,
				length: length,
				open:   open,
			})
			i += length
		}
	}

	return events
}

// environmentName reads an environment name at the given index and requires
// the closing brace right after it.
func environmentName(text string, i int) (string, bool) {
	j := i
	for j < len(text) && isEnvNameLetter(text[j]) {
		j++
	}

	if j < len(text) && text[j] == '*' {
		j++
	}

	if j == i || j >= len(text) || text[j] != '}' {
		return "", false
	}

	return text[i:j], true
}

func isEnvNameLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// ----------------------------------------------------------------------------
// Rule: invalid-math
// ----------------------------------------------------------------------------

var invalidMathRule = &Rule{
	Name:     "invalid-math",
	Doc:      "Reports math fragments the renderer rejected.",
	Severity: SeverityWarning,
	Run:      checkInvalidMath,
}

func checkInvalidMath(doc *Document) {
	if doc.Render == nil {
		return
	}

	walkTagged(doc.Render.Root, func(n *render.Node, start, end int) {
		if n.Kind != render.NodeMathError {
			return
		}

		doc.Diagnostics = append(doc.Diagnostics, Diagnostic{
			Span:     SpanAt(doc, start, end),
			Severity: SeverityWarning,
			Message:  n.Err,
			Code:     "invalid-math",
			Source:   "texlet",
		})
	})
}

// ----------------------------------------------------------------------------
// Rule: degraded-fragment
// ----------------------------------------------------------------------------

var degradedFragmentRule = &Rule{
	Name:     "degraded-fragment",
	Doc:      "Reports fragments that fell back to plain source in the preview.",
	Severity: SeverityWarning,
	Run:      checkDegradedFragments,
}

func checkDegradedFragments(doc *Document) {
	if doc.Render == nil {
		return
	}

	walkTagged(doc.Render.Root, func(n *render.Node, start, end int) {
		if n.Kind != render.NodeOpaque {
			return
		}

		doc.Diagnostics = append(doc.Diagnostics, Diagnostic{
			Span:     SpanAt(doc, start, end),
			Severity: SeverityWarning,
			Message:  "fragment could not be rendered",
			Code:     "degraded-fragment",
			Source:   "texlet",
		})
	})
}

// walkTagged visits every render node in document order, carrying the span
// of the nearest tagged ancestor for nodes that have no span of their own.
func walkTagged(n *render.Node, visit func(n *render.Node, start, end int)) {
	var walk func(n *render.Node, start, end int)

	walk = func(n *render.Node, start, end int) {
		if n.Tagged() {
			start, end = n.Start, n.End
		}

		visit(n, start, end)

		for _, child := range n.Children {
			walk(child, start, end)
		}
	}

	if n != nil {
		walk(n, 0, 0)
	}
}

// ----------------------------------------------------------------------------
// Rule: overflow-cells
// ----------------------------------------------------------------------------

var overflowCellsRule = &Rule{
	Name:     "overflow-cells",
	Doc:      "Reports table rows with more cells than the column format declares.",
	Severity: SeverityWarning,
	Run:      checkOverflowCells,
}

func checkOverflowCells(doc *Document) {
	for _, seg := range doc.Segments {
		var model *texlet.TableModel

		switch seg.Kind {
		case texlet.SegTabular:
			model, _ = texlet.ParseTabular(seg.Raw)
		case texlet.SegTableEnv:
			if env, ok := texlet.ParseTableEnv(seg.Raw); ok {
				model = env.Table
			}
		default:
			continue
		}

		if model == nil {
			continue
		}

		width := model.Width()
		for i, row := range model.Rows {
			if len(row.Cells) <= width {
				continue
			}

			doc.Diagnostics = append(doc.Diagnostics, Diagnostic{
				Span:     seg.Span,
				Severity: SeverityWarning,
				Message: "row " + strconv.Itoa(i+1) + " has " + strconv.Itoa(len(row.Cells)) +
					" cells but the format declares " + strconv.Itoa(width) + " columns",
				Code:   "overflow-cells",
				Source: "texlet",
			})
		}
	}
}

// ----------------------------------------------------------------------------
// Rule: duplicate-package
// ----------------------------------------------------------------------------

var duplicatePackageRule = &Rule{
	Name:     "duplicate-package",
	Doc:      "Reports packages loaded more than once.",
	Severity: SeverityWarning,
	Run:      checkDuplicatePackages,
}

func checkDuplicatePackages(doc *Document) {
	seen := make(map[string]texlet.Span)

	for _, use := range packageUses(doc.Source) {
		span := SpanAt(doc, use.start, use.end)

		if first, exists := seen[use.name]; exists {
			doc.Diagnostics = append(doc.Diagnostics, Diagnostic{
				Span:     span,
				Severity: SeverityWarning,
				Message: "package loaded more than once: " + use.name +
					" (first loaded at line " + strconv.Itoa(first.Start.Line) + ")",
				Code:   "duplicate-package",
				Source: "texlet",
			})
		} else {
			seen[use.name] = span
		}
	}
}

// ----------------------------------------------------------------------------
// Rule: unknown-package
// ----------------------------------------------------------------------------

var unknownPackageRule = &Rule{
	Name:     "unknown-package",
	Doc:      "Reports packages outside the completion catalog.",
	Severity: SeverityHint,
	Run:      checkUnknownPackages,
}

func checkUnknownPackages(doc *Document) {
	known := make(map[string]bool)
	for _, name := range texlet.Packages() {
		known[name] = true
	}

	for _, use := range packageUses(doc.Source) {
		if known[use.name] {
			continue
		}

		doc.Diagnostics = append(doc.Diagnostics, Diagnostic{
			Span:     SpanAt(doc, use.start, use.end),
			Severity: SeverityHint,
			Message:  "unknown package: " + use.name,
			Code:     "unknown-package",
			Source:   "texlet",
		})
	}
}

const usepackageMarker = `\usepackage`

// packageUse is one package name inside a \usepackage argument.
type packageUse struct {
	name       string
	start, end int
}

// packageUses returns every package name pulled in by a complete
// \usepackage command, in document order.
func packageUses(src string) []packageUse {
	var uses []packageUse

	for from := 0; ; {
		i := strings.Index(src[from:], usepackageMarker)
		if i < 0 {
			break
		}

		i += from
		from = i + len(usepackageMarker)

		j := i + len(usepackageMarker)
		if j < len(src) && src[j] == '[' {
			end := strings.IndexByte(src[j:], ']')
			if end < 0 {
				continue
			}

			j += end + 1
		}

		if j >= len(src) || src[j] != '{' {
			continue
		}

		end := strings.IndexByte(src[j:], '}')
		if end < 0 {
			continue
		}

		args := src[j+1 : j+end]
		at := j + 1

		for _, part := range strings.Split(args, ",") {
			trimmed := strings.TrimSpace(part)
			if trimmed != "" {
				start := at + strings.Index(part, trimmed)
				uses = append(uses, packageUse{
					name:  trimmed,
					start: start,
					end:   start + len(trimmed),
				})
			}

			at += len(part) + 1
		}
	}

	return uses
}
