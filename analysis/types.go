// Package analysis builds per-document snapshots for the editor surfaces.
package analysis

import (
	"github.com/texlet/texlet"
	"github.com/texlet/texlet/render"
)

// Document holds the analysis results for a single scratchpad file.
type Document struct {
	// Path is the file path (URI in LSP terms).
	Path string

	// Source is the full text that was analyzed.
	Source string

	// Segments is the ordered, gap-free segmentation of Source.
	Segments []texlet.Segment

	// Render is the preview tree built from Segments.
	Render *render.Result

	// SourceMap resolves preview clicks back to source offsets.
	SourceMap *render.SourceMap

	// Diagnostics contains all findings from the analysis rules.
	Diagnostics []Diagnostic
}

// Diagnostic represents a problem found during analysis.
type Diagnostic struct {
	Span     texlet.Span
	Severity DiagnosticSeverity
	Message  string
	Code     string // e.g., "invalid-math", "unterminated-environment"
	Source   string // "texlet"
}

// DiagnosticSeverity indicates the severity of a diagnostic.
type DiagnosticSeverity int

// Diagnostic severity constants.
const (
	SeverityError DiagnosticSeverity = iota + 1
	SeverityWarning
	SeverityInformation
	SeverityHint
)
