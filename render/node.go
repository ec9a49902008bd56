// Package render turns scanned source segments into a preview tree and
// emits it as HTML. Math typesetting is delegated to a pluggable
// MathRenderer; every rendered node keeps the source span it came from so
// the preview can sync clicks back to the editor.
package render

import "github.com/texlet/texlet"

// NodeKind classifies a node in the preview tree.
type NodeKind int

const (
	NodeRoot NodeKind = iota
	NodeText
	NodeMath
	NodeMathError
	NodeTable
	NodeRow
	NodeCell
	NodeCaption
	NodeLabel
	NodeOpaque
)

// String returns a readable name for the node kind.
func (k NodeKind) String() string {
	switch k {
	case NodeRoot:
		return "root"
	case NodeText:
		return "text"
	case NodeMath:
		return "math"
	case NodeMathError:
		return "math-error"
	case NodeTable:
		return "table"
	case NodeRow:
		return "row"
	case NodeCell:
		return "cell"
	case NodeCaption:
		return "caption"
	case NodeLabel:
		return "label"
	case NodeOpaque:
		return "opaque"
	default:
		return "unknown"
	}
}

// Node is one element of the preview tree. Start and End are absolute byte
// offsets into the source text; nodes without a source range of their own
// (table rows and cells, whose text was trimmed during grid parsing) carry
// -1 and sync through their nearest tagged ancestor.
type Node struct {
	Kind  NodeKind
	Start int
	End   int

	// Text holds plain or opaque source text, the math source for math
	// nodes, and the caption or label content.
	Text string

	// Markup is the typeset output for NodeMath.
	Markup string

	// Display marks block-layout math.
	Display bool

	// Err is the typesetting failure message for NodeMathError.
	Err string

	// Spec carries alignment and borders for NodeCell.
	Spec texlet.ColumnSpec

	// Top and Bottom are the border flags for NodeRow.
	Top    bool
	Bottom bool

	Children []*Node
}

// Tagged reports whether the node carries its own source range.
func (n *Node) Tagged() bool {
	return n.Start >= 0 && n.End > n.Start
}

// Contains reports whether the node's source range covers offset.
func (n *Node) Contains(offset int) bool {
	return n.Tagged() && offset >= n.Start && offset < n.End
}
