package render

import (
	"fmt"
	"strings"

	"github.com/texlet/texlet"
)

// CaptionPrefix is the literal label emitted ahead of table captions.
const CaptionPrefix = "Table: "

// Renderer builds preview trees from source text.
type Renderer struct {
	math MathRenderer
}

// New returns a renderer that typesets math through math.
func New(math MathRenderer) *Renderer {
	return &Renderer{math: math}
}

// Result is one full render pass over a document.
type Result struct {
	// Root is the preview tree; its children follow source order.
	Root *Node

	// Segments is the scan the tree was built from.
	Segments []texlet.Segment

	// Banner is the first failure message of the pass. Later failures in
	// the same pass still render inline but add no further banner.
	Banner string

	// Failures counts failed spans in the pass.
	Failures int
}

func (res *Result) fail(msg string) {
	res.Failures++
	if res.Banner == "" {
		res.Banner = msg
	}
}

// Render scans src and renders every segment into the preview tree. A
// failure inside one fragment never aborts its siblings.
func (r *Renderer) Render(src string) *Result {
	res := &Result{
		Root:     &Node{Kind: NodeRoot, Start: 0, End: len(src)},
		Segments: texlet.Scan(src),
	}

	for _, seg := range res.Segments {
		res.Root.Children = append(res.Root.Children, r.renderSegment(seg, res)...)
	}

	return res
}

// renderSegment maps one segment to preview nodes. A panic inside the
// fragment degrades it to opaque text so sibling fragments still render.
func (r *Renderer) renderSegment(seg texlet.Segment, res *Result) (nodes []*Node) {
	defer func() {
		if rec := recover(); rec != nil {
			res.fail(fmt.Sprintf("render %s fragment: %v", seg.Kind, rec))
			nodes = []*Node{opaqueNode(seg)}
		}
	}()

	switch seg.Kind {
	case texlet.SegText:
		return r.renderInline(seg.Raw, seg.Span.StartOffset(), res)

	case texlet.SegInlineMath:
		return []*Node{r.mathNode(seg, false, res)}

	case texlet.SegDisplayMath:
		return []*Node{r.mathNode(seg, true, res)}

	case texlet.SegTabular:
		model, ok := texlet.ParseTabular(seg.Raw)
		if !ok {
			return []*Node{opaqueNode(seg)}
		}

		return []*Node{r.tableNode(model, seg.Span.StartOffset(), seg.Span.EndOffset(), res)}

	case texlet.SegTableEnv:
		return r.renderTableEnv(seg, res)

	default:
		return []*Node{opaqueNode(seg)}
	}
}

func (r *Renderer) mathNode(seg texlet.Segment, display bool, res *Result) *Node {
	start, end := seg.Span.StartOffset(), seg.Span.EndOffset()

	markup, err := r.math.Render(seg.Body, display)
	if err != nil {
		res.fail(err.Error())

		return &Node{Kind: NodeMathError, Start: start, End: end, Text: seg.Raw, Err: err.Error()}
	}

	return &Node{Kind: NodeMath, Start: start, End: end, Text: seg.Body, Markup: markup, Display: display}
}

// renderInline alternates plain text runs with typeset inline-math spans.
// base is the absolute offset of text, or -1 when the text has no stable
// source range of its own (table cells); untagged nodes sync through their
// nearest tagged ancestor.
func (r *Renderer) renderInline(text string, base int, res *Result) []*Node {
	at := func(rel int) int {
		if base < 0 {
			return -1
		}

		return base + rel
	}

	var nodes []*Node

	cursor := 0

	for _, sp := range texlet.FindInlineMath(text) {
		if sp.Start > cursor {
			nodes = append(nodes, &Node{
				Kind:  NodeText,
				Start: at(cursor),
				End:   at(sp.Start),
				Text:  hardBreaks(text[cursor:sp.Start]),
			})
		}

		raw := text[sp.Start:sp.End]

		markup, err := r.math.Render(sp.Body, false)
		if err != nil {
			res.fail(err.Error())
			nodes = append(nodes, &Node{
				Kind:  NodeMathError,
				Start: at(sp.Start),
				End:   at(sp.End),
				Text:  raw,
				Err:   err.Error(),
			})
		} else {
			nodes = append(nodes, &Node{
				Kind:   NodeMath,
				Start:  at(sp.Start),
				End:    at(sp.End),
				Text:   sp.Body,
				Markup: markup,
			})
		}

		cursor = sp.End
	}

	if cursor < len(text) {
		nodes = append(nodes, &Node{
			Kind:  NodeText,
			Start: at(cursor),
			End:   at(len(text)),
			Text:  hardBreaks(text[cursor:]),
		})
	}

	return nodes
}

// hardBreaks rewrites the \\ marker of text runs as a newline. The node's
// source range still covers the two-byte marker.
func hardBreaks(s string) string {
	return strings.ReplaceAll(s, `\\`, "\n")
}

func (r *Renderer) tableNode(model *texlet.TableModel, start, end int, res *Result) *Node {
	table := &Node{Kind: NodeTable, Start: start, End: end}

	for _, row := range model.Rows {
		rowNode := &Node{
			Kind:   NodeRow,
			Start:  -1,
			End:    -1,
			Top:    row.TopBorder,
			Bottom: row.BottomBorder,
		}

		for i, cell := range row.Cells {
			cellNode := &Node{Kind: NodeCell, Start: -1, End: -1, Spec: model.ColumnAt(i)}
			cellNode.Children = r.renderInline(cell, -1, res)
			rowNode.Children = append(rowNode.Children, cellNode)
		}

		table.Children = append(table.Children, rowNode)
	}

	return table
}

// renderTableEnv emits the caption, grid, and label pieces found in a
// table environment, in that order. Each piece keeps its own source range.
func (r *Renderer) renderTableEnv(seg texlet.Segment, res *Result) []*Node {
	model, ok := texlet.ParseTableEnv(seg.Raw)
	if !ok {
		return []*Node{opaqueNode(seg)}
	}

	base := seg.Span.StartOffset()

	var nodes []*Node

	if model.CaptionAt.Found() {
		caption := &Node{
			Kind:  NodeCaption,
			Start: base + model.CaptionAt.Start,
			End:   base + model.CaptionAt.End,
			Text:  model.Caption,
		}

		textBase := base + model.CaptionAt.Start + len(`\caption{`)
		caption.Children = r.renderInline(model.Caption, textBase, res)

		nodes = append(nodes, caption)
	}

	if model.TableAt.Found() {
		start := base + model.TableAt.Start
		end := base + model.TableAt.End

		if model.Table != nil {
			nodes = append(nodes, r.tableNode(model.Table, start, end, res))
		} else {
			nodes = append(nodes, &Node{
				Kind:  NodeOpaque,
				Start: start,
				End:   end,
				Text:  seg.Raw[model.TableAt.Start:model.TableAt.End],
			})
		}
	}

	if model.LabelAt.Found() {
		nodes = append(nodes, &Node{
			Kind:  NodeLabel,
			Start: base + model.LabelAt.Start,
			End:   base + model.LabelAt.End,
			Text:  model.Label,
		})
	}

	return nodes
}

func opaqueNode(seg texlet.Segment) *Node {
	return &Node{
		Kind:  NodeOpaque,
		Start: seg.Span.StartOffset(),
		End:   seg.Span.EndOffset(),
		Text:  seg.Raw,
	}
}
