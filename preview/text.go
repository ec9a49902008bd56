package preview

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/texlet/texlet"
	"github.com/texlet/texlet/render"
)

// Text renders a preview tree as styled terminal text. Inline math flows
// with the surrounding prose; display math, tables, captions, and labels
// become their own blocks.
func Text(root *render.Node, st *Styles) string {
	e := &textEmitter{st: st}
	e.children(root)

	return e.b.String()
}

type textEmitter struct {
	b  strings.Builder
	st *Styles
}

func (e *textEmitter) children(n *render.Node) {
	for _, child := range n.Children {
		e.node(child)
	}
}

func (e *textEmitter) node(n *render.Node) {
	switch n.Kind {
	case render.NodeRoot:
		e.children(n)

	case render.NodeText:
		e.b.WriteString(n.Text)

	case render.NodeMath:
		if n.Display {
			e.block(e.st.Math.Render("  " + n.Markup))
		} else {
			e.b.WriteString(e.st.Math.Render(n.Markup))
		}

	case render.NodeMathError:
		e.b.WriteString(e.st.MathError.Render(n.Text))

	case render.NodeTable:
		e.block(e.table(n))

	case render.NodeCaption:
		e.block(e.st.Caption.Render(render.CaptionPrefix + inlineText(n, e.st)))

	case render.NodeLabel:
		e.block(e.st.Label.Render(n.Text))

	case render.NodeOpaque:
		e.block(e.st.Opaque.Render(n.Text))

	case render.NodeRow, render.NodeCell:
		// Rows and cells are emitted by table; a stray one degrades to
		// its flattened content.
		e.children(n)
	}
}

// block writes s as its own paragraph: it starts on a fresh line and ends
// with a newline.
func (e *textEmitter) block(s string) {
	if e.b.Len() > 0 && !strings.HasSuffix(e.b.String(), "\n") {
		e.b.WriteByte('\n')
	}

	e.b.WriteString(s)
	e.b.WriteByte('\n')
}

// inlineText renders a node's children without block breaks, for content
// that must stay on one line such as captions and table cells.
func inlineText(n *render.Node, st *Styles) string {
	e := textEmitter{st: st}
	e.children(n)

	return strings.TrimSpace(e.b.String())
}

// table lays out a table node as a character grid. Column widths come
// from the widest cell, alignment and vertical borders from the column
// specs, and horizontal rules from the row border flags.
func (e *textEmitter) table(n *render.Node) string {
	rows := n.Children

	var widths []int

	content := make([][]string, len(rows))
	specs := make([][]texlet.ColumnSpec, len(rows))

	for i, row := range rows {
		for j, cell := range row.Children {
			text := inlineText(cell, e.st)
			content[i] = append(content[i], text)
			specs[i] = append(specs[i], cell.Spec)

			if j >= len(widths) {
				widths = append(widths, 0)
			}

			widths[j] = max(widths[j], lipgloss.Width(text))
		}
	}

	lines := make([]string, len(rows))
	ruleWidth := 0

	for i := range rows {
		lines[i] = e.rowLine(content[i], specs[i], widths)
		ruleWidth = max(ruleWidth, lipgloss.Width(lines[i]))
	}

	rule := e.st.Border.Render(strings.Repeat("─", ruleWidth))

	var b strings.Builder

	for i, row := range rows {
		if row.Top {
			b.WriteString(rule)
			b.WriteByte('\n')
		}

		b.WriteString(lines[i])
		b.WriteByte('\n')

		if row.Bottom {
			b.WriteString(rule)
			b.WriteByte('\n')
		}
	}

	return strings.TrimSuffix(b.String(), "\n")
}

func (e *textEmitter) rowLine(cells []string, specs []texlet.ColumnSpec, widths []int) string {
	parts := make([]string, 0, len(cells))

	for j, cell := range cells {
		padded := lipgloss.PlaceHorizontal(widths[j], position(specs[j].Align), cell)

		if specs[j].LeftBorder {
			padded = e.st.Border.Render("│") + " " + padded
		}

		if specs[j].RightBorder {
			padded = padded + " " + e.st.Border.Render("│")
		}

		parts = append(parts, padded)
	}

	return strings.Join(parts, "  ")
}

func position(a texlet.Align) lipgloss.Position {
	switch a {
	case texlet.AlignRight:
		return lipgloss.Right
	case texlet.AlignCenter:
		return lipgloss.Center
	case texlet.AlignLeft:
		return lipgloss.Left
	default:
		return lipgloss.Left
	}
}
