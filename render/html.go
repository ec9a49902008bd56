package render

import (
	"html"
	"strconv"
	"strings"
)

// HTML emits a preview tree as an HTML fragment. Tagged nodes carry
// data-start/data-end attributes so the page can sync clicks back to
// source offsets; the surrounding page supplies styling and the KaTeX
// hand-off for math spans.
func HTML(root *Node) string {
	var b strings.Builder

	e := &htmlEmitter{b: &b}
	e.children(root)

	return b.String()
}

type htmlEmitter struct {
	b *strings.Builder
}

func (e *htmlEmitter) write(s string) {
	e.b.WriteString(s)
}

func (e *htmlEmitter) text(s string) {
	e.write(strings.ReplaceAll(html.EscapeString(s), "\n", "<br>\n"))
}

// open writes an opening tag with the given classes and the node's source
// range when it has one.
func (e *htmlEmitter) open(tag string, n *Node, classes ...string) {
	e.write("<" + tag)

	if len(classes) > 0 {
		e.write(` class="` + strings.Join(classes, " ") + `"`)
	}

	if n != nil && n.Tagged() {
		e.write(` data-start="` + strconv.Itoa(n.Start) + `"`)
		e.write(` data-end="` + strconv.Itoa(n.End) + `"`)
	}

	e.write(">")
}

func (e *htmlEmitter) close(tag string) {
	e.write("</" + tag + ">")
}

func (e *htmlEmitter) children(n *Node) {
	for _, child := range n.Children {
		e.node(child)
	}
}

func (e *htmlEmitter) node(n *Node) {
	switch n.Kind {
	case NodeRoot:
		e.children(n)

	case NodeText:
		e.text(n.Text)

	case NodeMath:
		tag := "span"
		classes := []string{"math"}

		if n.Display {
			tag = "div"
			classes = append(classes, "math-display")
		}

		e.open(tag, n, classes...)
		// Markup is renderer output, not source text.
		e.write(n.Markup)
		e.close(tag)

	case NodeMathError:
		e.write(`<span class="math-error" title="` + html.EscapeString(n.Err) + `"`)
		if n.Tagged() {
			e.write(` data-start="` + strconv.Itoa(n.Start) + `"`)
			e.write(` data-end="` + strconv.Itoa(n.End) + `"`)
		}
		e.write(">")
		e.write(html.EscapeString(n.Text))
		e.close("span")

	case NodeTable:
		e.open("table", n, "tabular")
		e.children(n)
		e.close("table")

	case NodeRow:
		classes := []string{}
		if n.Top {
			classes = append(classes, "border-top")
		}
		if n.Bottom {
			classes = append(classes, "border-bottom")
		}

		e.open("tr", n, classes...)
		e.children(n)
		e.close("tr")

	case NodeCell:
		classes := []string{"cell-" + n.Spec.Align.String()}
		if n.Spec.LeftBorder {
			classes = append(classes, "border-left")
		}
		if n.Spec.RightBorder {
			classes = append(classes, "border-right")
		}

		e.open("td", n, classes...)
		e.children(n)
		e.close("td")

	case NodeCaption:
		e.open("div", n, "caption")
		e.text(CaptionPrefix)
		e.children(n)
		e.close("div")

	case NodeLabel:
		e.open("div", n, "label")
		e.text(n.Text)
		e.close("div")

	case NodeOpaque:
		e.open("pre", n, "opaque")
		e.write(html.EscapeString(n.Text))
		e.close("pre")
	}
}
