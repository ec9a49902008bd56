package texlet

import "strings"

// Source-format markers for tabular bodies.
const (
	rowSeparator   = `\\`
	cellSeparator  = "&"
	horizontalRule = `\hline`
)

// Align is a column alignment parsed from a column-format string.
type Align int

// Alignments in the order of their format letters l, c, r.
const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// String returns the alignment name.
func (a Align) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	default:
		return "center"
	}
}

// ColumnSpec describes one declared column of a tabular fragment.
type ColumnSpec struct {
	Align       Align
	LeftBorder  bool
	RightBorder bool
}

// TableRow is one emitted row. Cells hold raw cell text; inline math inside
// cells is located and typeset at render time.
type TableRow struct {
	Cells        []string
	TopBorder    bool
	BottomBorder bool
}

// TableModel is the grid produced from one tabular fragment. The declared
// column count may be smaller than the widest row; ColumnAt supplies the
// fallback spec for overflow cells.
type TableModel struct {
	Columns []ColumnSpec
	Rows    []TableRow
}

// ColumnAt returns the declared spec for column i, or a centered, borderless
// fallback when i is beyond the declared columns.
func (m *TableModel) ColumnAt(i int) ColumnSpec {
	if i >= 0 && i < len(m.Columns) {
		return m.Columns[i]
	}

	return ColumnSpec{Align: AlignCenter}
}

// Width returns the widest cell count across all rows.
func (m *TableModel) Width() int {
	w := len(m.Columns)
	for _, row := range m.Rows {
		if len(row.Cells) > w {
			w = len(row.Cells)
		}
	}

	return w
}

// ParseColumnFormat derives column specs from a format string over the
// alphabet {l, c, r, |}. The letters push a new column; a pipe sets
// LeftBorder on the next pushed column while none exists yet, and
// RightBorder on the most recently pushed column afterwards. Every other
// character is ignored.
func ParseColumnFormat(format string) []ColumnSpec {
	var cols []ColumnSpec

	pendingLeft := false

	for _, c := range format {
		switch c {
		case 'l':
			cols = append(cols, ColumnSpec{Align: AlignLeft, LeftBorder: pendingLeft})
			pendingLeft = false
		case 'c':
			cols = append(cols, ColumnSpec{Align: AlignCenter, LeftBorder: pendingLeft})
			pendingLeft = false
		case 'r':
			cols = append(cols, ColumnSpec{Align: AlignRight, LeftBorder: pendingLeft})
			pendingLeft = false
		case '|':
			if len(cols) == 0 {
				pendingLeft = true
			} else {
				cols[len(cols)-1].RightBorder = true
			}
		}
	}

	return cols
}

// ParseTabular builds a TableModel from raw source containing a
// \begin{tabular}{format}...\end{tabular} pair. It returns false when the
// marker pair or the column-format argument is absent, in which case the
// caller renders the input as opaque text instead of raising an error.
func ParseTabular(raw string) (*TableModel, bool) {
	const begin = `\begin{tabular}`

	start := strings.Index(raw, begin)
	if start < 0 {
		return nil, false
	}

	rest := raw[start+len(begin):]
	if !strings.HasPrefix(rest, "{") {
		return nil, false
	}

	formatEnd := strings.Index(rest, "}")
	if formatEnd < 0 {
		return nil, false
	}

	format := rest[1:formatEnd]

	body := rest[formatEnd+1:]

	end := strings.Index(body, `\end{tabular}`)
	if end < 0 {
		return nil, false
	}

	body = body[:end]

	model := &TableModel{Columns: ParseColumnFormat(format)}

	// A rule line attaches as a top border to the next emitted row; a rule
	// at the end of a row attaches as that row's bottom border right away.
	pendingTop := false

	for _, rawRow := range strings.Split(body, rowSeparator) {
		row := strings.TrimSpace(rawRow)

		if strings.HasPrefix(row, horizontalRule) {
			pendingTop = true
			row = strings.TrimSpace(strings.TrimPrefix(row, horizontalRule))
		}

		bottom := false

		if strings.HasSuffix(row, horizontalRule) {
			bottom = true
			row = strings.TrimSpace(strings.TrimSuffix(row, horizontalRule))
		}

		if row == "" {
			continue
		}

		cells := strings.Split(row, cellSeparator)
		for i := range cells {
			cells[i] = strings.TrimSpace(cells[i])
		}

		model.Rows = append(model.Rows, TableRow{
			Cells:        cells,
			TopBorder:    pendingTop,
			BottomBorder: bottom,
		})
		pendingTop = false
	}

	// A trailing rule with no row after it becomes the last row's bottom
	// border.
	if pendingTop && len(model.Rows) > 0 {
		model.Rows[len(model.Rows)-1].BottomBorder = true
	}

	return model, true
}
