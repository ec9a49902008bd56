package texlet

import "strings"

// Extent is a half-open byte range relative to the text a piece was
// extracted from. An absent piece has Start == End == -1.
type Extent struct {
	Start int
	End   int
}

// Found reports whether the extent refers to an actual piece of text.
func (e Extent) Found() bool { return e.Start >= 0 }

func absentExtent() Extent { return Extent{Start: -1, End: -1} }

// TableEnvModel holds the pieces extracted from a table environment. Each
// piece is optional and located independently; extents are byte ranges into
// the raw fragment the model was parsed from.
type TableEnvModel struct {
	// Table is the parsed grid of the nested tabular block, nil when the
	// block is absent or its markers do not parse. TableAt still covers the
	// unparseable block so it can be surfaced as opaque text.
	Table   *TableModel
	TableAt Extent

	Caption   string
	CaptionAt Extent

	Label   string
	LabelAt Extent
}

// Empty reports whether none of the optional pieces were found.
func (m *TableEnvModel) Empty() bool {
	return !m.TableAt.Found() && !m.CaptionAt.Found() && !m.LabelAt.Found()
}

// ParseTableEnv extracts the nested tabular block, caption, and label from
// the raw text of a table environment. Each piece is searched for with its
// own localized pattern, so a malformed piece never hides the others. It
// returns false when none of the three pieces are present; the caller then
// renders the whole fragment as opaque text.
func ParseTableEnv(raw string) (*TableEnvModel, bool) {
	model := &TableEnvModel{
		TableAt:   absentExtent(),
		CaptionAt: absentExtent(),
		LabelAt:   absentExtent(),
	}

	const (
		tabBegin = `\begin{tabular}`
		tabEnd   = `\end{tabular}`
	)

	if start := strings.Index(raw, tabBegin); start >= 0 {
		if rel := strings.Index(raw[start:], tabEnd); rel >= 0 {
			end := start + rel + len(tabEnd)
			model.TableAt = Extent{Start: start, End: end}
			model.Table, _ = ParseTabular(raw[start:end])
		}
	}

	if text, at, ok := braceArgument(raw, `\caption`); ok {
		model.Caption = text
		model.CaptionAt = at
	}

	if text, at, ok := braceArgument(raw, `\label`); ok {
		model.Label = text
		model.LabelAt = at
	}

	if model.Empty() {
		return nil, false
	}

	return model, true
}

// braceArgument finds the first occurrence of command directly followed by a
// single-level brace group and returns the group's content. The extent
// covers the command through the closing brace. Nested braces inside the
// group are not supported; the content ends at the first closing brace.
func braceArgument(raw, command string) (string, Extent, bool) {
	start := strings.Index(raw, command+"{")
	if start < 0 {
		return "", absentExtent(), false
	}

	open := start + len(command)

	rel := strings.Index(raw[open+1:], "}")
	if rel < 0 {
		return "", absentExtent(), false
	}

	end := open + 1 + rel

	return raw[open+1 : end], Extent{Start: start, End: end + 1}, true
}
