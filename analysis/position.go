package analysis

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/texlet/texlet"
)

// PositionAt converts a byte offset into a line/column position within the
// document source. Offsets outside the document clamp to its bounds.
func PositionAt(doc *Document, offset int) lexer.Position {
	if offset < 0 {
		offset = 0
	}

	if offset > len(doc.Source) {
		offset = len(doc.Source)
	}

	pos := lexer.Position{Offset: offset, Line: 1, Column: 1}
	for i := 0; i < offset; i++ {
		if doc.Source[i] == '\n' {
			pos.Line++
			pos.Column = 1
		} else {
			pos.Column++
		}
	}

	return pos
}

// SpanAt builds a span covering the byte range [start, end).
func SpanAt(doc *Document, start, end int) texlet.Span {
	return texlet.Span{
		Start: PositionAt(doc, start),
		End:   PositionAt(doc, end),
	}
}

// OffsetAt converts a 1-based line/column position into a byte offset.
// Columns past the end of a line clamp to the end of that line; lines past
// the end of the document clamp to the document length.
func OffsetAt(doc *Document, line, column int) int {
	src := doc.Source

	start := 0
	for ; line > 1; line-- {
		next := strings.IndexByte(src[start:], '\n')
		if next < 0 {
			return len(src)
		}

		start += next + 1
	}

	end := len(src)
	if next := strings.IndexByte(src[start:], '\n'); next >= 0 {
		end = start + next
	}

	offset := start + column - 1
	if offset < start {
		offset = start
	}

	if offset > end {
		offset = end
	}

	return offset
}

// LineText returns the text of the given 1-based line without its newline.
// Lines past the end of the document are empty.
func LineText(doc *Document, line int) string {
	src := doc.Source

	start := 0
	for ; line > 1; line-- {
		next := strings.IndexByte(src[start:], '\n')
		if next < 0 {
			return ""
		}

		start += next + 1
	}

	if next := strings.IndexByte(src[start:], '\n'); next >= 0 {
		return src[start : start+next]
	}

	return src[start:]
}

// SegmentAt returns the segment containing the given byte offset.
// Returns nil when the offset falls outside every segment.
func SegmentAt(doc *Document, offset int) *texlet.Segment {
	for i := range doc.Segments {
		if doc.Segments[i].Span.Contains(offset) {
			return &doc.Segments[i]
		}
	}

	return nil
}

// PositionToLexer converts LSP 0-based line/character to 1-based line/column.
func PositionToLexer(line, character uint32) lexer.Position {
	return lexer.Position{
		Line:   int(line) + 1, // LSP is 0-based
		Column: int(character) + 1,
	}
}
