package texlet

import "github.com/alecthomas/participle/v2/lexer"

// Span represents a half-open range [Start.Offset, End.Offset) in source text.
type Span struct {
	Start lexer.Position
	End   lexer.Position
}

// StartOffset returns the byte offset of the first character in the span.
func (s Span) StartOffset() int {
	return s.Start.Offset
}

// EndOffset returns the byte offset one past the last character in the span.
func (s Span) EndOffset() int {
	return s.End.Offset
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int {
	return s.End.Offset - s.Start.Offset
}

// Contains reports whether the byte offset falls inside the span.
func (s Span) Contains(offset int) bool {
	return offset >= s.Start.Offset && offset < s.End.Offset
}

// spanBetween builds a Span from two scanner positions.
func spanBetween(start, end lexer.Position) Span {
	return Span{Start: start, End: end}
}
