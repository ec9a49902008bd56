package lsp

import (
	"net/url"
	"strings"

	"go.lsp.dev/protocol"

	"github.com/texlet/texlet"
)

// spanToRange converts a texlet.Span to an LSP protocol.Range.
// texlet uses 1-based line/column, LSP uses 0-based.
func spanToRange(span texlet.Span) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{
			Line:      uint32(max(0, span.Start.Line-1)),   //nolint:gosec // G115: values are small line numbers
			Character: uint32(max(0, span.Start.Column-1)), //nolint:gosec // G115: values are small column numbers
		},
		End: protocol.Position{
			Line:      uint32(max(0, span.End.Line-1)),   //nolint:gosec // G115: values are small line numbers
			Character: uint32(max(0, span.End.Column-1)), //nolint:gosec // G115: values are small column numbers
		},
	}
}

// rangePtr returns a pointer to a Range.
func rangePtr(r protocol.Range) *protocol.Range {
	return &r
}

// URIToPath converts a document URI to a file system path.
func URIToPath(uri protocol.DocumentURI) string {
	// Parse the URI
	u, err := url.Parse(string(uri))
	if err != nil {
		// Fallback: strip file:// prefix
		return strings.TrimPrefix(string(uri), "file://")
	}

	// For file:// URIs, return the path
	if u.Scheme == "file" {
		return u.Path
	}

	return string(uri)
}
