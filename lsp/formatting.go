package lsp

import (
	"context"
	"strings"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/texlet/texlet"
)

// OnTypeFormatting handles textDocument/onTypeFormatting requests. The only
// registered trigger is the newline: when the break landed at the end of a
// line that finishes with an environment-begin marker, the edit indents the
// fresh line one level deeper and closes the environment below it.
func (s *Server) OnTypeFormatting(_ context.Context, params *protocol.DocumentOnTypeFormattingParams) ([]protocol.TextEdit, error) {
	s.logger.Debug("OnTypeFormatting",
		zap.String("uri", string(params.TextDocument.URI)),
		zap.String("ch", params.Ch))

	if params.Ch != "\n" {
		return nil, nil
	}

	doc, ok := s.getDocument(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}

	// The client applies the newline before asking, so the cursor sits on
	// the freshly opened line and the marker line is the one above it.
	lines := strings.Split(doc.Content, "\n")

	ln := int(params.Position.Line)
	if ln < 1 || ln >= len(lines) {
		return nil, nil
	}

	prev := lines[ln-1]
	cur := lines[ln]

	// Fire only for a break at the very end of the marker line: the cursor
	// line may hold nothing but the client's auto-indent.
	col := min(int(params.Position.Character), len(cur))
	if strings.TrimSpace(cur[:col]) != "" || strings.TrimSpace(cur[col:]) != "" {
		return nil, nil
	}

	br, ok := texlet.BreakEnvironment(prev, len(prev))
	if !ok {
		return nil, nil
	}

	// br.Insert starts with the newline the client already typed. The rest
	// splits at the cursor column into the inner indentation and the
	// closing line. Replacing the auto-indent keeps the cursor at the end
	// of the inner line; the closer is inserted after it.
	inner := br.Insert[1 : 1+br.CursorCol]
	closer := br.Insert[1+br.CursorCol:]

	return []protocol.TextEdit{
		{
			Range: protocol.Range{
				Start: protocol.Position{Line: params.Position.Line, Character: 0},
				End:   protocol.Position{Line: params.Position.Line, Character: uint32(col)}, //nolint:gosec // G115: values are small column numbers
			},
			NewText: inner,
		},
		{
			Range: protocol.Range{
				Start: protocol.Position{Line: params.Position.Line, Character: uint32(col)}, //nolint:gosec // G115: values are small column numbers
				End:   protocol.Position{Line: params.Position.Line, Character: uint32(col)}, //nolint:gosec // G115: values are small column numbers
			},
			NewText: closer,
		},
	}, nil
}
