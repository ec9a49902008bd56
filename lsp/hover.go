package lsp

import (
	"context"
	"strings"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/texlet/texlet"
	"github.com/texlet/texlet/analysis"
	"github.com/texlet/texlet/render"
)

// Hover handles textDocument/hover requests. Math segments show their
// source next to a plain-text reading; other segments have no hover.
func (s *Server) Hover(_ context.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	s.logger.Debug("Hover",
		zap.String("uri", string(params.TextDocument.URI)),
		zap.Uint32("line", params.Position.Line),
		zap.Uint32("character", params.Position.Character))

	doc, ok := s.getDocument(params.TextDocument.URI)
	if !ok || doc.Analysis == nil {
		return nil, nil //nolint:nilnil
	}

	offset := analysis.OffsetAt(doc.Analysis, int(params.Position.Line)+1, int(params.Position.Character)+1)

	seg := analysis.SegmentAt(doc.Analysis, offset)
	if seg == nil {
		return nil, nil //nolint:nilnil
	}

	content := hoverContent(seg)
	if content == "" {
		return nil, nil //nolint:nilnil
	}

	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.Markdown,
			Value: content,
		},
		Range: rangePtr(spanToRange(seg.Span)),
	}, nil
}

// hoverContent generates hover markdown for a segment.
func hoverContent(seg *texlet.Segment) string {
	var title string

	switch seg.Kind {
	case texlet.SegInlineMath:
		title = "**Inline math**"
	case texlet.SegDisplayMath:
		title = "**Display math**"
	default:
		return ""
	}

	var b strings.Builder

	b.WriteString(title)
	b.WriteString("\n\n```latex\n")
	b.WriteString(seg.Body)
	b.WriteString("\n```")

	// Append a plain-text reading when the expression typesets.
	display := seg.Kind == texlet.SegDisplayMath
	if preview, err := (render.UnicodeMath{}).Render(seg.Body, display); err == nil && preview != "" {
		b.WriteString("\n\n")
		b.WriteString(preview)
	}

	return b.String()
}
