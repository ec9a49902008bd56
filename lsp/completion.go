package lsp

import (
	"context"
	"strings"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/texlet/texlet"
)

// Completion handles textDocument/completion requests.
func (s *Server) Completion(_ context.Context, params *protocol.CompletionParams) (*protocol.CompletionList, error) {
	s.logger.Debug("Completion",
		zap.String("uri", string(params.TextDocument.URI)),
		zap.Uint32("line", params.Position.Line),
		zap.Uint32("character", params.Position.Character))

	doc, ok := s.getDocument(params.TextDocument.URI)
	if !ok {
		return nil, nil //nolint:nilnil
	}

	lines := strings.Split(doc.Content, "\n")
	if int(params.Position.Line) >= len(lines) {
		return &protocol.CompletionList{IsIncomplete: false, Items: []protocol.CompletionItem{}}, nil
	}

	line := lines[params.Position.Line]
	col := min(int(params.Position.Character), len(line))

	cc, cands := s.resolver.Resolve(doc.Content, line, col)
	s.logger.Debug("Completion context",
		zap.String("kind", string(cc.Kind)),
		zap.String("prefix", cc.Prefix),
		zap.Int("candidates", len(cands)))

	items := make([]protocol.CompletionItem, 0, len(cands))
	for _, cand := range cands {
		items = append(items, completionItem(params.Position.Line, cc, cand))
	}

	return &protocol.CompletionList{
		IsIncomplete: false,
		Items:        items,
	}, nil
}

// completionItem converts a resolver candidate into an LSP completion item.
// The text edit replaces exactly the resolver's span, so a half-typed token
// is swapped out rather than appended to.
func completionItem(line uint32, cc texlet.CompletionContext, cand texlet.Candidate) protocol.CompletionItem {
	item := protocol.CompletionItem{
		Label:  cand.Label,
		Kind:   itemKind(cc.Kind),
		Detail: itemDetail(cc.Kind),
	}

	edit := &protocol.TextEdit{
		Range: protocol.Range{
			Start: protocol.Position{Line: line, Character: uint32(max(0, cc.From))}, //nolint:gosec // G115: values are small column numbers
			End:   protocol.Position{Line: line, Character: uint32(max(0, cc.To))},   //nolint:gosec // G115: values are small column numbers
		},
		NewText: cand.Insert,
	}

	// A mid-insert cursor becomes a snippet tab stop.
	if cand.Cursor >= 0 && cand.Cursor <= len(cand.Insert) {
		edit.NewText = cand.Insert[:cand.Cursor] + "$0" + cand.Insert[cand.Cursor:]
		item.InsertTextFormat = protocol.InsertTextFormatSnippet
	}

	item.TextEdit = edit

	// Options with a sub-vocabulary immediately reopen the suggestion menu.
	if cand.OpensSub {
		item.Command = &protocol.Command{
			Title:   "Trigger Suggest",
			Command: "editor.action.triggerSuggest",
		}
	}

	return item
}

// itemKind maps a resolver context kind to an LSP completion item kind.
func itemKind(kind texlet.CompletionKind) protocol.CompletionItemKind {
	switch kind {
	case texlet.CompletionKindCommand:
		return protocol.CompletionItemKindFunction
	case texlet.CompletionKindClassName:
		return protocol.CompletionItemKindClass
	case texlet.CompletionKindPackageName:
		return protocol.CompletionItemKindModule
	default:
		return protocol.CompletionItemKindKeyword
	}
}

// itemDetail maps a resolver context kind to the detail string shown next
// to the label.
func itemDetail(kind texlet.CompletionKind) string {
	switch kind {
	case texlet.CompletionKindStyleOption, texlet.CompletionKindStyleSubOption:
		return "style option"
	case texlet.CompletionKindClassOption:
		return "class option"
	case texlet.CompletionKindPackageOption:
		return "package option"
	case texlet.CompletionKindClassName:
		return "document class"
	case texlet.CompletionKindPackageName:
		return "package"
	case texlet.CompletionKindCommand:
		return "command"
	default:
		return ""
	}
}
