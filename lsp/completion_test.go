package lsp_test

import (
	"context"
	"testing"

	"go.lsp.dev/protocol"
)

// completionAt opens uri with text and requests completion at (line, character).
func completionAt(t *testing.T, text string, line, character uint32) *protocol.CompletionList {
	t.Helper()

	server, _ := newTestServer(t)
	ctx := context.Background()

	openDocument(t, server, "file:///notes.tex", text)

	result, err := server.Completion(ctx, &protocol.CompletionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: "file:///notes.tex"},
			Position:     protocol.Position{Line: line, Character: character},
		},
	})
	if err != nil {
		t.Fatalf("Completion() error: %v", err)
	}

	if result == nil {
		t.Fatal("Expected completion list")
	}

	return result
}

// findItem returns the item with the given label, failing the test when absent.
func findItem(t *testing.T, items []protocol.CompletionItem, label string) protocol.CompletionItem {
	t.Helper()

	for _, item := range items {
		if item.Label == label {
			return item
		}
	}

	t.Fatalf("No item labeled %q in %d items", label, len(items))

	return protocol.CompletionItem{}
}

func TestCompletion_CommandSkeleton(t *testing.T) {
	t.Parallel()

	result := completionAt(t, `\fr`, 0, 3)

	if len(result.Items) != 1 {
		t.Fatalf("Expected 1 item for prefix fr, got %d", len(result.Items))
	}

	item := result.Items[0]

	if item.Label != `\frac` {
		t.Errorf("Label = %q, want %q", item.Label, `\frac`)
	}

	if item.Kind != protocol.CompletionItemKindFunction {
		t.Errorf("Kind = %v, want Function", item.Kind)
	}

	if item.Detail != "command" {
		t.Errorf("Detail = %q, want %q", item.Detail, "command")
	}

	if item.TextEdit == nil {
		t.Fatal("Expected text edit")
	}

	// The edit replaces the typed \fr, not just the fr.
	wantRange := protocol.Range{
		Start: protocol.Position{Line: 0, Character: 0},
		End:   protocol.Position{Line: 0, Character: 3},
	}
	if item.TextEdit.Range != wantRange {
		t.Errorf("Range = %+v, want %+v", item.TextEdit.Range, wantRange)
	}

	// The mid-template cursor becomes a snippet tab stop.
	if item.TextEdit.NewText != `\frac{$0}{}` {
		t.Errorf("NewText = %q, want %q", item.TextEdit.NewText, `\frac{$0}{}`)
	}

	if item.InsertTextFormat != protocol.InsertTextFormatSnippet {
		t.Errorf("InsertTextFormat = %v, want Snippet", item.InsertTextFormat)
	}
}

func TestCompletion_ClassName(t *testing.T) {
	t.Parallel()

	result := completionAt(t, `\documentclass{bo`, 0, 17)

	if len(result.Items) != 1 {
		t.Fatalf("Expected 1 item for prefix bo, got %d", len(result.Items))
	}

	item := result.Items[0]

	if item.Label != "book" {
		t.Errorf("Label = %q, want %q", item.Label, "book")
	}

	if item.Kind != protocol.CompletionItemKindClass {
		t.Errorf("Kind = %v, want Class", item.Kind)
	}

	if item.Detail != "document class" {
		t.Errorf("Detail = %q, want %q", item.Detail, "document class")
	}

	if item.TextEdit == nil {
		t.Fatal("Expected text edit")
	}

	// Only the partial name is replaced, not the brace.
	wantRange := protocol.Range{
		Start: protocol.Position{Line: 0, Character: 15},
		End:   protocol.Position{Line: 0, Character: 17},
	}
	if item.TextEdit.Range != wantRange {
		t.Errorf("Range = %+v, want %+v", item.TextEdit.Range, wantRange)
	}

	if item.TextEdit.NewText != "book" {
		t.Errorf("NewText = %q, want %q", item.TextEdit.NewText, "book")
	}

	if item.InsertTextFormat == protocol.InsertTextFormatSnippet {
		t.Error("Plain name insert should not be a snippet")
	}
}

func TestCompletion_ClassOption(t *testing.T) {
	t.Parallel()

	result := completionAt(t, `\documentclass[a4p`, 0, 18)

	item := findItem(t, result.Items, "a4paper")

	if item.Detail != "class option" {
		t.Errorf("Detail = %q, want %q", item.Detail, "class option")
	}

	wantRange := protocol.Range{
		Start: protocol.Position{Line: 0, Character: 15},
		End:   protocol.Position{Line: 0, Character: 18},
	}
	if item.TextEdit == nil || item.TextEdit.Range != wantRange {
		t.Errorf("TextEdit = %+v, want range %+v", item.TextEdit, wantRange)
	}
}

func TestCompletion_PackageOptionDedup(t *testing.T) {
	t.Parallel()

	// utf8 is already taken in this bracket group.
	result := completionAt(t, `\usepackage[utf8,lat]{inputenc}`, 0, 20)

	if len(result.Items) != 1 {
		t.Fatalf("Expected only latin1, got %d items", len(result.Items))
	}

	item := result.Items[0]

	if item.Label != "latin1" {
		t.Errorf("Label = %q, want %q", item.Label, "latin1")
	}

	if item.Detail != "package option" {
		t.Errorf("Detail = %q, want %q", item.Detail, "package option")
	}

	// Only the active token after the comma is replaced.
	wantRange := protocol.Range{
		Start: protocol.Position{Line: 0, Character: 17},
		End:   protocol.Position{Line: 0, Character: 20},
	}
	if item.TextEdit == nil || item.TextEdit.Range != wantRange {
		t.Errorf("TextEdit = %+v, want range %+v", item.TextEdit, wantRange)
	}
}

func TestCompletion_PackageNameExcludesIncluded(t *testing.T) {
	t.Parallel()

	text := "\\usepackage{amsmath}\n\\usepackage{ams"

	result := completionAt(t, text, 1, 15)

	if len(result.Items) != 1 {
		t.Fatalf("Expected amssymb only, got %d items", len(result.Items))
	}

	item := result.Items[0]

	if item.Label != "amssymb" {
		t.Errorf("Label = %q, want %q", item.Label, "amssymb")
	}

	if item.Kind != protocol.CompletionItemKindModule {
		t.Errorf("Kind = %v, want Module", item.Kind)
	}

	wantRange := protocol.Range{
		Start: protocol.Position{Line: 1, Character: 12},
		End:   protocol.Position{Line: 1, Character: 15},
	}
	if item.TextEdit == nil || item.TextEdit.Range != wantRange {
		t.Errorf("TextEdit = %+v, want range %+v", item.TextEdit, wantRange)
	}
}

func TestCompletion_StyleOptionOpensSub(t *testing.T) {
	t.Parallel()

	result := completionAt(t, `\draw[den`, 0, 9)

	if len(result.Items) != 1 {
		t.Fatalf("Expected densely only, got %d items", len(result.Items))
	}

	item := result.Items[0]

	if item.Label != "densely" {
		t.Errorf("Label = %q, want %q", item.Label, "densely")
	}

	if item.Detail != "style option" {
		t.Errorf("Detail = %q, want %q", item.Detail, "style option")
	}

	// The base keyword inserts with a trailing separator and immediately
	// reopens the suggestion menu for its sub-vocabulary.
	if item.TextEdit == nil || item.TextEdit.NewText != "densely " {
		t.Errorf("NewText = %+v, want %q", item.TextEdit, "densely ")
	}

	if item.Command == nil || item.Command.Command != "editor.action.triggerSuggest" {
		t.Errorf("Expected triggerSuggest command, got %+v", item.Command)
	}
}

func TestCompletion_StyleSubOption(t *testing.T) {
	t.Parallel()

	result := completionAt(t, `\draw[densely d`, 0, 15)

	if len(result.Items) != 3 {
		t.Fatalf("Expected 3 dash patterns, got %d items", len(result.Items))
	}

	item := findItem(t, result.Items, "dashed")

	// Only the sub-token after the base keyword is replaced.
	wantRange := protocol.Range{
		Start: protocol.Position{Line: 0, Character: 14},
		End:   protocol.Position{Line: 0, Character: 15},
	}
	if item.TextEdit == nil || item.TextEdit.Range != wantRange {
		t.Errorf("TextEdit = %+v, want range %+v", item.TextEdit, wantRange)
	}
}

func TestCompletion_NoContext(t *testing.T) {
	t.Parallel()

	result := completionAt(t, "plain prose here", 0, 5)

	if len(result.Items) != 0 {
		t.Errorf("Expected no items in plain text, got %d", len(result.Items))
	}
}

func TestCompletion_UnknownDocument(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t)
	ctx := context.Background()

	result, err := server.Completion(ctx, &protocol.CompletionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: "file:///missing.tex"},
			Position:     protocol.Position{Line: 0, Character: 0},
		},
	})
	if err != nil {
		t.Fatalf("Completion() error: %v", err)
	}

	if result != nil {
		t.Error("Expected nil result for unknown document")
	}
}
