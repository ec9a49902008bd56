package lsp

import (
	"context"
	"errors"
	"fmt"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"
)

// CommandRefreshPreview re-analyzes a document immediately, skipping the
// edit debounce. Preview surfaces expose it as a manual refresh.
const CommandRefreshPreview = "texlet.refreshPreview"

// ExecuteCommand handles workspace/executeCommand requests.
func (s *Server) ExecuteCommand(ctx context.Context, params *protocol.ExecuteCommandParams) (any, error) {
	s.logger.Info("ExecuteCommand", zap.String("command", params.Command))

	switch params.Command {
	case CommandRefreshPreview:
		return nil, s.refreshPreview(ctx, params.Arguments)
	default:
		return nil, fmt.Errorf("unknown command: %s", params.Command)
	}
}

// refreshPreview flushes any pending debounce for the document named by the
// first argument and analyzes its current content right away.
func (s *Server) refreshPreview(ctx context.Context, args []any) error {
	if len(args) == 0 {
		return errors.New("refreshPreview: missing document URI argument")
	}

	raw, ok := args[0].(string)
	if !ok {
		return fmt.Errorf("refreshPreview: URI argument must be a string, got %T", args[0])
	}

	uri := protocol.DocumentURI(raw)

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.documents[uri]
	if !ok {
		return fmt.Errorf("refreshPreview: unknown document: %s", raw)
	}

	if doc.pending != nil {
		doc.pending.Stop()
		doc.pending = nil
	}

	s.analyze(ctx, doc)

	return nil
}
