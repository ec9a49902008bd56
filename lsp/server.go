// Package lsp implements a Language Server Protocol server for scratchpad files.
package lsp

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/texlet/texlet"
	"github.com/texlet/texlet/analysis"
	"github.com/texlet/texlet/render"
)

// Server implements the LSP Server interface for texlet.
type Server struct {
	client protocol.Client
	logger *zap.Logger

	// Config controls the math renderer and the re-analysis debounce.
	config *texlet.Config

	// Document state
	mu        sync.RWMutex
	documents map[protocol.DocumentURI]*Document

	// Analyzer shared by every document
	analyzer *analysis.Analyzer

	// Resolver answers completion requests
	resolver *texlet.Resolver

	// Server state
	initialized   bool
	shutdown      bool
	workspaceRoot string
}

// Document represents an open document in the server.
type Document struct {
	URI     protocol.DocumentURI
	Version int32
	Content string

	// Analysis is the result of the most recent analysis pass. It can lag
	// behind Content while an edit burst is being debounced.
	Analysis *analysis.Document

	// pending is the debounce timer for the next analysis pass.
	pending *time.Timer
}

// NewServer creates a new LSP server. Pass nil for cfg to use defaults;
// Initialize will then look for a config file under the workspace root.
func NewServer(client protocol.Client, logger *zap.Logger, cfg *texlet.Config) *Server {
	s := &Server{
		client:    client,
		logger:    logger,
		documents: make(map[protocol.DocumentURI]*Document),
		resolver:  texlet.NewResolver(),
	}

	if cfg != nil {
		s.setConfig(cfg)
	}

	return s
}

// setConfig installs the config and rebuilds the analyzer for its renderer.
func (s *Server) setConfig(cfg *texlet.Config) {
	s.config = cfg

	name := cfg.Renderer
	if name == "" {
		name = texlet.DefaultRenderer
	}

	math, err := render.NewMath(name)
	if err != nil {
		s.logger.Warn("No math renderer registered, falling back to default",
			zap.String("renderer", name),
			zap.Strings("available", render.RegisteredMath()))

		math = nil
	}

	s.analyzer = analysis.NewAnalyzer(math)
}

// Initialize handles the initialize request.
func (s *Server) Initialize(_ context.Context, params *protocol.InitializeParams) (*protocol.InitializeResult, error) {
	s.logger.Info("Initialize")

	// Extract workspace root from params
	if params.RootURI != "" {
		s.workspaceRoot = URIToPath(params.RootURI)
	} else if params.RootPath != "" {
		s.workspaceRoot = params.RootPath
	}

	// Without an explicit config, discover one from the workspace root.
	if s.config == nil {
		cfg, err := texlet.LoadConfig(s.workspaceRoot)
		if err != nil {
			if !errors.Is(err, texlet.ErrConfigNotFound) {
				s.logger.Warn("Failed to load config", zap.Error(err))
			}

			cfg = &texlet.Config{}
		} else {
			s.logger.Info("Loaded config", zap.String("root", s.workspaceRoot))
		}

		s.setConfig(cfg)
	}

	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			// Full document sync - client sends entire content on change
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    protocol.TextDocumentSyncKindFull,
			},
			// Hover support for math segments
			HoverProvider: true,
			// Completion for commands, class/package names, and options
			CompletionProvider: &protocol.CompletionOptions{
				TriggerCharacters: []string{"\\", "[", "{", ","},
				ResolveProvider:   false,
			},
			// Auto-close environments on newline
			DocumentOnTypeFormattingProvider: &protocol.DocumentOnTypeFormattingOptions{
				FirstTriggerCharacter: "\n",
			},
			// Manual preview refresh bypassing the debounce
			ExecuteCommandProvider: &protocol.ExecuteCommandOptions{
				Commands: []string{CommandRefreshPreview},
			},
		},
		ServerInfo: &protocol.ServerInfo{
			Name:    "texlet-lsp",
			Version: "0.1.0",
		},
	}, nil
}

// Initialized handles the initialized notification.
func (s *Server) Initialized(_ context.Context, _ *protocol.InitializedParams) error {
	s.logger.Info("Initialized")
	s.initialized = true

	return nil
}

// Shutdown handles the shutdown request.
func (s *Server) Shutdown(_ context.Context) error {
	s.logger.Info("Shutdown")
	s.shutdown = true

	return nil
}

// Exit handles the exit notification.
func (s *Server) Exit(_ context.Context) error {
	s.logger.Info("Exit")
	// The main loop should handle exiting after this
	return nil
}

// DidOpen handles textDocument/didOpen notifications.
func (s *Server) DidOpen(ctx context.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.logger.Info("DidOpen", zap.String("uri", string(params.TextDocument.URI)))

	s.mu.Lock()
	defer s.mu.Unlock()

	doc := &Document{
		URI:     params.TextDocument.URI,
		Version: params.TextDocument.Version,
		Content: params.TextDocument.Text,
	}

	s.documents[params.TextDocument.URI] = doc

	// Opening analyzes immediately; only edit bursts are debounced.
	s.analyze(ctx, doc)

	return nil
}

// DidChange handles textDocument/didChange notifications.
func (s *Server) DidChange(_ context.Context, params *protocol.DidChangeTextDocumentParams) error {
	s.logger.Info("DidChange",
		zap.String("uri", string(params.TextDocument.URI)),
		zap.Int32("version", params.TextDocument.Version))

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.documents[params.TextDocument.URI]
	if !ok {
		s.logger.Warn("DidChange for unknown document", zap.String("uri", string(params.TextDocument.URI)))

		return nil
	}

	// Full sync - take the last content change (should only be one with full sync)
	if len(params.ContentChanges) > 0 {
		doc.Content = params.ContentChanges[len(params.ContentChanges)-1].Text
		doc.Version = params.TextDocument.Version

		s.scheduleAnalysis(params.TextDocument.URI, doc)
	}

	return nil
}

// scheduleAnalysis arms the trailing-edge debounce timer for the document.
// A later edit reschedules and the earlier timer never fires.
// Callers must hold s.mu.
func (s *Server) scheduleAnalysis(uri protocol.DocumentURI, doc *Document) {
	if doc.pending != nil {
		doc.pending.Stop()
	}

	delay := s.config.Debounce()
	doc.pending = time.AfterFunc(delay, func() {
		// The notification context is gone by the time the timer fires.
		ctx := context.Background()

		s.mu.Lock()
		defer s.mu.Unlock()

		current, ok := s.documents[uri]
		if !ok {
			return
		}

		s.analyze(ctx, current)
	})
}

// analyze runs an analysis pass over the document's current content and
// publishes diagnostics and the failure banner. Callers must hold s.mu.
func (s *Server) analyze(ctx context.Context, doc *Document) {
	doc.Analysis = s.analyzer.Analyze(URIToPath(doc.URI), []byte(doc.Content))

	s.publishDiagnostics(ctx, doc)
	s.showBanner(ctx, doc)
}

// DidClose handles textDocument/didClose notifications.
func (s *Server) DidClose(ctx context.Context, params *protocol.DidCloseTextDocumentParams) error {
	s.logger.Info("DidClose", zap.String("uri", string(params.TextDocument.URI)))

	s.mu.Lock()
	defer s.mu.Unlock()

	if doc, ok := s.documents[params.TextDocument.URI]; ok && doc.pending != nil {
		doc.pending.Stop()
	}

	delete(s.documents, params.TextDocument.URI)

	// Clear diagnostics for closed document
	err := s.client.PublishDiagnostics(ctx, &protocol.PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []protocol.Diagnostic{},
	})
	if err != nil {
		s.logger.Error("Failed to clear diagnostics", zap.Error(err))
	}

	return nil
}

// DidSave handles textDocument/didSave notifications.
func (s *Server) DidSave(ctx context.Context, params *protocol.DidSaveTextDocumentParams) error {
	s.logger.Info("DidSave", zap.String("uri", string(params.TextDocument.URI)))

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.documents[params.TextDocument.URI]
	if !ok {
		return nil
	}

	// Saving flushes any pending debounce.
	if doc.pending != nil {
		doc.pending.Stop()
		doc.pending = nil
	}

	s.analyze(ctx, doc)

	return nil
}

// getDocument returns a document by URI (read-locked).
func (s *Server) getDocument(uri protocol.DocumentURI) (*Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.documents[uri]

	return doc, ok
}
