// Package lsp implements a Language Server Protocol server for Peggy grammars.
package lsp

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/rlch/pegls"
	"github.com/rlch/pegls/cache"
	"github.com/rlch/pegls/debounce"
)

// Server implements the LSP Server interface for Peggy grammars.
type Server struct {
	client protocol.Client
	logger *zap.Logger

	// Open document text, as last sent by the client.
	documents *DocumentStore

	// analyses holds the latest validation outcome per document. Queries
	// either read it directly or wait for the pending validation to fill it.
	analyses *cache.Store[protocol.DocumentURI, *Analysis]

	// validator coalesces edits into one validation per document.
	validator *debounce.Debouncer[protocol.DocumentURI, Document]

	// Settings state
	settingsMu sync.RWMutex
	settings   pegls.Settings
	// fileSettings come from .pegls.yaml and are the base for client settings.
	fileSettings pegls.Settings

	// Server state
	initialized   bool
	shutdown      bool
	workspaceRoot string
}

// NewServer creates a new LSP server.
func NewServer(client protocol.Client, logger *zap.Logger) *Server {
	settings := pegls.DefaultSettings()

	s := &Server{
		client:       client,
		logger:       logger,
		documents:    NewDocumentStore(),
		analyses:     cache.New[protocol.DocumentURI, *Analysis](),
		settings:     settings,
		fileSettings: settings,
	}

	s.validator = debounce.New[protocol.DocumentURI, Document](settings.Debounce(), s.validate)

	return s
}

// Initialize handles the initialize request.
func (s *Server) Initialize(_ context.Context, params *protocol.InitializeParams) (*protocol.InitializeResult, error) {
	s.logger.Info("Initialize", zap.Any("params", params))

	// Extract workspace root from params
	switch {
	case params.RootURI != "":
		s.workspaceRoot = URIToPath(params.RootURI)
	case params.RootPath != "":
		s.workspaceRoot = params.RootPath
	}

	if s.workspaceRoot != "" {
		s.logger.Info("Workspace root", zap.String("root", s.workspaceRoot))
		s.loadFileSettings(s.workspaceRoot)
	}

	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			// Full document sync - client sends entire content on change
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    protocol.TextDocumentSyncKindFull,
			},
			CompletionProvider: &protocol.CompletionOptions{
				ResolveProvider: false,
			},
			DefinitionProvider: true,
			ReferencesProvider: true,
			RenameProvider: &protocol.RenameOptions{
				PrepareProvider: true,
			},
			DocumentSymbolProvider: &protocol.DocumentSymbolOptions{
				Label: "Peggy Rules",
			},
			DocumentHighlightProvider: true,
			FoldingRangeProvider:      true,
			HoverProvider:             true,
		},
		ServerInfo: &protocol.ServerInfo{
			Name:    "pegls",
			Version: "0.1.0",
		},
	}, nil
}

// Initialized handles the initialized notification.
func (s *Server) Initialized(ctx context.Context, _ *protocol.InitializedParams) error {
	s.logger.Info("Initialized")
	s.initialized = true

	s.applySettings(s.fetchSettings(ctx, nil))

	return nil
}

// Shutdown handles the shutdown request.
func (s *Server) Shutdown(_ context.Context) error {
	s.logger.Info("Shutdown")
	s.shutdown = true
	s.validator.Stop()

	return nil
}

// Exit handles the exit notification.
func (s *Server) Exit(_ context.Context) error {
	s.logger.Info("Exit")
	// The main loop should handle exiting after this
	return nil
}

// DidOpen handles textDocument/didOpen notifications.
func (s *Server) DidOpen(_ context.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.logger.Info("DidOpen", zap.String("uri", string(params.TextDocument.URI)))

	doc := Document{
		URI:     params.TextDocument.URI,
		Version: params.TextDocument.Version,
		Content: params.TextDocument.Text,
	}

	s.documents.Open(doc)
	s.analyses.Restore(doc.URI)
	s.scheduleValidation(doc)

	return nil
}

// DidChange handles textDocument/didChange notifications.
func (s *Server) DidChange(_ context.Context, params *protocol.DidChangeTextDocumentParams) error {
	s.logger.Debug("DidChange",
		zap.String("uri", string(params.TextDocument.URI)),
		zap.Int32("version", params.TextDocument.Version))

	// Full sync - take the last content change (should only be one with full sync)
	if len(params.ContentChanges) == 0 {
		return nil
	}

	doc, ok := s.documents.Update(
		params.TextDocument.URI,
		params.TextDocument.Version,
		params.ContentChanges[len(params.ContentChanges)-1].Text,
	)
	if !ok {
		s.logger.Warn("DidChange for unknown document", zap.String("uri", string(params.TextDocument.URI)))

		return nil
	}

	s.scheduleValidation(doc)

	return nil
}

// DidClose handles textDocument/didClose notifications. Diagnostics are
// cleared once the debounce window has passed, so a validation that was
// already running cannot publish over the empty set.
func (s *Server) DidClose(ctx context.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI
	s.logger.Info("DidClose", zap.String("uri", string(uri)))

	s.documents.Close(uri)
	s.validator.Cancel(uri)
	s.analyses.Remove(uri)

	ctx = context.WithoutCancel(ctx)

	time.AfterFunc(s.validator.Wait(), func() {
		if s.documents.IsOpen(uri) {
			return
		}

		s.publishDiagnostics(ctx, uri, 0, []protocol.Diagnostic{})
	})

	return nil
}

// DidSave handles textDocument/didSave notifications.
func (s *Server) DidSave(_ context.Context, params *protocol.DidSaveTextDocumentParams) error {
	s.logger.Debug("DidSave", zap.String("uri", string(params.TextDocument.URI)))
	// Full sync already validated the saved text.
	return nil
}

// DidChangeConfiguration handles workspace/didChangeConfiguration. The
// settings are fetched again and every open document is revalidated.
func (s *Server) DidChangeConfiguration(ctx context.Context, params *protocol.DidChangeConfigurationParams) error {
	s.logger.Info("DidChangeConfiguration")

	s.applySettings(s.fetchSettings(ctx, params.Settings))

	for _, doc := range s.documents.All() {
		s.scheduleValidation(doc)
	}

	return nil
}

// scheduleValidation queues doc for validation. Edits arriving within the
// debounce window replace the queued text.
func (s *Server) scheduleValidation(doc Document) *debounce.Result {
	return s.validator.Call(doc.URI, doc)
}

// Close stops pending validations. It is safe to call more than once.
func (s *Server) Close() {
	s.validator.Stop()
}

func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
