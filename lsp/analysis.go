package lsp

import (
	"context"
	"errors"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/rlch/pegls"
	"github.com/rlch/pegls/cache"
)

// Analysis is the stored outcome of validating one document version. A nil
// Grammar marks a document that failed to compile.
type Analysis struct {
	Grammar *pegls.Grammar
	Version int32
}

// Valid reports whether the document compiled.
func (a *Analysis) Valid() bool {
	return a != nil && a.Grammar != nil
}

// currentGrammar returns the grammar from the latest finished validation
// without waiting. It is nil while a validation is pending or when the
// document did not compile.
func (s *Server) currentGrammar(uri protocol.DocumentURI) *pegls.Grammar {
	a, ok := s.analyses.Get(uri)
	if !ok || !a.Valid() {
		return nil
	}

	return a.Grammar
}

// awaitGrammar waits for the pending validation of an open document. It
// returns nil for documents that are not open, when ctx ends, or when the
// document did not compile.
func (s *Server) awaitGrammar(ctx context.Context, uri protocol.DocumentURI) *pegls.Grammar {
	if !s.documents.IsOpen(uri) {
		return nil
	}

	a, err := s.analyses.WaitFor(ctx, uri)
	if err != nil {
		switch {
		case isCanceled(err):
			s.logger.Debug("Wait for analysis canceled", zap.String("uri", string(uri)))
		case errors.Is(err, cache.ErrRemoved):
			s.logger.Debug("Document closed while waiting for analysis", zap.String("uri", string(uri)))
		default:
			s.logger.Debug("Wait for analysis failed", zap.String("uri", string(uri)), zap.Error(err))
		}

		return nil
	}

	if !a.Valid() {
		return nil
	}

	return a.Grammar
}
