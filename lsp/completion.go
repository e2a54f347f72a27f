package lsp

import (
	"context"
	"strings"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"
)

// Completion handles textDocument/completion requests. It offers every rule
// whose name starts with the word under the cursor, in declaration order.
// The request waits for a pending validation of the document.
func (s *Server) Completion(ctx context.Context, params *protocol.CompletionParams) (*protocol.CompletionList, error) {
	s.logger.Debug("Completion",
		zap.String("uri", string(params.TextDocument.URI)),
		zap.Uint32("line", params.Position.Line),
		zap.Uint32("character", params.Position.Character))

	g := s.awaitGrammar(ctx, params.TextDocument.URI)
	if g == nil || len(g.Rules) == 0 {
		return nil, nil //nolint:nilnil // no completions
	}

	doc, ok := s.documents.Get(params.TextDocument.URI)
	if !ok {
		return nil, nil //nolint:nilnil // no completions
	}

	prefix := wordAtPosition(doc, params.Position)
	if prefix == "" {
		return nil, nil //nolint:nilnil // no completions
	}

	items := []protocol.CompletionItem{}

	for _, r := range g.Rules {
		if strings.HasPrefix(r.Name, prefix) {
			items = append(items, protocol.CompletionItem{Label: r.Name})
		}
	}

	return &protocol.CompletionList{Items: items}, nil
}
