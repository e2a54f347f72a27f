package lsp

import (
	"context"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/rlch/pegls"
)

// Outline names of the initializer blocks.
const (
	initializerSymbol         = "{Per-parse initializer}"
	topLevelInitializerSymbol = "{{Global initializer}}"
)

// DocumentSymbol handles textDocument/documentSymbol requests.
// Returns one symbol per rule for the outline view, preceded by the
// initializer blocks. The request waits for a pending validation.
func (s *Server) DocumentSymbol(ctx context.Context, params *protocol.DocumentSymbolParams) ([]any, error) {
	s.logger.Debug("DocumentSymbol",
		zap.String("uri", string(params.TextDocument.URI)))

	g := s.awaitGrammar(ctx, params.TextDocument.URI)
	if g == nil {
		return nil, nil
	}

	symbols := buildDocumentSymbols(g)

	// Convert to []any for the protocol
	result := make([]any, len(symbols))
	for i, sym := range symbols {
		result[i] = sym
	}

	return result, nil
}

// buildDocumentSymbols creates the outline of g.
func buildDocumentSymbols(g *pegls.Grammar) []protocol.DocumentSymbol {
	symbols := make([]protocol.DocumentSymbol, 0, len(g.Rules)+2) //nolint:mnd // both initializers

	if g.TopLevelInitializer != nil {
		symbols = append(symbols, codeSymbol(topLevelInitializerSymbol, "{{", g.TopLevelInitializer))
	}

	if g.Initializer != nil {
		symbols = append(symbols, codeSymbol(initializerSymbol, "{", g.Initializer))
	}

	for _, r := range g.Rules {
		rng := spanToRange(r.Span)

		sym := protocol.DocumentSymbol{
			Name:           r.Name,
			Kind:           protocol.SymbolKindFunction,
			Range:          rng,
			SelectionRange: prefixRange(r.Name, rng),
		}

		if named, ok := r.Expression.(*pegls.Named); ok {
			sym.Detail = named.Name
		}

		symbols = append(symbols, sym)
	}

	return symbols
}

func codeSymbol(name, open string, code *pegls.Code) protocol.DocumentSymbol {
	rng := spanToRange(code.Span)

	return protocol.DocumentSymbol{
		Name:           name,
		Kind:           protocol.SymbolKindConstructor,
		Range:          rng,
		SelectionRange: prefixRange(open, rng),
	}
}
