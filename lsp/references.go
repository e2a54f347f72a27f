package lsp

import (
	"context"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/rlch/pegls"
)

// References handles textDocument/references requests. It lists every
// reference to the rule named by the word under the cursor. The rule's
// declaration is not included. Only a finished validation is used.
func (s *Server) References(_ context.Context, params *protocol.ReferenceParams) ([]protocol.Location, error) {
	s.logger.Debug("References",
		zap.String("uri", string(params.TextDocument.URI)),
		zap.Uint32("line", params.Position.Line),
		zap.Uint32("character", params.Position.Character))

	uri := params.TextDocument.URI

	g := s.currentGrammar(uri)
	if g == nil || len(g.Rules) == 0 {
		return nil, nil
	}

	doc, ok := s.documents.Get(uri)
	if !ok {
		return nil, nil
	}

	name := wordAtPosition(doc, params.Position)
	if name == "" {
		return nil, nil
	}

	locations := []protocol.Location{}

	pegls.Walk(g, pegls.Handlers{
		pegls.KindRuleRef: func(n pegls.Node) {
			ref := n.(*pegls.RuleRef)
			if ref.Name != name {
				return
			}

			locations = append(locations, protocol.Location{
				URI:   uri,
				Range: spanToRange(ref.Span),
			})
		},
	})

	return locations, nil
}
