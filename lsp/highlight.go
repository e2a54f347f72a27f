package lsp

import (
	"context"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/rlch/pegls"
)

// DocumentHighlight handles textDocument/documentHighlight requests.
// Highlights the declaration of the rule under the cursor as a write and
// each reference to it as a read.
func (s *Server) DocumentHighlight(_ context.Context, params *protocol.DocumentHighlightParams) ([]protocol.DocumentHighlight, error) {
	s.logger.Debug("DocumentHighlight",
		zap.String("uri", string(params.TextDocument.URI)),
		zap.Uint32("line", params.Position.Line),
		zap.Uint32("character", params.Position.Character))

	g := s.currentGrammar(params.TextDocument.URI)
	if g == nil {
		return nil, nil
	}

	doc, ok := s.documents.Get(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}

	name := wordAtPosition(doc, params.Position)
	if !namesRule(g, name) {
		return nil, nil
	}

	return ruleHighlights(g, name), nil
}

// ruleHighlights lists the occurrences of rule name in document order.
func ruleHighlights(g *pegls.Grammar, name string) []protocol.DocumentHighlight {
	var (
		highlights []protocol.DocumentHighlight
		h          pegls.Handlers
	)

	h = pegls.Handlers{
		pegls.KindRule: func(n pegls.Node) {
			rule := n.(*pegls.Rule)

			if rule.Name == name {
				highlights = append(highlights, protocol.DocumentHighlight{
					Range: prefixRange(rule.Name, spanToRange(rule.Span)),
					Kind:  protocol.DocumentHighlightKindWrite,
				})
			}

			pegls.WalkChildren(rule, h)
		},
		pegls.KindRuleRef: func(n pegls.Node) {
			ref := n.(*pegls.RuleRef)
			if ref.Name != name {
				return
			}

			highlights = append(highlights, protocol.DocumentHighlight{
				Range: spanToRange(ref.Span),
				Kind:  protocol.DocumentHighlightKindRead,
			})
		},
	}

	pegls.Walk(g, h)

	return highlights
}
