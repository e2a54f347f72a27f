package lsp

import (
	"context"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/rlch/pegls"
)

// Definition handles textDocument/definition requests. The word under the
// cursor is looked up as a rule name; the request waits for a pending
// validation of the document.
func (s *Server) Definition(ctx context.Context, params *protocol.DefinitionParams) ([]protocol.Location, error) {
	s.logger.Debug("Definition",
		zap.String("uri", string(params.TextDocument.URI)),
		zap.Uint32("line", params.Position.Line),
		zap.Uint32("character", params.Position.Character))

	link, ok := s.definitionLink(ctx, params.TextDocument.URI, params.Position)
	if !ok {
		return nil, nil
	}

	// The protocol version we speak has no LocationLink result for
	// definitions; report the target range.
	return []protocol.Location{{URI: link.TargetURI, Range: link.TargetRange}}, nil
}

// definitionLink resolves the rule named by the word at pos.
func (s *Server) definitionLink(
	ctx context.Context,
	uri protocol.DocumentURI,
	pos protocol.Position,
) (protocol.LocationLink, bool) {
	g := s.awaitGrammar(ctx, uri)
	if g == nil || len(g.Rules) == 0 {
		return protocol.LocationLink{}, false
	}

	doc, ok := s.documents.Get(uri)
	if !ok {
		return protocol.LocationLink{}, false
	}

	name := wordAtPosition(doc, pos)
	if name == "" {
		return protocol.LocationLink{}, false
	}

	rule := g.Rule(name)
	if rule == nil {
		return protocol.LocationLink{}, false
	}

	return ruleLink(uri, rule), true
}

func ruleLink(uri protocol.DocumentURI, rule *pegls.Rule) protocol.LocationLink {
	target := spanToRange(rule.Span)

	return protocol.LocationLink{
		TargetURI:            uri,
		TargetRange:          target,
		TargetSelectionRange: prefixRange(rule.Name, target),
	}
}
