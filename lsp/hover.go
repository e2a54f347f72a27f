package lsp

import (
	"context"
	"fmt"
	"strings"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/rlch/pegls"
)

// Hover handles textDocument/hover requests.
// Over a rule name it shows the rule's source and how often it is
// referenced.
func (s *Server) Hover(_ context.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	s.logger.Debug("Hover",
		zap.String("uri", string(params.TextDocument.URI)),
		zap.Uint32("line", params.Position.Line),
		zap.Uint32("character", params.Position.Character))

	g := s.currentGrammar(params.TextDocument.URI)
	if g == nil {
		return nil, nil //nolint:nilnil // nothing to show
	}

	doc, ok := s.documents.Get(params.TextDocument.URI)
	if !ok {
		return nil, nil //nolint:nilnil // nothing to show
	}

	w, ok := wordAt(doc, params.Position)
	if !ok {
		return nil, nil //nolint:nilnil // nothing to show
	}

	rule := g.Rule(w.Text)
	if rule == nil {
		return nil, nil //nolint:nilnil // nothing to show
	}

	rng := w.Range()

	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.Markdown,
			Value: hoverRule(g, rule, doc.Content),
		},
		Range: &rng,
	}, nil
}

// hoverRule renders the markdown shown for rule.
func hoverRule(g *pegls.Grammar, rule *pegls.Rule, text string) string {
	var b strings.Builder

	start, end := rule.Span.Start.Offset, rule.Span.End.Offset
	if start >= 0 && start <= end && end <= len(text) {
		b.WriteString("```peggy\n")
		b.WriteString(text[start:end])
		b.WriteString("\n```\n\n")
	}

	refs := 0

	pegls.Walk(g, pegls.Handlers{
		pegls.KindRuleRef: func(n pegls.Node) {
			if n.(*pegls.RuleRef).Name == rule.Name {
				refs++
			}
		},
	})

	switch {
	case g.Rules[0] == rule:
		b.WriteString("Start rule")
	case refs == 1:
		b.WriteString("1 reference")
	default:
		fmt.Fprintf(&b, "%d references", refs)
	}

	return b.String()
}
