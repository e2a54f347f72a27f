package lsp

import (
	"context"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/rlch/pegls"
)

// FoldingRanges handles textDocument/foldingRange requests.
// Returns a region for every initializer and rule that spans more than one
// line.
func (s *Server) FoldingRanges(_ context.Context, params *protocol.FoldingRangeParams) ([]protocol.FoldingRange, error) {
	s.logger.Debug("FoldingRanges",
		zap.String("uri", string(params.TextDocument.URI)))

	g := s.currentGrammar(params.TextDocument.URI)
	if g == nil {
		return nil, nil
	}

	return grammarFoldingRanges(g), nil
}

func grammarFoldingRanges(g *pegls.Grammar) []protocol.FoldingRange {
	var ranges []protocol.FoldingRange

	add := func(span pegls.Span) {
		r := spanToRange(span)
		if r.End.Line <= r.Start.Line {
			return
		}

		ranges = append(ranges, protocol.FoldingRange{
			StartLine: r.Start.Line,
			EndLine:   r.End.Line,
			Kind:      protocol.RegionFoldingRange,
		})
	}

	if g.TopLevelInitializer != nil {
		add(g.TopLevelInitializer.Span)
	}

	if g.Initializer != nil {
		add(g.Initializer.Span)
	}

	for _, r := range g.Rules {
		add(r.Span)
	}

	return ranges
}
