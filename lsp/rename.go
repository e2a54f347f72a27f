package lsp

import (
	"context"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/rlch/pegls"
)

// PrepareRename handles textDocument/prepareRename requests.
// Returns the range of the word under the cursor when it names a rule that
// is declared or referenced.
func (s *Server) PrepareRename(_ context.Context, params *protocol.PrepareRenameParams) (*protocol.Range, error) {
	s.logger.Debug("PrepareRename",
		zap.String("uri", string(params.TextDocument.URI)),
		zap.Uint32("line", params.Position.Line),
		zap.Uint32("character", params.Position.Character))

	g := s.currentGrammar(params.TextDocument.URI)
	if g == nil {
		return nil, nil //nolint:nilnil // nothing to rename
	}

	doc, ok := s.documents.Get(params.TextDocument.URI)
	if !ok {
		return nil, nil //nolint:nilnil // nothing to rename
	}

	w, ok := wordAt(doc, params.Position)
	if !ok || !namesRule(g, w.Text) {
		return nil, nil //nolint:nilnil // nothing to rename
	}

	rng := w.Range()

	return &rng, nil
}

// Rename handles textDocument/rename requests. The rule named by the word
// under the cursor is renamed at its declaration and at every reference.
// Only a finished validation is used.
func (s *Server) Rename(_ context.Context, params *protocol.RenameParams) (*protocol.WorkspaceEdit, error) {
	s.logger.Debug("Rename",
		zap.String("uri", string(params.TextDocument.URI)),
		zap.Uint32("line", params.Position.Line),
		zap.Uint32("character", params.Position.Character),
		zap.String("newName", params.NewName))

	uri := params.TextDocument.URI

	g := s.currentGrammar(uri)
	if g == nil || len(g.Rules) == 0 {
		return nil, nil //nolint:nilnil // nothing to rename
	}

	doc, ok := s.documents.Get(uri)
	if !ok {
		return nil, nil //nolint:nilnil // nothing to rename
	}

	name := wordAtPosition(doc, params.Position)
	if name == "" {
		return nil, nil //nolint:nilnil // nothing to rename
	}

	return &protocol.WorkspaceEdit{
		Changes: map[protocol.DocumentURI][]protocol.TextEdit{
			uri: renameEdits(g, name, params.NewName),
		},
	}, nil
}

// renameEdits collects the edits renaming rule name to newName. References
// inside a rule come before the rule's own name edit.
func renameEdits(g *pegls.Grammar, name, newName string) []protocol.TextEdit {
	edits := []protocol.TextEdit{}

	var h pegls.Handlers

	h = pegls.Handlers{
		pegls.KindRuleRef: func(n pegls.Node) {
			ref := n.(*pegls.RuleRef)
			if ref.Name != name {
				return
			}

			edits = append(edits, protocol.TextEdit{
				Range:   spanToRange(ref.Span),
				NewText: newName,
			})
		},
		pegls.KindRule: func(n pegls.Node) {
			rule := n.(*pegls.Rule)

			pegls.WalkChildren(rule, h)

			if rule.Name != name {
				return
			}

			edits = append(edits, protocol.TextEdit{
				Range:   prefixRange(rule.Name, spanToRange(rule.Span)),
				NewText: newName,
			})
		},
	}

	pegls.Walk(g, h)

	return edits
}

// namesRule reports whether name is declared or referenced in g.
func namesRule(g *pegls.Grammar, name string) bool {
	if name == "" {
		return false
	}

	if g.Rule(name) != nil {
		return true
	}

	found := false

	pegls.Walk(g, pegls.Handlers{
		pegls.KindRuleRef: func(n pegls.Node) {
			if n.(*pegls.RuleRef).Name == name {
				found = true
			}
		},
	})

	return found
}
