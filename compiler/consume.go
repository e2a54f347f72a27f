package compiler

import (
	"github.com/rlch/pegls"
)

// alwaysConsumes reports whether n consumes at least one character every
// time it succeeds. References to undefined rules count as consuming so
// they do not cause follow-up errors.
func alwaysConsumes(s *Session, n pegls.Node) bool {
	return consumes(s, n, map[string]bool{})
}

func consumes(s *Session, n pegls.Node, visiting map[string]bool) bool {
	switch n := n.(type) {
	case *pegls.Rule:
		return consumes(s, n.Expression, visiting)
	case *pegls.Choice:
		for _, alt := range n.Alternatives {
			if !consumes(s, alt, visiting) {
				return false
			}
		}

		return true
	case *pegls.Sequence:
		for _, el := range n.Elements {
			if consumes(s, el, visiting) {
				return true
			}
		}

		return false
	case *pegls.SimpleAnd, *pegls.SimpleNot, *pegls.SemanticAnd, *pegls.SemanticNot,
		*pegls.Optional, *pegls.ZeroOrMore:
		return false
	case *pegls.Repeated:
		if n.Min != nil && (n.Min.Type != pegls.BoundaryConstant || n.Min.Value == 0) {
			return false
		}

		if n.Min == nil && (n.Max.Type != pegls.BoundaryConstant || n.Max.Value == 0) {
			return false
		}

		return consumes(s, n.Expression, visiting)
	case *pegls.Literal:
		return n.Value != ""
	case *pegls.Class, *pegls.Any:
		return true
	case *pegls.RuleRef:
		r := s.Rule(n.Name)
		if r == nil || visiting[n.Name] {
			return true
		}

		visiting[n.Name] = true
		defer delete(visiting, n.Name)

		return consumes(s, r.Expression, visiting)
	}

	if inner := pegls.Inner(n); inner != nil {
		return consumes(s, inner, visiting)
	}

	return false
}
