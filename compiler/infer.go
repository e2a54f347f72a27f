package compiler

import (
	"github.com/rlch/pegls"
)

// ----------------------------------------------------------------------------
// Pass: remove-proxy-rules
// ----------------------------------------------------------------------------

var removeProxyRulesPass = &Pass{
	Name: "remove-proxy-rules",
	Doc:  "Records rules that only forward to another rule so references can skip them.",
	Run:  removeProxyRules,
}

// removeProxyRules records proxies on the session. The start rule is never
// treated as a proxy since it must stay callable.
func removeProxyRules(g *pegls.Grammar, s *Session) {
	for i, r := range g.Rules {
		if i == 0 {
			continue
		}

		ref, ok := r.Expression.(*pegls.RuleRef)
		if !ok || ref.Name == r.Name {
			continue
		}

		s.proxies[r.Name] = ref.Name
	}
}

// ----------------------------------------------------------------------------
// Pass: inference-match-result
// ----------------------------------------------------------------------------

var inferMatchResultPass = &Pass{
	Name: "inference-match-result",
	Doc:  "Infers for every expression whether it always, sometimes or never matches.",
	Run:  inferMatchResult,
}

// inferMatchResult iterates to a fixed point over the rules, since a rule's
// result depends on the rules it references.
func inferMatchResult(g *pegls.Grammar, s *Session) {
	ruleResults := make(map[*pegls.Rule]MatchResult, len(g.Rules))

	var infer func(n pegls.Node) MatchResult

	infer = func(n pegls.Node) MatchResult {
		var m MatchResult

		switch n := n.(type) {
		case *pegls.Choice:
			m = MatchNever

			for _, alt := range n.Alternatives {
				switch infer(alt) {
				case MatchAlways:
					m = MatchAlways
				case MatchSometimes:
					if m == MatchNever {
						m = MatchSometimes
					}
				case MatchNever:
				}
			}
		case *pegls.Sequence:
			m = MatchAlways

			for _, el := range n.Elements {
				switch infer(el) {
				case MatchNever:
					m = MatchNever
				case MatchSometimes:
					if m == MatchAlways {
						m = MatchSometimes
					}
				case MatchAlways:
				}
			}
		case *pegls.SimpleNot:
			m = -infer(n.Expression)
		case *pegls.Optional:
			infer(n.Expression)

			m = MatchAlways
		case *pegls.ZeroOrMore:
			infer(n.Expression)

			m = MatchAlways
		case *pegls.Repeated:
			m = inferRepeated(n, infer)
		case *pegls.SemanticAnd, *pegls.SemanticNot, *pegls.Any:
			m = MatchSometimes
		case *pegls.Literal:
			m = MatchSometimes
			if n.Value == "" {
				m = MatchAlways
			}
		case *pegls.Class:
			m = MatchSometimes
			if len(n.Parts) == 0 && !n.Inverted {
				m = MatchNever
			}
		case *pegls.RuleRef:
			m = MatchSometimes
			if r := s.Resolve(n.Name); r != nil {
				if rm, ok := ruleResults[r]; ok {
					m = rm
				}
			}
		default:
			// Wrappers take the result of their expression.
			if inner := pegls.Inner(n); inner != nil {
				m = infer(inner)
			}
		}

		s.matches[n] = m

		return m
	}

	// Results can oscillate through negation of recursive rules; the
	// iteration bound keeps that finite.
	for range 2*len(g.Rules) + 1 {
		changed := false

		for _, r := range g.Rules {
			m := infer(r.Expression)
			s.matches[r] = m

			if prev, ok := ruleResults[r]; !ok || prev != m {
				ruleResults[r] = m
				changed = true
			}
		}

		if !changed {
			return
		}
	}
}

func inferRepeated(n *pegls.Repeated, infer func(pegls.Node) MatchResult) MatchResult {
	result := infer(n.Expression)

	delimiter := MatchNever
	if n.Delimiter != nil {
		delimiter = infer(n.Delimiter)
	}

	minimum := n.Min
	if minimum == nil {
		minimum = n.Max
	}

	if minimum.Type != pegls.BoundaryConstant || n.Max.Type != pegls.BoundaryConstant {
		return MatchSometimes
	}

	upper := n.Max.Value
	if upper > 0 && minimum.Value > upper {
		return MatchNever
	}

	if upper == 0 || minimum.Value == 0 {
		return MatchAlways
	}

	switch result {
	case MatchNever:
		return MatchNever
	case MatchAlways:
		if n.Delimiter != nil && minimum.Value >= 2 { //nolint:mnd // a delimiter only runs between two items
			return delimiter
		}

		return MatchAlways
	default:
		if n.Delimiter != nil && minimum.Value >= 2 && delimiter == MatchNever { //nolint:mnd // as above
			return MatchNever
		}

		return MatchSometimes
	}
}
