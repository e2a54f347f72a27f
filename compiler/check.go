package compiler

import (
	"fmt"
	"maps"
	"strings"

	"github.com/rlch/pegls"
)

// ----------------------------------------------------------------------------
// Pass: left-recursion
// ----------------------------------------------------------------------------

var leftRecursionPass = &Pass{
	Name: "left-recursion",
	Doc:  "Reports rules that can reach themselves without consuming input.",
	Run:  checkLeftRecursion,
}

func checkLeftRecursion(g *pegls.Grammar, s *Session) {
	var (
		stack    []string
		refs     []*pegls.RuleRef
		reported = map[*pegls.RuleRef]bool{}
	)

	onStack := func(name string) bool {
		for _, n := range stack {
			if n == name {
				return true
			}
		}

		return false
	}

	var visit func(n pegls.Node)

	visit = func(n pegls.Node) {
		switch n := n.(type) {
		case *pegls.Sequence:
			// Only elements up to the first one that always consumes are in
			// leftmost position.
			for _, el := range n.Elements {
				visit(el)

				if alwaysConsumes(s, el) {
					return
				}
			}
		case *pegls.Repeated:
			visit(n.Expression)

			if n.Delimiter != nil && !alwaysConsumes(s, n.Expression) {
				visit(n.Delimiter)
			}
		case *pegls.RuleRef:
			r := s.Rule(n.Name)
			if r == nil {
				return
			}

			refs = append(refs, n)
			defer func() { refs = refs[:len(refs)-1] }()

			if onStack(n.Name) {
				if reported[n] {
					return
				}

				reported[n] = true

				path := append(append([]string{}, stack...), n.Name)
				related := make([]Note, 0, len(refs)-1)

				for _, ref := range refs[:len(refs)-1] {
					related = append(related, Note{
						Message:  fmt.Sprintf("Step into %q", ref.Name),
						Location: ref.Span,
					})
				}

				s.Error(
					fmt.Sprintf("Possible infinite loop when parsing (left recursion: %s)", strings.Join(path, " -> ")),
					loc(n.Span),
					related...,
				)

				return
			}

			stack = append(stack, r.Name)
			visit(r.Expression)
			stack = stack[:len(stack)-1]
		default:
			for _, c := range pegls.Children(n) {
				visit(c)
			}
		}
	}

	for _, r := range g.Rules {
		stack = append(stack[:0], r.Name)
		visit(r.Expression)
	}
}

// ----------------------------------------------------------------------------
// Pass: undefined-rules
// ----------------------------------------------------------------------------

var undefinedRulesPass = &Pass{
	Name: "undefined-rules",
	Doc:  "Reports references to rules that are not declared.",
	Run:  checkUndefinedRules,
}

func checkUndefinedRules(g *pegls.Grammar, s *Session) {
	pegls.Walk(g, pegls.Handlers{
		pegls.KindRuleRef: func(n pegls.Node) {
			ref := n.(*pegls.RuleRef)
			if s.Rule(ref.Name) == nil {
				s.Error(fmt.Sprintf("Rule %q is not defined", ref.Name), loc(ref.Span))
			}
		},
	})
}

// ----------------------------------------------------------------------------
// Pass: duplicate-rules
// ----------------------------------------------------------------------------

var duplicateRulesPass = &Pass{
	Name: "duplicate-rules",
	Doc:  "Reports rules declared more than once.",
	Run:  checkDuplicateRules,
}

func checkDuplicateRules(g *pegls.Grammar, s *Session) {
	for _, r := range g.Rules {
		first := s.Rule(r.Name)
		if first == r {
			continue
		}

		s.Error(
			fmt.Sprintf("Rule %q is already defined", r.Name),
			loc(r.NameSpan),
			Note{Message: "Original rule location", Location: first.NameSpan},
		)
	}
}

// ----------------------------------------------------------------------------
// Pass: unused-rules
// ----------------------------------------------------------------------------

var unusedRulesPass = &Pass{
	Name: "unused-rules",
	Doc:  "Reports rules other than the start rule that are never referenced.",
	Run:  checkUnusedRules,
}

func checkUnusedRules(g *pegls.Grammar, s *Session) {
	if len(g.Rules) == 0 {
		return
	}

	used := map[string]bool{g.Rules[0].Name: true}

	pegls.Walk(g, pegls.Handlers{
		pegls.KindRuleRef: func(n pegls.Node) {
			used[n.(*pegls.RuleRef).Name] = true
		},
	})

	for _, r := range g.Rules {
		if !used[r.Name] {
			s.Info(fmt.Sprintf("Rule %q is not referenced", r.Name), loc(r.NameSpan))
		}
	}
}

// ----------------------------------------------------------------------------
// Pass: duplicate-labels
// ----------------------------------------------------------------------------

var duplicateLabelsPass = &Pass{
	Name: "duplicate-labels",
	Doc:  "Reports labels that shadow a label visible in the same scope.",
	Run:  checkDuplicateLabels,
}

func checkDuplicateLabels(g *pegls.Grammar, s *Session) {
	type env map[string]pegls.Span

	var check func(n pegls.Node, scope env)

	check = func(n pegls.Node, scope env) {
		switch n := n.(type) {
		case *pegls.Sequence:
			local := maps.Clone(scope)

			for _, el := range n.Elements {
				check(el, local)

				if l, ok := el.(*pegls.Labeled); ok && l.Label != "" {
					local[l.Label] = l.LabelSpan
				}
			}
		case *pegls.Labeled:
			if original, ok := scope[n.Label]; ok && n.Label != "" {
				s.Error(
					fmt.Sprintf("Label %q is already defined", n.Label),
					loc(n.LabelSpan),
					Note{Message: "Original label location", Location: original},
				)
			}

			check(n.Expression, maps.Clone(scope))
		default:
			for _, c := range pegls.Children(n) {
				check(c, maps.Clone(scope))
			}
		}
	}

	for _, r := range g.Rules {
		check(r.Expression, env{})
	}
}

// ----------------------------------------------------------------------------
// Pass: infinite-repetition
// ----------------------------------------------------------------------------

var infiniteRepetitionPass = &Pass{
	Name: "infinite-repetition",
	Doc:  "Reports unbounded repetition of expressions that may not consume input.",
	Run:  checkInfiniteRepetition,
}

const infiniteLoopMessage = "Possible infinite loop when parsing (repetition used with an expression that may not consume any input)"

func checkInfiniteRepetition(g *pegls.Grammar, s *Session) {
	var h pegls.Handlers

	report := func(n pegls.Node, inner pegls.Node) {
		if !alwaysConsumes(s, inner) {
			s.Error(infiniteLoopMessage, loc(n.Location()))
		}

		pegls.WalkChildren(n, h)
	}

	h = pegls.Handlers{
		pegls.KindZeroOrMore: func(n pegls.Node) {
			report(n, n.(*pegls.ZeroOrMore).Expression)
		},
		pegls.KindOneOrMore: func(n pegls.Node) {
			report(n, n.(*pegls.OneOrMore).Expression)
		},
		pegls.KindRepeated: func(n pegls.Node) {
			rep := n.(*pegls.Repeated)
			unbounded := rep.Max.Type == pegls.BoundaryConstant && rep.Max.Value < 0

			if unbounded && !alwaysConsumes(s, rep.Expression) &&
				(rep.Delimiter == nil || !alwaysConsumes(s, rep.Delimiter)) {
				s.Error(infiniteLoopMessage, loc(rep.Span))
			}

			pegls.WalkChildren(n, h)
		},
	}

	pegls.Walk(g, h)
}

// ----------------------------------------------------------------------------
// Pass: incorrect-plucking
// ----------------------------------------------------------------------------

var incorrectPluckingPass = &Pass{
	Name: "incorrect-plucking",
	Doc:  "Reports @ used together with an action block or on a semantic predicate.",
	Run:  checkIncorrectPlucking,
}

func checkIncorrectPlucking(g *pegls.Grammar, s *Session) {
	var h pegls.Handlers

	h = pegls.Handlers{
		pegls.KindAction: func(n pegls.Node) {
			action := n.(*pegls.Action)

			if seq, ok := action.Expression.(*pegls.Sequence); ok {
				for _, el := range seq.Elements {
					if l, ok := el.(*pegls.Labeled); ok && l.Pick {
						s.Error(
							`"@" cannot be used with an action block`,
							loc(l.Span),
							Note{Message: "Action block location", Location: action.Code.Span},
						)
					}
				}
			}

			pegls.WalkChildren(n, h)
		},
		pegls.KindLabeled: func(n pegls.Node) {
			l := n.(*pegls.Labeled)

			if l.Pick {
				switch l.Expression.(type) {
				case *pegls.SemanticAnd, *pegls.SemanticNot:
					s.Error(`"@" cannot be used on a semantic predicate`, loc(l.Span))
				}
			}

			pegls.WalkChildren(n, h)
		},
	}

	pegls.Walk(g, h)
}
