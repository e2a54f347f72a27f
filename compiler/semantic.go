package compiler

import (
	"fmt"

	"github.com/rlch/pegls"
)

// ----------------------------------------------------------------------------
// Pass: unreachable-alternatives
// ----------------------------------------------------------------------------

var unreachableAlternativesPass = &Pass{
	Name: "unreachable-alternatives",
	Doc:  "Warns about choice alternatives that follow one that always matches.",
	Run:  checkUnreachableAlternatives,
}

func checkUnreachableAlternatives(g *pegls.Grammar, s *Session) {
	var h pegls.Handlers

	h = pegls.Handlers{
		pegls.KindChoice: func(n pegls.Node) {
			choice := n.(*pegls.Choice)

			for i, alt := range choice.Alternatives[:len(choice.Alternatives)-1] {
				if s.Match(alt) != MatchAlways {
					continue
				}

				for _, dead := range choice.Alternatives[i+1:] {
					s.Warning(
						"Alternative is unreachable because a previous alternative always matches",
						loc(dead.Location()),
						Note{Message: "Always matching alternative", Location: alt.Location()},
					)
				}

				break
			}

			pegls.WalkChildren(n, h)
		},
	}

	pegls.Walk(g, h)
}

// ----------------------------------------------------------------------------
// Pass: summary
// ----------------------------------------------------------------------------

var summaryPass = &Pass{
	Name: "summary",
	Doc:  "Reports the rule count and start rule of the grammar.",
	Run:  reportSummary,
}

func reportSummary(g *pegls.Grammar, s *Session) {
	if len(g.Rules) == 0 {
		s.Info("Grammar has no rules", nil)

		return
	}

	msg := fmt.Sprintf("Grammar has %d rules, start rule %q", len(g.Rules), g.Rules[0].Name)
	if s.options.SourceID != "" {
		msg = fmt.Sprintf("%s: %s", s.options.SourceID, msg)
	}

	s.Info(msg, nil)
}
