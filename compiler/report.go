package compiler

import (
	"fmt"
	"text/tabwriter"

	"github.com/rlch/pegls"
)

// ----------------------------------------------------------------------------
// Pass: report
// ----------------------------------------------------------------------------

var reportPass = &Pass{
	Name: "report",
	Doc:  "Renders a per-rule table when the report output is requested.",
	Run:  writeReport,
}

func writeReport(g *pegls.Grammar, s *Session) {
	if s.options.Output != OutputReport {
		return
	}

	refs := map[string]int{}

	pegls.Walk(g, pegls.Handlers{
		pegls.KindRuleRef: func(n pegls.Node) {
			refs[n.(*pegls.RuleRef).Name]++
		},
	})

	w := tabwriter.NewWriter(&s.report, 0, 0, 2, ' ', 0) //nolint:mnd // column padding
	_, _ = fmt.Fprintln(w, "RULE\tMATCH\tPROXY\tREFS")

	for _, r := range g.Rules {
		proxy := "-"
		if target, ok := s.Proxy(r.Name); ok {
			proxy = target
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", r.Name, s.Match(r), proxy, refs[r.Name])
	}

	_ = w.Flush()
}
