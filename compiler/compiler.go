package compiler

import (
	"github.com/rlch/pegls"
)

// Pass is one step of compilation.
// Inspired by go/analysis.Analyzer pattern.
type Pass struct {
	// Name is a short identifier for the pass.
	Name string

	// Doc is a brief description of what the pass does.
	Doc string

	// Run inspects the grammar and records problems or results on the session.
	Run func(g *pegls.Grammar, s *Session)
}

// Stages lists the passes to run, in stage order.
type Stages struct {
	Prepare   []*Pass
	Check     []*Pass
	Transform []*Pass
	Semantic  []*Pass
	Generate  []*Pass
}

func (st Stages) ordered() [][]*Pass {
	return [][]*Pass{st.Prepare, st.Check, st.Transform, st.Semantic, st.Generate}
}

// OutputMode selects what the generate stage produces.
type OutputMode int

// Output modes.
const (
	// OutputSession only collects problems and analysis results.
	OutputSession OutputMode = iota
	// OutputReport additionally renders a per-rule report, see Session.Report.
	OutputReport
)

// Options configures Compile.
type Options struct {
	// SourceID names the grammar in messages.
	SourceID string
	Output   OutputMode
}

// DefaultPasses returns every built-in pass.
func DefaultPasses() Stages {
	return Stages{
		Prepare: []*Pass{
			leftRecursionPass,
		},
		Check: []*Pass{
			undefinedRulesPass,
			duplicateRulesPass,
			unusedRulesPass,
			duplicateLabelsPass,
			infiniteRepetitionPass,
			incorrectPluckingPass,
		},
		Transform: []*Pass{
			removeProxyRulesPass,
			inferMatchResultPass,
		},
		Semantic: []*Pass{
			unreachableAlternativesPass,
			summaryPass,
		},
		Generate: []*Pass{
			reportPass,
		},
	}
}

// ValidationPasses returns the pass set used for editor validation: every
// prepare, check and semantic pass, only the last transform pass, and no
// generate stage.
func ValidationPasses() Stages {
	all := DefaultPasses()

	return Stages{
		Prepare:   all.Prepare,
		Check:     all.Check,
		Transform: all.Transform[len(all.Transform)-1:],
		Semantic:  all.Semantic,
	}
}

// Compile runs the stages over g. Compilation stops after the first stage
// that records an error; the returned *GrammarError then carries every
// problem recorded so far.
func Compile(g *pegls.Grammar, stages Stages, opts Options) (*Session, error) {
	s := newSession(g, opts)

	for _, stage := range stages.ordered() {
		for _, p := range stage {
			p.Run(g, s)
		}

		if s.errors > 0 {
			return nil, &GrammarError{Problems: s.Problems}
		}
	}

	return s, nil
}
