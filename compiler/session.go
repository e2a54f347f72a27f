// Package compiler runs static checks over a parsed Peggy grammar.
//
// Checks are organised as passes grouped into stages, following the layout
// of the Peggy compiler: prepare, check, transform, semantic and generate.
// Passes record problems on a Session instead of failing fast, so one run
// reports everything wrong with a grammar.
package compiler

import (
	"fmt"
	"strings"

	"github.com/rlch/pegls"
)

// Severity of a problem.
type Severity string

// Severity constants.
const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Note is a secondary message attached to a problem, pointing at related
// source.
type Note struct {
	Message  string
	Location pegls.Span
}

// Problem is one message produced while compiling.
type Problem struct {
	Severity Severity
	Message  string
	// Location is nil for problems about the grammar as a whole.
	Location *pegls.Span
	Related  []Note
}

func (p Problem) String() string {
	if p.Location == nil {
		return fmt.Sprintf("%s: %s", p.Severity, p.Message)
	}

	return fmt.Sprintf("%s: %s: %s", p.Location.Start, p.Severity, p.Message)
}

// MatchResult says whether an expression can fail.
type MatchResult int

// Match results, ordered so that negation flips ALWAYS and NEVER.
const (
	MatchNever     MatchResult = -1
	MatchSometimes MatchResult = 0
	MatchAlways    MatchResult = 1
)

func (m MatchResult) String() string {
	switch m {
	case MatchAlways:
		return "always"
	case MatchNever:
		return "never"
	default:
		return "sometimes"
	}
}

// Session collects the problems and intermediate results of one
// compilation. The grammar itself is never modified.
type Session struct {
	Problems []Problem

	options Options
	errors  int

	// rules indexes the first declaration of each rule name.
	rules map[string]*pegls.Rule
	// proxies maps proxy rule names to the rule they forward to.
	proxies map[string]string
	// matches holds inferred match results per node.
	matches map[pegls.Node]MatchResult

	report strings.Builder
}

func newSession(g *pegls.Grammar, opts Options) *Session {
	s := &Session{
		options: opts,
		rules:   make(map[string]*pegls.Rule, len(g.Rules)),
		proxies: make(map[string]string),
		matches: make(map[pegls.Node]MatchResult),
	}

	for _, r := range g.Rules {
		if _, ok := s.rules[r.Name]; !ok {
			s.rules[r.Name] = r
		}
	}

	return s
}

func (s *Session) add(sev Severity, msg string, loc *pegls.Span, related []Note) {
	if sev == SeverityError {
		s.errors++
	}

	s.Problems = append(s.Problems, Problem{
		Severity: sev,
		Message:  msg,
		Location: loc,
		Related:  related,
	})
}

// Error records an error.
func (s *Session) Error(msg string, loc *pegls.Span, related ...Note) {
	s.add(SeverityError, msg, loc, related)
}

// Warning records a warning.
func (s *Session) Warning(msg string, loc *pegls.Span, related ...Note) {
	s.add(SeverityWarning, msg, loc, related)
}

// Info records an informational message.
func (s *Session) Info(msg string, loc *pegls.Span, related ...Note) {
	s.add(SeverityInfo, msg, loc, related)
}

// Errors returns the number of errors recorded so far.
func (s *Session) Errors() int {
	return s.errors
}

// Rule returns the first rule declared with name, or nil.
func (s *Session) Rule(name string) *pegls.Rule {
	return s.rules[name]
}

// Resolve follows proxy rules recorded by the transform stage and returns
// the rule a reference to name ends up at.
func (s *Session) Resolve(name string) *pegls.Rule {
	seen := map[string]bool{}

	for !seen[name] {
		seen[name] = true

		target, ok := s.proxies[name]
		if !ok {
			break
		}

		name = target
	}

	return s.rules[name]
}

// Proxy returns the rule a proxy rule forwards to.
func (s *Session) Proxy(name string) (string, bool) {
	target, ok := s.proxies[name]

	return target, ok
}

// Match returns the inferred match result of n. It is MatchSometimes until
// the inference pass has run.
func (s *Session) Match(n pegls.Node) MatchResult {
	return s.matches[n]
}

// Report returns the text written by the generate stage.
func (s *Session) Report() string {
	return s.report.String()
}

// GrammarError is returned by Compile when a stage reported errors. It
// carries every problem recorded up to that point, not only the errors.
type GrammarError struct {
	Problems []Problem
}

func (e *GrammarError) Error() string {
	var first string

	n := 0

	for _, p := range e.Problems {
		if p.Severity != SeverityError {
			continue
		}

		if n == 0 {
			first = p.Message
		}

		n++
	}

	if n > 1 {
		return fmt.Sprintf("%s (and %d more errors)", first, n-1)
	}

	return first
}

func loc(s pegls.Span) *pegls.Span {
	return &s
}
