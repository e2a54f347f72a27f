// Package pegls parses Peggy grammars into a syntax tree for editor tooling.
package pegls

import (
	"unicode/utf16"
	"unicode/utf8"

	"github.com/alecthomas/participle/v2/lexer"
)

// Span represents a range in source code. Lines and columns are 1-based;
// columns count UTF-16 code units.
type Span struct {
	Start lexer.Position
	End   lexer.Position
}

// advancePosition returns the position just after text when it starts at pos.
func advancePosition(pos lexer.Position, text string) lexer.Position {
	pos.Offset += len(text)

	for len(text) > 0 {
		r, size := utf8.DecodeRuneInString(text)
		text = text[size:]

		if r == '\n' {
			pos.Line++
			pos.Column = 1

			continue
		}

		if n := utf16.RuneLen(r); n > 0 {
			pos.Column += n
		} else {
			pos.Column++
		}
	}

	return pos
}

// Kind discriminates the node variants of a grammar tree.
type Kind string

// Node kinds.
const (
	KindGrammar     Kind = "grammar"
	KindRule        Kind = "rule"
	KindNamed       Kind = "named"
	KindChoice      Kind = "choice"
	KindAction      Kind = "action"
	KindSequence    Kind = "sequence"
	KindLabeled     Kind = "labeled"
	KindText        Kind = "text"
	KindSimpleAnd   Kind = "simple_and"
	KindSimpleNot   Kind = "simple_not"
	KindOptional    Kind = "optional"
	KindZeroOrMore  Kind = "zero_or_more"
	KindOneOrMore   Kind = "one_or_more"
	KindRepeated    Kind = "repeated"
	KindGroup       Kind = "group"
	KindSemanticAnd Kind = "semantic_and"
	KindSemanticNot Kind = "semantic_not"
	KindRuleRef     Kind = "rule_ref"
	KindLiteral     Kind = "literal"
	KindClass       Kind = "class"
	KindAny         Kind = "any"
)

// Node is a grammar tree node. The set of implementations is closed.
type Node interface {
	Kind() Kind
	Location() Span
	node()
}

// Code is a block of JavaScript: an action, a predicate or an initializer.
// Text excludes the delimiting braces.
type Code struct {
	Text string
	Span Span
}

// Grammar is the root of a parsed document.
type Grammar struct {
	// TopLevelInitializer is the {{ ... }} block run once per generated parser.
	TopLevelInitializer *Code
	// Initializer is the { ... } block run once per parse.
	Initializer *Code
	Rules       []*Rule
	Span        Span
}

// Rule is a single rule declaration.
type Rule struct {
	Name string
	// NameSpan covers the rule name at the start of the declaration.
	NameSpan   Span
	Expression Node
	Span       Span
}

// Rule returns the rule declared with name, or nil.
func (g *Grammar) Rule(name string) *Rule {
	for _, r := range g.Rules {
		if r.Name == name {
			return r
		}
	}

	return nil
}

// Named wraps a rule expression with a human-readable name used in errors.
type Named struct {
	Name       string
	Expression Node
	Span       Span
}

// Choice is an ordered choice a / b / c.
type Choice struct {
	Alternatives []Node
	Span         Span
}

// Action is an expression followed by a code block.
type Action struct {
	Expression Node
	Code       *Code
	Span       Span
}

// Sequence is a list of expressions matched one after another.
type Sequence struct {
	Elements []Node
	Span     Span
}

// Labeled is label:expr, @expr or @label:expr. Label is empty for a bare pick.
type Labeled struct {
	Label      string
	LabelSpan  Span
	Pick       bool
	Expression Node
	Span       Span
}

// Text is $expr.
type Text struct {
	Expression Node
	Span       Span
}

// SimpleAnd is &expr.
type SimpleAnd struct {
	Expression Node
	Span       Span
}

// SimpleNot is !expr.
type SimpleNot struct {
	Expression Node
	Span       Span
}

// Optional is expr?.
type Optional struct {
	Expression Node
	Span       Span
}

// ZeroOrMore is expr*.
type ZeroOrMore struct {
	Expression Node
	Span       Span
}

// OneOrMore is expr+.
type OneOrMore struct {
	Expression Node
	Span       Span
}

// BoundaryType says how a repetition boundary is given.
type BoundaryType string

// Boundary types.
const (
	BoundaryConstant BoundaryType = "constant"
	BoundaryVariable BoundaryType = "variable"
	BoundaryFunction BoundaryType = "function"
)

// Boundary is one end of a |min..max| repetition.
type Boundary struct {
	Type BoundaryType
	// Value is the count of a constant boundary; -1 means unbounded.
	Value int
	// Name is the label referenced by a variable boundary.
	Name string
	// Code is the block of a function boundary.
	Code *Code
	Span Span
}

// Repeated is expr|min..max, delimiter|. Min is nil for an exact count,
// which is then held in Max.
type Repeated struct {
	Expression Node
	Min        *Boundary
	Max        *Boundary
	Delimiter  Node
	Span       Span
}

// Group is a parenthesized expression.
type Group struct {
	Expression Node
	Span       Span
}

// SemanticAnd is &{ code }.
type SemanticAnd struct {
	Code *Code
	Span Span
}

// SemanticNot is !{ code }.
type SemanticNot struct {
	Code *Code
	Span Span
}

// RuleRef is a reference to a rule by name.
type RuleRef struct {
	Name string
	Span Span
}

// Literal is a quoted string, optionally case-insensitive.
type Literal struct {
	Value      string
	IgnoreCase bool
	Span       Span
}

// ClassRange is one entry of a character class. Single characters have
// From == To.
type ClassRange struct {
	From rune
	To   rune
}

// Class is a character class such as [a-z_].
type Class struct {
	Parts      []ClassRange
	Inverted   bool
	IgnoreCase bool
	// Raw is the source text of the class.
	Raw  string
	Span Span
}

// Any is the . expression.
type Any struct {
	Span Span
}

func (n *Grammar) Kind() Kind     { return KindGrammar }
func (n *Rule) Kind() Kind        { return KindRule }
func (n *Named) Kind() Kind       { return KindNamed }
func (n *Choice) Kind() Kind      { return KindChoice }
func (n *Action) Kind() Kind      { return KindAction }
func (n *Sequence) Kind() Kind    { return KindSequence }
func (n *Labeled) Kind() Kind     { return KindLabeled }
func (n *Text) Kind() Kind        { return KindText }
func (n *SimpleAnd) Kind() Kind   { return KindSimpleAnd }
func (n *SimpleNot) Kind() Kind   { return KindSimpleNot }
func (n *Optional) Kind() Kind    { return KindOptional }
func (n *ZeroOrMore) Kind() Kind  { return KindZeroOrMore }
func (n *OneOrMore) Kind() Kind   { return KindOneOrMore }
func (n *Repeated) Kind() Kind    { return KindRepeated }
func (n *Group) Kind() Kind       { return KindGroup }
func (n *SemanticAnd) Kind() Kind { return KindSemanticAnd }
func (n *SemanticNot) Kind() Kind { return KindSemanticNot }
func (n *RuleRef) Kind() Kind     { return KindRuleRef }
func (n *Literal) Kind() Kind     { return KindLiteral }
func (n *Class) Kind() Kind       { return KindClass }
func (n *Any) Kind() Kind         { return KindAny }

func (n *Grammar) Location() Span     { return n.Span }
func (n *Rule) Location() Span        { return n.Span }
func (n *Named) Location() Span       { return n.Span }
func (n *Choice) Location() Span      { return n.Span }
func (n *Action) Location() Span      { return n.Span }
func (n *Sequence) Location() Span    { return n.Span }
func (n *Labeled) Location() Span     { return n.Span }
func (n *Text) Location() Span        { return n.Span }
func (n *SimpleAnd) Location() Span   { return n.Span }
func (n *SimpleNot) Location() Span   { return n.Span }
func (n *Optional) Location() Span    { return n.Span }
func (n *ZeroOrMore) Location() Span  { return n.Span }
func (n *OneOrMore) Location() Span   { return n.Span }
func (n *Repeated) Location() Span    { return n.Span }
func (n *Group) Location() Span       { return n.Span }
func (n *SemanticAnd) Location() Span { return n.Span }
func (n *SemanticNot) Location() Span { return n.Span }
func (n *RuleRef) Location() Span     { return n.Span }
func (n *Literal) Location() Span     { return n.Span }
func (n *Class) Location() Span       { return n.Span }
func (n *Any) Location() Span         { return n.Span }

func (*Grammar) node()     {}
func (*Rule) node()        {}
func (*Named) node()       {}
func (*Choice) node()      {}
func (*Action) node()      {}
func (*Sequence) node()    {}
func (*Labeled) node()     {}
func (*Text) node()        {}
func (*SimpleAnd) node()   {}
func (*SimpleNot) node()   {}
func (*Optional) node()    {}
func (*ZeroOrMore) node()  {}
func (*OneOrMore) node()   {}
func (*Repeated) node()    {}
func (*Group) node()       {}
func (*SemanticAnd) node() {}
func (*SemanticNot) node() {}
func (*RuleRef) node()     {}
func (*Literal) node()     {}
func (*Class) node()       {}
func (*Any) node()         {}
