package pegls

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// grammarLexer is the custom lexer for Peggy grammars.
var grammarLexer = newGrammarLexer()

var parser = participle.MustBuild[grammarSyntax](
	participle.Lexer(grammarLexer),
	participle.Elide("Whitespace", "Comment"),
	participle.UseLookahead(4), //nolint:mnd // Ident String '=' plus one
)

// ParseOptions configures Parse.
type ParseOptions struct {
	// SourceID names the document in positions and error messages.
	SourceID string
	// ReservedWords may not be used as labels.
	ReservedWords []string
}

// Parse parses a Peggy grammar. It is safe for concurrent use.
//
// Every failure is reported as a *SyntaxError.
func Parse(text string, opts ParseOptions) (*Grammar, error) {
	syn, err := parser.ParseString(opts.SourceID, text)
	if err != nil {
		return nil, newSyntaxError(err)
	}

	b := &builder{reserved: reservedSet(opts.ReservedWords)}

	g := b.grammar(syn)
	if b.err != nil {
		return nil, b.err
	}

	return g, nil
}

// builder converts the participle syntax into the exported tree. It keeps
// the first error and carries on so the conversion code stays linear.
type builder struct {
	reserved map[string]struct{}
	err      *SyntaxError
}

func (b *builder) fail(span Span, format string, args ...any) {
	if b.err == nil {
		b.err = &SyntaxError{Message: fmt.Sprintf(format, args...), Span: span}
	}
}

func span(start, end lexer.Position) Span {
	return Span{Start: start, End: end}
}

func (b *builder) grammar(syn *grammarSyntax) *Grammar {
	g := &Grammar{Span: span(syn.Pos, syn.EndPos)}

	if syn.TopInit != nil {
		g.TopLevelInitializer = &Code{
			Text: strings.TrimSuffix(strings.TrimPrefix(syn.TopInit.Text, "{{"), "}}"),
			Span: span(syn.TopInit.Pos, syn.TopInit.EndPos),
		}
	}

	if syn.Init != nil {
		g.Initializer = b.code(syn.Init)
	}

	for _, r := range syn.Rules {
		g.Rules = append(g.Rules, b.rule(r))
	}

	return g
}

func (b *builder) code(syn *codeSyntax) *Code {
	return &Code{
		Text: strings.TrimSuffix(strings.TrimPrefix(syn.Text, "{"), "}"),
		Span: span(syn.Pos, syn.EndPos),
	}
}

func (b *builder) rule(syn *ruleSyntax) *Rule {
	r := &Rule{
		Name:       syn.Name.Value,
		NameSpan:   span(syn.Name.Pos, syn.Name.EndPos),
		Expression: b.choice(syn.Expression),
		Span:       span(syn.Pos, syn.EndPos),
	}

	if syn.DisplayName != nil {
		name, _ := b.literal(syn.DisplayName.Value, span(syn.DisplayName.Pos, syn.DisplayName.EndPos))
		r.Expression = &Named{
			Name:       name,
			Expression: r.Expression,
			Span:       r.Span,
		}
	}

	return r
}

func (b *builder) choice(syn *choiceSyntax) Node {
	if len(syn.Alternatives) == 1 {
		return b.action(syn.Alternatives[0])
	}

	c := &Choice{Span: span(syn.Pos, syn.EndPos)}
	for _, a := range syn.Alternatives {
		c.Alternatives = append(c.Alternatives, b.action(a))
	}

	return c
}

func (b *builder) action(syn *actionSyntax) Node {
	expr := b.sequence(syn.Sequence)
	if syn.Code == nil {
		return expr
	}

	return &Action{
		Expression: expr,
		Code:       b.code(syn.Code),
		Span:       span(syn.Pos, syn.EndPos),
	}
}

func (b *builder) sequence(syn *sequenceSyntax) Node {
	elements := make([]Node, 0, len(syn.Elements))
	for _, e := range syn.Elements {
		elements = append(elements, b.labeled(e))
	}

	if len(elements) == 1 {
		if l, ok := elements[0].(*Labeled); !ok || !l.Pick {
			return elements[0]
		}
	}

	return &Sequence{Elements: elements, Span: span(syn.Pos, syn.EndPos)}
}

func (b *builder) labeled(syn *labeledSyntax) Node {
	expr := b.prefixed(syn.Expression)
	if !syn.Pick && syn.Label == nil {
		return expr
	}

	l := &Labeled{
		Pick:       syn.Pick,
		Expression: expr,
		Span:       span(syn.Pos, syn.EndPos),
	}

	if syn.Label != nil {
		l.Label = syn.Label.Value
		l.LabelSpan = span(syn.Label.Pos, syn.Label.EndPos)

		if _, ok := b.reserved[l.Label]; ok {
			b.fail(l.LabelSpan, "label can't be a reserved word %q", l.Label)
		}
	}

	return l
}

func (b *builder) prefixed(syn *prefixedSyntax) Node {
	s := span(syn.Pos, syn.EndPos)

	if p := syn.Predicate; p != nil {
		if p.Operator == "&" {
			return &SemanticAnd{Code: b.code(p.Code), Span: s}
		}

		return &SemanticNot{Code: b.code(p.Code), Span: s}
	}

	expr := b.suffixed(syn.Expression)

	switch syn.Operator {
	case "$":
		return &Text{Expression: expr, Span: s}
	case "&":
		return &SimpleAnd{Expression: expr, Span: s}
	case "!":
		return &SimpleNot{Expression: expr, Span: s}
	}

	return expr
}

func (b *builder) suffixed(syn *suffixedSyntax) Node {
	expr := b.primary(syn.Primary)
	s := span(syn.Pos, syn.EndPos)

	switch syn.Operator {
	case "?":
		return &Optional{Expression: expr, Span: s}
	case "*":
		return &ZeroOrMore{Expression: expr, Span: s}
	case "+":
		return &OneOrMore{Expression: expr, Span: s}
	}

	if syn.Repeat == nil {
		return expr
	}

	rep := &Repeated{Expression: expr, Span: s}
	r := syn.Repeat

	if r.Exact != nil {
		rep.Max = b.boundary(r.Exact)
	} else {
		rep.Min = &Boundary{Type: BoundaryConstant, Value: 0, Span: span(r.Pos, r.Pos)}
		if r.Min != nil {
			rep.Min = b.boundary(r.Min)
		}

		rep.Max = &Boundary{Type: BoundaryConstant, Value: -1, Span: span(r.EndPos, r.EndPos)}
		if r.Max != nil {
			rep.Max = b.boundary(r.Max)
		}
	}

	if r.Delimiter != nil {
		rep.Delimiter = b.choice(r.Delimiter)
	}

	return rep
}

func (b *builder) boundary(syn *boundarySyntax) *Boundary {
	bd := &Boundary{Span: span(syn.Pos, syn.EndPos)}

	switch {
	case syn.Code != nil:
		bd.Type = BoundaryFunction
		bd.Code = b.code(syn.Code)
	case syn.Label != "":
		bd.Type = BoundaryVariable
		bd.Name = syn.Label
	default:
		bd.Type = BoundaryConstant

		n, err := strconv.Atoi(syn.Number)
		if err != nil {
			b.fail(bd.Span, "invalid repetition count %s", syn.Number)
		}

		bd.Value = n
	}

	return bd
}

func (b *builder) primary(syn *primarySyntax) Node {
	s := span(syn.Pos, syn.EndPos)

	switch {
	case syn.Literal != "":
		value, ignoreCase := b.literal(syn.Literal, s)

		return &Literal{Value: value, IgnoreCase: ignoreCase, Span: s}
	case syn.Class != "":
		return b.class(syn.Class, s)
	case syn.Any:
		return &Any{Span: s}
	case syn.Ref != "":
		return &RuleRef{Name: syn.Ref, Span: s}
	case syn.Group != nil:
		return &Group{Expression: b.choice(syn.Group), Span: s}
	}

	b.fail(s, "empty expression")

	return &Any{Span: s}
}

// literal decodes a quoted token, reporting whether it carried the i flag.
func (b *builder) literal(raw string, s Span) (string, bool) {
	ignoreCase := strings.HasSuffix(raw, "i")
	raw = strings.TrimSuffix(raw, "i")

	value, err := unescape(raw[1 : len(raw)-1])
	if err != nil {
		b.fail(s, "%s", err)
	}

	return value, ignoreCase
}

func (b *builder) class(raw string, s Span) *Class {
	c := &Class{Raw: raw, Span: s}

	body := raw
	if strings.HasSuffix(body, "i") {
		c.IgnoreCase = true
		body = strings.TrimSuffix(body, "i")
	}

	body = body[1 : len(body)-1]
	if strings.HasPrefix(body, "^") {
		c.Inverted = true
		body = body[1:]
	}

	for body != "" {
		from, rest, ok, err := nextChar(body)
		if err != nil {
			b.fail(s, "%s", err)

			return c
		}

		body = rest
		if !ok {
			continue
		}

		to := from

		if strings.HasPrefix(body, "-") && len(body) > 1 {
			var hi rune

			hi, rest, ok, err = nextChar(body[1:])
			if err != nil {
				b.fail(s, "%s", err)

				return c
			}

			if ok {
				body = rest
				to = hi

				if to < from {
					b.fail(s, "invalid character range %s-%s", string(from), string(to))
				}
			}
		}

		c.Parts = append(c.Parts, ClassRange{From: from, To: to})
	}

	return c
}

// ExportedLexer returns the lexer definition for testing purposes.
//
//nolint:ireturn // tests only need the participle interface
func ExportedLexer() lexer.Definition {
	return grammarLexer
}
