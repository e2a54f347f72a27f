package pegls

import "github.com/alecthomas/participle/v2/lexer"

// The types in this file are the participle grammar. Parse converts them
// into the exported tree in ast.go.

type grammarSyntax struct {
	Pos    lexer.Position
	EndPos lexer.Position

	TopInit *topCodeSyntax `parser:"(@@ ';'?)?"`
	Init    *codeSyntax    `parser:"(@@ ';'?)?"`
	Rules   []*ruleSyntax  `parser:"@@*"`
}

type topCodeSyntax struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Text string `parser:"@TopCode"`
}

type codeSyntax struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Text string `parser:"@Code"`
}

type identSyntax struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Value string `parser:"@Ident"`
}

type stringSyntax struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Value string `parser:"@String"`
}

type ruleSyntax struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Name        *identSyntax  `parser:"@@"`
	DisplayName *stringSyntax `parser:"@@?"`
	Expression  *choiceSyntax `parser:"'=' @@"`
	Semi        bool          `parser:"@';'?"`
}

type choiceSyntax struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Alternatives []*actionSyntax `parser:"@@ ('/' @@)*"`
}

type actionSyntax struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Sequence *sequenceSyntax `parser:"@@"`
	Code     *codeSyntax     `parser:"@@?"`
}

// sequenceSyntax stops before the header of the next rule, which is the
// only place Peggy needs more than one token of lookahead.
type sequenceSyntax struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Elements []*labeledSyntax `parser:"( (?! Ident String? '=') @@ )+"`
}

type labeledSyntax struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Pick       bool            `parser:"@'@'?"`
	Label      *identSyntax    `parser:"(@@ ':')?"`
	Expression *prefixedSyntax `parser:"@@"`
}

type prefixedSyntax struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Predicate  *predicateSyntax `parser:"  @@"`
	Operator   string           `parser:"| @('$' | '&' | '!')?"`
	Expression *suffixedSyntax  `parser:"  @@"`
}

type predicateSyntax struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Operator string      `parser:"@('&' | '!')"`
	Code     *codeSyntax `parser:"@@"`
}

type suffixedSyntax struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Primary  *primarySyntax `parser:"@@"`
	Operator string         `parser:"( @('?' | '*' | '+')"`
	Repeat   *repeatSyntax  `parser:"| @@ )?"`
}

type repeatSyntax struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Min       *boundarySyntax `parser:"'|' ( @@?"`
	Range     bool            `parser:"      @'..'"`
	Max       *boundarySyntax `parser:"      @@?"`
	Exact     *boundarySyntax `parser:"    | @@ )"`
	Delimiter *choiceSyntax   `parser:"(',' @@)? '|'"`
}

type boundarySyntax struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Number string      `parser:"  @Number"`
	Label  string      `parser:"| @Ident"`
	Code   *codeSyntax `parser:"| @@"`
}

type primarySyntax struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Literal string        `parser:"  @String"`
	Class   string        `parser:"| @Class"`
	Any     bool          `parser:"| @'.'"`
	Ref     string        `parser:"| @Ident"`
	Group   *choiceSyntax `parser:"| '(' @@ ')'"`
}
