package pegls

import (
	"io"
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/alecthomas/participle/v2/lexer"
)

// Token type constants - negative values as per participle convention.
const (
	TokenEOF        lexer.TokenType = lexer.EOF
	TokenComment    lexer.TokenType = -(iota + 2) //nolint:mnd // participle convention
	TokenWhitespace                               // spaces, tabs, newlines
	TokenIdent                                    // rule names, labels
	TokenString                                   // "..." or '...', optional trailing i
	TokenClass                                    // [...], optional trailing i
	TokenCode                                     // { ... } with balanced braces
	TokenTopCode                                  // {{ ... }} as the first token
	TokenNumber                                   // repetition boundaries
	TokenPunct                                    // operators and delimiters
)

// Lexer errors.
var (
	ErrUnterminatedString  = &LexerError{msg: "unterminated string literal"}
	ErrUnterminatedClass   = &LexerError{msg: "unterminated character class"}
	ErrUnterminatedCode    = &LexerError{msg: "unterminated code block"}
	ErrUnterminatedComment = &LexerError{msg: "unterminated comment"}
	ErrUnexpectedCharacter = &LexerError{msg: "unexpected character"}
)

// LexerError represents a lexer error covering the text that could not be
// tokenized.
type LexerError struct {
	msg  string
	span Span
	ch   rune
}

func (e *LexerError) Error() string {
	if e.ch != 0 {
		return e.span.Start.String() + ": " + e.msg + ": " + string(e.ch)
	}

	return e.span.Start.String() + ": " + e.msg
}

// Message returns the error text without position.
func (e *LexerError) Message() string {
	if e.ch != 0 {
		return e.msg + " " + quoteRune(e.ch)
	}

	return e.msg
}

// Span returns the source range of the offending text.
func (e *LexerError) Span() Span {
	return e.span
}

func (e *LexerError) withSpan(start, end lexer.Position) *LexerError {
	return &LexerError{msg: e.msg, span: Span{Start: start, End: end}, ch: e.ch}
}

func (e *LexerError) withChar(ch rune) *LexerError {
	return &LexerError{msg: e.msg, span: e.span, ch: ch}
}

func quoteRune(r rune) string {
	return "\"" + string(r) + "\""
}

// grammarDefinition implements lexer.Definition for Peggy grammars.
type grammarDefinition struct {
	symbols map[string]lexer.TokenType
}

func newGrammarLexer() *grammarDefinition {
	return &grammarDefinition{
		symbols: map[string]lexer.TokenType{
			"EOF":        TokenEOF,
			"Comment":    TokenComment,
			"Whitespace": TokenWhitespace,
			"Ident":      TokenIdent,
			"String":     TokenString,
			"Class":      TokenClass,
			"Code":       TokenCode,
			"TopCode":    TokenTopCode,
			"Number":     TokenNumber,
			"Punct":      TokenPunct,
		},
	}
}

// Symbols returns the mapping of symbol names to token types.
func (d *grammarDefinition) Symbols() map[string]lexer.TokenType {
	return d.symbols
}

// Lex creates a new Lexer for the given reader.
//
//nolint:ireturn // Required by participle's lexer.Definition interface.
func (d *grammarDefinition) Lex(filename string, r io.Reader) (lexer.Lexer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	return newLexerState(filename, string(data)), nil
}

// LexString implements lexer.StringDefinition.
//
//nolint:ireturn // Required by participle's lexer.StringDefinition interface.
func (d *grammarDefinition) LexString(filename string, input string) (lexer.Lexer, error) {
	return newLexerState(filename, input), nil
}

// lexerState holds the state for lexing one input.
//
// Columns are counted in UTF-16 code units so that positions line up with
// editor positions without conversion.
type lexerState struct {
	filename string
	input    string
	offset   int
	line     int
	col      int
	// significant is set once a non-trivia token has been produced.
	significant bool
}

func newLexerState(filename, input string) *lexerState {
	return &lexerState{
		filename: filename,
		input:    input,
		line:     1,
		col:      1,
	}
}

// Next returns the next token.
func (l *lexerState) Next() (lexer.Token, error) {
	if l.eof() {
		return lexer.EOFToken(l.pos()), nil
	}

	start := l.pos()
	r := l.peek()

	if isSpace(r) {
		for !l.eof() && isSpace(l.peek()) {
			l.advance()
		}

		return l.token(TokenWhitespace, start), nil
	}

	if r == '/' && l.peekAt(1) == '/' {
		for !l.eof() && l.peek() != '\n' {
			l.advance()
		}

		return l.token(TokenComment, start), nil
	}

	if r == '/' && l.peekAt(1) == '*' {
		return l.scanBlockComment(start)
	}

	first := !l.significant
	l.significant = true

	switch {
	case r == '"' || r == '\'':
		return l.scanString(start, r)
	case r == '[':
		return l.scanClass(start)
	case r == '{':
		return l.scanCode(start, first)
	case isDigit(r):
		for !l.eof() && isDigit(l.peek()) {
			l.advance()
		}

		return l.token(TokenNumber, start), nil
	case isIdentStart(r):
		l.advance()

		for !l.eof() && isIdentContinue(l.peek()) {
			l.advance()
		}

		return l.token(TokenIdent, start), nil
	}

	if l.match("..") {
		l.advance()
		l.advance()

		return l.token(TokenPunct, start), nil
	}

	if strings.ContainsRune("=/;:@$&!?*+|,().", r) {
		l.advance()

		return l.token(TokenPunct, start), nil
	}

	l.advance()

	return lexer.Token{}, ErrUnexpectedCharacter.withSpan(start, l.pos()).withChar(r)
}

func (l *lexerState) pos() lexer.Position {
	return lexer.Position{
		Filename: l.filename,
		Offset:   l.offset,
		Line:     l.line,
		Column:   l.col,
	}
}

func (l *lexerState) eof() bool {
	return l.offset >= len(l.input)
}

func (l *lexerState) peek() rune {
	if l.eof() {
		return 0
	}

	r, _ := utf8.DecodeRuneInString(l.input[l.offset:])

	return r
}

func (l *lexerState) peekAt(n int) rune {
	off := l.offset + n
	if off >= len(l.input) {
		return 0
	}

	r, _ := utf8.DecodeRuneInString(l.input[off:])

	return r
}

func (l *lexerState) advance() {
	if l.eof() {
		return
	}

	r, size := utf8.DecodeRuneInString(l.input[l.offset:])
	l.offset += size

	if r == '\n' {
		l.line++
		l.col = 1

		return
	}

	if n := utf16.RuneLen(r); n > 0 {
		l.col += n
	} else {
		l.col++
	}
}

func (l *lexerState) match(s string) bool {
	return strings.HasPrefix(l.input[l.offset:], s)
}

func (l *lexerState) token(typ lexer.TokenType, start lexer.Position) lexer.Token {
	return lexer.Token{
		Type:  typ,
		Value: l.input[start.Offset:l.offset],
		Pos:   start,
	}
}

func (l *lexerState) scanBlockComment(start lexer.Position) (lexer.Token, error) {
	l.advance() // /
	l.advance() // *

	for !l.eof() {
		if l.match("*/") {
			l.advance()
			l.advance()

			return l.token(TokenComment, start), nil
		}

		l.advance()
	}

	return lexer.Token{}, ErrUnterminatedComment.withSpan(start, l.pos())
}

// scanString scans a quoted literal. An unterminated literal stops at the end
// of its line.
func (l *lexerState) scanString(start lexer.Position, quote rune) (lexer.Token, error) {
	l.advance() // opening quote

	for !l.eof() {
		ch := l.peek()
		if ch == '\\' && l.peekAt(1) != 0 && l.peekAt(1) != '\n' {
			l.advance()
			l.advance()

			continue
		}

		if ch == quote {
			l.advance()

			if l.peek() == 'i' {
				l.advance()
			}

			return l.token(TokenString, start), nil
		}

		if ch == '\n' || ch == '\r' {
			break
		}

		l.advance()
	}

	return lexer.Token{}, ErrUnterminatedString.withSpan(start, l.pos())
}

func (l *lexerState) scanClass(start lexer.Position) (lexer.Token, error) {
	l.advance() // [

	for !l.eof() {
		ch := l.peek()
		if ch == '\\' && l.peekAt(1) != 0 && l.peekAt(1) != '\n' {
			l.advance()
			l.advance()

			continue
		}

		if ch == ']' {
			l.advance()

			if l.peek() == 'i' {
				l.advance()
			}

			return l.token(TokenClass, start), nil
		}

		if ch == '\n' || ch == '\r' {
			break
		}

		l.advance()
	}

	return lexer.Token{}, ErrUnterminatedClass.withSpan(start, l.pos())
}

// scanCode scans a brace-balanced code block. Braces inside JavaScript
// strings are not special, matching how Peggy itself delimits code.
func (l *lexerState) scanCode(start lexer.Position, first bool) (lexer.Token, error) {
	depth := 0

	for !l.eof() {
		switch l.peek() {
		case '{':
			depth++
		case '}':
			depth--
		}

		l.advance()

		if depth == 0 {
			tok := l.token(TokenCode, start)
			if first && isTopLevelCode(tok.Value) {
				tok.Type = TokenTopCode
			}

			return tok, nil
		}
	}

	return lexer.Token{}, ErrUnterminatedCode.withSpan(start, l.pos())
}

// isTopLevelCode reports whether a code block has the {{ ... }} shape: an
// outer pair of braces wrapping exactly one inner block.
func isTopLevelCode(code string) bool {
	if !strings.HasPrefix(code, "{{") || !strings.HasSuffix(code, "}}") {
		return false
	}

	inner := code[1 : len(code)-1]
	depth := 0

	for i, r := range inner {
		switch r {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i == len(inner)-1
			}
		}
	}

	return false
}

// Character helpers.

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f' || r == '\v' ||
		r == '\u00a0' || r == '\ufeff'
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentContinue(r rune) bool {
	return r == '_' || r == '$' || r == '\u200c' || r == '\u200d' ||
		unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Mc, r)
}
