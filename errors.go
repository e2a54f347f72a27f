package pegls

import (
	"errors"
	"fmt"

	"github.com/alecthomas/participle/v2"
)

// SyntaxError is returned by Parse when the grammar text is malformed.
type SyntaxError struct {
	Message string
	Span    Span
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: %s", e.Span.Start, e.Message)
}

// newSyntaxError converts a lexer or participle failure into a SyntaxError.
func newSyntaxError(err error) *SyntaxError {
	var lexErr *LexerError
	if errors.As(err, &lexErr) {
		return &SyntaxError{Message: lexErr.Message(), Span: lexErr.Span()}
	}

	var unexpected *participle.UnexpectedTokenError
	if errors.As(err, &unexpected) {
		tok := unexpected.Unexpected
		span := Span{Start: tok.Pos, End: tok.Pos}

		if !tok.EOF() {
			span.End = advancePosition(tok.Pos, tok.Value)
		}

		return &SyntaxError{Message: unexpected.Message(), Span: span}
	}

	var perr participle.Error
	if errors.As(err, &perr) {
		return &SyntaxError{
			Message: perr.Message(),
			Span:    Span{Start: perr.Position(), End: perr.Position()},
		}
	}

	return &SyntaxError{Message: err.Error()}
}
