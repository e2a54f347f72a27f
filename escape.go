package pegls

import (
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"
)

var errInvalidEscape = errors.New("invalid escape sequence")

// unescape decodes the JavaScript escape sequences of a literal body.
func unescape(s string) (string, error) {
	if !strings.Contains(s, `\`) {
		return s, nil
	}

	var sb strings.Builder

	for s != "" {
		r, rest, ok, err := nextChar(s)
		if err != nil {
			return "", err
		}

		if ok {
			sb.WriteRune(r)
		}

		s = rest
	}

	return sb.String(), nil
}

// nextChar decodes one possibly escaped character from the front of s.
// ok is false for a line continuation, which stands for no character.
func nextChar(s string) (r rune, rest string, ok bool, err error) {
	if s[0] != '\\' {
		ch, size := utf8.DecodeRuneInString(s)

		return ch, s[size:], true, nil
	}

	if len(s) < 2 { //nolint:mnd // backslash plus one character
		return 0, "", false, errInvalidEscape
	}

	c, size := utf8.DecodeRuneInString(s[1:])
	rest = s[1+size:]

	switch c {
	case 'b':
		return '\b', rest, true, nil
	case 'f':
		return '\f', rest, true, nil
	case 'n':
		return '\n', rest, true, nil
	case 'r':
		return '\r', rest, true, nil
	case 't':
		return '\t', rest, true, nil
	case 'v':
		return '\v', rest, true, nil
	case '0':
		if rest != "" && isDigit(rune(rest[0])) {
			return 0, "", false, errInvalidEscape
		}

		return 0, rest, true, nil
	case '\n':
		return 0, rest, false, nil
	case '\r':
		return 0, strings.TrimPrefix(rest, "\n"), false, nil
	case 'x':
		return hexChar(rest, 2) //nolint:mnd // \xHH
	case 'u':
		if strings.HasPrefix(rest, "{") {
			end := strings.IndexByte(rest, '}')
			if end < 2 { //nolint:mnd // at least one digit
				return 0, "", false, errInvalidEscape
			}

			v, err := strconv.ParseUint(rest[1:end], 16, 32)
			if err != nil || v > utf8.MaxRune {
				return 0, "", false, errInvalidEscape
			}

			return rune(v), rest[end+1:], true, nil
		}

		return hexChar(rest, 4) //nolint:mnd // \uHHHH
	}

	return c, rest, true, nil
}

func hexChar(s string, digits int) (rune, string, bool, error) {
	if len(s) < digits {
		return 0, "", false, errInvalidEscape
	}

	v, err := strconv.ParseUint(s[:digits], 16, 32)
	if err != nil {
		return 0, "", false, errInvalidEscape
	}

	return rune(v), s[digits:], true, nil
}
