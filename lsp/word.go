package lsp

import (
	"strings"
	"unicode"
	"unicode/utf16"

	"go.lsp.dev/protocol"
)

// wordDelimiters separate words in addition to whitespace.
const wordDelimiters = "{}[]()`~!@#%^&*+-=|\\;:'\",./<>?"

// word is a maximal run of non-delimiter characters on one line. Start and
// End are UTF-16 columns; End is exclusive.
type word struct {
	Text       string
	Line       uint32
	Start, End uint32
}

// Range returns the range the word covers.
func (w word) Range() protocol.Range {
	return protocol.Range{
		Start: protocol.Position{Line: w.Line, Character: w.Start},
		End:   protocol.Position{Line: w.Line, Character: w.End},
	}
}

func isWordDelimiter(r rune) bool {
	return unicode.IsSpace(r) || r == '\ufeff' || strings.ContainsRune(wordDelimiters, r)
}

// lineWords splits line into words, in order.
func lineWords(line string, lineNo uint32) []word {
	var (
		words []word
		col   uint32
		cur   *word
		buf   strings.Builder
	)

	flush := func() {
		if cur == nil {
			return
		}

		cur.Text = buf.String()
		cur.End = col
		words = append(words, *cur)
		cur = nil

		buf.Reset()
	}

	for _, r := range line {
		if isWordDelimiter(r) {
			flush()
		} else {
			if cur == nil {
				cur = &word{Line: lineNo, Start: col}
			}

			buf.WriteRune(r)
		}

		col += uint32(max(utf16.RuneLen(r), 1)) //nolint:gosec // 1 or 2
	}

	flush()

	return words
}

// wordAt returns the word under pos. The first word whose range contains
// the cursor column wins, counting both ends as inside, so a cursor between
// two adjacent words picks the left one.
func wordAt(doc Document, pos protocol.Position) (word, bool) {
	line, ok := doc.Line(int(pos.Line))
	if !ok {
		return word{}, false
	}

	for _, w := range lineWords(line, pos.Line) {
		if w.Start <= pos.Character && pos.Character <= w.End {
			return w, true
		}
	}

	return word{}, false
}

// wordAtPosition returns the text of the word under pos, or "".
func wordAtPosition(doc Document, pos protocol.Position) string {
	w, _ := wordAt(doc, pos)

	return w.Text
}
