package lsp

import (
	"testing"

	"go.lsp.dev/protocol"
)

func TestWordAtPosition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		line uint32
		char uint32
		want string
	}{
		{"start of word", "foo.bar", 0, 0, "foo"},
		{"end of first word", "foo.bar", 0, 3, "foo"},
		{"start of second word", "foo.bar", 0, 4, "bar"},
		{"end of line", "foo.bar", 0, 7, "bar"},
		{"adjacent words prefer the left one", "a=b", 0, 1, "a"},
		{"between spaces", "a  b", 0, 2, ""},
		{"second line", "start = x\nrule = y", 1, 2, "rule"},
		{"crlf", "start = x\r\nrule = y", 0, 9, "x"},
		{"missing line", "start = x", 3, 0, ""},
		{"dollar is part of a word", "$rule", 0, 2, "$rule"},
		{"utf-16 columns", "😀x foo", 0, 5, "foo"},
		{"astral rune", "😀x foo", 0, 2, "😀x"},
		{"delimiters", `a{b}c[d]e(f)g`, 0, 6, "d"},
		{"empty text", "", 0, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc := Document{Content: tt.text}

			got := wordAtPosition(doc, protocol.Position{Line: tt.line, Character: tt.char})
			if got != tt.want {
				t.Errorf("wordAtPosition(%q, %d:%d) = %q, want %q", tt.text, tt.line, tt.char, got, tt.want)
			}
		})
	}
}

func TestWordAt_Range(t *testing.T) {
	t.Parallel()

	doc := Document{Content: "x\n😀 rule = a"}

	w, ok := wordAt(doc, protocol.Position{Line: 1, Character: 4})
	if !ok {
		t.Fatal("wordAt() found no word")
	}

	want := protocol.Range{
		Start: protocol.Position{Line: 1, Character: 3},
		End:   protocol.Position{Line: 1, Character: 7},
	}

	if w.Text != "rule" || w.Range() != want {
		t.Errorf("wordAt() = %q %v, want %q %v", w.Text, w.Range(), "rule", want)
	}
}

func TestDocumentLine(t *testing.T) {
	t.Parallel()

	doc := Document{Content: "a\nb\r\n\nc"}

	for i, want := range []string{"a", "b", "", "c"} {
		got, ok := doc.Line(i)
		if !ok || got != want {
			t.Errorf("Line(%d) = %q, %v; want %q", i, got, ok, want)
		}
	}

	if _, ok := doc.Line(4); ok {
		t.Error("Line(4) should not exist")
	}

	if _, ok := doc.Line(-1); ok {
		t.Error("Line(-1) should not exist")
	}
}
