package lsp

import (
	"errors"
	"slices"
	"testing"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/google/go-cmp/cmp"
	"go.lsp.dev/protocol"

	"github.com/rlch/pegls"
	"github.com/rlch/pegls/compiler"
)

func TestCompileDocument(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		text        string
		wantGrammar bool
		wantMessage string
	}{
		{"valid", "start = \"a\" foo\nfoo = \"b\"", true, ""},
		{"syntax error", `start = "a`, false, ""},
		{"reserved label", `start = class:"a"`, false, `label can't be a reserved word "class"`},
		{"grammar error", `start = missing`, false, `Rule "missing" is not defined`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			v := compileDocument(Document{URI: "file:///g.peggy", Content: tt.text})

			if v.err != nil {
				t.Fatalf("unexpected failure: %v", v.err)
			}

			if (v.grammar != nil) != tt.wantGrammar {
				t.Errorf("grammar = %v, want present=%v", v.grammar, tt.wantGrammar)
			}

			if !tt.wantGrammar && len(v.problems) == 0 {
				t.Error("expected problems for a failed compile")
			}

			if tt.wantMessage != "" && !slices.ContainsFunc(v.problems, func(p compiler.Problem) bool {
				return p.Message == tt.wantMessage
			}) {
				t.Errorf("problems = %v, want one with message %q", v.problems, tt.wantMessage)
			}
		})
	}
}

func TestFailedValidation_Unexpected(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")

	v := failedValidation(boom)
	if !errors.Is(v.err, boom) {
		t.Errorf("err = %v, want boom", v.err)
	}

	if v.grammar != nil || len(v.problems) != 0 {
		t.Errorf("unexpected failure should carry no grammar or problems: %+v", v)
	}
}

func TestConvertProblem(t *testing.T) {
	t.Parallel()

	at := func(filename string, line, startCol, endCol int) pegls.Span {
		return pegls.Span{
			Start: lexer.Position{Filename: filename, Line: line, Column: startCol},
			End:   lexer.Position{Filename: filename, Line: line, Column: endCol},
		}
	}

	loc := at("file:///g.peggy", 3, 1, 4)

	p := compiler.Problem{
		Severity: compiler.SeverityWarning,
		Message:  "Alternative is unreachable",
		Location: &loc,
		Related: []compiler.Note{
			{Message: "here", Location: at("file:///other.peggy", 1, 5, 6)},
			{Message: "no source", Location: at("", 2, 1, 2)},
		},
	}

	got := convertProblem("file:///g.peggy", p)

	want := protocol.Diagnostic{
		Range: protocol.Range{
			Start: protocol.Position{Line: 2, Character: 0},
			End:   protocol.Position{Line: 2, Character: 3},
		},
		Severity: protocol.DiagnosticSeverityWarning,
		Source:   "pegls",
		Message:  "Alternative is unreachable",
		RelatedInformation: []protocol.DiagnosticRelatedInformation{
			{
				Location: protocol.Location{
					URI: "file:///other.peggy",
					Range: protocol.Range{
						Start: protocol.Position{Line: 0, Character: 4},
						End:   protocol.Position{Line: 0, Character: 5},
					},
				},
				Message: "here",
			},
			{
				Location: protocol.Location{
					URI: "file:///g.peggy",
					Range: protocol.Range{
						Start: protocol.Position{Line: 1, Character: 0},
						End:   protocol.Position{Line: 1, Character: 1},
					},
				},
				Message: "no source",
			},
		},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("convertProblem mismatch (-want +got):\n%s", diff)
	}
}

func TestConvertSeverity(t *testing.T) {
	t.Parallel()

	tests := map[compiler.Severity]protocol.DiagnosticSeverity{
		compiler.SeverityError:   protocol.DiagnosticSeverityError,
		compiler.SeverityWarning: protocol.DiagnosticSeverityWarning,
		compiler.SeverityInfo:    protocol.DiagnosticSeverityInformation,
		"unknown":                protocol.DiagnosticSeverityError,
	}

	for sev, want := range tests {
		if got := convertSeverity(sev); got != want {
			t.Errorf("convertSeverity(%q) = %v, want %v", sev, got, want)
		}
	}
}

func TestDecodeSettings(t *testing.T) {
	t.Parallel()

	base := pegls.DefaultSettings()

	got, err := decodeSettings(map[string]any{"consoleInfo": true, "debounceMS": 50}, base)
	if err != nil {
		t.Fatalf("decodeSettings() error: %v", err)
	}

	want := pegls.Settings{ConsoleInfo: true, MarkInfo: true, DebounceMS: 50}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("decodeSettings mismatch (-want +got):\n%s", diff)
	}

	_, err = decodeSettings(map[string]any{"debounceMS": "soon"}, base)
	if err == nil {
		t.Error("expected an error for a non-numeric debounceMS")
	}
}
