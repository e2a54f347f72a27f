package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.lsp.dev/protocol"

	"github.com/rlch/pegls"
	"github.com/rlch/pegls/compiler"
	"github.com/rlch/pegls/lsp"
)

var (
	errNoGrammarFiles = errors.New("no .peggy or .pegjs files found")
	errProblemsFound  = errors.New("grammar has errors")
)

// grammarExtensions are the file extensions collected from directories.
var grammarExtensions = []string{".peggy", ".pegjs"}

// collectGrammarFiles expands directories into the grammar files they
// contain. Explicit file arguments are kept whatever their extension, and
// file:// URIs are accepted in place of paths.
func collectGrammarFiles(args []string) ([]string, error) {
	var files []string

	for _, arg := range args {
		arg = lsp.URIToPath(protocol.DocumentURI(arg))

		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			files = append(files, arg)

			continue
		}

		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if !d.IsDir() && isGrammarFile(path) {
				files = append(files, path)
			}

			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return files, nil
}

func isGrammarFile(path string) bool {
	for _, ext := range grammarExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}

	return false
}

// parseFile reads and parses the grammar at path.
func parseFile(path string) (*pegls.Grammar, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: file path from user input is expected
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	return pegls.Parse(string(data), pegls.ParseOptions{
		SourceID:      path,
		ReservedWords: pegls.ReservedWords,
	})
}

// compileFile parses and compiles the grammar at path. Syntax and grammar
// errors come back as problems; only I/O failures are returned as errors.
func compileFile(path string, stages compiler.Stages, output compiler.OutputMode) (*compiler.Session, []compiler.Problem, error) {
	g, err := parseFile(path)
	if err == nil {
		var session *compiler.Session

		session, err = compiler.Compile(g, stages, compiler.Options{SourceID: path, Output: output})
		if err == nil {
			return session, session.Problems, nil
		}
	}

	var (
		syntaxErr  *pegls.SyntaxError
		grammarErr *compiler.GrammarError
	)

	switch {
	case errors.As(err, &syntaxErr):
		span := syntaxErr.Span

		return nil, []compiler.Problem{{
			Severity: compiler.SeverityError,
			Message:  syntaxErr.Message,
			Location: &span,
		}}, nil
	case errors.As(err, &grammarErr):
		return nil, grammarErr.Problems, nil
	default:
		return nil, nil, err
	}
}

// printProblem writes one problem and its notes.
func printProblem(w io.Writer, styles *Styles, path string, p compiler.Problem) {
	var sev string

	switch p.Severity {
	case compiler.SeverityError:
		sev = styles.Error.Render(string(p.Severity))
	case compiler.SeverityWarning:
		sev = styles.Warning.Render(string(p.Severity))
	default:
		sev = styles.Info.Render(string(p.Severity))
	}

	where := path
	if p.Location != nil {
		where = formatPosition(path, p.Location.Start.Line, p.Location.Start.Column)
	}

	_, _ = fmt.Fprintf(w, "%s: %s: %s\n", styles.Path.Render(where), sev, p.Message)

	for _, n := range p.Related {
		at := formatPosition(path, n.Location.Start.Line, n.Location.Start.Column)
		_, _ = fmt.Fprintf(w, "    %s %s\n", styles.Dim.Render(at+":"), n.Message)
	}
}

func formatPosition(path string, line, column int) string {
	return fmt.Sprintf("%s:%d:%d", path, line, column)
}
