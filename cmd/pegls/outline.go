package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/rlch/pegls"
	"github.com/rlch/pegls/compiler"
)

var errNeedsOneFile = errors.New("expected exactly one grammar file")

func outlineCommand() *cli.Command {
	return &cli.Command{
		Name:      "outline",
		Usage:     "List the initializers and rules of a grammar",
		ArgsUsage: "FILE",
		Action:    runOutline,
	}
}

func runOutline(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return errNeedsOneFile
	}

	path := cmd.Args().First()
	w := cmd.Root().Writer
	styles := stylesFor(w)

	g, err := parseFile(path)
	if err != nil {
		var syntaxErr *pegls.SyntaxError
		if !errors.As(err, &syntaxErr) {
			return err
		}

		span := syntaxErr.Span
		printProblem(w, styles, path, compiler.Problem{
			Severity: compiler.SeverityError,
			Message:  syntaxErr.Message,
			Location: &span,
		})

		return errProblemsFound
	}

	writeOutline(w, styles, path, g)

	return nil
}

type outlineEntry struct {
	name   string
	detail string
	span   pegls.Span
}

// outlineEntries lists the grammar in the order an editor outline shows it.
func outlineEntries(g *pegls.Grammar) []outlineEntry {
	var entries []outlineEntry

	if g.TopLevelInitializer != nil {
		entries = append(entries, outlineEntry{name: "{{Global initializer}}", span: g.TopLevelInitializer.Span})
	}

	if g.Initializer != nil {
		entries = append(entries, outlineEntry{name: "{Per-parse initializer}", span: g.Initializer.Span})
	}

	for _, r := range g.Rules {
		e := outlineEntry{name: r.Name, span: r.Span}
		if named, ok := r.Expression.(*pegls.Named); ok {
			e.detail = named.Name
		}

		entries = append(entries, e)
	}

	return entries
}

func writeOutline(w io.Writer, styles *Styles, path string, g *pegls.Grammar) {
	_, _ = fmt.Fprintln(w, styles.Path.Render(path))

	entries := outlineEntries(g)

	for i, e := range entries {
		branch := styles.TreeMiddle
		if i == len(entries)-1 {
			branch = styles.TreeEnd
		}

		label := styles.Bold.Render(e.name)
		if e.detail != "" {
			label += " " + styles.Dim.Render(fmt.Sprintf("%q", e.detail))
		}

		at := fmt.Sprintf("%d:%d", e.span.Start.Line, e.span.Start.Column)
		_, _ = fmt.Fprintf(w, "%s %s  %s\n", branch, label, styles.Dim.Render(at))
	}
}
