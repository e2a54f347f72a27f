package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"runtime"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/rlch/pegls"
	"github.com/rlch/pegls/compiler"
)

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "Check grammars and report problems",
		ArgsUsage: "[files or directories...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "mark-info",
				Usage: "report informational problems that have a location (overrides config)",
			},
			&cli.BoolFlag{
				Name:  "console-info",
				Usage: "report informational problems about the whole grammar (overrides config)",
			},
		},
		Action: runCheck,
	}
}

// checkResult is the outcome of checking one file.
type checkResult struct {
	path     string
	problems []compiler.Problem
}

func runCheck(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args().Slice()
	if len(args) == 0 {
		args = []string{"."}
	}

	files, err := collectGrammarFiles(args)
	if err != nil {
		return err
	}

	if len(files) == 0 {
		return errNoGrammarFiles
	}

	settings, err := pegls.LoadConfig(filepath.Dir(files[0]))
	if err != nil && !errors.Is(err, pegls.ErrConfigNotFound) {
		return fmt.Errorf("loading config: %w", err)
	}

	if cmd.IsSet("mark-info") {
		settings.MarkInfo = cmd.Bool("mark-info")
	}

	if cmd.IsSet("console-info") {
		settings.ConsoleInfo = cmd.Bool("console-info")
	}

	results, err := checkFiles(ctx, files)
	if err != nil {
		return err
	}

	w := cmd.Root().Writer

	return reportCheck(w, stylesFor(w), results, settings)
}

// checkFiles compiles files concurrently. Results keep the order of files.
func checkFiles(ctx context.Context, files []string) ([]checkResult, error) {
	results := make([]checkResult, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, path := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			_, problems, err := compileFile(path, compiler.ValidationPasses(), compiler.OutputSession)
			if err != nil {
				return err
			}

			results[i] = checkResult{path: path, problems: problems}

			return nil
		})
	}

	err := g.Wait()
	if err != nil {
		return nil, err
	}

	return results, nil
}

// reportCheck prints the problems settings allow and a summary line. It
// returns errProblemsFound when any file has an error.
func reportCheck(w io.Writer, styles *Styles, results []checkResult, settings pegls.Settings) error {
	var errorCount, warningCount int

	for _, r := range results {
		for _, p := range r.problems {
			switch {
			case p.Severity == compiler.SeverityError:
				errorCount++
			case p.Severity == compiler.SeverityWarning:
				warningCount++
			case p.Location == nil && !settings.ConsoleInfo:
				continue
			case p.Location != nil && !settings.MarkInfo:
				continue
			}

			printProblem(w, styles, r.path, p)
		}
	}

	summary := fmt.Sprintf("%d files checked, %d errors, %d warnings", len(results), errorCount, warningCount)

	if errorCount > 0 {
		_, _ = fmt.Fprintf(w, "%s %s\n", styles.Error.Render(styles.SymbolFail), summary)

		return errProblemsFound
	}

	_, _ = fmt.Fprintf(w, "%s %s\n", styles.Pass.Render(styles.SymbolPass), summary)

	return nil
}
