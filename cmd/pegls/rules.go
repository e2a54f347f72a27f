package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/rlch/pegls/compiler"
)

func rulesCommand() *cli.Command {
	return &cli.Command{
		Name:      "rules",
		Usage:     "Print the inferred match result, proxy target and reference count of each rule",
		ArgsUsage: "FILE",
		Action:    runRules,
	}
}

func runRules(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return errNeedsOneFile
	}

	path := cmd.Args().First()
	w := cmd.Root().Writer

	session, problems, err := compileFile(path, compiler.DefaultPasses(), compiler.OutputReport)
	if err != nil {
		return err
	}

	if session == nil {
		styles := stylesFor(w)
		for _, p := range problems {
			printProblem(w, styles, path, p)
		}

		return errProblemsFound
	}

	_, _ = fmt.Fprint(w, session.Report())

	return nil
}
