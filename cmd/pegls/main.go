// Package main provides the pegls CLI tool.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

var version = "dev"

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "pegls",
		Version: version,
		Usage:   "Static checks for Peggy grammars",
		Commands: []*cli.Command{
			checkCommand(),
			outlineCommand(),
			rulesCommand(),
		},
	}
}

func main() {
	err := newApp().Run(context.Background(), os.Args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
