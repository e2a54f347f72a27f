// Command pegls-lsp is a Language Server Protocol server for Peggy grammars.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rlch/pegls/lsp"
)

var version = "dev"

func main() {
	app := &cli.Command{
		Name:    "pegls-lsp",
		Version: version,
		Usage:   "Peggy grammar language server over stdio",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("PEGLS_LOG_LEVEL"),
			},
		},
		Action: serve,
	}

	err := app.Run(context.Background(), os.Args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func serve(ctx context.Context, cmd *cli.Command) error {
	level, err := zapcore.ParseLevel(cmd.String("log-level"))
	if err != nil {
		return err
	}

	// stdout carries the protocol, so logs go to stderr.
	config := zap.NewDevelopmentConfig()
	config.OutputPaths = []string{"stderr"}
	config.Level = zap.NewAtomicLevelAt(level)

	logger, err := config.Build()
	if err != nil {
		return err
	}

	defer func() {
		_ = logger.Sync()
	}()

	logger.Info("Starting pegls-lsp server", zap.String("version", version))

	err = lsp.Serve(ctx, logger, &readWriteCloser{os.Stdin, os.Stdout})
	if err != nil {
		logger.Error("Server error", zap.Error(err))

		return err
	}

	return nil
}

// readWriteCloser wraps separate reader/writer into io.ReadWriteCloser.
type readWriteCloser struct {
	io.Reader
	io.Writer
}

func (rwc *readWriteCloser) Close() error {
	if c, ok := rwc.Writer.(io.Closer); ok {
		return c.Close()
	}

	return nil
}
