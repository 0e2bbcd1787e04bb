package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/matzehuels/conceptgraph/internal/cli"
	"github.com/matzehuels/conceptgraph/pkg/store"

	cgerrors "github.com/matzehuels/conceptgraph/pkg/errors"
)

// Exit codes. 130 is the shell convention for SIGINT.
const (
	exitOK          = 0
	exitFailure     = 1
	exitInvalid     = 2
	exitNotFound    = 3
	exitInterrupted = 130
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command line in args and reports a failure on stderr.
func run(ctx context.Context, args []string, stderr io.Writer) int {
	root := cli.New(stderr, cli.LogInfo).RootCommand()
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}
	code := exitCode(err)
	if code != exitInterrupted {
		fmt.Fprintln(stderr, "Error:", cgerrors.UserMessage(err))
	}
	return code
}

// exitCode classifies err so scripts can tell a bad graph from a missing one.
func exitCode(err error) int {
	switch {
	case errors.Is(err, context.Canceled):
		return exitInterrupted
	case errors.Is(err, store.ErrNotFound):
		return exitNotFound
	}
	switch cgerrors.GetCode(err) {
	case cgerrors.ErrCodeInvalidInput, cgerrors.ErrCodeInvalidGraph, cgerrors.ErrCodeInvalidIndex,
		cgerrors.ErrCodeInvalidPath, cgerrors.ErrCodeEmptyGraph:
		return exitInvalid
	case cgerrors.ErrCodeNotFound, cgerrors.ErrCodeGraphNotFound, cgerrors.ErrCodeFileNotFound:
		return exitNotFound
	default:
		return exitFailure
	}
}
