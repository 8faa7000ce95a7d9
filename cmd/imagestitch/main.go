package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/matzehuels/imagestitch/internal/cli"
	"github.com/matzehuels/imagestitch/pkg/errors"
)

// exitInterrupted is the shell convention for SIGINT.
const exitInterrupted = 130

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		if ctx.Err() != nil {
			os.Exit(exitInterrupted)
		}
		fmt.Fprintln(os.Stderr, cli.ErrorLine(errors.UserMessage(err)))
		os.Exit(errors.ExitCode(err))
	}
}

func run(ctx context.Context) error {
	c := cli.New(os.Stderr, cli.LogInfo)
	return c.RootCommand().ExecuteContext(ctx)
}
