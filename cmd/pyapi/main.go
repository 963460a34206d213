package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"

	"github.com/emenda-labs/pyapi/core/app"
	"github.com/emenda-labs/pyapi/core/cli"
)

const version = "0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// CI logs keep no ANSI escapes.
	if os.Getenv("CI") != "" {
		color.NoColor = true
	}

	var opts cli.Options
	newApp := func() *app.App { return app.New(opts.ProjectDir) }

	root := cli.NewRootCmd(version, &opts)
	root.AddCommand(
		cli.NewAnalyzeCmd(func(ctx context.Context) error {
			return newApp().Analyze(ctx)
		}),
		cli.NewAcceptBreakCmd(func(ctx context.Context, code, justification string) error {
			return newApp().AcceptBreak(ctx, code, justification)
		}),
		cli.NewAcceptAllBreaksCmd(func(ctx context.Context, justification string) error {
			return newApp().AcceptAllBreaks(ctx, justification)
		}),
		cli.NewVersionOverrideCmd(func(ctx context.Context, baselineVersion string) error {
			return newApp().VersionOverride(baselineVersion)
		}),
	)

	if err := root.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, app.ErrReported) {
			fmt.Fprintf(os.Stderr, "pyapi: %v\n", err)
		}
		os.Exit(1)
	}
}
