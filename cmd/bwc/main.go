// Package main provides the entry point for the bwc CLI.
package main

import (
	"context"
	"os"

	"github.com/mrz1836/bwckit/internal/cli"
)

// Build metadata injected via -ldflags at release time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx := context.Background()
	err := cli.Execute(ctx, cli.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	})
	cli.CloseLogFile()
	if err != nil {
		os.Exit(cli.ExitCodeForError(err))
	}
}
