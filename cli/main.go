package main

import (
	"context"
	"fmt"
	"os"

	"github.com/trebuchet-org/lockgov/internal/cli"
	"github.com/trebuchet-org/lockgov/internal/cli/render"
	"github.com/trebuchet-org/lockgov/internal/config"
)

// Set at build time via -ldflags
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	config.SetBuildFlags(version, commit, date)

	root := cli.NewRootCmd()
	if err := cli.Execute(context.Background(), root); err != nil {
		fmt.Fprintln(os.Stderr, render.FormatError(err.Error()))
		os.Exit(1)
	}
}
