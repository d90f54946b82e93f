// Package main is the entry point for the plashboard CLI. Plashboard is a
// template-driven dashboard publishing runtime: it fills dashboard
// templates from a configurable provider on a schedule, validates the
// result against the layout budget, and atomically publishes the approved
// document.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/jhytabest/plashboard/internal/cli"
)

// Version information (set by goreleaser)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := cli.Execute(version, commit, date); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			if !exitErr.Printed {
				fmt.Fprintf(os.Stderr, "Error: %v\n", exitErr.Err)
			}
			os.Exit(exitErr.Code)
		}

		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
