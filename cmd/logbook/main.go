package main

import (
	"fmt"
	"os"

	"github.com/logbookhq/logbook/cmd/logbook/cli"
)

// Stamped by -ldflags at release build time; `logbook version` reports them.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := cli.Execute(version, commit, date); err != nil {
		fmt.Fprintln(os.Stderr, "logbook:", err)
		os.Exit(1)
	}
}
