// Command panopticon is the KQL Panopticon entry point: with no
// subcommand and an interactive terminal it launches the TUI (C8), and
// with no subcommand and a non-terminal stdout it exits with an error;
// the explicit subcommands run the batch paths (C9 run-pack, export-pack)
// for scripting and CI use (spec §4.9).
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "panopticon:", err)
		os.Exit(1)
	}
}
