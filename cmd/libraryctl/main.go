// Package main is the entrypoint for libraryctl.
package main

import (
	"fmt"
	"os"

	"github.com/kiranshivaraju/mediashelf/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
