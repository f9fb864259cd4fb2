// Package main is the entry point for the storyline CLI.
package main

import (
	"os"

	"github.com/storyline/storyline/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
