// Package main is the entry point for the asksh CLI.
package main

import (
	"os"

	"github.com/asksh/asksh/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
