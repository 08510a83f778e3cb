// Package main provides the docprop CLI.
package main

import (
	"os"

	"github.com/leapstack-labs/docprop/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
