// Package main provides the lito-graph command.
package main

import (
	"os"

	"github.com/Lito-docs/graph/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
