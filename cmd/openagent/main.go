// Package main provides the entry point for the openagent CLI.
package main

import (
	"fmt"
	"os"

	"github.com/openagent-dev/openagent/cmd/openagent/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
