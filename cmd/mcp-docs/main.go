// Package main provides the entry point for the mcp-docs CLI.
package main

import (
	"fmt"
	"os"

	"github.com/mcp-docs/mcp-docs/cmd/mcp-docs/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
