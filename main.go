// Package main is the entry point for the querychat CLI application.
// It provides a conversational interface to a natural-language-to-SQL backend.
package main

import (
	"querychat/cli/cmd"
)

// main is the entry point for the querychat CLI application.
// It initializes and executes the command-line interface.
func main() {
	cmd.Execute()
}
