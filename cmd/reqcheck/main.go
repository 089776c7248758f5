package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fbkclanna/reqcheck/internal/requirement"
)

// Set via -ldflags at build time.
var version = "dev"

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps errors to process exit codes: 2 for malformed input files,
// 1 for findings and collaborator failures.
func exitCode(err error) int {
	var perr *requirement.ParseError
	if errors.As(err, &perr) {
		return 2
	}
	return 1
}
