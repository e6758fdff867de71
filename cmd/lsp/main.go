// Command vela-lsp is a language server that reports vela compile errors
// and evaluates documents on hover.
package main

import (
	"fmt"
	"os"

	"github.com/funvibe/vela/internal/logging"
)

func main() {
	// stdout carries the protocol; logs go to stderr
	logging.Configure(1, "")

	if err := NewServer().Run(); err != nil {
		fmt.Fprintf(os.Stderr, "vela-lsp: %v\n", err)
		os.Exit(1)
	}
}
