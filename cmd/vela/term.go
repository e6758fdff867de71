package main

import (
	"os"

	"github.com/mattn/go-isatty"
)

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// colorEnabled decides whether diagnostics written to f are colored.
func colorEnabled(f *os.File) bool {
	// NO_COLOR convention: https://no-color.org/
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if !isTerminal(f) {
		return false
	}
	return os.Getenv("TERM") != "dumb"
}

const (
	ansiRed   = "\033[31m"
	ansiReset = "\033[39m"
)

func paint(s string, color bool) string {
	if !color {
		return s
	}
	return ansiRed + s + ansiReset
}
