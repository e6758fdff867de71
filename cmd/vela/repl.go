package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/funvibe/vela/internal/config"
	"github.com/funvibe/vela/internal/pipeline"
)

const replPrompt = "> "

// repl runs one program per input line on a shared VM. Errors are reported
// and the session continues.
func (a *app) repl() int {
	b := a.newBackend()
	scanner := bufio.NewScanner(a.stdin)

	for {
		if a.interactive {
			fmt.Fprint(a.stdout, replPrompt)
		}
		if !scanner.Scan() {
			break
		}

		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		ctx := pipeline.NewPipelineContext(line)
		a.execute(ctx, b)
	}

	if a.interactive {
		fmt.Fprintln(a.stdout)
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(a.stderr, "Error reading input: %s\n", err)
		return config.ExitIOError
	}
	return 0
}
