// Package logging wires commonlog for the compiler, VM and CLI.
package logging

import (
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"
)

const rootName = "vela"

// Configure sets the maximum log level from verbosity and directs output to
// path, or to stderr when path is empty.
func Configure(verbosity int, path string) {
	if path == "" {
		commonlog.Configure(verbosity, nil)
		return
	}
	commonlog.Configure(verbosity, &path)
}

// Get returns the logger for a subsystem, e.g. Get("vm") is "vela.vm".
func Get(name string) commonlog.Logger {
	if name == "" {
		return commonlog.GetLogger(rootName)
	}
	return commonlog.GetLogger(rootName + "." + name)
}
