// Package backend runs compiled chunks for the pipeline.
package backend

import (
	"github.com/funvibe/vela/internal/pipeline"
	"github.com/funvibe/vela/internal/vm"
)

// Backend is the interface for execution backends
type Backend interface {
	// Run executes the chunk in the pipeline context and returns the result
	Run(ctx *pipeline.PipelineContext) (vm.Value, error)
}
