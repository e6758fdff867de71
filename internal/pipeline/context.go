package pipeline

import (
	"github.com/funvibe/vela/internal/diagnostics"
	"github.com/funvibe/vela/internal/vm"
)

// Processor is one pipeline stage.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// PipelineContext carries a program through the stages.
type PipelineContext struct {
	SourceCode string
	FilePath   string

	// Chunk is set by the compiler stage, or up front when running a
	// precompiled chunk file.
	Chunk *vm.Chunk

	// Errors collects compile diagnostics and runtime errors in order.
	Errors []*diagnostics.DiagnosticError

	// Result is the value of the program once it ran without errors.
	Result    vm.Value
	HasResult bool
}

func NewPipelineContext(source string) *PipelineContext {
	return &PipelineContext{
		SourceCode: source,
		Result:     vm.NilVal(),
	}
}

// Failed reports whether any stage recorded an error.
func (ctx *PipelineContext) Failed() bool {
	return len(ctx.Errors) > 0
}

// HasRuntimeError reports whether execution failed, as opposed to
// compilation.
func (ctx *PipelineContext) HasRuntimeError() bool {
	for _, err := range ctx.Errors {
		if err.Code == diagnostics.ErrR001 {
			return true
		}
	}
	return false
}
