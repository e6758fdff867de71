package backend

import (
	"fmt"
	"io"

	"github.com/funvibe/vela/internal/config"
	"github.com/funvibe/vela/internal/pipeline"
	"github.com/funvibe/vela/internal/vm"
)

// VMBackend executes chunks on one long-lived VM, so a REPL session keeps
// its last value between lines.
type VMBackend struct {
	machine *vm.VM
}

// NewVM creates a VM backend configured from settings
func NewVM(settings *config.Settings) *VMBackend {
	if settings == nil {
		settings = config.Default()
	}
	return &VMBackend{machine: vm.NewWithSettings(settings)}
}

// SetTraceOutput redirects execution tracing; nil disables it
func (b *VMBackend) SetTraceOutput(w io.Writer) {
	b.machine.SetTraceOutput(w)
}

// Run executes the compiled chunk
func (b *VMBackend) Run(ctx *pipeline.PipelineContext) (vm.Value, error) {
	if ctx.Chunk == nil {
		return vm.NilVal(), fmt.Errorf("no chunk to execute")
	}
	return b.machine.Execute(ctx.Chunk)
}

// Disassemble returns the bytecode disassembly for debugging
func (b *VMBackend) Disassemble(ctx *pipeline.PipelineContext) (string, error) {
	if ctx.Chunk == nil {
		return "", fmt.Errorf("no chunk to disassemble")
	}
	return vm.Disassemble(ctx.Chunk, chunkName(ctx)), nil
}

func chunkName(ctx *pipeline.PipelineContext) string {
	if ctx.FilePath != "" {
		return ctx.FilePath
	}
	if ctx.Chunk != nil && ctx.Chunk.File != "" {
		return ctx.Chunk.File
	}
	return "main"
}
