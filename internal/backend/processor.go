package backend

import (
	"errors"
	"io"

	"github.com/funvibe/vela/internal/diagnostics"
	"github.com/funvibe/vela/internal/logging"
	"github.com/funvibe/vela/internal/pipeline"
	"github.com/funvibe/vela/internal/vm"
)

// CompilerProcessor compiles ctx.SourceCode into ctx.Chunk
type CompilerProcessor struct {
	PrintCode bool

	// StackMax is the stack capacity of the VM that will run the chunk;
	// zero means the default.
	StackMax int
}

func (p *CompilerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	// A precompiled chunk needs no compilation
	if ctx.Chunk != nil || ctx.Failed() {
		return ctx
	}

	compiler := vm.NewCompiler()
	compiler.SetFile(ctx.FilePath)
	compiler.SetPrintCode(p.PrintCode)
	compiler.SetStackMax(p.StackMax)

	chunk, err := compiler.Compile(ctx.SourceCode)
	if err != nil {
		var compileErr *vm.CompileError
		if errors.As(err, &compileErr) {
			ctx.Errors = append(ctx.Errors, compileErr.Diagnostics...)
		} else {
			ctx.Errors = append(ctx.Errors, &diagnostics.DiagnosticError{
				Code:    diagnostics.ErrP001,
				Message: err.Error(),
				File:    ctx.FilePath,
			})
		}
		return ctx
	}

	logging.Get("compiler").Debugf("compiled %d bytes, %d constants", chunk.Len(), len(chunk.Constants))
	ctx.Chunk = chunk
	return ctx
}

// DisassembleProcessor writes the disassembly of ctx.Chunk instead of running it
type DisassembleProcessor struct {
	Backend *VMBackend
	Out     io.Writer
}

func (p *DisassembleProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Failed() {
		return ctx
	}
	listing, err := p.Backend.Disassemble(ctx)
	if err != nil {
		return ctx
	}
	io.WriteString(p.Out, listing)
	return ctx
}

// ExecutionProcessor implements pipeline.Processor to run a Backend
type ExecutionProcessor struct {
	Backend Backend
}

// NewExecutionProcessor creates a new pipeline step for the given backend
func NewExecutionProcessor(b Backend) *ExecutionProcessor {
	return &ExecutionProcessor{Backend: b}
}

func (p *ExecutionProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	// If previous steps failed, don't run execution
	if ctx.Chunk == nil || ctx.Failed() {
		return ctx
	}

	result, err := p.Backend.Run(ctx)
	if err != nil {
		p.handleError(ctx, err)
		return ctx
	}

	ctx.Result = result
	ctx.HasResult = true
	return ctx
}

func (p *ExecutionProcessor) handleError(ctx *pipeline.PipelineContext, err error) {
	var rtErr *vm.RuntimeError
	if errors.As(err, &rtErr) {
		ctx.Errors = append(ctx.Errors, diagnostics.NewRuntimeError(rtErr.Line, rtErr.Message))
		return
	}
	// Location might be missing if it's a generic backend error
	ctx.Errors = append(ctx.Errors, diagnostics.NewRuntimeError(0, err.Error()))
}
