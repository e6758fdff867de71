// Package vela embeds the vela compiler and VM in Go programs.
package vela

import (
	"fmt"
	"os"
	"strings"

	"github.com/funvibe/vela/internal/backend"
	"github.com/funvibe/vela/internal/config"
	"github.com/funvibe/vela/internal/pipeline"
	"github.com/funvibe/vela/internal/vm"
)

// VM wraps the underlying vela VM and provides a high-level embedding API.
type VM struct {
	backend    *backend.VMBackend
	marshaller *Marshaller
	stackMax   int
}

// New creates a new vela VM instance with the default settings.
func New() *VM {
	return NewWithStackMax(config.DefaultStackMax)
}

// NewWithStackMax creates a VM whose operand stack holds n values.
func NewWithStackMax(n int) *VM {
	settings := config.Default()
	settings.StackMax = n
	return &VM{
		backend:    backend.NewVM(settings),
		marshaller: NewMarshaller(),
		stackMax:   n,
	}
}

// Eval compiles and runs code, returning the value of the expression as
// float64, bool or nil.
func (v *VM) Eval(code string) (interface{}, error) {
	ctx := pipeline.NewPipelineContext(code)
	return v.run(ctx)
}

// LoadFile runs a source file or a compiled chunk file.
func (v *VM) LoadFile(path string) (interface{}, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	ctx := pipeline.NewPipelineContext(string(content))
	ctx.FilePath = path
	if vm.IsChunkFile(content) {
		chunk, err := vm.DeserializeChunk(content)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
		ctx.Chunk = chunk
	}
	return v.run(ctx)
}

// Compile compiles code into the bytes of a chunk file, ready for LoadFile
// or `vela -r`.
func (v *VM) Compile(code string) ([]byte, error) {
	ctx := pipeline.NewPipelineContext(code)
	ctx = pipeline.New(&backend.CompilerProcessor{StackMax: v.stackMax}).Run(ctx)
	if ctx.Failed() {
		return nil, formatErrors(ctx)
	}
	return vm.SerializeChunk(ctx.Chunk)
}

func (v *VM) run(ctx *pipeline.PipelineContext) (interface{}, error) {
	p := pipeline.New(
		&backend.CompilerProcessor{StackMax: v.stackMax},
		backend.NewExecutionProcessor(v.backend),
	)
	ctx = p.Run(ctx)

	if ctx.Failed() {
		return nil, formatErrors(ctx)
	}
	return v.marshaller.FromValue(ctx.Result, nil)
}

func formatErrors(ctx *pipeline.PipelineContext) error {
	if ctx.HasRuntimeError() {
		return fmt.Errorf("%s", ctx.Errors[0].Error())
	}
	var sb strings.Builder
	sb.WriteString("Errors during compilation:\n")
	for _, e := range ctx.Errors {
		sb.WriteString(e.Error())
		sb.WriteString("\n")
	}
	return fmt.Errorf("%s", sb.String())
}
