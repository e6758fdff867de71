package vm

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/funvibe/vela/internal/config"
	"github.com/funvibe/vela/internal/logging"
)

// Engine invariant violations. They are raised with panic: a chunk built by
// the compiler never triggers them, so seeing one means the bytecode or the
// VM itself is broken. Callers that load untrusted chunks should Validate
// them first or recover.
var (
	ErrStackOverflow     = errors.New("stack overflow")
	ErrStackUnderflow    = errors.New("stack underflow")
	ErrTruncatedBytecode = errors.New("truncated bytecode")
	ErrInvalidConstant   = errors.New("invalid constant index")
	ErrUnknownOpcode     = errors.New("unknown opcode")
)

// InterpretResult is the outcome of Interpret
type InterpretResult int

const (
	InterpretOk InterpretResult = iota
	InterpretCompileError
	InterpretRuntimeError
)

func (r InterpretResult) String() string {
	switch r {
	case InterpretOk:
		return "ok"
	case InterpretCompileError:
		return "compile error"
	case InterpretRuntimeError:
		return "runtime error"
	default:
		return "unknown"
	}
}

// RuntimeError is a type error raised by the program being run.
type RuntimeError struct {
	Message string
	Line    int
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s\n[line %d] in script", e.Message, e.Line)
}

// VM is the virtual machine that executes bytecode
type VM struct {
	stack []Value // fixed capacity, never grows
	sp    int     // Stack pointer (points to next free slot)

	chunk *Chunk
	ip    int

	lastValue Value

	errOut    io.Writer // diagnostics and runtime errors from Interpret
	trace     io.Writer // nil disables execution tracing
	printCode bool
}

// New creates a VM with the default stack capacity
func New() *VM {
	return &VM{
		stack:     make([]Value, config.DefaultStackMax),
		lastValue: NilVal(),
		errOut:    os.Stderr,
	}
}

// NewWithSettings creates a VM configured from s
func NewWithSettings(s *config.Settings) *VM {
	vm := New()
	vm.SetStackMax(s.StackMax)
	vm.SetPrintCode(s.PrintCode)
	if s.TraceExecution {
		vm.SetTraceOutput(os.Stderr)
	}
	return vm
}

// SetStackMax replaces the operand stack with one of capacity n.
// Non-positive values select the default.
func (vm *VM) SetStackMax(n int) {
	if n <= 0 {
		n = config.DefaultStackMax
	}
	vm.stack = make([]Value, n)
	vm.sp = 0
}

// SetErrorOutput sets where Interpret reports compile and runtime errors
func (vm *VM) SetErrorOutput(w io.Writer) {
	vm.errOut = w
}

// SetTraceOutput enables execution tracing to w; nil disables it
func (vm *VM) SetTraceOutput(w io.Writer) {
	vm.trace = w
}

// SetPrintCode makes Interpret log the disassembly of each compiled chunk
func (vm *VM) SetPrintCode(enabled bool) {
	vm.printCode = enabled
}

// LastValue returns the result of the last successful execution
func (vm *VM) LastValue() Value {
	return vm.lastValue
}

// StackSize returns the number of values currently on the stack
func (vm *VM) StackSize() int {
	return vm.sp
}

// Interpret compiles source and runs it. Diagnostics and runtime errors are
// written to the error output; the result says which stage failed.
func (vm *VM) Interpret(source string) InterpretResult {
	compiler := NewCompiler()
	compiler.SetStackMax(len(vm.stack))
	compiler.SetPrintCode(vm.printCode)

	chunk, err := compiler.Compile(source)
	if err != nil {
		fmt.Fprintln(vm.errOut, err)
		return InterpretCompileError
	}

	if _, err := vm.Execute(chunk); err != nil {
		fmt.Fprintln(vm.errOut, err)
		return InterpretRuntimeError
	}
	return InterpretOk
}

// Execute runs chunk from its first byte. A *RuntimeError is returned for
// type errors in the program; the stack is reset and the VM stays usable.
func (vm *VM) Execute(chunk *Chunk) (Value, error) {
	vm.chunk = chunk
	vm.ip = 0
	vm.resetStack()
	defer func() { vm.chunk = nil }()

	result, err := vm.run()
	if err != nil {
		vm.resetStack()
		logging.Get("vm").Debugf("runtime error: %s", err)
		return NilVal(), err
	}
	vm.lastValue = result
	return result, nil
}

// run is the main interpreter loop
func (vm *VM) run() (Value, error) {
	for {
		if vm.trace != nil {
			vm.traceInstruction()
		}

		op := Opcode(vm.readByte())
		if op == OP_RETURN {
			if vm.sp == 0 {
				return NilVal(), nil
			}
			return vm.pop(), nil
		}
		if err := vm.executeOneOp(op); err != nil {
			return NilVal(), vm.formatError(err)
		}
	}
}

func (vm *VM) resetStack() {
	vm.sp = 0
}

func (vm *VM) traceInstruction() {
	var sb strings.Builder
	sb.WriteString("          ")
	for i := 0; i < vm.sp; i++ {
		fmt.Fprintf(&sb, "[ %s ]", vm.stack[i].Inspect())
	}
	sb.WriteString("\n")
	if vm.ip < len(vm.chunk.Code) {
		DisassembleInstruction(&sb, vm.chunk, vm.ip)
	}
	io.WriteString(vm.trace, sb.String())
}

// Stack operations
func (vm *VM) push(v Value) {
	if vm.sp >= len(vm.stack) {
		panic(ErrStackOverflow)
	}
	vm.stack[vm.sp] = v
	vm.sp++
}

func (vm *VM) pop() Value {
	if vm.sp <= 0 {
		panic(ErrStackUnderflow)
	}
	vm.sp--
	return vm.stack[vm.sp]
}

func (vm *VM) peek(distance int) Value {
	idx := vm.sp - 1 - distance
	if idx < 0 {
		panic(ErrStackUnderflow)
	}
	return vm.stack[idx]
}

// Read helpers
func (vm *VM) readByte() byte {
	if vm.ip >= len(vm.chunk.Code) {
		panic(ErrTruncatedBytecode)
	}
	b := vm.chunk.Code[vm.ip]
	vm.ip++
	return b
}

// readLongIndex reads the 3-byte big-endian operand of OP_CONSTANT_LONG
func (vm *VM) readLongIndex() int {
	high := vm.readByte()
	mid := vm.readByte()
	low := vm.readByte()
	return int(high)<<16 | int(mid)<<8 | int(low)
}

func (vm *VM) readConstant(idx int) Value {
	if idx >= len(vm.chunk.Constants) {
		panic(fmt.Errorf("%w %d", ErrInvalidConstant, idx))
	}
	return vm.chunk.Constants[idx]
}

func (vm *VM) runtimeError(format string, args ...interface{}) error {
	// Just return the formatted message - formatError will add line info
	return fmt.Errorf(format, args...)
}

// formatError attaches the line of the failing instruction
func (vm *VM) formatError(err error) error {
	return &RuntimeError{
		Message: err.Error(),
		Line:    vm.chunk.GetLine(vm.ip - 1),
	}
}
