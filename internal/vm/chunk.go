package vm

import (
	"errors"
	"fmt"

	"github.com/funvibe/vela/internal/config"
)

// ErrTooManyConstants is returned when the constant pool outgrows the
// 24-bit operand of OP_CONSTANT_LONG.
var ErrTooManyConstants = errors.New("too many constants in one chunk")

// ErrMalformedValue marks a constant whose payload does not fit its tag.
var ErrMalformedValue = errors.New("malformed value")

// LineRun says that the next Count bytes of code came from source line Line.
type LineRun struct {
	Line  int
	Count int
}

// Chunk represents a sequence of bytecode instructions
type Chunk struct {
	// Code is the bytecode instructions
	Code []byte

	// Constants pool, indexed by constant-load operands
	Constants []Value

	// Lines is the run-length encoded source line of every byte in Code.
	// The counts always add up to len(Code).
	Lines []LineRun

	// File is the source file name
	File string
}

// NewChunk creates a new empty chunk
func NewChunk() *Chunk {
	return &Chunk{
		Code:      make([]byte, 0, config.InitialArrayCapacity),
		Constants: make([]Value, 0, config.InitialArrayCapacity),
		Lines:     make([]LineRun, 0, config.InitialArrayCapacity),
	}
}

// Write adds a byte to the chunk with line info
func (c *Chunk) Write(b byte, line int) {
	c.Code = append(c.Code, b)
	if n := len(c.Lines); n > 0 && c.Lines[n-1].Line == line {
		c.Lines[n-1].Count++
		return
	}
	c.Lines = append(c.Lines, LineRun{Line: line, Count: 1})
}

// WriteOp writes an opcode to the chunk
func (c *Chunk) WriteOp(op Opcode, line int) {
	c.Write(byte(op), line)
}

// AddConstant adds a constant to the pool and returns its index
func (c *Chunk) AddConstant(value Value) int {
	c.Constants = append(c.Constants, value)
	return len(c.Constants) - 1
}

// WriteConstant adds value to the pool and emits the load for it:
// OP_CONSTANT with a 1-byte index up to 255, OP_CONSTANT_LONG with a
// 3-byte big-endian index above that. The pool is left untouched when it
// is already full.
func (c *Chunk) WriteConstant(value Value, line int) (int, error) {
	if len(c.Constants) > config.MaxLongConstant {
		return 0, ErrTooManyConstants
	}
	idx := c.AddConstant(value)
	c.WriteConstantIndex(idx, line)
	return idx, nil
}

// WriteConstantIndex emits the load instruction for an existing pool index.
func (c *Chunk) WriteConstantIndex(idx int, line int) {
	if idx <= config.MaxShortConstant {
		c.WriteOp(OP_CONSTANT, line)
		c.Write(byte(idx), line)
		return
	}
	c.WriteOp(OP_CONSTANT_LONG, line)
	c.Write(byte(idx>>16), line)
	c.Write(byte(idx>>8), line)
	c.Write(byte(idx), line)
}

// ReadConstantIndex decodes the pool index of the constant load at offset
// and returns it with the instruction's total length in bytes.
func (c *Chunk) ReadConstantIndex(offset int) (idx int, size int, err error) {
	if offset < 0 || offset >= len(c.Code) {
		return 0, 0, fmt.Errorf("offset %d out of range", offset)
	}
	op := Opcode(c.Code[offset])
	width := OperandWidth(op)
	if op != OP_CONSTANT && op != OP_CONSTANT_LONG {
		return 0, 0, fmt.Errorf("%s at offset %d is not a constant load", op, offset)
	}
	if offset+width >= len(c.Code) {
		return 0, 0, fmt.Errorf("%s at offset %d: %w", op, offset, ErrTruncatedBytecode)
	}
	for i := 1; i <= width; i++ {
		idx = idx<<8 | int(c.Code[offset+i])
	}
	return idx, 1 + width, nil
}

// GetLine returns the source line of the byte at offset, or -1 if offset is
// outside the code. It walks the runs, subtracting each run's length until
// the offset falls inside one.
func (c *Chunk) GetLine(offset int) int {
	if offset < 0 {
		return -1
	}
	for _, run := range c.Lines {
		if offset < run.Count {
			return run.Line
		}
		offset -= run.Count
	}
	return -1
}

// Len returns the number of bytes in the chunk
func (c *Chunk) Len() int {
	return len(c.Code)
}

// Validate checks the structural invariants the VM relies on: the line
// table covers the code exactly, every opcode is known, no instruction is
// cut short, every constant operand points into the pool and every
// constant is a well-formed value.
func (c *Chunk) Validate() error {
	for i, v := range c.Constants {
		if !v.wellFormed() {
			return fmt.Errorf("constant %d: %w (type %d, data %#x)", i, ErrMalformedValue, v.Type, v.Data)
		}
	}

	total := 0
	for i, run := range c.Lines {
		if run.Count <= 0 {
			return fmt.Errorf("line run %d has non-positive length %d", i, run.Count)
		}
		total += run.Count
	}
	if total != len(c.Code) {
		return fmt.Errorf("line table covers %d bytes, code has %d", total, len(c.Code))
	}

	for offset := 0; offset < len(c.Code); {
		op := Opcode(c.Code[offset])
		if !op.Valid() {
			return fmt.Errorf("offset %d: %w %d", offset, ErrUnknownOpcode, op)
		}
		if op == OP_CONSTANT || op == OP_CONSTANT_LONG {
			idx, size, err := c.ReadConstantIndex(offset)
			if err != nil {
				return err
			}
			if idx >= len(c.Constants) {
				return fmt.Errorf("offset %d: %w %d (pool size %d)", offset, ErrInvalidConstant, idx, len(c.Constants))
			}
			offset += size
			continue
		}
		offset++
	}
	return nil
}
