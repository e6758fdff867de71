package vm

import (
	"fmt"
	"strings"
)

// Disassemble returns a human-readable representation of the bytecode
func Disassemble(chunk *Chunk, name string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("== %s ==\n", name))

	offset := 0
	for offset < len(chunk.Code) {
		offset = DisassembleInstruction(&sb, chunk, offset)
	}

	return sb.String()
}

// DisassembleInstruction writes the instruction at offset and returns the
// offset of the next one.
func DisassembleInstruction(sb *strings.Builder, chunk *Chunk, offset int) int {
	sb.WriteString(fmt.Sprintf("%04d ", offset))

	line := chunk.GetLine(offset)
	if offset > 0 && line == chunk.GetLine(offset-1) {
		sb.WriteString("   | ")
	} else {
		sb.WriteString(fmt.Sprintf("%4d ", line))
	}

	op := Opcode(chunk.Code[offset])

	switch op {
	case OP_CONSTANT, OP_CONSTANT_LONG:
		return constantInstruction(sb, op.String(), chunk, offset)

	case OP_NIL, OP_TRUE, OP_FALSE,
		OP_ADD, OP_SUBTRACT, OP_MULTIPLY, OP_DIVIDE, OP_NEGATE,
		OP_NOT, OP_RETURN:
		return simpleInstruction(sb, op.String(), offset)

	default:
		sb.WriteString(fmt.Sprintf("Unknown opcode %d\n", byte(op)))
		return offset + 1
	}
}

func simpleInstruction(sb *strings.Builder, name string, offset int) int {
	sb.WriteString(name + "\n")
	return offset + 1
}

func constantInstruction(sb *strings.Builder, name string, chunk *Chunk, offset int) int {
	idx, size, err := chunk.ReadConstantIndex(offset)
	if err != nil {
		sb.WriteString(fmt.Sprintf("%-16s <truncated>\n", name))
		return len(chunk.Code)
	}
	value := "<invalid>"
	if idx < len(chunk.Constants) {
		value = chunk.Constants[idx].Inspect()
	}
	sb.WriteString(fmt.Sprintf("%-16s %4d '%s'\n", name, idx, value))
	return offset + size
}
