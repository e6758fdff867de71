// Package vm implements the vela chunk format, the single-pass compiler
// that fills it, and the stack machine that executes it.
package vm

// Opcode represents a single VM instruction
type Opcode byte

const (
	// Constants
	OP_CONSTANT      Opcode = iota // Push constant; 1-byte pool index
	OP_CONSTANT_LONG               // Push constant; 3-byte big-endian pool index

	// Literals
	OP_NIL   // Push nil
	OP_TRUE  // Push true
	OP_FALSE // Push false

	// Arithmetic
	OP_ADD      // +
	OP_SUBTRACT // -
	OP_MULTIPLY // *
	OP_DIVIDE   // /
	OP_NEGATE   // Unary minus

	// Logic
	OP_NOT // !

	// Halt
	OP_RETURN // Stop execution with the top of stack as result

	opcodeCount
)

// OpcodeNames maps opcodes to their string names (for debugging)
var OpcodeNames = map[Opcode]string{
	OP_CONSTANT:      "OP_CONSTANT",
	OP_CONSTANT_LONG: "OP_CONSTANT_LONG",

	OP_NIL:   "OP_NIL",
	OP_TRUE:  "OP_TRUE",
	OP_FALSE: "OP_FALSE",

	OP_ADD:      "OP_ADD",
	OP_SUBTRACT: "OP_SUBTRACT",
	OP_MULTIPLY: "OP_MULTIPLY",
	OP_DIVIDE:   "OP_DIVIDE",
	OP_NEGATE:   "OP_NEGATE",

	OP_NOT: "OP_NOT",

	OP_RETURN: "OP_RETURN",
}

// OperandWidth returns the number of operand bytes following op.
func OperandWidth(op Opcode) int {
	switch op {
	case OP_CONSTANT:
		return 1
	case OP_CONSTANT_LONG:
		return 3
	default:
		return 0
	}
}

// Valid reports whether op is a known opcode.
func (op Opcode) Valid() bool {
	return op < opcodeCount
}

func (op Opcode) String() string {
	if name, ok := OpcodeNames[op]; ok {
		return name
	}
	return "OP_UNKNOWN"
}
