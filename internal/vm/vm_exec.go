package vm

import "fmt"

// executeOneOp executes a single opcode (except RETURN)
func (vm *VM) executeOneOp(op Opcode) error {
	switch op {
	case OP_CONSTANT:
		vm.push(vm.readConstant(int(vm.readByte())))

	case OP_CONSTANT_LONG:
		vm.push(vm.readConstant(vm.readLongIndex()))

	case OP_NIL:
		vm.push(NilVal())

	case OP_TRUE:
		vm.push(BoolVal(true))

	case OP_FALSE:
		vm.push(BoolVal(false))

	case OP_ADD, OP_SUBTRACT, OP_MULTIPLY, OP_DIVIDE:
		if err := vm.binaryOp(op); err != nil {
			return err
		}

	case OP_NEGATE:
		if !vm.peek(0).IsNumber() {
			return vm.runtimeError("Operand must be a number.")
		}
		vm.push(NumberVal(-vm.pop().AsNumber()))

	case OP_NOT:
		vm.push(BoolVal(IsFalsey(vm.pop())))

	default:
		panic(fmt.Errorf("%w %d", ErrUnknownOpcode, byte(op)))
	}
	return nil
}

// binaryOp checks both operands before popping, so a type error leaves the
// stack as it was for the error report.
func (vm *VM) binaryOp(op Opcode) error {
	b := vm.peek(0)
	a := vm.peek(1)
	if !a.IsNumber() || !b.IsNumber() {
		return vm.runtimeError("Operands must be numbers.")
	}
	vm.pop()
	vm.pop()

	x, y := a.AsNumber(), b.AsNumber()
	var result float64
	switch op {
	case OP_ADD:
		result = x + y
	case OP_SUBTRACT:
		result = x - y
	case OP_MULTIPLY:
		result = x * y
	case OP_DIVIDE:
		result = x / y
	}
	vm.push(NumberVal(result))
	return nil
}
