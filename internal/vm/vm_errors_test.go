package vm

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

// runVMExpectError compiles and runs the input, expecting a runtime error.
// Returns the error. Fails the test if no error occurs.
func runVMExpectError(t *testing.T, input string) *RuntimeError {
	t.Helper()

	compiler := NewCompiler()
	chunk, err := compiler.Compile(input)
	if err != nil {
		t.Fatalf("compilation error (expected runtime error, not compile error): %s", err)
	}

	vm := New()
	_, err = vm.Execute(chunk)
	if err == nil {
		t.Fatalf("expected runtime error, but code ran successfully")
	}

	var rtErr *RuntimeError
	if !errors.As(err, &rtErr) {
		t.Fatalf("expected *RuntimeError, got %T: %v", err, err)
	}
	if vm.StackSize() != 0 {
		t.Errorf("stack not reset after runtime error: %d values left", vm.StackSize())
	}
	return rtErr
}

// runVMExpectErrorContains is a convenience wrapper that also checks the error
// message contains the expected substring.
func runVMExpectErrorContains(t *testing.T, input, wantSubstr string) {
	t.Helper()
	errMsg := runVMExpectError(t, input).Error()
	if !strings.Contains(errMsg, wantSubstr) {
		t.Errorf("error %q should contain %q", errMsg, wantSubstr)
	}
}

// expectPanic runs fn and checks that it panics with an error matching target.
func expectPanic(t *testing.T, target error, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		if r == nil {
			t.Fatalf("expected panic with %v, got none", target)
		}
		err, ok := r.(error)
		if !ok {
			t.Fatalf("panic value is %T (%v), want error", r, r)
		}
		if !errors.Is(err, target) {
			t.Fatalf("panic %v, want %v", err, target)
		}
	}()
	fn()
}

// =============================================================================
// Type mismatch in arithmetic
// =============================================================================

func TestVMError_TypeMismatch(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"add bool", "1 + true", "Operands must be numbers."},
		{"bool add", "false + 1", "Operands must be numbers."},
		{"sub nil", "nil - 1", "Operands must be numbers."},
		{"mul nil", "2 * null", "Operands must be numbers."},
		{"div bools", "true / false", "Operands must be numbers."},
		{"nested", "(1 + 2) * (3 - nil)", "Operands must be numbers."},
		{"negate bool", "-true", "Operand must be a number."},
		{"negate nil", "-nil", "Operand must be a number."},
		{"negate not", "-!1", "Operand must be a number."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runVMExpectErrorContains(t, tt.input, tt.want)
		})
	}
}

func TestVMError_Format(t *testing.T) {
	err := runVMExpectError(t, "1 + true")
	want := "Operands must be numbers.\n[line 1] in script"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}

func TestVMError_ReportsLine(t *testing.T) {
	tests := []struct {
		input string
		line  int
	}{
		{"1 + true", 1},
		{"1 +\n\ntrue", 3},
		{"\n\n-\nnil", 4},
		{"(1\n+\n2) * false", 3},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := runVMExpectError(t, tt.input)
			if err.Line != tt.line {
				t.Errorf("line: got %d, want %d", err.Line, tt.line)
			}
		})
	}
}

func TestVMError_VMReusableAfterRuntimeError(t *testing.T) {
	vm := New()

	chunk, err := Compile("1 + nil")
	if err != nil {
		t.Fatalf("compilation error: %s", err)
	}
	if _, err := vm.Execute(chunk); err == nil {
		t.Fatal("expected runtime error")
	}

	chunk, err = Compile("2 * 21")
	if err != nil {
		t.Fatalf("compilation error: %s", err)
	}
	result, err := vm.Execute(chunk)
	if err != nil {
		t.Fatalf("runtime error after recovery: %s", err)
	}
	testNumberValue(t, result, 42)
}

// =============================================================================
// Engine invariants: malformed chunks panic
// =============================================================================

func TestVMInvariant_StackOverflow(t *testing.T) {
	vm := New()
	vm.SetStackMax(3)

	chunk, err := Compile("1 + (2 + (3 + 4))")
	if err != nil {
		t.Fatalf("compilation error: %s", err)
	}
	expectPanic(t, ErrStackOverflow, func() {
		vm.Execute(chunk)
	})

	// the same program fits a larger stack
	vm.SetStackMax(4)
	result, err := vm.Execute(chunk)
	if err != nil {
		t.Fatalf("runtime error: %s", err)
	}
	testNumberValue(t, result, 10)
}

func TestInterpretRejectsCodeDeeperThanStack(t *testing.T) {
	var errOut bytes.Buffer
	vm := New()
	vm.SetErrorOutput(&errOut)
	vm.SetStackMax(3)

	if got := vm.Interpret("1 + (2 + (3 + 4))"); got != InterpretCompileError {
		t.Fatalf("got %s, want %s", got, InterpretCompileError)
	}
	if !strings.Contains(errOut.String(), "Expression too complex.") {
		t.Errorf("error output %q", errOut.String())
	}
	if got := vm.Interpret("1 + (2 + 3)"); got != InterpretOk {
		t.Fatalf("three slots should be enough, got %s", got)
	}
	testNumberValue(t, vm.LastValue(), 6)
}

func TestVMInvariant_MalformedChunks(t *testing.T) {
	tests := []struct {
		name      string
		code      []byte
		constants []Value
		want      error
	}{
		{"empty", nil, nil, ErrTruncatedBytecode},
		{"missing operand", []byte{byte(OP_CONSTANT)}, nil, ErrTruncatedBytecode},
		{"short long operand", []byte{byte(OP_CONSTANT_LONG), 0, 0}, nil, ErrTruncatedBytecode},
		{"no return", []byte{byte(OP_NIL)}, nil, ErrTruncatedBytecode},
		{"bad constant", []byte{byte(OP_CONSTANT), 5, byte(OP_RETURN)}, []Value{NilVal()}, ErrInvalidConstant},
		{"bad long constant", []byte{byte(OP_CONSTANT_LONG), 0, 1, 0, byte(OP_RETURN)}, nil, ErrInvalidConstant},
		{"unknown opcode", []byte{0xEE, byte(OP_RETURN)}, nil, ErrUnknownOpcode},
		{"add underflow", []byte{byte(OP_TRUE), byte(OP_ADD), byte(OP_RETURN)}, nil, ErrStackUnderflow},
		{"negate underflow", []byte{byte(OP_NEGATE), byte(OP_RETURN)}, nil, ErrStackUnderflow},
		{"not underflow", []byte{byte(OP_NOT), byte(OP_RETURN)}, nil, ErrStackUnderflow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunk := NewChunk()
			for _, b := range tt.code {
				chunk.Write(b, 1)
			}
			chunk.Constants = append(chunk.Constants, tt.constants...)

			expectPanic(t, tt.want, func() {
				New().Execute(chunk)
			})
		})
	}
}

func TestVMInvariant_RecoveredVMIsReusable(t *testing.T) {
	vm := New()

	bad := NewChunk()
	bad.WriteOp(OP_ADD, 1)
	expectPanic(t, ErrStackUnderflow, func() {
		vm.Execute(bad)
	})

	result, err := vm.Execute(mustCompile(t, "1 + 1"))
	if err != nil {
		t.Fatalf("runtime error: %s", err)
	}
	testNumberValue(t, result, 2)
}

func mustCompile(t *testing.T, source string) *Chunk {
	t.Helper()
	chunk, err := Compile(source)
	if err != nil {
		t.Fatalf("compilation error: %s", err)
	}
	return chunk
}
