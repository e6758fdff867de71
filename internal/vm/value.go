package vm

import (
	"math"
	"strconv"
)

// ValueType identifies the type of value stored in the Value struct
type ValueType uint8

const (
	ValBool ValueType = iota
	ValNil
	ValNumber
)

func (t ValueType) String() string {
	switch t {
	case ValBool:
		return "bool"
	case ValNil:
		return "nil"
	case ValNumber:
		return "number"
	default:
		return "unknown"
	}
}

// Value is a tagged union copied by value.
// Data holds float64 bits for numbers and 0/1 for booleans.
type Value struct {
	Type ValueType
	Data uint64
}

// Constructors

func NilVal() Value {
	return Value{Type: ValNil}
}

func NumberVal(v float64) Value {
	return Value{Type: ValNumber, Data: math.Float64bits(v)}
}

func BoolVal(v bool) Value {
	var data uint64
	if v {
		data = 1
	}
	return Value{Type: ValBool, Data: data}
}

// Accessors

func (v Value) AsNumber() float64 {
	return math.Float64frombits(v.Data)
}

func (v Value) AsBool() bool {
	return v.Data == 1
}

// wellFormed reports whether the payload is one the constructors produce:
// booleans hold 0 or 1 and nil holds nothing.
func (v Value) wellFormed() bool {
	switch v.Type {
	case ValBool:
		return v.Data <= 1
	case ValNil:
		return v.Data == 0
	case ValNumber:
		return true
	default:
		return false
	}
}

// Type checking helpers

func (v Value) IsNumber() bool { return v.Type == ValNumber }
func (v Value) IsBool() bool   { return v.Type == ValBool }
func (v Value) IsNil() bool    { return v.Type == ValNil }

// Equals reports whether both values have the same tag and payload.
// Numbers compare with IEEE semantics, so NaN is never equal to itself.
func (v Value) Equals(other Value) bool {
	if v.Type != other.Type {
		return false
	}
	switch v.Type {
	case ValBool:
		return v.Data == other.Data
	case ValNumber:
		return v.AsNumber() == other.AsNumber()
	case ValNil:
		return true
	default:
		return false
	}
}

// IsFalsey: nil and false are falsey, every other value (including 0) is truthy.
func IsFalsey(v Value) bool {
	return v.IsNil() || (v.IsBool() && !v.AsBool())
}

// Inspect returns string representation
func (v Value) Inspect() string {
	switch v.Type {
	case ValNumber:
		return strconv.FormatFloat(v.AsNumber(), 'g', -1, 64)
	case ValBool:
		return strconv.FormatBool(v.AsBool())
	case ValNil:
		return "nil"
	default:
		return "<?>"
	}
}

func (v Value) String() string {
	return v.Inspect()
}
