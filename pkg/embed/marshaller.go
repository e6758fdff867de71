package vela

import (
	"fmt"
	"reflect"

	"github.com/funvibe/vela/internal/vm"
)

// Marshaller handles conversion between Go and vela values.
type Marshaller struct{}

func NewMarshaller() *Marshaller {
	return &Marshaller{}
}

// ToValue converts a Go value to a vela Value. Integers and floats become
// numbers, bools become booleans, nil becomes nil.
func (m *Marshaller) ToValue(val interface{}) (vm.Value, error) {
	if val == nil {
		return vm.NilVal(), nil
	}

	// Check if already a Value
	if value, ok := val.(vm.Value); ok {
		return value, nil
	}

	v := reflect.ValueOf(val)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return vm.NilVal(), nil
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return vm.NumberVal(float64(v.Int())), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return vm.NumberVal(float64(v.Uint())), nil
	case reflect.Float32, reflect.Float64:
		return vm.NumberVal(v.Float()), nil
	case reflect.Bool:
		return vm.BoolVal(v.Bool()), nil
	default:
		return vm.NilVal(), fmt.Errorf("unsupported type for conversion: %T", val)
	}
}

// FromValue converts a vela Value to a Go value.
// targetType is optional; if provided, tries to convert to that type.
func (m *Marshaller) FromValue(value vm.Value, targetType reflect.Type) (interface{}, error) {
	// If target type is vm.Value, return as is
	if targetType != nil && targetType == reflect.TypeOf(vm.Value{}) {
		return value, nil
	}

	switch {
	case value.IsNil():
		return nil, nil

	case value.IsBool():
		if targetType != nil && targetType.Kind() != reflect.Bool && targetType.Kind() != reflect.Interface {
			return nil, fmt.Errorf("cannot convert bool to %s", targetType)
		}
		return value.AsBool(), nil

	case value.IsNumber():
		n := value.AsNumber()
		if targetType == nil {
			return n, nil
		}
		switch targetType.Kind() {
		case reflect.Float64, reflect.Interface:
			return n, nil
		case reflect.Float32:
			return float32(n), nil
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			if n != float64(int64(n)) {
				return nil, fmt.Errorf("number %v is not an integer", n)
			}
			return reflect.ValueOf(int64(n)).Convert(targetType).Interface(), nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			if n < 0 || n != float64(uint64(n)) {
				return nil, fmt.Errorf("number %v is not an unsigned integer", n)
			}
			return reflect.ValueOf(uint64(n)).Convert(targetType).Interface(), nil
		default:
			return nil, fmt.Errorf("cannot convert number to %s", targetType)
		}

	default:
		return nil, fmt.Errorf("unsupported type for conversion: %s", value.Type)
	}
}
