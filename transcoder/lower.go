package transcoder

import (
	"fmt"
	"math"
	"reflect"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/wasm-hostcall/errors"
	"github.com/wippyai/wasm-hostcall/wasm"
)

// Lower converts a Go value into a raw stack slot of the given kind.
// Integers are range checked, never truncated. A float64 lowers to f32
// only when the conversion is exact. Any value lowers to externref: nil is
// the null reference, everything else is inserted into refs.
func Lower(v any, kind wasm.ValType, refs RefTable) (uint64, error) {
	return lower(v, kind, refs, errors.SideNone, errors.NoPosition)
}

// LowerValues lowers values positionally into out, which must have room for
// len(kinds) slots. Errors name the offending position.
func LowerValues(side errors.Side, kinds []wasm.ValType, values []any, refs RefTable, out []uint64) error {
	if len(values) != len(kinds) {
		return errors.Arity(side, len(values), len(kinds))
	}
	for i, k := range kinds {
		raw, err := lower(values[i], k, refs, side, i)
		if err != nil {
			return err
		}
		out[i] = raw
	}
	return nil
}

func lower(v any, kind wasm.ValType, refs RefTable, side errors.Side, pos int) (uint64, error) {
	if tv, ok := v.(Value); ok {
		return lowerValue(tv, kind, refs, side, pos)
	}

	switch kind {
	case wasm.ValI32:
		n, ok, inRange := toInt32(v)
		if !ok {
			return 0, mismatch(side, pos, v, kind)
		}
		if !inRange {
			return 0, errors.Overflow(side, pos, v, kind.String())
		}
		return api.EncodeI32(n), nil

	case wasm.ValI64:
		n, ok, inRange := toInt64(v)
		if !ok {
			return 0, mismatch(side, pos, v, kind)
		}
		if !inRange {
			return 0, errors.Overflow(side, pos, v, kind.String())
		}
		return api.EncodeI64(n), nil

	case wasm.ValF32:
		switch f := builtinNumber(v).(type) {
		case float32:
			return api.EncodeF32(f), nil
		case float64:
			narrow := float32(f)
			if float64(narrow) != f && !math.IsNaN(f) {
				return 0, errors.New(phaseFor(side), errors.KindTypeMismatch).
					At(side, pos).
					GoType(goTypeName(v)).
					WasmType(kind.String()).
					Value(v).
					Detail("%v is not exactly representable as f32", f).
					Build()
			}
			return api.EncodeF32(narrow), nil
		}
		return 0, mismatch(side, pos, v, kind)

	case wasm.ValF64:
		switch f := builtinNumber(v).(type) {
		case float64:
			return api.EncodeF64(f), nil
		case float32:
			return api.EncodeF64(float64(f)), nil
		}
		return 0, mismatch(side, pos, v, kind)

	case wasm.ValExtern:
		return lowerRef(v, refs, side, pos)
	}

	return 0, errors.New(phaseFor(side), errors.KindUnsupported).
		At(side, pos).
		WasmType(kind.String()).
		Detail("value kind cannot cross the host boundary").
		Build()
}

func lowerValue(v Value, kind wasm.ValType, refs RefTable, side errors.Side, pos int) (uint64, error) {
	if v.Kind != kind {
		return 0, errors.TypeConversion(side, pos, "transcoder.Value("+v.Kind.String()+")", kind.String())
	}
	if kind == wasm.ValExtern {
		return lowerRef(v.ref, refs, side, pos)
	}
	return v.bits, nil
}

func lowerRef(v any, refs RefTable, side errors.Side, pos int) (uint64, error) {
	if v == nil {
		return 0, nil
	}
	if refs == nil {
		return 0, errors.New(phaseFor(side), errors.KindInvalidInput).
			At(side, pos).
			WasmType(wasm.ValExtern.String()).
			Detail("no reference table to store %T", v).
			Build()
	}
	h, err := refs.Intern(v)
	if err != nil {
		return 0, errors.New(phaseFor(side), errors.KindInvalidInput).
			At(side, pos).
			WasmType(wasm.ValExtern.String()).
			Cause(err).
			Build()
	}
	return uint64(h), nil
}

func mismatch(side errors.Side, pos int, v any, kind wasm.ValType) *errors.Error {
	err := errors.TypeConversion(side, pos, goTypeName(v), kind.String())
	err.Value = v
	return err
}

func goTypeName(v any) string {
	if v == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%T", v)
}

// builtinNumber converts a value of a named numeric type, such as
// time.Duration, to the built-in type of the same kind. Other values are
// returned unchanged.
func builtinNumber(v any) any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	if rv.Type().PkgPath() == "" {
		return v
	}
	switch rv.Kind() {
	case reflect.Int:
		return int(rv.Int())
	case reflect.Int8:
		return int8(rv.Int())
	case reflect.Int16:
		return int16(rv.Int())
	case reflect.Int32:
		return int32(rv.Int())
	case reflect.Int64:
		return rv.Int()
	case reflect.Uint:
		return uint(rv.Uint())
	case reflect.Uint8:
		return uint8(rv.Uint())
	case reflect.Uint16:
		return uint16(rv.Uint())
	case reflect.Uint32:
		return uint32(rv.Uint())
	case reflect.Uint64:
		return rv.Uint()
	case reflect.Float32:
		return float32(rv.Float())
	case reflect.Float64:
		return rv.Float()
	}
	return v
}

// toInt32 reports (value, is an integer, fits in i32).
// Unsigned inputs up to MaxUint32 are accepted as bit patterns.
func toInt32(v any) (int32, bool, bool) {
	switch n := builtinNumber(v).(type) {
	case int32:
		return n, true, true
	case uint32:
		return int32(n), true, true
	case int8:
		return int32(n), true, true
	case int16:
		return int32(n), true, true
	case uint8:
		return int32(n), true, true
	case uint16:
		return int32(n), true, true
	case int:
		return int32(n), true, n >= math.MinInt32 && n <= math.MaxInt32
	case int64:
		return int32(n), true, n >= math.MinInt32 && n <= math.MaxInt32
	case uint:
		return int32(uint32(n)), true, uint64(n) <= math.MaxUint32
	case uint64:
		return int32(uint32(n)), true, n <= math.MaxUint32
	}
	return 0, false, false
}

// toInt64 reports (value, is an integer, fits in i64).
func toInt64(v any) (int64, bool, bool) {
	switch n := builtinNumber(v).(type) {
	case int64:
		return n, true, true
	case uint64:
		return int64(n), true, true
	case int:
		return int64(n), true, true
	case uint:
		return int64(n), true, true
	case int32:
		return int64(n), true, true
	case uint32:
		return int64(n), true, true
	case int8:
		return int64(n), true, true
	case int16:
		return int64(n), true, true
	case uint8:
		return int64(n), true, true
	case uint16:
		return int64(n), true, true
	}
	return 0, false, false
}
