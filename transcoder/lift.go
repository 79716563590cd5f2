package transcoder

import (
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/wasm-hostcall/errors"
	"github.com/wippyai/wasm-hostcall/resource"
	"github.com/wippyai/wasm-hostcall/wasm"
)

// Lift converts a raw stack slot of the given kind into a Go value:
// int32, int64, float32, float64, or the host object behind an externref
// (nil for the null reference). Float bits are kept as is.
func Lift(raw uint64, kind wasm.ValType, refs RefTable) (any, error) {
	return lift(raw, kind, refs, errors.SideNone, errors.NoPosition)
}

// LiftValues lifts raw slots positionally. Errors name the offending position.
func LiftValues(side errors.Side, kinds []wasm.ValType, raw []uint64, refs RefTable) ([]any, error) {
	if len(raw) != len(kinds) {
		return nil, errors.Arity(side, len(raw), len(kinds))
	}
	out := make([]any, len(kinds))
	for i, k := range kinds {
		v, err := lift(raw[i], k, refs, side, i)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func lift(raw uint64, kind wasm.ValType, refs RefTable, side errors.Side, pos int) (any, error) {
	switch kind {
	case wasm.ValI32:
		return api.DecodeI32(raw), nil
	case wasm.ValI64:
		return int64(raw), nil
	case wasm.ValF32:
		return api.DecodeF32(raw), nil
	case wasm.ValF64:
		return api.DecodeF64(raw), nil
	case wasm.ValExtern:
		if raw == 0 {
			return nil, nil
		}
		if refs == nil {
			return nil, liftError(side, pos, kind).Detail("no reference table to resolve handle %d", raw).Build()
		}
		v, ok := refs.Get(resource.Handle(raw))
		if !ok {
			return nil, liftError(side, pos, kind).Detail("unknown externref handle %d", raw).Build()
		}
		return v, nil
	}
	return nil, errors.New(phaseFor(side), errors.KindUnsupported).
		At(side, pos).
		WasmType(kind.String()).
		Detail("value kind cannot cross the host boundary").
		Build()
}

func liftError(side errors.Side, pos int, kind wasm.ValType) *errors.Builder {
	return errors.New(phaseFor(side), errors.KindInvalidData).At(side, pos).WasmType(kind.String())
}

func phaseFor(side errors.Side) errors.Phase {
	if side == errors.SideResults {
		return errors.PhaseReturn
	}
	return errors.PhaseCall
}
