package wasm

import (
	"fmt"
	"strings"

	"go.bytecodealliance.org/wit"
)

// ParseValType parses a core value type name ("i32", "externref") or a WIT
// primitive type name, which is flattened to the core type it lowers to
// ("s32", "u8", "bool" and "char" -> i32, "u64" -> i64).
func ParseValType(s string) (ValType, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "i32":
		return ValI32, nil
	case "i64":
		return ValI64, nil
	case "f32":
		return ValF32, nil
	case "f64":
		return ValF64, nil
	case "externref", "extern", "ref":
		return ValExtern, nil
	}

	t, err := wit.ParseType(s)
	if err != nil {
		return 0, fmt.Errorf("parse value type %q: %w", s, err)
	}
	return FromWIT(t)
}

// FromWIT returns the core value type a single-value WIT primitive lowers to.
func FromWIT(t wit.Type) (ValType, error) {
	switch t.(type) {
	case wit.Bool, wit.U8, wit.S8, wit.U16, wit.S16, wit.U32, wit.S32, wit.Char:
		return ValI32, nil
	case wit.U64, wit.S64:
		return ValI64, nil
	case wit.F32:
		return ValF32, nil
	case wit.F64:
		return ValF64, nil
	default:
		return 0, fmt.Errorf("WIT type %T does not lower to a single core value", t)
	}
}

// ParseFuncType parses "(i32, s64) -> f32", "(externref) -> (i32, i32)" or
// "() -> ()". A missing arrow means no results.
func ParseFuncType(s string) (FuncType, error) {
	s = strings.TrimSpace(s)
	paramsStr, resultsStr, hasArrow := strings.Cut(s, "->")

	params, err := parseTypeList(paramsStr)
	if err != nil {
		return FuncType{}, fmt.Errorf("params of %q: %w", s, err)
	}

	var results []ValType
	if hasArrow {
		results, err = parseTypeList(resultsStr)
		if err != nil {
			return FuncType{}, fmt.Errorf("results of %q: %w", s, err)
		}
	}

	return FuncType{Params: params, Results: results}, nil
}

func parseTypeList(s string) ([]ValType, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "(") {
		if !strings.HasSuffix(s, ")") {
			return nil, fmt.Errorf("unbalanced parentheses in %q", s)
		}
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	if s == "" {
		return nil, nil
	}

	var types []ValType
	for _, part := range strings.Split(s, ",") {
		// Accept named parameters: "a: s32"
		if idx := strings.LastIndex(part, ":"); idx != -1 {
			part = part[idx+1:]
		}
		t, err := ParseValType(part)
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, nil
}
