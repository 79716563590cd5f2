package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wippyai/wasm-hostcall/wasm"
)

// parseArgs converts textual arguments to the Go values the bridge expects
// for each parameter kind.
func parseArgs(raw []string, kinds []wasm.ValType) ([]any, error) {
	if len(raw) != len(kinds) {
		return nil, fmt.Errorf("wrong number of arguments (given %d, expected %d)", len(raw), len(kinds))
	}
	args := make([]any, len(raw))
	for i, s := range raw {
		v, err := parseArg(s, kinds[i])
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		args[i] = v
	}
	return args, nil
}

func parseArg(s string, kind wasm.ValType) (any, error) {
	s = strings.TrimSpace(s)
	switch kind {
	case wasm.ValI32:
		v, err := strconv.ParseInt(s, 0, 32)
		if err != nil {
			u, uerr := strconv.ParseUint(s, 0, 32)
			if uerr != nil {
				return nil, err
			}
			return uint32(u), nil
		}
		return int32(v), nil
	case wasm.ValI64:
		v, err := strconv.ParseInt(s, 0, 64)
		if err != nil {
			u, uerr := strconv.ParseUint(s, 0, 64)
			if uerr != nil {
				return nil, err
			}
			return u, nil
		}
		return v, nil
	case wasm.ValF32:
		v, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return nil, err
		}
		return float32(v), nil
	case wasm.ValF64:
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, err
		}
		return v, nil
	case wasm.ValExtern:
		if s == "null" {
			return nil, nil
		}
		return s, nil
	}
	return nil, fmt.Errorf("unsupported parameter type %s", kind)
}

func splitArgs(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, ",")
}
