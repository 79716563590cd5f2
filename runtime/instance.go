package runtime

import (
	"context"

	hostcall "github.com/wippyai/wasm-hostcall"
	"github.com/wippyai/wasm-hostcall/engine"
	"github.com/wippyai/wasm-hostcall/wasm"
)

type Instance struct {
	module   *Module
	instance *engine.Instance
}

// Call invokes an exported function. It returns nil for no results, the
// bare value for one result and []any for several.
func (i *Instance) Call(ctx context.Context, name string, args ...any) (any, error) {
	results, err := i.instance.Invoke(ctx, name, args...)
	if err != nil {
		return nil, err
	}
	switch len(results) {
	case 0:
		return nil, nil
	case 1:
		return results[0], nil
	default:
		return results, nil
	}
}

// Invoke invokes an exported function and returns all results.
func (i *Instance) Invoke(ctx context.Context, name string, args ...any) ([]any, error) {
	return i.instance.Invoke(ctx, name, args...)
}

func (i *Instance) Exports() []string {
	return i.instance.Exports()
}

func (i *Instance) ExportType(name string) (wasm.FuncType, bool) {
	return i.instance.ExportType(name)
}

// Memory returns the exported memory, or nil if the guest has none.
func (i *Instance) Memory() hostcall.Memory {
	return i.instance.Memory()
}

// Engine returns the underlying engine instance.
func (i *Instance) Engine() *engine.Instance {
	return i.instance
}

func (i *Instance) Close(ctx context.Context) error {
	return i.instance.Close(ctx)
}
