package engine

import (
	"context"
	"fmt"

	hostcall "github.com/wippyai/wasm-hostcall"
	"github.com/wippyai/wasm-hostcall/errors"
)

// Caller is handed to a host callable that was created WithCaller. It is
// valid only until that invocation returns; afterwards every method fails
// with a caller-expired error.
type Caller struct {
	store *Store
	inst  *Instance
	guard *borrowGuard
}

// Data returns the store payload.
func (c *Caller) Data() (any, error) {
	if err := c.store.active(c.guard); err != nil {
		return nil, err
	}
	return c.store.data, nil
}

// CallerData returns the store payload as T.
func CallerData[T any](c *Caller) (T, error) {
	var zero T
	data, err := c.Data()
	if err != nil {
		return zero, err
	}
	v, ok := data.(T)
	if !ok {
		return zero, errors.New(errors.PhaseStore, errors.KindTypeMismatch).
			GoType(fmt.Sprintf("%T", data)).
			Detail("store data is not a %T", zero).
			Build()
	}
	return v, nil
}

// Store returns the store the call runs in.
func (c *Caller) Store() (*Store, error) {
	if err := c.store.active(c.guard); err != nil {
		return nil, err
	}
	return c.store, nil
}

// Instance returns the guest instance that made the call, or nil when the
// call was started from the host with Func.Call.
func (c *Caller) Instance() (*Instance, error) {
	if err := c.store.active(c.guard); err != nil {
		return nil, err
	}
	return c.inst, nil
}

// Memory returns the linear memory of the calling instance.
func (c *Caller) Memory() (hostcall.Memory, error) {
	if err := c.store.active(c.guard); err != nil {
		return nil, err
	}
	if c.inst == nil {
		return nil, errors.NotFound(errors.PhaseCall, "caller", "instance")
	}
	mem := c.inst.Memory()
	if mem == nil {
		return nil, errors.NotFound(errors.PhaseCall, "memory of", "caller instance")
	}
	return mem, nil
}

// Invoke calls an export of the calling instance. The payload borrow is
// handed to the nested call and given back when it returns.
func (c *Caller) Invoke(ctx context.Context, name string, args ...any) ([]any, error) {
	if err := c.store.active(c.guard); err != nil {
		return nil, err
	}
	if c.inst == nil {
		return nil, errors.NotFound(errors.PhaseCall, "caller", "instance")
	}
	return c.inst.Invoke(ctx, name, args...)
}
