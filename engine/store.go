package engine

import (
	"context"
	"sync"

	"go.uber.org/multierr"

	"github.com/wippyai/wasm-hostcall/errors"
	"github.com/wippyai/wasm-hostcall/resource"
)

// Store is the execution context shared by the instances and host functions
// created from it. It owns a host payload, the externref table and the
// instances, and it enforces that at most one host call borrows the payload
// at any time.
//
// A Store belongs to one goroutine. Its state is mutex guarded so that
// misuse from another goroutine surfaces as an already-borrowed error
// instead of a data race.
type Store struct {
	data      any
	engine    *Engine
	refs      *resource.Table
	current   *borrowGuard
	pending   error
	instances []*Instance
	mu        sync.Mutex
	closed    bool
}

// borrowGuard marks one active borrow of the store payload.
type borrowGuard struct {
	released bool
}

// NewStore creates a store holding data.
func NewStore(eng *Engine, data any) *Store {
	return &Store{
		engine: eng,
		data:   data,
		refs:   resource.NewTable(),
	}
}

// Engine returns the engine the store was created with.
func (s *Store) Engine() *Engine {
	return s.engine
}

// Data returns the payload without borrowing it. It is meant for use
// outside host calls; inside a host call use Caller.Data.
func (s *Store) Data() any {
	return s.data
}

// WithBorrow runs fn with the payload borrowed. It fails with an
// already-borrowed error while a host call holds the payload.
func (s *Store) WithBorrow(fn func(data any) error) error {
	g, err := s.borrow()
	if err != nil {
		return err
	}
	defer s.release(g)
	return fn(s.data)
}

// Borrow is the typed form of Store.WithBorrow.
func Borrow[T any](s *Store, fn func(data any) (T, error)) (T, error) {
	var out T
	err := s.WithBorrow(func(data any) error {
		var err error
		out, err = fn(data)
		return err
	})
	return out, err
}

// Refs returns the externref table of the store.
func (s *Store) Refs() *resource.Table {
	return s.refs
}

func (s *Store) borrow() (*borrowGuard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		return nil, errors.Borrowed()
	}
	g := &borrowGuard{}
	s.current = g
	return g, nil
}

func (s *Store) release(g *borrowGuard) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g.released = true
	if s.current == g {
		s.current = nil
	}
}

// active reports whether g is the borrow currently in effect.
func (s *Store) active(g *borrowGuard) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g.released {
		return errors.Expired()
	}
	if s.current != g {
		return errors.Borrowed()
	}
	return nil
}

// suspend lifts the active borrow while the host calls back into guest
// code. The returned func restores it.
func (s *Store) suspend() func() {
	s.mu.Lock()
	saved := s.current
	s.current = nil
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		s.current = saved
		s.mu.Unlock()
	}
}

// setPending records a host error travelling through guest frames.
func (s *Store) setPending(err error) {
	s.mu.Lock()
	s.pending = err
	s.mu.Unlock()
}

// takePending returns and clears the recorded host error.
func (s *Store) takePending() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.pending
	s.pending = nil
	return err
}

func (s *Store) addInstance(inst *Instance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.Closed("store")
	}
	s.instances = append(s.instances, inst)
	return nil
}

func (s *Store) removeInstance(inst *Instance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, x := range s.instances {
		if x == inst {
			s.instances = append(s.instances[:i], s.instances[i+1:]...)
			return
		}
	}
}

func (s *Store) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close closes every instance created in the store and drops all
// externref handles.
func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	instances := s.instances
	s.instances = nil
	s.mu.Unlock()

	var err error
	for _, inst := range instances {
		err = multierr.Append(err, inst.close(ctx))
	}
	return multierr.Append(err, s.refs.Close())
}
