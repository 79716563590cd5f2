package resource

import (
	"errors"
	"reflect"
	"sync"
)

// ErrClosed is returned when inserting into a closed table.
var ErrClosed = errors.New("resource table closed")

// Table maps handles to host values. It stores the exact interface value it
// was given, so a value read back by handle is identical to the one inserted.
type Table struct {
	entries  []entry
	freeList []Handle
	interned map[any]Handle
	mu       sync.RWMutex
	closed   bool
}

type entry struct {
	value    any
	valid    bool
	interned bool
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{
		entries:  make([]entry, 0, 64),
		freeList: make([]Handle, 0, 16),
		interned: make(map[any]Handle),
	}
}

// Insert stores a value and returns its handle.
func (t *Table) Insert(value any) (Handle, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return 0, ErrClosed
	}

	return t.insert(entry{value: value, valid: true}), nil
}

// Intern is Insert for values that may be stored repeatedly. A comparable
// value that is already interned gets its existing handle back, so the table
// holds one entry per distinct value. Other values are inserted as by Insert.
// Removing an interned handle invalidates it for every holder.
func (t *Table) Intern(value any) (Handle, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return 0, ErrClosed
	}

	if !internable(value) {
		return t.insert(entry{value: value, valid: true}), nil
	}
	if h, ok := t.interned[value]; ok {
		return h, nil
	}
	h := t.insert(entry{value: value, valid: true, interned: true})
	t.interned[value] = h
	return h, nil
}

// insert must be called with t.mu held.
func (t *Table) insert(e entry) Handle {
	if len(t.freeList) > 0 {
		handle := t.freeList[len(t.freeList)-1]
		t.freeList = t.freeList[:len(t.freeList)-1]
		t.entries[handle-1] = e
		return handle
	}

	t.entries = append(t.entries, e)
	return Handle(len(t.entries))
}

// internable reports whether value can key the intern index. Interfaces and
// structs holding non-comparable values are rejected here rather than
// panicking in the map.
func internable(value any) bool {
	if value == nil {
		return false
	}
	return reflect.ValueOf(value).Comparable()
}

// Get retrieves a value by handle.
func (t *Table) Get(handle Handle) (any, bool) {
	if handle == 0 {
		return nil, false
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	idx := int(handle - 1)
	if idx >= len(t.entries) {
		return nil, false
	}

	e := t.entries[idx]
	if !e.valid {
		return nil, false
	}
	return e.value, true
}

// Remove drops a value and returns (value, true) if found.
// The handle may be handed out again by a later Insert.
func (t *Table) Remove(handle Handle) (any, bool) {
	if handle == 0 {
		return nil, false
	}

	t.mu.Lock()
	idx := int(handle - 1)
	if idx >= len(t.entries) || !t.entries[idx].valid {
		t.mu.Unlock()
		return nil, false
	}
	value := t.entries[idx].value
	if t.entries[idx].interned {
		delete(t.interned, value)
	}
	t.entries[idx] = entry{}
	t.freeList = append(t.freeList, handle)
	t.mu.Unlock()

	if d, ok := value.(Dropper); ok {
		d.Drop()
	}
	return value, true
}

// Len returns the number of live handles.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries) - len(t.freeList)
}

// Clear drops every value. Handles issued before Clear become invalid.
func (t *Table) Clear() {
	t.mu.Lock()
	dropped := t.reset()
	t.mu.Unlock()

	for _, d := range dropped {
		d.Drop()
	}
}

// Close clears the table and rejects further inserts.
func (t *Table) Close() error {
	t.mu.Lock()
	t.closed = true
	dropped := t.reset()
	t.mu.Unlock()

	for _, d := range dropped {
		d.Drop()
	}
	return nil
}

// reset must be called with t.mu held.
func (t *Table) reset() []Dropper {
	var dropped []Dropper
	for _, e := range t.entries {
		if !e.valid {
			continue
		}
		if d, ok := e.value.(Dropper); ok {
			dropped = append(dropped, d)
		}
	}
	t.entries = t.entries[:0]
	t.freeList = t.freeList[:0]
	clear(t.interned)
	return dropped
}
