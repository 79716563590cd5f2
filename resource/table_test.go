package resource

import (
	"testing"
)

type dropCounter struct {
	drops int
}

func (d *dropCounter) Drop() { d.drops++ }

func TestTable_Basic(t *testing.T) {
	table := NewTable()

	h, err := table.Insert("test")
	if err != nil {
		t.Fatal(err)
	}
	if h == 0 {
		t.Fatal("Expected non-zero handle")
	}

	val, ok := table.Get(h)
	if !ok {
		t.Fatal("Get failed")
	}
	if val != "test" {
		t.Fatalf("Expected 'test', got %v", val)
	}

	val, ok = table.Remove(h)
	if !ok || val != "test" {
		t.Fatalf("Remove = %v, %v", val, ok)
	}

	if table.Len() != 0 {
		t.Fatalf("Expected Len() == 0 after Remove, got %d", table.Len())
	}

	if _, ok := table.Get(h); ok {
		t.Fatal("Get after Remove should fail")
	}
}

func TestTable_Identity(t *testing.T) {
	table := NewTable()
	type obj struct{ n int }
	p := &obj{n: 1}

	h1, _ := table.Insert(p)
	h2, _ := table.Insert(p)
	if h1 == h2 {
		t.Fatal("each insert should get its own handle")
	}

	for _, h := range []Handle{h1, h2} {
		v, ok := table.Get(h)
		if !ok {
			t.Fatalf("Get(%d) failed", h)
		}
		if v.(*obj) != p {
			t.Errorf("Get(%d) returned a different pointer", h)
		}
	}
}

func TestTable_Intern(t *testing.T) {
	type obj struct{ n int }
	p := &obj{n: 1}

	tests := []struct {
		name    string
		first   any
		second  any
		same    bool
		entries int
	}{
		{"same pointer", p, p, true, 1},
		{"distinct pointers", p, &obj{n: 1}, false, 2},
		{"equal strings", "key", "key", true, 1},
		{"equal structs", obj{n: 2}, obj{n: 2}, true, 1},
		{"slices are not comparable", []int{1}, []int{1}, false, 2},
		{"struct holding a slice", struct{ v any }{[]int{1}}, struct{ v any }{[]int{1}}, false, 2},
		{"nil", nil, nil, false, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := NewTable()
			h1, err := table.Intern(tt.first)
			if err != nil {
				t.Fatal(err)
			}
			h2, err := table.Intern(tt.second)
			if err != nil {
				t.Fatal(err)
			}
			if (h1 == h2) != tt.same {
				t.Errorf("handles %d and %d, want same = %v", h1, h2, tt.same)
			}
			if table.Len() != tt.entries {
				t.Errorf("Len = %d, want %d", table.Len(), tt.entries)
			}
		})
	}

	t.Run("remove then intern", func(t *testing.T) {
		table := NewTable()
		h1, _ := table.Intern(p)
		table.Remove(h1)
		if table.Len() != 0 {
			t.Fatalf("Len after Remove = %d", table.Len())
		}
		h2, _ := table.Intern(p)
		v, ok := table.Get(h2)
		if !ok || v.(*obj) != p {
			t.Errorf("Get(%d) = %v, %v", h2, v, ok)
		}
		h3, _ := table.Intern(p)
		if h3 != h2 || table.Len() != 1 {
			t.Errorf("handles %d/%d, Len %d", h2, h3, table.Len())
		}
	})

	t.Run("insert is never shared", func(t *testing.T) {
		table := NewTable()
		h1, _ := table.Insert(p)
		h2, _ := table.Intern(p)
		if h1 == h2 {
			t.Error("Intern reused a handle issued by Insert")
		}
	})

	t.Run("clear forgets interned values", func(t *testing.T) {
		table := NewTable()
		table.Intern(p)
		table.Clear()
		h, _ := table.Intern(p)
		if _, ok := table.Get(h); !ok || table.Len() != 1 {
			t.Errorf("Get(%d) failed after Clear, Len %d", h, table.Len())
		}
	})

	t.Run("closed", func(t *testing.T) {
		table := NewTable()
		table.Close()
		if _, err := table.Intern(p); err != ErrClosed {
			t.Errorf("err = %v, want ErrClosed", err)
		}
	})
}

func TestTable_NilValue(t *testing.T) {
	table := NewTable()
	h, err := table.Insert(nil)
	if err != nil {
		t.Fatal(err)
	}
	v, ok := table.Get(h)
	if !ok || v != nil {
		t.Errorf("Get = %v, %v; want nil, true", v, ok)
	}
}

func TestTable_InvalidHandles(t *testing.T) {
	table := NewTable()
	if _, ok := table.Get(0); ok {
		t.Error("handle 0 must be invalid")
	}
	if _, ok := table.Get(42); ok {
		t.Error("unknown handle must be invalid")
	}
	if _, ok := table.Remove(0); ok {
		t.Error("Remove(0) must fail")
	}
	if _, ok := table.Remove(7); ok {
		t.Error("Remove of unknown handle must fail")
	}
}

func TestTable_HandleReuse(t *testing.T) {
	table := NewTable()
	h1, _ := table.Insert(1)
	table.Remove(h1)
	h2, _ := table.Insert(2)
	if h2 != h1 {
		t.Errorf("expected freed handle %d to be reused, got %d", h1, h2)
	}
	if v, _ := table.Get(h2); v != 2 {
		t.Errorf("Get = %v, want 2", v)
	}
}

func TestTable_DropperCalled(t *testing.T) {
	table := NewTable()
	d1, d2 := &dropCounter{}, &dropCounter{}

	h, _ := table.Insert(d1)
	table.Insert(d2)

	table.Remove(h)
	if d1.drops != 1 {
		t.Errorf("Remove should drop, got %d", d1.drops)
	}

	table.Clear()
	if d2.drops != 1 {
		t.Errorf("Clear should drop, got %d", d2.drops)
	}
	if table.Len() != 0 {
		t.Errorf("Len after Clear = %d", table.Len())
	}
}

func TestTable_Close(t *testing.T) {
	table := NewTable()
	d := &dropCounter{}
	table.Insert(d)

	if err := table.Close(); err != nil {
		t.Fatal(err)
	}
	if d.drops != 1 {
		t.Errorf("Close should drop, got %d", d.drops)
	}
	if _, err := table.Insert("late"); err != ErrClosed {
		t.Errorf("Insert after Close = %v, want ErrClosed", err)
	}
}
