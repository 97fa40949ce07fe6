package sharetex

import (
	"math"
	"slices"
	"testing"
)

func TestHandleRegistryFirstHandleIsOne(t *testing.T) {
	r := newHandleRegistry()
	if got := r.next(); got != 1 {
		t.Errorf("next() on empty registry = %d, want 1", got)
	}
}

func TestHandleRegistryAllocation(t *testing.T) {
	tests := []struct {
		name   string
		open   []SessionHandle
		remove []SessionHandle
		want   SessionHandle
	}{
		{"empty", nil, nil, 1},
		{"sequential", []SessionHandle{1, 2}, nil, 3},
		{"gap is not filled", []SessionHandle{1, 2, 3}, []SessionHandle{2}, 4},
		{"max removed", []SessionHandle{1, 2, 3}, []SessionHandle{3}, 3},
		{"lowest removed", []SessionHandle{1, 2}, []SessionHandle{1}, 3},
		{"reuse after empty", []SessionHandle{1, 2}, []SessionHandle{1, 2}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newHandleRegistry()
			for _, h := range tt.open {
				if n := r.next(); n != h {
					t.Fatalf("next() = %d, want %d", n, h)
				}
				r.insert(h)
			}
			for _, h := range tt.remove {
				if !r.remove(h) {
					t.Fatalf("remove(%d) = false, want true", h)
				}
			}
			if got := r.next(); got != tt.want {
				t.Errorf("next() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestHandleRegistryRemoveUnknown(t *testing.T) {
	r := newHandleRegistry()
	r.insert(r.next())

	if r.remove(7) {
		t.Error("remove(7) = true, want false")
	}
	if r.len() != 1 {
		t.Errorf("len() = %d, want 1", r.len())
	}
	if !r.contains(1) {
		t.Error("contains(1) = false, want true")
	}
}

func TestHandleRegistryUniqueness(t *testing.T) {
	r := newHandleRegistry()
	seen := make(map[SessionHandle]bool)
	for range 100 {
		h := r.next()
		if seen[h] {
			t.Fatalf("handle %d issued twice", h)
		}
		seen[h] = true
		r.insert(h)
	}
	if r.len() != 100 {
		t.Errorf("len() = %d, want 100", r.len())
	}
}

func TestHandleRegistryHandlesSorted(t *testing.T) {
	r := newHandleRegistry()
	for range 5 {
		r.insert(r.next())
	}
	r.remove(2)
	r.remove(4)

	got := r.handles()
	want := []SessionHandle{1, 3, 5}
	if !slices.Equal(got, want) {
		t.Errorf("handles() = %v, want %v", got, want)
	}
}

func TestHandleRegistryExhausted(t *testing.T) {
	r := newHandleRegistry()
	r.insert(1)
	r.insert(math.MaxUint32)

	if got := r.next(); got != 0 {
		t.Errorf("next() with max handle open = %d, want 0", got)
	}

	r.remove(math.MaxUint32)
	if got := r.next(); got != 2 {
		t.Errorf("next() after removing max handle = %d, want 2", got)
	}
}
