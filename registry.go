package sharetex

import (
	"math"
	"slices"
)

// SessionHandle is an opaque identifier for one logical owner of the shared
// device. Handles are unique among open handles only; the zero value is
// never issued.
type SessionHandle uint32

// handleRegistry tracks open session handles. It is not safe for concurrent
// use; Service serializes access.
type handleRegistry struct {
	open map[SessionHandle]struct{}
	max  SessionHandle
}

func newHandleRegistry() *handleRegistry {
	return &handleRegistry{open: make(map[SessionHandle]struct{})}
}

// next returns the handle the next insert would use: one past the largest
// open handle, or 1 when nothing is open. Gaps are not reused. It returns 0
// when the largest open handle is already the maximum value.
func (r *handleRegistry) next() SessionHandle {
	if len(r.open) == 0 {
		return 1
	}
	if r.max == math.MaxUint32 {
		return 0
	}
	return r.max + 1
}

// insert registers h. It must be the value returned by next.
func (r *handleRegistry) insert(h SessionHandle) {
	r.open[h] = struct{}{}
	if h > r.max {
		r.max = h
	}
}

// remove deletes h and reports whether it was open.
func (r *handleRegistry) remove(h SessionHandle) bool {
	if _, ok := r.open[h]; !ok {
		return false
	}
	delete(r.open, h)
	switch {
	case len(r.open) == 0:
		r.max = 0
	case h == r.max:
		r.max = 0
		for k := range r.open {
			r.max = max(r.max, k)
		}
	}
	return true
}

func (r *handleRegistry) len() int { return len(r.open) }

func (r *handleRegistry) contains(h SessionHandle) bool {
	_, ok := r.open[h]
	return ok
}

// handles returns the open handles in ascending order.
func (r *handleRegistry) handles() []SessionHandle {
	out := make([]SessionHandle, 0, len(r.open))
	for h := range r.open {
		out = append(out, h)
	}
	slices.Sort(out)
	return out
}
