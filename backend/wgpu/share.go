//go:build !nogpu

package wgpu

import (
	"fmt"

	"github.com/gogpu/sharetex/driver"
	"github.com/gogpu/wgpu/hal"
)

// allocation is a HAL texture and the number of wrappers referencing it.
type allocation struct {
	desc   driver.TextureDescriptor
	device hal.Device
	tex    hal.Texture
	refs   int
}

// shareTable maps share tokens to allocations. Tokens are valid within
// this process only. Callers hold Driver.mu.
type shareTable struct {
	next    uintptr
	entries map[driver.ShareToken]*allocation
}

func newShareTable() *shareTable {
	return &shareTable{next: 1, entries: make(map[driver.ShareToken]*allocation)}
}

// add stores a new allocation with one reference and returns its token.
func (s *shareTable) add(a *allocation) driver.ShareToken {
	tok := driver.ShareToken(s.next)
	s.next++
	a.refs = 1
	s.entries[tok] = a
	return tok
}

// acquire adds a reference to the allocation named by tok.
func (s *shareTable) acquire(tok driver.ShareToken, desc driver.TextureDescriptor) (*allocation, error) {
	a, ok := s.entries[tok]
	if !ok {
		return nil, fmt.Errorf("%w: %#x", driver.ErrTokenNotFound, uintptr(tok))
	}
	if !desc.Compatible(a.desc) {
		return nil, fmt.Errorf("%w: have %s, got %s", driver.ErrDescriptorMismatch, a.desc, desc)
	}
	a.refs++
	return a, nil
}

// release drops one reference. It returns the allocation when that was the
// last reference so the caller can destroy it.
func (s *shareTable) release(tok driver.ShareToken) *allocation {
	a, ok := s.entries[tok]
	if !ok {
		return nil
	}
	a.refs--
	if a.refs > 0 {
		return nil
	}
	delete(s.entries, tok)
	return a
}

func (s *shareTable) len() int { return len(s.entries) }
