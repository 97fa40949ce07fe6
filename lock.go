package sharetex

import (
	"fmt"

	"github.com/gogpu/sharetex/driver"
)

// lockState is the access state of one registration.
type lockState uint8

const (
	unlocked lockState = iota
	locked
)

// lockCoordinator hands exclusive access to a registered texture back and
// forth between the two APIs. It tracks state per registration so that a
// double lock or an unmatched unlock is reported instead of reaching the
// driver.
type lockCoordinator struct {
	session *deviceSession
	metrics *metrics
	states  map[driver.RegistrationHandle]lockState
}

func newLockCoordinator(session *deviceSession, m *metrics) *lockCoordinator {
	return &lockCoordinator{
		session: session,
		metrics: m,
		states:  make(map[driver.RegistrationHandle]lockState),
	}
}

func (c *lockCoordinator) track(reg driver.RegistrationHandle)  { c.states[reg] = unlocked }
func (c *lockCoordinator) forget(reg driver.RegistrationHandle) { delete(c.states, reg) }

func (c *lockCoordinator) isLocked(reg driver.RegistrationHandle) bool {
	return c.states[reg] == locked
}

// lock grants the secondary API exclusive access to reg.
func (c *lockCoordinator) lock(reg driver.RegistrationHandle) error {
	st, err := c.check(reg)
	if err != nil {
		return err
	}
	if st == locked {
		c.metrics.lockOp("lock", "misuse")
		return fmt.Errorf("%w: registration %#x", ErrAlreadyLocked, uintptr(reg))
	}
	if !c.session.interop.Lock(c.session.handle, reg) {
		c.metrics.lockOp("lock", "failed")
		return fmt.Errorf("%w: registration %#x", ErrLockFailed, uintptr(reg))
	}
	c.states[reg] = locked
	c.metrics.lockOp("lock", "ok")
	return nil
}

// unlock returns access to the primary API.
func (c *lockCoordinator) unlock(reg driver.RegistrationHandle) error {
	st, err := c.check(reg)
	if err != nil {
		return err
	}
	if st != locked {
		c.metrics.lockOp("unlock", "misuse")
		return fmt.Errorf("%w: registration %#x", ErrNotLocked, uintptr(reg))
	}
	if !c.session.interop.Unlock(c.session.handle, reg) {
		c.metrics.lockOp("unlock", "failed")
		return fmt.Errorf("%w: registration %#x", ErrUnlockFailed, uintptr(reg))
	}
	c.states[reg] = unlocked
	c.metrics.lockOp("unlock", "ok")
	return nil
}

func (c *lockCoordinator) check(reg driver.RegistrationHandle) (lockState, error) {
	if !c.session.state.deviceReady() {
		return unlocked, ErrNotInitialized
	}
	if !c.session.interopReady() {
		return unlocked, fmt.Errorf("%w: registration %#x", ErrInteropUnavailable, uintptr(reg))
	}
	st, ok := c.states[reg]
	if !ok {
		return unlocked, fmt.Errorf("%w: %#x", ErrUnknownRegistration, uintptr(reg))
	}
	return st, nil
}

func (c *lockCoordinator) reset() { clear(c.states) }
