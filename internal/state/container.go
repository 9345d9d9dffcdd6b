package state

import "sync"

// Container owns the canonical State. Every action is reduced against a
// private copy and swapped in under the write lock, so readers only ever see
// fully applied states.
type Container struct {
	mu    sync.RWMutex
	state State
}

// NewContainer returns a Container seeded with a copy of initial.
func NewContainer(initial State) *Container {
	return &Container{state: initial.Clone()}
}

// Snapshot returns a deep copy of the current state.
func (c *Container) Snapshot() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Clone()
}

// Dispatch applies a and returns a copy of the resulting state. On error
// the stored state is left untouched.
func (c *Container) Dispatch(a Action) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	next, err := Reduce(c.state, a)
	if err != nil {
		return State{}, err
	}
	c.state = next
	return next.Clone(), nil
}
