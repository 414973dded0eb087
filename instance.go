package fsmx

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Instance is a runtime cursor over a Machine. It only holds its current state, so
// many instances can share one definition.
type Instance struct {
	id      uuid.UUID
	machine *Machine
	slot    int
	current *State
	deleted bool
}

// CreateInstance returns a new unbound instance of m. Its first Update enters the
// initial state.
func (m *Machine) CreateInstance() (*Instance, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("%w: instance id: %v", ErrAllocation, err)
	}
	return m.createInstance(id, nil)
}

func (m *Machine) createInstance(id uuid.UUID, current *State) (*Instance, error) {
	if m.deleted {
		return nil, ErrInvalidMachine
	}
	inst := &Instance{id: id, machine: m, current: current}
	slot, err := m.instances.put(inst)
	if err != nil {
		return nil, fmt.Errorf("create instance: %w", err)
	}
	inst.slot = slot
	return inst, nil
}

// Instances returns the live instances in update order.
func (m *Machine) Instances() []*Instance {
	out := make([]*Instance, 0, m.instances.len())
	m.instances.each(func(_ int, inst *Instance) bool {
		out = append(out, inst)
		return true
	})
	return out
}

// InstanceCount returns the number of live instances.
func (m *Machine) InstanceCount() int { return m.instances.len() }

// Update advances every instance of m by one step, in storage order. A failing
// instance does not stop the batch; only a deleted machine fails the call.
func (m *Machine) Update() error {
	if m.deleted {
		return ErrInvalidMachine
	}
	for _, inst := range m.Instances() {
		if inst.deleted {
			continue
		}
		if err := inst.Update(); err != nil {
			m.log.Debug().Err(err).Str("instance", inst.id.String()).Msg("instance update failed")
		}
	}
	return nil
}

// ID returns the instance's unique handle.
func (i *Instance) ID() uuid.UUID { return i.id }

// Machine returns the machine the instance runs against.
func (i *Instance) Machine() *Machine { return i.machine }

// State returns the current state, or nil while the instance is unbound.
func (i *Instance) State() *State { return i.current }

// Deleted reports whether Delete has been called.
func (i *Instance) Deleted() bool { return i.deleted }

// Delete releases the instance. The machine is left untouched. Deleting twice is a no-op.
func (i *Instance) Delete() error {
	if i.deleted {
		return nil
	}
	i.machine.instances.release(i.slot)
	i.deleted = true
	i.current = nil
	i.slot = -1
	return nil
}

// Update performs one step.
//
// An unbound instance enters the machine's initial state and stops there. A bound
// instance runs the current state's execute action, then takes the first outgoing
// link whose condition holds: exit the current state, move, enter the destination.
// The destination's execute action runs on the next step. A step that finds no
// satisfied link leaves the state unchanged and still succeeds.
func (i *Instance) Update() error {
	if i.deleted {
		return ErrInvalidInstance
	}
	m := i.machine
	if m.deleted {
		return ErrInvalidMachine
	}

	if i.current == nil {
		if m.initial == nil {
			return ErrNoInitialState
		}
		i.current = m.initial
		i.current.enter()
		m.notify(i, nil, i.current)
		return nil
	}

	s := i.current
	s.execute()
	if i.current != s || s.machine != m {
		// The execute action moved or removed this instance's state.
		return nil
	}

	l := s.pickLink()
	if l == nil {
		return nil
	}
	s.exit()
	i.current = l.to
	l.to.enter()
	m.notify(i, s, l.to)
	return nil
}

func (m *Machine) notify(i *Instance, from, to *State) {
	if m.observer == nil {
		return
	}
	t := Transition{
		MachineID:  m.id,
		InstanceID: i.id,
		To:         to.id,
		Entered:    from == nil,
		Timestamp:  time.Now(),
	}
	if from != nil {
		t.From = from.id
	}
	m.observer(t)
}
