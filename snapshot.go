package fsmx

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// InstanceSnapshot records where one instance stands. StateName is a label for
// callers that name their states; Restore ignores it.
type InstanceSnapshot struct {
	ID        uuid.UUID `json:"id" yaml:"id"`
	Bound     bool      `json:"bound" yaml:"bound"`
	State     StateID   `json:"state" yaml:"state"`
	StateName string    `json:"stateName,omitempty" yaml:"stateName,omitempty"`
}

// MachineSnapshot is the serializable runtime position of every instance of a machine.
// It carries no definition: restoring requires a machine with matching state ids.
type MachineSnapshot struct {
	MachineID uuid.UUID          `json:"machineID" yaml:"machineID"`
	Name      string             `json:"name,omitempty" yaml:"name,omitempty"`
	Instances []InstanceSnapshot `json:"instances" yaml:"instances"`
	Timestamp time.Time          `json:"timestamp" yaml:"timestamp"`
}

// Snapshot captures the current state of each instance in update order.
func (m *Machine) Snapshot() MachineSnapshot {
	snap := MachineSnapshot{
		MachineID: m.id,
		Instances: make([]InstanceSnapshot, 0, m.instances.len()),
		Timestamp: time.Now().UTC(),
	}
	m.instances.each(func(_ int, inst *Instance) bool {
		is := InstanceSnapshot{ID: inst.id}
		if inst.current != nil {
			is.Bound = true
			is.State = inst.current.id
		}
		snap.Instances = append(snap.Instances, is)
		return true
	})
	return snap
}

// Restore creates one instance per snapshot entry, positioned on the recorded state.
// No enter actions run. Entries naming a state the machine lacks restore unbound.
// Restoring into a machine that already has an instance with the same id fails
// before any instance is created.
func (m *Machine) Restore(snap MachineSnapshot) ([]*Instance, error) {
	if m.deleted {
		return nil, ErrInvalidMachine
	}
	existing := make(map[uuid.UUID]bool, m.instances.len())
	m.instances.each(func(_ int, inst *Instance) bool {
		existing[inst.id] = true
		return true
	})
	for _, is := range snap.Instances {
		if existing[is.ID] {
			return nil, fmt.Errorf("restore instance %s: %w", is.ID, ErrDuplicateID)
		}
		existing[is.ID] = true
	}

	restored := make([]*Instance, 0, len(snap.Instances))
	for _, is := range snap.Instances {
		var current *State
		if is.Bound {
			current = m.byID[is.State]
			if current == nil {
				m.log.Warn().Uint16("state", uint16(is.State)).Str("instance", is.ID.String()).
					Msg("snapshot state missing, instance restored unbound")
			}
		}
		inst, err := m.createInstance(is.ID, current)
		if err != nil {
			return restored, err
		}
		restored = append(restored, inst)
	}
	return restored, nil
}
