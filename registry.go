package fsmx

import (
	"time"

	"github.com/google/uuid"
)

// Registry tracks live machines for uniform enumeration and teardown.
//
// Register is called once a machine is fully constructed; a failure aborts creation.
// Unregister is called from Delete, so a registry may tear down by calling Delete on
// each machine it holds.
type Registry interface {
	Register(m *Machine) error
	Unregister(m *Machine)
}

// Transition describes one instance step that changed the current state.
// Entered is set for the step that moves an unbound instance into the initial state;
// From is meaningless in that case.
type Transition struct {
	MachineID  uuid.UUID `json:"machineID" yaml:"machineID"`
	InstanceID uuid.UUID `json:"instanceID" yaml:"instanceID"`
	From       StateID   `json:"from" yaml:"from"`
	To         StateID   `json:"to" yaml:"to"`
	Entered    bool      `json:"entered,omitempty" yaml:"entered,omitempty"`
	Timestamp  time.Time `json:"timestamp" yaml:"timestamp"`
}

// Observer receives transitions synchronously from Update.
type Observer func(Transition)
