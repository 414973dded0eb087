package definition

import (
	"fmt"

	"github.com/comalice/fsmx"
)

// MachineConfig is the top-level definition document.
type MachineConfig struct {
	Version  string        `json:"version,omitempty" yaml:"version,omitempty" toml:"version,omitempty"`
	Name     string        `json:"name" yaml:"name" toml:"name"`
	Initial  string        `json:"initial,omitempty" yaml:"initial,omitempty" toml:"initial,omitempty"`
	Capacity fsmx.Config   `json:"capacity" yaml:"capacity" toml:"capacity"`
	States   []StateConfig `json:"states" yaml:"states" toml:"states"`
}

// New returns a document with default capacity, ready to be decoded into.
func New() *MachineConfig {
	return &MachineConfig{Capacity: fsmx.DefaultConfig()}
}

// Validate checks the whole document and returns the first problem as a
// *ValidationError.
func (m *MachineConfig) Validate() error {
	if err := validName(m.Name); err != nil {
		return fieldError("name", err.Error())
	}
	if len(m.States) == 0 {
		return fieldError("states", "at least one state is required")
	}
	if err := m.Capacity.Validate(); err != nil {
		return fieldError("capacity", err.Error())
	}

	names := make(map[string]int, len(m.States))
	ids := make(map[fsmx.StateID]string)
	links := 0
	for i := range m.States {
		s := &m.States[i]
		field := fmt.Sprintf("states[%d]", i)
		if err := s.Validate(); err != nil {
			return prefixError(field, err)
		}
		if prev, dup := names[s.Name]; dup {
			return fieldError(field+".name", fmt.Sprintf("%q already declared at states[%d]", s.Name, prev))
		}
		names[s.Name] = i
		if s.ID != nil {
			if other, dup := ids[*s.ID]; dup {
				return fieldError(field+".id", fmt.Sprintf("id %d already used by %q", *s.ID, other))
			}
			ids[*s.ID] = s.Name
		}
		links += len(s.Links)
	}

	for i, s := range m.States {
		for j, l := range s.Links {
			if _, ok := names[l.To]; !ok {
				return fieldError(fmt.Sprintf("states[%d].links[%d].to", i, j), fmt.Sprintf("unknown state %q", l.To))
			}
		}
	}
	if m.Initial != "" {
		if _, ok := names[m.Initial]; !ok {
			return fieldError("initial", fmt.Sprintf("unknown state %q", m.Initial))
		}
	}

	if !m.Capacity.Expandable {
		if len(m.States) > m.Capacity.StateCapacity {
			return fieldError("capacity.stateCapacity",
				fmt.Sprintf("%d states exceed fixed capacity %d", len(m.States), m.Capacity.StateCapacity))
		}
		if links > m.Capacity.LinkCapacity {
			return fieldError("capacity.linkCapacity",
				fmt.Sprintf("%d links exceed fixed capacity %d", links, m.Capacity.LinkCapacity))
		}
	}
	return nil
}

// InitialState returns the configured initial state, defaulting to the first one.
func (m *MachineConfig) InitialState() string {
	if m.Initial != "" || len(m.States) == 0 {
		return m.Initial
	}
	return m.States[0].Name
}

// LinkCount returns the number of links across all states.
func (m *MachineConfig) LinkCount() int {
	n := 0
	for _, s := range m.States {
		n += len(s.Links)
	}
	return n
}
