package definition

import (
	"errors"
	"fmt"
	"strings"

	"github.com/comalice/fsmx"
)

// StateConfig defines one state. ID pins the engine StateID; when omitted the
// next free id in declaration order is used.
type StateConfig struct {
	Name    string        `json:"name" yaml:"name" toml:"name"`
	ID      *fsmx.StateID `json:"id,omitempty" yaml:"id,omitempty" toml:"id,omitempty"`
	Enter   []string      `json:"enter,omitempty" yaml:"enter,omitempty" toml:"enter,omitempty"`
	Execute []string      `json:"execute,omitempty" yaml:"execute,omitempty" toml:"execute,omitempty"`
	Exit    []string      `json:"exit,omitempty" yaml:"exit,omitempty" toml:"exit,omitempty"`
	Links   []LinkConfig  `json:"links,omitempty" yaml:"links,omitempty" toml:"links,omitempty"`
}

// LinkConfig is a guarded edge to another state. An empty When is unconditional.
type LinkConfig struct {
	To   string `json:"to" yaml:"to" toml:"to"`
	When string `json:"when,omitempty" yaml:"when,omitempty" toml:"when,omitempty"`
}

// Validate checks the state in isolation.
func (s *StateConfig) Validate() error {
	if err := validName(s.Name); err != nil {
		return fieldError("name", err.Error())
	}
	hooks := []struct {
		name    string
		actions []string
	}{{"enter", s.Enter}, {"execute", s.Execute}, {"exit", s.Exit}}
	for _, h := range hooks {
		for i, a := range h.actions {
			if strings.TrimSpace(a) == "" {
				return fieldError(fmt.Sprintf("%s[%d]", h.name, i), "empty action")
			}
		}
	}
	for i, l := range s.Links {
		if err := validName(l.To); err != nil {
			return fieldError(fmt.Sprintf("links[%d].to", i), err.Error())
		}
	}
	return nil
}

// validName accepts letters, digits, and _-. separators.
func validName(name string) error {
	if name == "" {
		return errors.New("name is required")
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '_' || r == '-' || r == '.':
		default:
			return fmt.Errorf("invalid character %q in %q", r, name)
		}
	}
	return nil
}
