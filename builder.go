package fsmx

import (
	"errors"
	"fmt"
)

// MachineBuilder provides a fluent API for constructing machines from string state
// names instead of manual StateID bookkeeping.
type MachineBuilder struct {
	cfg      Config
	opts     []Option
	nextID   StateID
	nameToID map[string]StateID
	idToName map[StateID]string // For debugging/reverse lookup
	states   map[string]*stateSpec
	order    []string // declaration order
	initial  string
	errs     []error
}

// StateBuilder provides fluent methods for configuring individual states.
type StateBuilder struct {
	b    *MachineBuilder
	spec *stateSpec
}

type stateSpec struct {
	name                 string
	enter, execute, exit Action
	links                []linkSpec
}

type linkSpec struct {
	target string
	cond   Condition
}

// NewMachineBuilder creates a builder for a machine with the given configuration.
func NewMachineBuilder(cfg Config, opts ...Option) *MachineBuilder {
	return &MachineBuilder{
		cfg:      cfg,
		opts:     opts,
		nameToID: make(map[string]StateID),
		idToName: make(map[StateID]string),
		states:   make(map[string]*stateSpec),
	}
}

// State declares a state, or returns the builder of an existing one.
// The first declared state is the initial state unless Initial says otherwise.
func (b *MachineBuilder) State(name string) *StateBuilder {
	b.assignID(name)
	return b.declare(name)
}

// StateWithID declares a state with an explicit identifier. Conflicts with an id
// already taken by another name are reported by Build.
func (b *MachineBuilder) StateWithID(name string, id StateID) *StateBuilder {
	b.Reserve(name, id)
	return b.declare(name)
}

// Reserve binds name to id without declaring the state, so automatic assignment
// for other names skips id. Conflicts are reported by Build.
func (b *MachineBuilder) Reserve(name string, id StateID) *MachineBuilder {
	if cur, ok := b.nameToID[name]; ok {
		if cur != id {
			b.errs = append(b.errs, fmt.Errorf("state %q already has id %d", name, cur))
		}
		return b
	}
	if other, taken := b.idToName[id]; taken {
		b.errs = append(b.errs, fmt.Errorf("state %q: id %d already used by %q", name, id, other))
		return b
	}
	b.nameToID[name] = id
	b.idToName[id] = name
	return b
}

// Initial selects the initial state by name.
func (b *MachineBuilder) Initial(name string) *MachineBuilder {
	b.assignID(name)
	b.initial = name
	return b
}

// Build validates the configuration and constructs the Machine.
func (b *MachineBuilder) Build() (*Machine, error) {
	return b.build(NewMachine)
}

// BuildIn constructs the Machine through mod so it is registered there.
func (b *MachineBuilder) BuildIn(mod *Module) (*Machine, error) {
	return b.build(mod.Create)
}

func (b *MachineBuilder) build(create func(Config, ...Option) (*Machine, error)) (*Machine, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}
	m, err := create(b.cfg, b.opts...)
	if err != nil {
		return nil, err
	}
	states := make(map[string]*State, len(b.order))
	for _, name := range b.order {
		spec := b.states[name]
		s, err := m.AddState(b.nameToID[name], spec.enter, spec.execute, spec.exit)
		if err != nil {
			_ = m.Delete()
			return nil, fmt.Errorf("state %q: %w", name, err)
		}
		states[name] = s
	}
	for _, name := range b.order {
		for _, ls := range b.states[name].links {
			if _, err := m.AddLink(states[name], states[ls.target], ls.cond); err != nil {
				_ = m.Delete()
				return nil, fmt.Errorf("link %q -> %q: %w", name, ls.target, err)
			}
		}
	}
	if b.initial != "" {
		if err := m.SetInitState(states[b.initial]); err != nil {
			_ = m.Delete()
			return nil, err
		}
	}
	return m, nil
}

// ID returns the StateID assigned to name.
func (b *MachineBuilder) ID(name string) (StateID, bool) {
	id, ok := b.nameToID[name]
	return id, ok
}

// Name returns the name for a StateID, or the empty string.
func (b *MachineBuilder) Name(id StateID) string {
	return b.idToName[id]
}

// Names returns a copy of the id to name table.
func (b *MachineBuilder) Names() map[StateID]string {
	out := make(map[StateID]string, len(b.idToName))
	for id, name := range b.idToName {
		out[id] = name
	}
	return out
}

func (b *MachineBuilder) declare(name string) *StateBuilder {
	spec, ok := b.states[name]
	if !ok {
		spec = &stateSpec{name: name}
		b.states[name] = spec
		b.order = append(b.order, name)
	}
	return &StateBuilder{b: b, spec: spec}
}

// assignID returns the existing ID for a name, or takes the next free one.
// Assignment is deterministic: declaration order decides the ids.
func (b *MachineBuilder) assignID(name string) StateID {
	if id, exists := b.nameToID[name]; exists {
		return id
	}
	if len(b.idToName) >= MaxStates {
		b.errs = append(b.errs, fmt.Errorf("state %q: %w: no free ids", name, ErrAllocation))
		return 0
	}
	for {
		if _, taken := b.idToName[b.nextID]; !taken {
			break
		}
		b.nextID++
	}
	id := b.nextID
	b.nextID++
	b.nameToID[name] = id
	b.idToName[id] = name
	return id
}

// validate checks that every referenced state was declared.
func (b *MachineBuilder) validate() error {
	if len(b.errs) > 0 {
		return errors.Join(b.errs...)
	}
	for _, name := range b.order {
		for _, ls := range b.states[name].links {
			if _, ok := b.states[ls.target]; !ok {
				return fmt.Errorf("state %q links to undeclared state %q", name, ls.target)
			}
		}
	}
	if b.initial != "" {
		if _, ok := b.states[b.initial]; !ok {
			return fmt.Errorf("initial state %q is not declared", b.initial)
		}
	}
	return nil
}

// StateBuilder fluent methods

// OnEnter sets the action run when an instance enters this state.
func (sb *StateBuilder) OnEnter(action Action) *StateBuilder {
	sb.spec.enter = action
	return sb
}

// OnExecute sets the action run on every step spent in this state.
func (sb *StateBuilder) OnExecute(action Action) *StateBuilder {
	sb.spec.execute = action
	return sb
}

// OnExit sets the action run when an instance leaves this state.
func (sb *StateBuilder) OnExit(action Action) *StateBuilder {
	sb.spec.exit = action
	return sb
}

// To adds a link to the named target, evaluated after links added before it.
// The target may be declared later. A nil condition makes the link unconditional.
func (sb *StateBuilder) To(target string, cond Condition) *StateBuilder {
	sb.b.assignID(target)
	sb.spec.links = append(sb.spec.links, linkSpec{target: target, cond: cond})
	return sb
}

// Always adds an unconditional link to the named target.
func (sb *StateBuilder) Always(target string) *StateBuilder {
	return sb.To(target, nil)
}

// State switches to declaring another state.
func (sb *StateBuilder) State(name string) *StateBuilder {
	return sb.b.State(name)
}

// Builder returns the parent MachineBuilder.
func (sb *StateBuilder) Builder() *MachineBuilder {
	return sb.b
}
