package fsmx

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Machine is a state-machine definition: a graph of states joined by guarded links,
// plus the designated initial state. Any number of instances may run against one
// Machine.
//
// A Machine does no locking. Definition changes must not interleave with updates
// of its instances from another goroutine; see realtime.Runner for a helper that
// serializes the two.
type Machine struct {
	id  uuid.UUID
	cfg Config

	states    *arena[State]
	links     *arena[Link]
	instances *arena[Instance]
	byID      map[StateID]*State
	initial   *State
	deleted   bool

	log      zerolog.Logger
	observer Observer
	registry Registry
}

// NewMachine creates an empty machine with no initial state.
func NewMachine(cfg Config, opts ...Option) (*Machine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := defaultOptions()
	applyOptions(&o, opts)

	states, err := newArena[State](cfg.StateCapacity, MaxStates, cfg.Expandable)
	if err != nil {
		return nil, fmt.Errorf("state storage: %w", err)
	}
	links, err := newArena[Link](cfg.LinkCapacity, MaxLinks, cfg.Expandable)
	if err != nil {
		return nil, fmt.Errorf("link storage: %w", err)
	}
	instances, err := newArena[Instance](cfg.InstanceHint, MaxLinks, true)
	if err != nil {
		return nil, fmt.Errorf("instance storage: %w", err)
	}
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("%w: machine id: %v", ErrAllocation, err)
	}

	m := &Machine{
		id:        id,
		cfg:       cfg,
		states:    states,
		links:     links,
		instances: instances,
		byID:      make(map[StateID]*State, cfg.StateCapacity),
		log:       o.logger.With().Str("machine", id.String()).Logger(),
		observer:  o.observer,
		registry:  o.registry,
	}
	if m.registry != nil {
		if err := m.registry.Register(m); err != nil {
			return nil, fmt.Errorf("register machine: %w", err)
		}
	}
	m.log.Debug().
		Int("states", cfg.StateCapacity).
		Int("links", cfg.LinkCapacity).
		Bool("expandable", cfg.Expandable).
		Stringer("storage", cfg.Storage).
		Msg("machine created")
	return m, nil
}

// ID returns the machine's unique handle.
func (m *Machine) ID() uuid.UUID { return m.id }

// Config returns the construction parameters.
func (m *Machine) Config() Config { return m.cfg }

// Deleted reports whether Delete has been called.
func (m *Machine) Deleted() bool { return m.deleted }

// AddState creates a state with the given id and optional callbacks. When the
// machine has no initial state, the new state becomes the initial state.
func (m *Machine) AddState(id StateID, onEnter, onExecute, onExit Action) (*State, error) {
	if m.deleted {
		return nil, ErrInvalidMachine
	}
	if _, exists := m.byID[id]; exists {
		return nil, fmt.Errorf("%w: %d", ErrDuplicateID, id)
	}
	s := &State{
		id:        id,
		machine:   m,
		onEnter:   onEnter,
		onExecute: onExecute,
		onExit:    onExit,
	}
	slot, err := m.states.put(s)
	if err != nil {
		return nil, fmt.Errorf("add state %d: %w", id, err)
	}
	s.slot = slot
	m.byID[id] = s
	if m.initial == nil {
		m.initial = s
	}
	m.log.Debug().Uint16("state", uint16(id)).Int("slot", slot).Msg("state added")
	return s, nil
}

// SetInitState replaces the initial state.
func (m *Machine) SetInitState(s *State) error {
	if m.deleted {
		return ErrInvalidMachine
	}
	if !m.ownsState(s) {
		return fmt.Errorf("set initial state: %w", ErrUnknownReference)
	}
	m.initial = s
	return nil
}

// Initial returns the initial state, or nil when none is set.
func (m *Machine) Initial() *State { return m.initial }

// GetState looks a state up by id. It returns nil when no such state exists.
func (m *Machine) GetState(id StateID) *State {
	return m.byID[id]
}

// GetStateID returns the id of s, failing when s does not belong to m.
func (m *Machine) GetStateID(s *State) (StateID, error) {
	if !m.ownsState(s) {
		return 0, ErrUnknownReference
	}
	return s.id, nil
}

// RemoveState removes s. With removeLinks unset the call fails without change while
// any link starts or ends in s; with it set those links are removed first.
// Instances positioned on s become unbound, and s stops being the initial state.
func (m *Machine) RemoveState(s *State, removeLinks bool) error {
	if m.deleted {
		return ErrInvalidMachine
	}
	if !m.ownsState(s) {
		return fmt.Errorf("remove state: %w", ErrUnknownReference)
	}
	if !removeLinks && len(s.out)+len(s.in) > 0 {
		return fmt.Errorf("remove state %d: %w (%d out, %d in)", s.id, ErrDanglingLinks, len(s.out), len(s.in))
	}

	for _, l := range append(s.Links(), s.in...) {
		// Self-loops appear in both lists; the second visit finds them detached.
		if l.machine == m {
			m.unlink(l)
		}
	}
	m.instances.each(func(_ int, inst *Instance) bool {
		if inst.current == s {
			inst.current = nil
		}
		return true
	})
	if m.initial == s {
		m.initial = nil
	}
	delete(m.byID, s.id)
	m.states.release(s.slot)
	m.log.Debug().Uint16("state", uint16(s.id)).Msg("state removed")
	s.detach()
	return nil
}

// AddLink appends a link from one state to another. It is evaluated after every
// link previously added to from. A nil condition makes the link unconditional.
func (m *Machine) AddLink(from, to *State, cond Condition) (*Link, error) {
	if m.deleted {
		return nil, ErrInvalidMachine
	}
	if !m.ownsState(from) || !m.ownsState(to) {
		return nil, fmt.Errorf("add link: %w", ErrUnknownReference)
	}
	l := &Link{from: from, to: to, condition: cond, machine: m}
	slot, err := m.links.put(l)
	if err != nil {
		return nil, fmt.Errorf("add link %d -> %d: %w", from.id, to.id, err)
	}
	l.slot = slot
	from.out = append(from.out, l)
	to.in = append(to.in, l)
	m.log.Debug().Uint16("from", uint16(from.id)).Uint16("to", uint16(to.id)).Msg("link added")
	return l, nil
}

// GetLink returns the first link from one state to another in insertion order, or nil.
func (m *Machine) GetLink(from, to *State) *Link {
	if !m.ownsState(from) {
		return nil
	}
	for _, l := range from.out {
		if l.to == to {
			return l
		}
	}
	return nil
}

// RemoveLink removes l from the machine.
func (m *Machine) RemoveLink(l *Link) error {
	if m.deleted {
		return ErrInvalidMachine
	}
	if l == nil || l.machine != m {
		return fmt.Errorf("remove link: %w", ErrUnknownReference)
	}
	m.unlink(l)
	return nil
}

// ClearLinks removes every link and keeps the states.
func (m *Machine) ClearLinks() {
	if m.deleted {
		return
	}
	m.links.each(func(_ int, l *Link) bool {
		l.detach()
		return true
	})
	m.states.each(func(_ int, s *State) bool {
		s.out = nil
		s.in = nil
		return true
	})
	m.links.reset()
}

// Clear removes every state and link. Instances become unbound and the machine has
// no initial state afterwards.
func (m *Machine) Clear() {
	if m.deleted {
		return
	}
	m.ClearLinks()
	m.instances.each(func(_ int, inst *Instance) bool {
		inst.current = nil
		return true
	})
	m.states.each(func(_ int, s *State) bool {
		s.detach()
		return true
	})
	m.states.reset()
	clear(m.byID)
	m.initial = nil
	m.log.Debug().Msg("machine cleared")
}

// Delete destroys the machine with its states and links. Instances must be deleted
// first; any left behind fail every later Update with ErrInvalidMachine.
func (m *Machine) Delete() error {
	if m.deleted {
		return ErrInvalidMachine
	}
	if n := m.instances.len(); n > 0 {
		m.log.Warn().Int("instances", n).Msg("deleting machine with live instances")
	}
	m.Clear()
	m.deleted = true
	if m.registry != nil {
		m.registry.Unregister(m)
	}
	m.log.Debug().Msg("machine deleted")
	return nil
}

// States returns the live states in storage order.
func (m *Machine) States() []*State {
	out := make([]*State, 0, m.states.len())
	m.states.each(func(_ int, s *State) bool {
		out = append(out, s)
		return true
	})
	return out
}

// Links returns the live links in storage order.
func (m *Machine) Links() []*Link {
	out := make([]*Link, 0, m.links.len())
	m.links.each(func(_ int, l *Link) bool {
		out = append(out, l)
		return true
	})
	return out
}

// StateCount returns the number of live states.
func (m *Machine) StateCount() int { return m.states.len() }

// LinkCount returns the number of live links.
func (m *Machine) LinkCount() int { return m.links.len() }

func (m *Machine) ownsState(s *State) bool {
	return s != nil && s.machine == m
}

func (m *Machine) unlink(l *Link) {
	l.from.out = removeLink(l.from.out, l)
	l.to.in = removeLink(l.to.in, l)
	m.links.release(l.slot)
	l.detach()
}
