package fsmx

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Module owns a set of machines and the shared logger. It replaces process-wide
// setup: construct one, create machines through it, and call Exit to tear down.
//
// Module implements Registry; machines created by Create register themselves and
// drop out when deleted.
type Module struct {
	log      zerolog.Logger
	observer Observer
	machines map[uuid.UUID]*Machine
	order    []uuid.UUID
	closed   bool
}

// NewModule returns a ready module. WithLogger and WithObserver are passed on to
// every machine it creates; WithRegistry is ignored.
func NewModule(opts ...Option) *Module {
	o := defaultOptions()
	applyOptions(&o, opts)
	return &Module{
		log:      o.logger,
		observer: o.observer,
		machines: make(map[uuid.UUID]*Machine),
	}
}

// Create builds a machine registered with this module.
func (mod *Module) Create(cfg Config, opts ...Option) (*Machine, error) {
	if mod.closed {
		return nil, ErrModuleClosed
	}
	base := []Option{WithLogger(mod.log), WithObserver(mod.observer)}
	opts = append(base, opts...)
	opts = append(opts, WithRegistry(mod))
	return NewMachine(cfg, opts...)
}

// Register implements Registry.
func (mod *Module) Register(m *Machine) error {
	if mod.closed {
		return ErrModuleClosed
	}
	if _, exists := mod.machines[m.id]; exists {
		return fmt.Errorf("machine %s: %w", m.id, ErrDuplicateMachine)
	}
	mod.machines[m.id] = m
	mod.order = append(mod.order, m.id)
	return nil
}

// Unregister implements Registry.
func (mod *Module) Unregister(m *Machine) {
	if _, exists := mod.machines[m.id]; !exists {
		return
	}
	delete(mod.machines, m.id)
	for i, id := range mod.order {
		if id == m.id {
			mod.order = append(mod.order[:i], mod.order[i+1:]...)
			break
		}
	}
}

// Machine looks a registered machine up by id.
func (mod *Module) Machine(id uuid.UUID) *Machine {
	return mod.machines[id]
}

// Machines returns the registered machines in creation order.
func (mod *Module) Machines() []*Machine {
	out := make([]*Machine, 0, len(mod.order))
	for _, id := range mod.order {
		out = append(out, mod.machines[id])
	}
	return out
}

// Update runs Update on every registered machine in creation order.
func (mod *Module) Update() error {
	if mod.closed {
		return ErrModuleClosed
	}
	for _, m := range mod.Machines() {
		if err := m.Update(); err != nil {
			mod.log.Debug().Err(err).Str("machine", m.id.String()).Msg("machine update failed")
		}
	}
	return nil
}

// Exit deletes every instance and machine still registered, then closes the module.
// Calling Exit again is a no-op.
func (mod *Module) Exit() {
	if mod.closed {
		return
	}
	machines := mod.Machines()
	for _, m := range machines {
		for _, inst := range m.Instances() {
			_ = inst.Delete()
		}
		_ = m.Delete()
	}
	mod.closed = true
	mod.log.Info().Int("machines", len(machines)).Msg("fsm module closed")
}
