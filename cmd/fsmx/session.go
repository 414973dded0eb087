package main

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/comalice/fsmx"
	"github.com/comalice/fsmx/internal/definition"
	"github.com/comalice/fsmx/internal/extensibility"
	"github.com/comalice/fsmx/internal/production"
	"github.com/comalice/fsmx/realtime"
)

// session is one running definition: the module, its machine, and the runner
// stepping it. Reload swaps the machine in place and keeps instance positions.
type session struct {
	log     zerolog.Logger
	mod     *fsmx.Module
	catalog *extensibility.Catalog
	runner  *realtime.Runner
	store   production.Persister

	mu      sync.RWMutex
	doc     *definition.MachineConfig
	machine *fsmx.Machine
	names   map[fsmx.StateID]string
}

func newSession(log zerolog.Logger, observer fsmx.Observer, store production.Persister) *session {
	return &session{
		log:     log,
		mod:     fsmx.NewModule(fsmx.WithLogger(log), fsmx.WithObserver(observer)),
		catalog: extensibility.NewCatalog(nil, log),
		store:   store,
	}
}

// load hydrates the definition at path and positions instances: from the stored
// snapshot when one exists, otherwise count fresh ones.
func (s *session) load(ctx context.Context, path string, count int) error {
	doc, err := definition.Load(path)
	if err != nil {
		return err
	}
	m, names, err := definition.HydrateIn(s.mod, doc, s.catalog)
	if err != nil {
		return err
	}

	restored := false
	if s.store != nil {
		snap, err := s.store.Load(ctx, doc.Name)
		switch {
		case err == nil:
			if _, err := m.Restore(definition.RemapSnapshot(snap, names)); err != nil {
				return fmt.Errorf("restore %q: %w", doc.Name, err)
			}
			restored = true
		case errors.Is(err, production.ErrSnapshotNotFound):
		default:
			return err
		}
	}
	if !restored {
		for i := 0; i < count; i++ {
			if _, err := m.CreateInstance(); err != nil {
				return err
			}
		}
	}

	s.mu.Lock()
	s.doc, s.machine, s.names = doc, m, names
	s.mu.Unlock()
	s.log.Info().
		Str("machine", doc.Name).
		Str("version", definition.ComputeVersion(doc)).
		Int("states", m.StateCount()).
		Int("instances", m.InstanceCount()).
		Bool("restored", restored).
		Msg("definition loaded")
	return nil
}

// reload replaces the running machine with a fresh hydration of path. Instances
// keep their ids and the name of their state; ones whose state vanished restart
// unbound. A definition that fails to load leaves the running machine untouched.
func (s *session) reload(path string) error {
	doc, err := definition.Load(path)
	if err != nil {
		return err
	}
	return s.runner.Edit(func() error {
		s.mu.Lock()
		defer s.mu.Unlock()

		next, names, err := definition.HydrateIn(s.mod, doc, s.catalog)
		if err != nil {
			return err
		}
		if err := s.swap(doc, next, names); err != nil {
			return err
		}
		s.log.Info().
			Str("machine", doc.Name).
			Str("version", definition.ComputeVersion(doc)).
			Int("instances", next.InstanceCount()).
			Msg("definition reloaded")
		return nil
	})
}

// swap moves every instance of the running machine onto next, matching states by
// name, then deletes the old machine. If next cannot take the instances it is
// deleted instead and the running machine stays. The caller holds s.mu.
func (s *session) swap(doc *definition.MachineConfig, next *fsmx.Machine, names map[fsmx.StateID]string) error {
	snap := definition.LabelSnapshot(s.machine.Snapshot(), s.names)
	if _, err := next.Restore(definition.RemapSnapshot(snap, names)); err != nil {
		discard(next)
		return fmt.Errorf("restore into reloaded machine: %w", err)
	}
	discard(s.machine)
	s.doc, s.machine, s.names = doc, next, names
	return nil
}

// discard deletes m together with its instances.
func discard(m *fsmx.Machine) {
	for _, inst := range m.Instances() {
		_ = inst.Delete()
	}
	_ = m.Delete()
}

// stateName resolves a state id against the current definition.
func (s *session) stateName(id fsmx.StateID) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n, ok := s.names[id]; ok {
		return n
	}
	return fmt.Sprint(id)
}

// snapshot captures the current machine, named after its definition.
func (s *session) snapshot() fsmx.MachineSnapshot {
	var snap fsmx.MachineSnapshot
	s.runner.View(func() {
		s.mu.RLock()
		defer s.mu.RUnlock()
		snap = definition.LabelSnapshot(s.machine.Snapshot(), s.names)
		snap.Name = s.doc.Name
	})
	return snap
}

// save persists the current snapshot when a store is configured.
func (s *session) save(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	snap := s.snapshot()
	if err := s.store.Save(ctx, snap); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	s.log.Info().Str("key", production.SnapshotKey(snap)).Int("instances", len(snap.Instances)).Msg("snapshot saved")
	return nil
}

// summary renders where every instance stands, one line per state.
func (s *session) summary() map[string]int {
	out := make(map[string]int)
	s.runner.View(func() {
		s.mu.RLock()
		m, names := s.machine, s.names
		s.mu.RUnlock()
		for _, inst := range m.Instances() {
			name := "(unbound)"
			if st := inst.State(); st != nil {
				name = names[st.ID()]
			}
			out[name]++
		}
	})
	return out
}

// close tears the module down, excluding any reload still in flight.
func (s *session) close() {
	if s.runner == nil {
		s.mod.Exit()
		return
	}
	_ = s.runner.Edit(func() error {
		s.mod.Exit()
		return nil
	})
}
