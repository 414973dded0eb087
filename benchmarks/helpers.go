// Package benchmarks provides shared helpers for benchmark tests.
package benchmarks

import (
	"fmt"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/comalice/fsmx"
	"github.com/comalice/fsmx/internal/definition"
	"github.com/comalice/fsmx/internal/extensibility"
)

// GenRingConfig creates n states linked in a cycle by unconditional links.
func GenRingConfig(n int) *definition.MachineConfig {
	if n < 1 {
		n = 1
	}
	doc := definition.New()
	doc.Name = fmt.Sprintf("ring_%d", n)
	for i := 0; i < n; i++ {
		doc.States = append(doc.States, definition.StateConfig{
			Name:  fmt.Sprintf("s%d", i),
			Links: []definition.LinkConfig{{To: fmt.Sprintf("s%d", (i+1)%n)}},
		})
	}
	return doc
}

// GenWideConfig creates one hub with numLinks guarded links where only the last
// guard holds, so every step scans the whole list.
func GenWideConfig(numLinks int) *definition.MachineConfig {
	if numLinks < 1 {
		numLinks = 1
	}
	doc := definition.New()
	doc.Name = fmt.Sprintf("wide_%d", numLinks)
	hub := definition.StateConfig{Name: "hub"}
	var targets []definition.StateConfig
	for i := 0; i < numLinks; i++ {
		target := fmt.Sprintf("t%d", i)
		when := "open == true"
		if i == numLinks-1 {
			when = "open == false"
		}
		hub.Links = append(hub.Links, definition.LinkConfig{To: target, When: when})
		targets = append(targets, definition.StateConfig{
			Name:  target,
			Links: []definition.LinkConfig{{To: "hub"}},
		})
	}
	doc.States = append([]definition.StateConfig{hub}, targets...)
	return doc
}

// Hydrate builds doc with a fresh catalog whose blackboard has open=false.
func Hydrate(doc *definition.MachineConfig) *fsmx.Machine {
	catalog := extensibility.NewCatalog(nil, zerolog.Nop())
	catalog.Board().Set("open", false)
	m, _, err := definition.Hydrate(doc, catalog)
	if err != nil {
		panic(err)
	}
	return m
}

// Populate creates n instances of m and steps each once so they are bound.
func Populate(m *fsmx.Machine, n int) {
	for i := 0; i < n; i++ {
		if _, err := m.CreateInstance(); err != nil {
			panic(err)
		}
	}
	if err := m.Update(); err != nil {
		panic(err)
	}
}

// GenSnapshotYAML generates YAML bytes for a snapshot of a ring with the given
// number of states and instances.
func GenSnapshotYAML(numStates, numInstances int) []byte {
	m := Hydrate(GenRingConfig(numStates))
	Populate(m, numInstances)
	if err := m.Update(); err != nil {
		panic(err)
	}
	data, err := yaml.Marshal(m.Snapshot())
	if err != nil {
		panic(err)
	}
	return data
}
