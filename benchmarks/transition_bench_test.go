package benchmarks

import (
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"github.com/comalice/fsmx"
	"github.com/comalice/fsmx/internal/definition"
	"github.com/comalice/fsmx/internal/extensibility"
)

func hydrateIn(mod *fsmx.Module, doc *definition.MachineConfig) (*fsmx.Machine, map[fsmx.StateID]string, error) {
	return definition.HydrateIn(mod, doc, extensibility.NewCatalog(nil, zerolog.Nop()))
}

// BenchmarkGuardScan measures link selection when only the last guard holds.
func BenchmarkGuardScan(b *testing.B) {
	for _, n := range []int{1, 8, 64} {
		b.Run(fmt.Sprintf("links=%d", n), func(b *testing.B) {
			m := Hydrate(GenWideConfig(n))
			Populate(m, 1)
			inst := m.Instances()[0]
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if err := inst.Update(); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkHydrate measures turning a document into a machine.
func BenchmarkHydrate(b *testing.B) {
	doc := GenRingConfig(64)
	catalog := extensibility.NewCatalog(nil, zerolog.Nop())
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m, _, err := definition.Hydrate(doc, catalog)
		if err != nil {
			b.Fatal(err)
		}
		_ = m.Delete()
	}
}
