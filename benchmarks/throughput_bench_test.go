// Package benchmarks provides performance benchmarks for update throughput.
package benchmarks

import (
	"fmt"
	"testing"

	"github.com/comalice/fsmx"
)

// BenchmarkInstanceSteps reports instance steps per second for growing batches
// sharing one ring definition.
func BenchmarkInstanceSteps(b *testing.B) {
	for _, n := range []int{1, 100, 10000} {
		b.Run(fmt.Sprintf("instances=%d", n), func(b *testing.B) {
			m := Hydrate(GenRingConfig(8))
			Populate(m, n)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if err := m.Update(); err != nil {
					b.Fatal(err)
				}
			}
			b.ReportMetric(float64(b.N*n)/b.Elapsed().Seconds(), "steps/s")
		})
	}
}

// BenchmarkModuleUpdate steps several machines through one module.
func BenchmarkModuleUpdate(b *testing.B) {
	mod := fsmx.NewModule()
	defer mod.Exit()
	for i := 0; i < 10; i++ {
		m, _, err := hydrateIn(mod, GenRingConfig(4))
		if err != nil {
			b.Fatal(err)
		}
		Populate(m, 100)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := mod.Update(); err != nil {
			b.Fatal(err)
		}
	}
}
