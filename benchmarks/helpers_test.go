package benchmarks

import (
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/comalice/fsmx"
)

func TestGeneratedConfigsValidate(t *testing.T) {
	for _, doc := range []interface{ Validate() error }{
		GenRingConfig(0), GenRingConfig(5), GenWideConfig(0), GenWideConfig(6),
	} {
		if err := doc.Validate(); err != nil {
			t.Errorf("generated config invalid: %v", err)
		}
	}
}

func TestWideConfigTakesLastLink(t *testing.T) {
	m := Hydrate(GenWideConfig(4))
	Populate(m, 1)
	inst := m.Instances()[0]
	if err := inst.Update(); err != nil {
		t.Fatal(err)
	}
	// hub is id 0, targets t0..t3 are 1..4.
	if got := inst.State().ID(); got != 4 {
		t.Errorf("state = %d, want 4 (t3)", got)
	}
}

func TestGenSnapshotYAML(t *testing.T) {
	var snap fsmx.MachineSnapshot
	if err := yaml.Unmarshal(GenSnapshotYAML(3, 10), &snap); err != nil {
		t.Fatal(err)
	}
	if len(snap.Instances) != 10 {
		t.Fatalf("instances = %d, want 10", len(snap.Instances))
	}
	for _, is := range snap.Instances {
		if !is.Bound || is.State != 1 {
			t.Errorf("instance %s at %d (bound %v), want s1", is.ID, is.State, is.Bound)
		}
	}
}
