package fsmx_test

import (
	"errors"
	"testing"

	. "github.com/comalice/fsmx"
	"github.com/comalice/fsmx/testutil"
)

func equalStringSlices(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func mustInstance(t *testing.T, m *Machine) *Instance {
	t.Helper()
	inst, err := m.CreateInstance()
	if err != nil {
		t.Fatal(err)
	}
	return inst
}

func TestCreateInstanceUnbound(t *testing.T) {
	m := mustMachine(t, DefaultConfig())
	inst := mustInstance(t, m)

	if inst.Machine() != m {
		t.Error("Machine() should return the bound machine")
	}
	if inst.State() != nil {
		t.Error("new instance should have no current state")
	}
	if m.InstanceCount() != 1 {
		t.Errorf("InstanceCount() = %d, want 1", m.InstanceCount())
	}
}

func TestUpdateWithoutInitialState(t *testing.T) {
	m := mustMachine(t, DefaultConfig())
	inst := mustInstance(t, m)

	if err := inst.Update(); !errors.Is(err, ErrNoInitialState) {
		t.Fatalf("expected ErrNoInitialState, got %v", err)
	}
	if inst.State() != nil {
		t.Error("failed update must leave the instance unbound")
	}

	// Recovers once an initial state exists.
	s := mustState(t, m, 1)
	if err := inst.Update(); err != nil {
		t.Fatal(err)
	}
	if inst.State() != s {
		t.Error("instance should enter the new initial state")
	}
}

func TestFirstUpdateOnlyEnters(t *testing.T) {
	rec := testutil.NewRecorder()
	m := mustMachine(t, DefaultConfig())
	a, _ := m.AddState(1, rec.Action("enter:A"), rec.Action("exec:A"), rec.Action("exit:A"))
	b, _ := m.AddState(2, rec.Action("enter:B"), rec.Action("exec:B"), rec.Action("exit:B"))
	mustLink(t, m, a, b, rec.Condition("A->B", true))

	inst := mustInstance(t, m)
	if err := inst.Update(); err != nil {
		t.Fatal(err)
	}
	if got, want := rec.Calls(), []string{"enter:A"}; !equalStringSlices(got, want) {
		t.Fatalf("first update calls = %v, want %v", got, want)
	}

	rec.Reset()
	if err := inst.Update(); err != nil {
		t.Fatal(err)
	}
	want := []string{"exec:A", "?A->B", "exit:A", "enter:B"}
	if got := rec.Calls(); !equalStringSlices(got, want) {
		t.Fatalf("second update calls = %v, want %v", got, want)
	}
	if inst.State() != b {
		t.Error("instance should be in B")
	}
}

func TestDeterministicGuardOrder(t *testing.T) {
	rec := testutil.NewRecorder()
	m := mustMachine(t, DefaultConfig())
	s := mustState(t, m, 1)
	d1 := mustState(t, m, 2)
	d2 := mustState(t, m, 3)
	d3 := mustState(t, m, 4)
	mustLink(t, m, s, d1, rec.Condition("L1", false))
	mustLink(t, m, s, d2, rec.Condition("L2", true))
	mustLink(t, m, s, d3, rec.Condition("L3", true))

	for i := 0; i < 20; i++ {
		inst := mustInstance(t, m)
		_ = inst.Update() // enter S
		rec.Reset()
		if err := inst.Update(); err != nil {
			t.Fatal(err)
		}
		if inst.State() != d2 {
			t.Fatalf("run %d: transitioned to %v, want L2's destination", i, inst.State())
		}
		if rec.Count("?L3") != 0 {
			t.Fatal("guard after the first satisfied one must not be evaluated")
		}
	}
}

func TestUnconditionalLink(t *testing.T) {
	rec := testutil.NewRecorder()
	m := mustMachine(t, DefaultConfig())
	s := mustState(t, m, 1)
	blocked := mustState(t, m, 2)
	open := mustState(t, m, 3)
	mustLink(t, m, s, blocked, rec.Condition("blocked", false))
	mustLink(t, m, s, open, nil)

	inst := mustInstance(t, m)
	_ = inst.Update()
	if err := inst.Update(); err != nil {
		t.Fatal(err)
	}
	if inst.State() != open {
		t.Error("unconditional link should be taken")
	}
	if rec.Count("?blocked") != 1 {
		t.Error("earlier guard should be evaluated exactly once")
	}
}

func TestNoTransitionStepIsIdempotent(t *testing.T) {
	rec := testutil.NewRecorder()
	m := mustMachine(t, DefaultConfig())
	s, _ := m.AddState(1, rec.Action("enter"), rec.Action("exec"), rec.Action("exit"))

	inst := mustInstance(t, m)
	_ = inst.Update()
	for i := 1; i <= 5; i++ {
		if err := inst.Update(); err != nil {
			t.Fatalf("update %d: %v", i, err)
		}
		if inst.State() != s {
			t.Fatalf("update %d changed state", i)
		}
		if got := rec.Count("exec"); got != i {
			t.Fatalf("after %d updates exec ran %d times", i, got)
		}
	}
	if rec.Count("enter") != 1 || rec.Count("exit") != 0 {
		t.Error("no-transition steps must not run enter or exit")
	}
}

func TestSelfLoopReenters(t *testing.T) {
	rec := testutil.NewRecorder()
	m := mustMachine(t, DefaultConfig())
	s, _ := m.AddState(1, rec.Action("enter"), rec.Action("exec"), rec.Action("exit"))
	mustLink(t, m, s, s, nil)

	inst := mustInstance(t, m)
	_ = inst.Update()
	rec.Reset()
	_ = inst.Update()
	if got, want := rec.Calls(), []string{"exec", "exit", "enter"}; !equalStringSlices(got, want) {
		t.Errorf("calls = %v, want %v", got, want)
	}
}

func TestInstanceInvalidationOnRemoval(t *testing.T) {
	m := mustMachine(t, DefaultConfig())
	a := mustState(t, m, 1)
	s := mustState(t, m, 2)
	mustLink(t, m, a, s, nil)

	inst := mustInstance(t, m)
	_ = inst.Update() // enter A
	_ = inst.Update() // A -> S
	if inst.State() != s {
		t.Fatal("setup: instance should be in S")
	}

	if err := m.RemoveState(s, true); err != nil {
		t.Fatal(err)
	}
	if inst.State() != nil {
		t.Fatal("instance on a removed state must become unbound")
	}
	if err := inst.Update(); err != nil {
		t.Fatalf("update should re-enter the initial state: %v", err)
	}
	if inst.State() != a {
		t.Error("instance should be back in the initial state")
	}

	// Without an initial state the next update fails but does not panic.
	if err := m.RemoveState(a, true); err != nil {
		t.Fatal(err)
	}
	if err := inst.Update(); !errors.Is(err, ErrNoInitialState) {
		t.Errorf("expected ErrNoInitialState, got %v", err)
	}
}

func TestExecuteRemovingOwnState(t *testing.T) {
	m := mustMachine(t, DefaultConfig())
	var self *State
	var removeErr error
	a := mustState(t, m, 1)
	self, _ = m.AddState(2, nil, func() { removeErr = m.RemoveState(self, true) }, nil)
	mustLink(t, m, self, a, nil)
	if err := m.SetInitState(self); err != nil {
		t.Fatal(err)
	}

	inst := mustInstance(t, m)
	_ = inst.Update()
	if err := inst.Update(); err != nil {
		t.Fatal(err)
	}
	if removeErr != nil {
		t.Fatal(removeErr)
	}
	if inst.State() != nil {
		t.Error("instance should be unbound after its state removed itself")
	}
}

func TestDeleteInstance(t *testing.T) {
	m := mustMachine(t, DefaultConfig())
	mustState(t, m, 1)
	keep := mustInstance(t, m)
	gone := mustInstance(t, m)

	if err := gone.Delete(); err != nil {
		t.Fatal(err)
	}
	if err := gone.Delete(); err != nil {
		t.Errorf("second Delete should succeed, got %v", err)
	}
	if !gone.Deleted() {
		t.Error("Deleted() should report true")
	}
	if err := gone.Update(); !errors.Is(err, ErrInvalidInstance) {
		t.Errorf("expected ErrInvalidInstance, got %v", err)
	}
	if m.InstanceCount() != 1 || m.Instances()[0] != keep {
		t.Error("deleting one instance must not affect the others")
	}
	if m.StateCount() != 1 {
		t.Error("deleting an instance must not touch the machine")
	}
}

func TestInstanceOfDeletedMachine(t *testing.T) {
	m := mustMachine(t, DefaultConfig())
	mustState(t, m, 1)
	inst := mustInstance(t, m)
	_ = inst.Update()

	if err := m.Delete(); err != nil {
		t.Fatal(err)
	}
	if err := inst.Update(); !errors.Is(err, ErrInvalidMachine) {
		t.Errorf("expected ErrInvalidMachine, got %v", err)
	}
	if err := inst.Delete(); err != nil {
		t.Errorf("Delete after machine deletion should succeed, got %v", err)
	}
}

func TestBatchUpdate(t *testing.T) {
	m := mustMachine(t, DefaultConfig())
	a := mustState(t, m, 1)
	b := mustState(t, m, 2)
	mustLink(t, m, a, b, nil)
	mustLink(t, m, b, a, nil)

	insts := make([]*Instance, 4)
	for i := range insts {
		insts[i] = mustInstance(t, m)
	}
	// Stagger: the first two are one step ahead.
	_ = insts[0].Update()
	_ = insts[1].Update()

	if err := m.Update(); err != nil {
		t.Fatal(err)
	}
	if insts[0].State() != b || insts[1].State() != b {
		t.Error("advanced instances should move to B")
	}
	if insts[2].State() != a || insts[3].State() != a {
		t.Error("fresh instances should enter A")
	}
}

func TestBatchUpdateContinuesPastFailures(t *testing.T) {
	rec := testutil.NewRecorder()
	m := mustMachine(t, DefaultConfig())
	a := mustState(t, m, 1)
	b, _ := m.AddState(2, nil, rec.Action("exec:B"), nil)
	mustLink(t, m, a, b, nil)

	unbound := mustInstance(t, m) // updated first, fails
	moved := mustInstance(t, m)
	_ = moved.Update() // enter A
	_ = moved.Update() // A -> B

	// Removing A leaves the machine without an initial state.
	if err := m.RemoveState(a, true); err != nil {
		t.Fatal(err)
	}
	if err := unbound.Update(); !errors.Is(err, ErrNoInitialState) {
		t.Fatalf("setup: expected ErrNoInitialState, got %v", err)
	}

	if err := m.Update(); err != nil {
		t.Fatalf("batch update should not fail on per-instance errors: %v", err)
	}
	if unbound.State() != nil {
		t.Error("instance without an initial state stays unbound")
	}
	if rec.Count("exec:B") != 1 {
		t.Error("later instances must still be updated")
	}
}

func TestEndToEndScenario(t *testing.T) {
	rec := testutil.NewRecorder()
	p1 := false
	m := mustMachine(t, DefaultConfig())
	a, _ := m.AddState(1, rec.Action("enter:A"), rec.Action("exec:A"), rec.Action("exit:A"))
	b, _ := m.AddState(2, rec.Action("enter:B"), nil, nil)
	c, _ := m.AddState(3, rec.Action("enter:C"), nil, nil)
	mustLink(t, m, a, b, rec.Switch("P1", &p1))
	mustLink(t, m, a, c, nil)
	_ = b

	inst := mustInstance(t, m)

	if err := inst.Update(); err != nil {
		t.Fatal(err)
	}
	if inst.State() != a || !equalStringSlices(rec.Calls(), []string{"enter:A"}) {
		t.Fatalf("update #1: state=%v calls=%v", inst.State(), rec.Calls())
	}

	rec.Reset()
	if err := inst.Update(); err != nil {
		t.Fatal(err)
	}
	want := []string{"exec:A", "?P1", "exit:A", "enter:C"}
	if got := rec.Calls(); !equalStringSlices(got, want) {
		t.Errorf("update #2 calls = %v, want %v", got, want)
	}
	if inst.State() != c {
		t.Errorf("update #2 state = %v, want C", inst.State())
	}
}

func TestObserverReceivesTransitions(t *testing.T) {
	rec := testutil.NewRecorder()
	m, err := NewMachine(DefaultConfig(), WithObserver(rec.Observer()))
	if err != nil {
		t.Fatal(err)
	}
	a := mustState(t, m, 1)
	b := mustState(t, m, 2)
	mustLink(t, m, a, b, nil)

	inst := mustInstance(t, m)
	_ = inst.Update()
	_ = inst.Update()
	_ = inst.Update() // B has no links

	if got, want := rec.Calls(), []string{"enter:1", "1->2"}; !equalStringSlices(got, want) {
		t.Errorf("observer calls = %v, want %v", got, want)
	}
}
