package testutil

import (
	"testing"

	"github.com/comalice/fsmx"
)

func TestRecorderLogsInCallOrder(t *testing.T) {
	r := NewRecorder()
	open := false

	r.Action("a")()
	if r.Condition("c", true)() != true {
		t.Error("condition should report its fixed result")
	}
	if r.Switch("s", &open)() {
		t.Error("switch should follow the flag")
	}
	open = true
	if !r.Switch("s", &open)() {
		t.Error("switch should follow the flag after it changes")
	}
	r.Observer()(fsmx.Transition{To: 3, Entered: true})
	r.Observer()(fsmx.Transition{From: 3, To: 4})

	want := []string{"a", "?c", "?s", "?s", "enter:3", "3->4"}
	got := r.Calls()
	if len(got) != len(want) {
		t.Fatalf("Calls() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Calls()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if n := r.Count("?s"); n != 2 {
		t.Errorf("Count(?s) = %d, want 2", n)
	}

	r.Reset()
	if len(r.Calls()) != 0 {
		t.Error("Reset should empty the log")
	}
}
