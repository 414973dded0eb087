// Package testutil holds helpers shared by the fsmx test suites.
package testutil

import (
	"fmt"
	"sync"

	"github.com/comalice/fsmx"
)

// Recorder builds actions and conditions that append a label to a shared call log,
// so tests can assert on the exact callback sequence of an update.
type Recorder struct {
	mu    sync.Mutex
	calls []string
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Action returns an action that records label.
func (r *Recorder) Action(label string) fsmx.Action {
	return func() { r.record(label) }
}

// Condition returns a condition that records "?"+label and reports result.
func (r *Recorder) Condition(label string, result bool) fsmx.Condition {
	return func() bool {
		r.record("?" + label)
		return result
	}
}

// Switch returns a condition that records "?"+label and reports *flag at call time.
func (r *Recorder) Switch(label string, flag *bool) fsmx.Condition {
	return func() bool {
		r.record("?" + label)
		return *flag
	}
}

// Observer returns an observer recording "enter:<to>" or "<from>-><to>".
func (r *Recorder) Observer() fsmx.Observer {
	return func(t fsmx.Transition) {
		if t.Entered {
			r.record(fmt.Sprintf("enter:%d", t.To))
			return
		}
		r.record(fmt.Sprintf("%d->%d", t.From, t.To))
	}
}

// Calls returns a copy of the log.
func (r *Recorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// Count returns how many times label was recorded.
func (r *Recorder) Count(label string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c == label {
			n++
		}
	}
	return n
}

// Reset clears the log.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = r.calls[:0]
}

func (r *Recorder) record(label string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, label)
}
