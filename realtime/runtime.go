package realtime

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// ErrRunning is returned by Start while the tick loop is active.
var ErrRunning = errors.New("realtime: runner already started")

// DefaultTickRate is 60 ticks per second.
const DefaultTickRate = 16667 * time.Microsecond

// Stepper is anything advanced once per tick. *fsmx.Machine and *fsmx.Module
// both qualify.
type Stepper interface {
	Update() error
}

// Config configures a Runner.
type Config struct {
	TickRate time.Duration // Fixed tick period; DefaultTickRate when zero
	MaxTicks uint64        // The loop stops itself after this many ticks; zero runs until stopped
	Logger   zerolog.Logger
	OnTick   func(tick uint64) // Called after each tick, outside the runner lock
}

// Runner owns the tick loop for a set of targets.
type Runner struct {
	cfg     Config
	log     zerolog.Logger
	mu      sync.RWMutex // held for writing by ticks and edits, for reading by views
	targets []Stepper
	tickNum atomic.Uint64

	loopMu sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewRunner creates a stopped runner.
func NewRunner(cfg Config, targets ...Stepper) *Runner {
	if cfg.TickRate <= 0 {
		cfg.TickRate = DefaultTickRate
	}
	return &Runner{
		cfg:     cfg,
		log:     cfg.Logger.With().Str("component", "realtime").Logger(),
		targets: append([]Stepper(nil), targets...),
	}
}

// Add appends a target. It is safe to call while the loop runs.
func (r *Runner) Add(target Stepper) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.targets = append(r.targets, target)
}

// Edit runs fn with ticks excluded. Use it for every definition change made while
// the loop is running.
func (r *Runner) Edit(fn func() error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn()
}

// View runs fn while no tick or edit is in progress. Views may overlap each other.
func (r *Runner) View(fn func()) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn()
}

// TickNum returns the number of completed ticks.
func (r *Runner) TickNum() uint64 {
	return r.tickNum.Load()
}

// Start launches the tick loop. It returns ErrRunning if the loop is active.
func (r *Runner) Start(ctx context.Context) error {
	r.loopMu.Lock()
	defer r.loopMu.Unlock()
	if r.done != nil {
		select {
		case <-r.done:
		default:
			return ErrRunning
		}
	}
	if r.cancel != nil {
		r.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})
	go r.tickLoop(ctx, cancel, r.done)
	r.log.Debug().Dur("rate", r.cfg.TickRate).Uint64("max_ticks", r.cfg.MaxTicks).Msg("tick loop started")
	return nil
}

// Stop ends the tick loop and waits for the current tick to finish. Stopping a
// runner that is not running is a no-op.
func (r *Runner) Stop() {
	r.loopMu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel = nil
	r.loopMu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Done returns a channel closed when the loop exits, either through Stop, through
// context cancellation, or after MaxTicks. It is nil before the first Start.
func (r *Runner) Done() <-chan struct{} {
	r.loopMu.Lock()
	defer r.loopMu.Unlock()
	return r.done
}
