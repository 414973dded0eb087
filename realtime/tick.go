package realtime

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Tick performs one step of every target synchronously. Target errors are joined;
// a failing target does not stop the others.
func (r *Runner) Tick() error {
	n, err := r.step()
	if r.cfg.OnTick != nil {
		r.cfg.OnTick(n)
	}
	return err
}

func (r *Runner) step() (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	// Counted even when a callback panics.
	defer r.tickNum.Add(1)

	var errs []error
	for i, t := range r.targets {
		if err := t.Update(); err != nil {
			errs = append(errs, fmt.Errorf("target %d: %w", i, err))
		}
	}
	return r.tickNum.Load() + 1, errors.Join(errs...)
}

// tickLoop releases its context on exit, whether stopped or finished.
func (r *Runner) tickLoop(ctx context.Context, cancel context.CancelFunc, done chan struct{}) {
	defer close(done)
	defer cancel()
	ticker := time.NewTicker(r.cfg.TickRate)
	defer ticker.Stop()

	var ran uint64
	for {
		select {
		case <-ctx.Done():
			r.log.Debug().Uint64("tick", r.TickNum()).Msg("tick loop stopped")
			return
		case <-ticker.C:
			r.safeTick()
			ran++
			if r.cfg.MaxTicks > 0 && ran >= r.cfg.MaxTicks {
				r.log.Debug().Uint64("tick", r.TickNum()).Msg("tick limit reached")
				return
			}
		}
	}
}

// safeTick keeps the loop alive across panicking callbacks.
func (r *Runner) safeTick() {
	defer func() {
		if p := recover(); p != nil {
			r.log.Error().Interface("panic", p).Uint64("tick", r.TickNum()).Msg("tick panicked")
		}
	}()
	if err := r.Tick(); err != nil {
		r.log.Warn().Err(err).Uint64("tick", r.TickNum()).Msg("tick failed")
	}
}
