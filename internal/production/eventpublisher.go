package production

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/comalice/fsmx"
)

// ChannelPublisher forwards transitions to a Go channel. Publishing never blocks:
// when the channel is full the transition is dropped and counted.
type ChannelPublisher struct {
	mu      sync.RWMutex
	ch      chan<- fsmx.Transition
	closed  bool
	dropped atomic.Uint64
}

// NewChannelPublisher creates a ChannelPublisher with the given output channel.
func NewChannelPublisher(ch chan<- fsmx.Transition) *ChannelPublisher {
	return &ChannelPublisher{ch: ch}
}

// Publish offers t to the channel.
func (p *ChannelPublisher) Publish(ctx context.Context, t fsmx.Transition) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		p.dropped.Add(1)
		return nil
	}
	select {
	case p.ch <- t:
	default:
		p.dropped.Add(1)
	}
	return nil
}

// Observer adapts the publisher for fsmx.WithObserver.
func (p *ChannelPublisher) Observer() fsmx.Observer {
	return func(t fsmx.Transition) {
		_ = p.Publish(context.Background(), t)
	}
}

// Dropped returns how many transitions were discarded.
func (p *ChannelPublisher) Dropped() uint64 { return p.dropped.Load() }

// Close closes the output channel. Later publishes are dropped.
func (p *ChannelPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.closed = true
		close(p.ch)
	}
	return nil
}
