package fsmx

import "github.com/rs/zerolog"

// Option applies configuration to a Machine or a Module via the functional options pattern.
type Option func(*options)

type options struct {
	logger   zerolog.Logger
	observer Observer
	registry Registry
}

func defaultOptions() options {
	return options{logger: zerolog.Nop()}
}

func applyOptions(o *options, opts []Option) {
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
}

// WithLogger configures structured logging. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithObserver registers a callback that receives every instance transition.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		o.observer = obs
	}
}

// WithRegistry registers the machine into r on creation and removes it on Delete.
func WithRegistry(r Registry) Option {
	return func(o *options) {
		o.registry = r
	}
}
