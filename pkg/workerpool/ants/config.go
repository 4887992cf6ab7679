// Copyright 2025 NetApp, Inc. All Rights Reserved.

package ants

import (
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/jobloop/querycache/utils/errors"
)

// Config holds the options for creating an ants worker pool.
type Config struct {
	// NumWorkers is the number of worker goroutines.
	NumWorkers int

	// PreAlloc pre-allocates the worker queue on pool creation.
	PreAlloc bool

	// NonBlocking makes Submit return ants.ErrPoolOverload instead of waiting when every worker
	// is busy.
	NonBlocking bool

	// ExpiryDuration is the period for cleaning up idle workers.
	ExpiryDuration time.Duration

	// PanicHandler receives the value of a task that panicked. Without one the panic kills the
	// worker and is printed by ants.
	PanicHandler func(any)
}

// Copy returns a copy of this configuration. The panic handler is shared.
func (c *Config) Copy() *Config {
	if c == nil {
		return nil
	}
	cfgCopy := *c
	return &cfgCopy
}

// ConfigOption is a functional option for configuring a worker pool.
type ConfigOption func(*Config)

func WithNumWorkers(n int) ConfigOption {
	return func(c *Config) {
		c.NumWorkers = n
	}
}

func WithPreAlloc(preAlloc bool) ConfigOption {
	return func(c *Config) {
		c.PreAlloc = preAlloc
	}
}

func WithNonBlocking(nonBlocking bool) ConfigOption {
	return func(c *Config) {
		c.NonBlocking = nonBlocking
	}
}

func WithExpiryDuration(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.ExpiryDuration = d
	}
}

func WithPanicHandler(handler func(any)) ConfigOption {
	return func(c *Config) {
		c.PanicHandler = handler
	}
}

// NewConfig creates a new Config with the provided options applied over the defaults.
func NewConfig(opts ...ConfigOption) *Config {
	cfg := &Config{
		NumWorkers:     defaultNumWorkers,
		ExpiryDuration: defaultExpiryDuration,
	}

	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// options translates the configuration into ants options.
func (c *Config) options() []ants.Option {
	opts := []ants.Option{
		ants.WithPreAlloc(c.PreAlloc),
		ants.WithNonblocking(c.NonBlocking),
	}
	if c.ExpiryDuration > 0 {
		opts = append(opts, ants.WithExpiryDuration(c.ExpiryDuration))
	}
	if c.PanicHandler != nil {
		opts = append(opts, ants.WithPanicHandler(c.PanicHandler))
	}
	return opts
}

// NewPool creates an ants pool from cfg. A nil configuration uses the defaults.
func NewPool(cfg *Config) (*ants.Pool, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.NumWorkers <= 0 {
		return nil, errors.InvalidInputError("worker pool size must be positive, got %d", cfg.NumWorkers)
	}
	pool, err := ants.NewPool(cfg.NumWorkers, cfg.options()...)
	if err != nil {
		return nil, errors.InvalidInputError("could not create worker pool; %v", err)
	}
	return pool, nil
}
