// Copyright 2025 NetApp, Inc. All Rights Reserved.

package ants

import (
	"runtime"
	"time"
)

const (
	// defaultExpiryDuration is how long a worker may sit idle before it is cleaned up.
	defaultExpiryDuration = 10 * time.Second
)

// defaultNumWorkers is the default number of workers (based on CPU count).
var defaultNumWorkers = runtime.NumCPU()

// DefaultConfig returns the default configuration for a single pool.
func DefaultConfig() *Config {
	return NewConfig()
}
