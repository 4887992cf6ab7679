// Copyright 2025 NetApp, Inc. All Rights Reserved.

package persistentstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jobloop/querycache/config"
	. "github.com/jobloop/querycache/logging"
)

// HandlerFunc performs one named remote operation against the store.
type HandlerFunc func(ctx context.Context, client Client, args any) (any, error)

// Dispatcher routes remote operation names to handlers and bounds every call with a timeout. It
// satisfies the mutation coordinator's RemoteOperation interface.
type Dispatcher struct {
	client  Client
	timeout time.Duration

	mutex    sync.RWMutex
	handlers map[string]HandlerFunc
}

func NewDispatcher(client Client) *Dispatcher {
	return &Dispatcher{
		client:   client,
		timeout:  config.PersistentStoreTimeout,
		handlers: make(map[string]HandlerFunc),
	}
}

// SetTimeout changes the per-call timeout. A non-positive value disables it.
func (d *Dispatcher) SetTimeout(timeout time.Duration) {
	d.timeout = timeout
}

// Register adds or replaces the handler for operation.
func (d *Dispatcher) Register(operation string, handler HandlerFunc) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.handlers[operation] = handler
}

// Operations returns the registered operation names, sorted.
func (d *Dispatcher) Operations() []string {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	operations := make([]string, 0, len(d.handlers))
	for operation := range d.handlers {
		operations = append(operations, operation)
	}
	sort.Strings(operations)
	return operations
}

func (d *Dispatcher) Client() Client {
	return d.client
}

func (d *Dispatcher) Invoke(ctx context.Context, operation string, args any) (any, error) {
	d.mutex.RLock()
	handler, ok := d.handlers[operation]
	d.mutex.RUnlock()
	if !ok {
		return nil, NewPersistentStoreError(UnknownOperation, operation)
	}

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	start := time.Now()
	result, err := handler(ctx, d.client, args)

	fields := LogFields{"operation": operation, "duration": time.Since(start)}
	if err != nil {
		Logc(WithLogLayer(ctx, LogLayerPersistentStore)).WithFields(fields).WithError(err).Debug(
			"Remote operation failed.")
		return nil, err
	}
	Logc(WithLogLayer(ctx, LogLayerPersistentStore)).WithFields(fields).Trace("Remote operation succeeded.")
	return result, nil
}
