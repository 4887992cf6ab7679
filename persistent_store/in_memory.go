// Copyright 2025 NetApp, Inc. All Rights Reserved.

package persistentstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/brunoga/deep"
)

// InMemoryClient is a map-backed Client for tests and local simulation. Documents are copied on
// the way in and out. Failures and latency can be injected per collection.
type InMemoryClient struct {
	mutex       sync.RWMutex
	collections map[string]map[string]Document
	failures    map[string][]error
	latency     time.Duration
	writes      int
}

func NewInMemoryClient() *InMemoryClient {
	return &InMemoryClient{
		collections: make(map[string]map[string]Document),
		failures:    make(map[string][]error),
	}
}

func (c *InMemoryClient) GetType() StoreType {
	return MemoryStore
}

// Stop drops every stored document and pending injected failure.
func (c *InMemoryClient) Stop() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.collections = make(map[string]map[string]Document)
	c.failures = make(map[string][]error)
	c.writes = 0
	return nil
}

// FailNext makes the next call touching collection return err. Calls queue up.
func (c *InMemoryClient) FailNext(collection string, err error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.failures[collection] = append(c.failures[collection], err)
}

// SetLatency delays every call by d, or until the call's context is done.
func (c *InMemoryClient) SetLatency(d time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.latency = d
}

// Writes returns the number of successful Put and Delete calls.
func (c *InMemoryClient) Writes() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return c.writes
}

// begin applies injected latency and failures. It must be called without the lock held.
func (c *InMemoryClient) begin(ctx context.Context, collection string) error {
	c.mutex.RLock()
	latency := c.latency
	c.mutex.RUnlock()

	if latency > 0 {
		timer := time.NewTimer(latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	queued := c.failures[collection]
	if len(queued) == 0 {
		return nil
	}
	err := queued[0]
	if len(queued) == 1 {
		delete(c.failures, collection)
	} else {
		c.failures[collection] = queued[1:]
	}
	return err
}

func (c *InMemoryClient) Get(ctx context.Context, collection, id string) (Document, error) {
	if err := c.begin(ctx, collection); err != nil {
		return nil, err
	}

	c.mutex.RLock()
	defer c.mutex.RUnlock()

	doc, ok := c.collections[collection][id]
	if !ok {
		return nil, NewPersistentStoreError(KeyNotFoundErr, documentKey(collection, id))
	}
	return deep.Copy(doc)
}

func (c *InMemoryClient) Put(ctx context.Context, collection, id string, doc Document) error {
	if err := c.begin(ctx, collection); err != nil {
		return err
	}
	if doc == nil {
		return NewPersistentStoreError(InvalidDocErr, documentKey(collection, id))
	}
	docCopy, err := deep.Copy(doc)
	if err != nil {
		return NewPersistentStoreError(InvalidDocErr, documentKey(collection, id))
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	docs, ok := c.collections[collection]
	if !ok {
		docs = make(map[string]Document)
		c.collections[collection] = docs
	}
	docs[id] = docCopy
	c.writes++
	return nil
}

func (c *InMemoryClient) Delete(ctx context.Context, collection, id string) error {
	if err := c.begin(ctx, collection); err != nil {
		return err
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	docs := c.collections[collection]
	if _, ok := docs[id]; !ok {
		return NewPersistentStoreError(KeyNotFoundErr, documentKey(collection, id))
	}
	delete(docs, id)
	if len(docs) == 0 {
		delete(c.collections, collection)
	}
	c.writes++
	return nil
}

func (c *InMemoryClient) List(ctx context.Context, collection string) ([]Document, error) {
	if err := c.begin(ctx, collection); err != nil {
		return nil, err
	}

	c.mutex.RLock()
	defer c.mutex.RUnlock()

	docs := c.collections[collection]
	ids := make([]string, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	result := make([]Document, 0, len(ids))
	for _, id := range ids {
		docCopy, err := deep.Copy(docs[id])
		if err != nil {
			return nil, NewPersistentStoreError(InvalidDocErr, documentKey(collection, id))
		}
		result = append(result, docCopy)
	}
	return result, nil
}
