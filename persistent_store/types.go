// Copyright 2025 NetApp, Inc. All Rights Reserved.

package persistentstore

import (
	"context"
)

type StoreType string

const (
	MemoryStore StoreType = "memory"
	RedisStore  StoreType = "redis"
)

// Document is one record in a collection. Documents round-trip through JSON, so numbers come
// back as float64.
type Document = map[string]any

// Client is the remote document store the dashboard reads from and mutates. Implementations
// return a KeyNotFoundErr store error for missing documents and a ConnectionError when the store
// cannot be reached.
type Client interface {
	GetType() StoreType
	Get(ctx context.Context, collection, id string) (Document, error)
	// Put creates or replaces a document.
	Put(ctx context.Context, collection, id string, doc Document) error
	Delete(ctx context.Context, collection, id string) error
	// List returns every document in a collection ordered by ID.
	List(ctx context.Context, collection string) ([]Document, error)
	Stop() error
}
