// Copyright 2025 NetApp, Inc. All Rights Reserved.

package persistentstore

import (
	"github.com/jobloop/querycache/config"
	"github.com/jobloop/querycache/utils/errors"
)

// NewClient creates the store client named by cfg. Redis clients are wrapped so that connection
// failures are retried with backoff.
func NewClient(cfg config.StoreConfig) (Client, error) {
	switch cfg.Type {
	case config.MemoryStoreType, "":
		return NewInMemoryClient(), nil
	case config.RedisStoreType:
		return NewRetryingClient(NewRedisClient(cfg.Redis), cfg.Retry), nil
	default:
		return nil, errors.InvalidInputError("unknown store type: %s", cfg.Type)
	}
}
