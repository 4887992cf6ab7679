// Copyright 2025 NetApp, Inc. All Rights Reserved.

package persistentstore

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/jobloop/querycache/config"
	. "github.com/jobloop/querycache/logging"
	"github.com/jobloop/querycache/utils/errors"
)

// RetryingClient retries calls that fail with a ConnectionError using exponential backoff. Any
// other error, including a missing document, is returned immediately.
type RetryingClient struct {
	Client
	initialInterval time.Duration
	maxElapsed      time.Duration
}

func NewRetryingClient(inner Client, cfg config.RetryConfig) *RetryingClient {
	return &RetryingClient{
		Client:          inner,
		initialInterval: cfg.InitialInterval,
		maxElapsed:      cfg.MaxElapsed,
	}
}

func (c *RetryingClient) retry(ctx context.Context, description string, op func() error) error {
	retryOp := func() error {
		err := op()
		if err != nil && !errors.IsConnectionError(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	retryNotify := func(err error, duration time.Duration) {
		Logc(WithLogLayer(ctx, LogLayerPersistentStore)).WithFields(LogFields{
			"call":      description,
			"increment": duration,
		}).WithError(err).Debug("Document store unavailable, retrying.")
	}

	retryBackoff := backoff.NewExponentialBackOff()
	if c.initialInterval > 0 {
		retryBackoff.InitialInterval = c.initialInterval
	}
	retryBackoff.MaxElapsedTime = config.DefaultRetryMaxElapsed
	if c.maxElapsed > 0 {
		retryBackoff.MaxElapsedTime = c.maxElapsed
	}

	return backoff.RetryNotify(retryOp, backoff.WithContext(retryBackoff, ctx), retryNotify)
}

func (c *RetryingClient) Get(ctx context.Context, collection, id string) (Document, error) {
	var doc Document
	err := c.retry(ctx, "get "+documentKey(collection, id), func() error {
		var err error
		doc, err = c.Client.Get(ctx, collection, id)
		return err
	})
	return doc, err
}

func (c *RetryingClient) Put(ctx context.Context, collection, id string, doc Document) error {
	return c.retry(ctx, "put "+documentKey(collection, id), func() error {
		return c.Client.Put(ctx, collection, id, doc)
	})
}

func (c *RetryingClient) Delete(ctx context.Context, collection, id string) error {
	return c.retry(ctx, "delete "+documentKey(collection, id), func() error {
		return c.Client.Delete(ctx, collection, id)
	})
}

func (c *RetryingClient) List(ctx context.Context, collection string) ([]Document, error) {
	var docs []Document
	err := c.retry(ctx, "list "+collection, func() error {
		var err error
		docs, err = c.Client.List(ctx, collection)
		return err
	})
	return docs, err
}
