// Copyright 2025 NetApp, Inc. All Rights Reserved.

package persistentstore

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobloop/querycache/config"
	"github.com/jobloop/querycache/utils/errors"
)

// newTestRedisClient connects to the server named by REDIS_ADDR, skipping the test otherwise.
func newTestRedisClient(t *testing.T) *RedisClient {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	c := NewRedisClient(config.RedisConfig{Address: addr})
	c.prefix = "jobloop-test-" + uuid.NewString()
	require.NoError(t, c.Ping(context.Background()))
	t.Cleanup(func() { _ = c.Stop() })
	return c
}

func TestRedisClient_Unreachable(t *testing.T) {
	c := NewRedisClient(config.RedisConfig{Address: "127.0.0.1:1"})
	defer c.Stop()

	err := c.Ping(testCtx())
	assert.True(t, errors.IsConnectionError(err))
	assert.Equal(t, RedisStore, c.GetType())

	_, err = c.Get(testCtx(), testCollection, testJobID)
	assert.True(t, errors.IsConnectionError(err))
}

func TestRedisClient_RoundTrip(t *testing.T) {
	c := newTestRedisClient(t)

	_, err := c.Get(testCtx(), testCollection, testJobID)
	assert.True(t, MatchKeyNotFoundErr(err))

	require.NoError(t, c.Put(testCtx(), testCollection, testJobID, testJob()))
	require.NoError(t, c.Put(testCtx(), testCollection, "j0", Document{"id": "j0"}))

	doc, err := c.Get(testCtx(), testCollection, testJobID)
	require.NoError(t, err)
	assert.Equal(t, testJob(), doc)

	docs, err := c.List(testCtx(), testCollection)
	require.NoError(t, err)
	assert.Equal(t, []Document{{"id": "j0"}, testJob()}, docs)

	require.NoError(t, c.Delete(testCtx(), testCollection, "j0"))
	assert.True(t, MatchKeyNotFoundErr(c.Delete(testCtx(), testCollection, "j0")))

	require.NoError(t, c.Delete(testCtx(), testCollection, testJobID))
	docs, err = c.List(testCtx(), testCollection)
	require.NoError(t, err)
	assert.Empty(t, docs)
}
