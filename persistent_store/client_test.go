// Copyright 2025 NetApp, Inc. All Rights Reserved.

package persistentstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobloop/querycache/config"
	"github.com/jobloop/querycache/utils/errors"
)

func TestNewClient(t *testing.T) {
	client, err := NewClient(config.StoreConfig{Type: config.MemoryStoreType})
	require.NoError(t, err)
	assert.Equal(t, MemoryStore, client.GetType())

	client, err = NewClient(config.StoreConfig{})
	require.NoError(t, err)
	assert.IsType(t, &InMemoryClient{}, client)

	client, err = NewClient(config.DefaultConfig().Store)
	require.NoError(t, err)
	assert.Equal(t, MemoryStore, client.GetType())

	redisCfg := config.DefaultConfig().Store
	redisCfg.Type = config.RedisStoreType
	client, err = NewClient(redisCfg)
	require.NoError(t, err)
	assert.IsType(t, &RetryingClient{}, client)
	assert.Equal(t, RedisStore, client.GetType())
	assert.NoError(t, client.Stop())

	_, err = NewClient(config.StoreConfig{Type: "etcd"})
	assert.True(t, errors.IsInvalidInputError(err))
}
