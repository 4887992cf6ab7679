// Copyright 2025 NetApp, Inc. All Rights Reserved.

package config

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig(afero.NewMemMapFs(), "")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_OverridesDefaults(t *testing.T) {
	fs := afero.NewMemMapFs()
	content := `
cache:
  idleEviction: 90s
mutation:
  serializeOverlapping: true
loader:
  refreshWorkers: 2
store:
  type: redis
  redis:
    address: redis.internal:6380
    db: 3
  retry:
    maxElapsed: 2s
logging:
  level: debug
  format: json
`
	require.NoError(t, afero.WriteFile(fs, "/etc/jobloop/config.yaml", []byte(content), 0o644))

	cfg, err := LoadConfig(fs, "/etc/jobloop/config.yaml")
	require.NoError(t, err)

	assert.Equal(t, 90*time.Second, cfg.Cache.IdleEviction)
	assert.Equal(t, DefaultEvictionInterval, cfg.Cache.EvictionInterval, "unset fields keep defaults")
	assert.True(t, cfg.Mutation.SerializeOverlapping)
	assert.Equal(t, 2, cfg.Loader.RefreshWorkers)
	assert.Equal(t, DefaultRefreshRate, cfg.Loader.RefreshRate)
	assert.Equal(t, RedisStoreType, cfg.Store.Type)
	assert.Equal(t, "redis.internal:6380", cfg.Store.Redis.Address)
	assert.Equal(t, 3, cfg.Store.Redis.DB)
	assert.Equal(t, 2*time.Second, cfg.Store.Retry.MaxElapsed)
	assert.Equal(t, DefaultRetryInitial, cfg.Store.Retry.InitialInterval)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadConfig_Errors(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/bad.yaml", []byte("cache: [not, a, map"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/invalid.yaml", []byte("store:\n  type: etcd\n"), 0o644))

	tests := []struct {
		name string
		path string
	}{
		{"missing file", "/missing.yaml"},
		{"malformed yaml", "/bad.yaml"},
		{"invalid store type", "/invalid.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig(fs, tt.path)
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"negative idle eviction", func(c *Config) { c.Cache.IdleEviction = -time.Second }, true},
		{"negative eviction interval", func(c *Config) { c.Cache.EvictionInterval = -time.Second }, true},
		{"zero workers", func(c *Config) { c.Loader.RefreshWorkers = 0 }, true},
		{"zero rate", func(c *Config) { c.Loader.RefreshRate = 0 }, true},
		{"zero burst", func(c *Config) { c.Loader.RefreshBurst = 0 }, true},
		{"redis without address", func(c *Config) {
			c.Store.Type = RedisStoreType
			c.Store.Redis.Address = ""
		}, true},
		{"negative retry", func(c *Config) { c.Store.Retry.MaxElapsed = -time.Second }, true},
		{"zero idle eviction disables eviction", func(c *Config) { c.Cache.IdleEviction = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
