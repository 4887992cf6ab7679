// Copyright 2025 NetApp, Inc. All Rights Reserved.

package config

import (
	"fmt"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

const (
	/* Misc. constants */
	OrchestratorName = "jobloop"
	CLIName          = "jobloopctl"

	/* Cache constants */
	DefaultIdleEviction     = 5 * time.Minute
	DefaultEvictionInterval = 30 * time.Second

	/* Loader constants */
	DefaultRefreshWorkers = 4
	DefaultRefreshRate    = 20.0
	DefaultRefreshBurst   = 5

	/* Persistent store constants */
	MemoryStoreType        = "memory"
	RedisStoreType         = "redis"
	DefaultRedisAddress    = "localhost:6379"
	DefaultRetryInitial    = 100 * time.Millisecond
	DefaultRetryMaxElapsed = 5 * time.Second
	PersistentStoreTimeout = 10 * time.Second

	/* Logging constants */
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

var (
	// BuildHash is the git hash the binary was built from
	BuildHash = "unknown"

	// BuildType is the type of build: custom, beta or stable
	BuildType = "custom"

	// BuildTime is the date and time the binary was built
	BuildTime = "unknown"

	// Version is the release version of the binary
	Version = "0.1.0"
)

// Config is the on-disk configuration document.
type Config struct {
	Cache    CacheConfig    `yaml:"cache"`
	Mutation MutationConfig `yaml:"mutation"`
	Loader   LoaderConfig   `yaml:"loader"`
	Store    StoreConfig    `yaml:"store"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type CacheConfig struct {
	// IdleEviction is how long an entry without subscribers survives after its last access.
	IdleEviction time.Duration `yaml:"idleEviction"`
	// EvictionInterval is how often the janitor sweeps for idle entries.
	EvictionInterval time.Duration `yaml:"evictionInterval"`
}

type MutationConfig struct {
	// SerializeOverlapping queues mutations that patch the same cache key. Off by default, so
	// overlapping mutations compose last-applied-wins.
	SerializeOverlapping bool `yaml:"serializeOverlapping"`
}

type LoaderConfig struct {
	RefreshWorkers int     `yaml:"refreshWorkers"`
	RefreshRate    float64 `yaml:"refreshRate"`
	RefreshBurst   int     `yaml:"refreshBurst"`
}

type StoreConfig struct {
	Type  string      `yaml:"type"`
	Redis RedisConfig `yaml:"redis"`
	Retry RetryConfig `yaml:"retry"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type RetryConfig struct {
	InitialInterval time.Duration `yaml:"initialInterval"`
	MaxElapsed      time.Duration `yaml:"maxElapsed"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns a configuration with every field set to its default.
func DefaultConfig() *Config {
	return &Config{
		Cache: CacheConfig{
			IdleEviction:     DefaultIdleEviction,
			EvictionInterval: DefaultEvictionInterval,
		},
		Loader: LoaderConfig{
			RefreshWorkers: DefaultRefreshWorkers,
			RefreshRate:    DefaultRefreshRate,
			RefreshBurst:   DefaultRefreshBurst,
		},
		Store: StoreConfig{
			Type:  MemoryStoreType,
			Redis: RedisConfig{Address: DefaultRedisAddress},
			Retry: RetryConfig{
				InitialInterval: DefaultRetryInitial,
				MaxElapsed:      DefaultRetryMaxElapsed,
			},
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// LoadConfig reads a YAML configuration file from fs. Fields absent from the file keep their
// defaults. An empty path returns the defaults.
func LoadConfig(fs afero.Fs, path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("could not read config file %s; %v", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("could not parse config file %s; %v", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the components cannot run with.
func (c *Config) Validate() error {
	if c.Cache.IdleEviction < 0 {
		return fmt.Errorf("cache.idleEviction must be greater than or equal to 0")
	}
	if c.Cache.EvictionInterval < 0 {
		return fmt.Errorf("cache.evictionInterval must be greater than or equal to 0")
	}
	if c.Loader.RefreshWorkers <= 0 {
		return fmt.Errorf("loader.refreshWorkers must be greater than 0")
	}
	if c.Loader.RefreshRate <= 0 {
		return fmt.Errorf("loader.refreshRate must be greater than 0")
	}
	if c.Loader.RefreshBurst <= 0 {
		return fmt.Errorf("loader.refreshBurst must be greater than 0")
	}
	switch c.Store.Type {
	case MemoryStoreType:
	case RedisStoreType:
		if c.Store.Redis.Address == "" {
			return fmt.Errorf("store.redis.address is required for the redis store")
		}
	default:
		return fmt.Errorf("unknown store type: %s", c.Store.Type)
	}
	if c.Store.Retry.MaxElapsed < 0 || c.Store.Retry.InitialInterval < 0 {
		return fmt.Errorf("store.retry intervals must be greater than or equal to 0")
	}
	return nil
}
