// Copyright 2025 NetApp, Inc. All Rights Reserved.

package logging

import "context"

type LogLayer string

func (l LogLayer) String() string {
	return string(l)
}

const (
	LogLayerCore            = LogLayer("core")
	LogLayerCoreCache       = LogLayer("core_cache")
	LogLayerMutation        = LogLayer("mutation")
	LogLayerInvalidation    = LogLayer("invalidation")
	LogLayerLoader          = LogLayer("loader")
	LogLayerPersistentStore = LogLayer("persistent_store")
	LogLayerDashboard       = LogLayer("dashboard")
	LogLayerCLI             = LogLayer("cli")
	LogLayerNone            = LogLayer("none")
)

// WithLogLayer returns a context whose log entries are tagged with the given layer.
func WithLogLayer(ctx context.Context, layer LogLayer) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ContextKeyLogLayer, layer)
}
