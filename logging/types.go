// Copyright 2025 NetApp, Inc. All Rights Reserved.

package logging

import (
	log "github.com/sirupsen/logrus"
)

const (
	ContextKeyRequestID     ContextKey = "requestID"
	ContextKeyRequestSource ContextKey = "requestSource"
	ContextKeyLogLayer      ContextKey = "logLayer"
	ContextKeyUserID        ContextKey = "userID"

	ContextSourceCLI      = "CLI"
	ContextSourceUI       = "UI"
	ContextSourceInternal = "Internal"
	ContextSourcePeriodic = "Periodic"
)

// ContextKey is used for context.Context value. The value requires a key that is not primitive type.
type ContextKey string

type LogFields = log.Fields
