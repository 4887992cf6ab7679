// Copyright 2025 NetApp, Inc. All Rights Reserved.

package logging

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Logc returns a log entry carrying the request fields stored on ctx.
func Logc(ctx context.Context) *log.Entry {
	if ctx == nil {
		ctx = context.Background()
	}

	entry := log.WithFields(log.Fields{
		string(ContextKeyRequestID):     ctx.Value(ContextKeyRequestID),
		string(ContextKeyRequestSource): ctx.Value(ContextKeyRequestSource),
	})

	if val := ctx.Value(ContextKeyLogLayer); val != nil {
		entry = entry.WithField(string(ContextKeyLogLayer), val)
	}
	if val := ctx.Value(ContextKeyUserID); val != nil {
		entry = entry.WithField(string(ContextKeyUserID), val)
	}

	return entry
}

// GenerateRequestContext returns a context tagged with a request ID and source. Values already
// present on ctx win over the arguments; an empty request ID gets a fresh UUID.
func GenerateRequestContext(ctx context.Context, requestID, requestSource string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	} else {
		if v := ctx.Value(ContextKeyRequestID); v != nil {
			requestID = fmt.Sprint(v)
		}
		if v := ctx.Value(ContextKeyRequestSource); v != nil {
			requestSource = fmt.Sprint(v)
		}
	}
	if requestID == "" {
		requestID = uuid.New().String()
	}
	if requestSource == "" {
		requestSource = "Unknown"
	}
	ctx = context.WithValue(ctx, ContextKeyRequestID, requestID)
	ctx = context.WithValue(ctx, ContextKeyRequestSource, requestSource)
	return ctx
}
