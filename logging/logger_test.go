// Copyright 2025 NetApp, Inc. All Rights Reserved.

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	// Disable any standard log output
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func TestLogc(t *testing.T) {
	ctx := context.Background()
	result := Logc(ctx)
	assert.NotNil(t, result, "log entry is nil")
}

func TestLogc_NilContext(t *testing.T) {
	//nolint:staticcheck
	result := Logc(nil)
	assert.NotNil(t, result, "log entry is nil")
}

func TestLogc_LayerAndUser(t *testing.T) {
	ctx := WithLogLayer(context.Background(), LogLayerMutation)
	ctx = context.WithValue(ctx, ContextKeyUserID, "u1")

	entry := Logc(ctx)

	assert.Equal(t, LogLayerMutation, entry.Data[string(ContextKeyLogLayer)])
	assert.Equal(t, "u1", entry.Data[string(ContextKeyUserID)])
}

func TestLogc_NoLayer(t *testing.T) {
	entry := Logc(context.Background())
	_, ok := entry.Data[string(ContextKeyLogLayer)]
	assert.False(t, ok, "expected the log layer to not exist in log entry")
}

func TestGenerateRequestContext(t *testing.T) {
	type test struct {
		name           string
		ctx            context.Context
		requestID      string
		requestSource  string
		expectedID     string
		expectedSource string
	}

	existing := context.WithValue(context.Background(), ContextKeyRequestID, "existing-id")
	existing = context.WithValue(existing, ContextKeyRequestSource, "UI")

	tests := []test{
		{"explicit values", context.Background(), "req-1", ContextSourceCLI, "req-1", ContextSourceCLI},
		{"context values win", existing, "req-2", ContextSourceCLI, "existing-id", "UI"},
		{"unknown source", context.Background(), "req-3", "", "req-3", "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := GenerateRequestContext(tt.ctx, tt.requestID, tt.requestSource)
			assert.Equal(t, tt.expectedID, ctx.Value(ContextKeyRequestID))
			assert.Equal(t, tt.expectedSource, ctx.Value(ContextKeyRequestSource))
		})
	}
}

func TestGenerateRequestContext_GeneratesID(t *testing.T) {
	//nolint:staticcheck
	ctx := GenerateRequestContext(nil, "", "")
	id, ok := ctx.Value(ContextKeyRequestID).(string)
	require.True(t, ok)
	assert.Len(t, id, 36, "expected a UUID request ID")
}

func TestInitLogLevel(t *testing.T) {
	defer log.SetLevel(log.InfoLevel)

	assert.NoError(t, InitLogLevel(true, "error"))
	assert.Equal(t, log.DebugLevel, log.GetLevel(), "debug flag takes precedence")

	assert.NoError(t, InitLogLevel(false, "warn"))
	assert.Equal(t, log.WarnLevel, log.GetLevel())

	assert.Error(t, InitLogLevel(false, "loud"))
}

func TestInitLogFormat(t *testing.T) {
	defer log.SetFormatter(&log.TextFormatter{})

	assert.NoError(t, InitLogFormat(TextFormat))
	assert.IsType(t, &PlainTextFormatter{}, log.StandardLogger().Formatter)

	assert.NoError(t, InitLogFormat(JSONFormat))
	assert.IsType(t, &JSONFormatter{}, log.StandardLogger().Formatter)

	assert.Error(t, InitLogFormat("xml"))
}

func TestJSONFormatter(t *testing.T) {
	entry := log.NewEntry(log.StandardLogger()).WithFields(log.Fields{
		"key":   "getJob",
		"error": assert.AnError,
		"nil":   nil,
	})
	entry.Message = "Rolled back mutation."
	entry.Level = log.WarnLevel

	out, err := (&JSONFormatter{DisableTimestamp: true}).Format(entry)
	require.NoError(t, err)

	var decoded map[string]string
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "getJob", decoded["key"])
	assert.Equal(t, assert.AnError.Error(), decoded["error"])
	assert.Equal(t, "warning", decoded["level"])
	assert.Equal(t, "Rolled back mutation.", decoded["message"])
	_, hasNil := decoded["nil"]
	assert.False(t, hasNil)
}

func TestPlainTextFormatter(t *testing.T) {
	entry := log.NewEntry(log.StandardLogger()).WithFields(log.Fields{
		"b":       "plain",
		"a":       "needs quoting",
		"skipped": nil,
	})
	entry.Message = "Committed mutation."
	entry.Level = log.InfoLevel

	out, err := (&PlainTextFormatter{}).Format(entry)
	require.NoError(t, err)

	line := string(out)
	assert.True(t, bytes.HasPrefix(out, []byte("INFO[")))
	assert.Contains(t, line, `a="needs quoting"`)
	assert.Contains(t, line, "b=plain")
	assert.NotContains(t, line, "skipped")
	assert.Less(t, bytes.Index(out, []byte(" a=")), bytes.Index(out, []byte(" b=")), "fields are sorted")
}
