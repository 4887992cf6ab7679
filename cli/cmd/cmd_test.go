// Copyright 2025 NetApp, Inc. All Rights Reserved.

package cmd

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/jobloop/querycache/config"
	"github.com/jobloop/querycache/core/mutation"
	"github.com/jobloop/querycache/dashboard"
)

// execute runs the root command with args and returns its standard output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	Debug, ConfigPath, OutputFormat = false, "", FormatTable
	LogLevel, LogFormat = config.DefaultLogLevel, config.DefaultLogFormat
	failOperations, serialize = []string{dashboard.OpUpdateJobStatus}, false

	var stdout, stderr bytes.Buffer
	RootCmd.SetOut(&stdout)
	RootCmd.SetErr(&stderr)
	RootCmd.SetArgs(args)
	err := RootCmd.Execute()
	return stdout.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version", "-o", "json")
	require.NoError(t, err)

	var version VersionResponse
	require.NoError(t, json.Unmarshal([]byte(out), &version))
	assert.Equal(t, config.Version, version.Version)
	assert.NotEmpty(t, version.GoVersion)

	out, err = execute(t, "version", "-o", "yaml")
	require.NoError(t, err)
	require.NoError(t, yaml.Unmarshal([]byte(out), &version))
	assert.Equal(t, config.BuildType, version.BuildType)

	out, err = execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, config.Version)
}

func TestRoot_InvalidFlags(t *testing.T) {
	_, err := execute(t, "version", "-o", "xml")
	assert.EqualError(t, err, "unknown output format: xml")

	_, err = execute(t, "version", "--log-format", "logfmt")
	assert.Error(t, err)
}

func TestRoot_ConfigFile(t *testing.T) {
	originalFs := AppFs
	defer func() { AppFs = originalFs }()
	AppFs = afero.NewMemMapFs()

	require.NoError(t, afero.WriteFile(AppFs, "/etc/jobloop.yaml", []byte(`
mutation:
  serializeOverlapping: true
logging:
  level: warn
`), 0o600))

	_, err := execute(t, "version", "--config", "/etc/jobloop.yaml")
	require.NoError(t, err)
	assert.True(t, cfg.Mutation.SerializeOverlapping)
	assert.Equal(t, "warn", cfg.Logging.Level)

	_, err = execute(t, "version", "--config", "/etc/missing.yaml")
	assert.Error(t, err)
}

func TestSimulate(t *testing.T) {
	out, err := execute(t, "simulate", "-o", "json")
	require.NoError(t, err)

	var results []ScenarioResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 3)

	committed := results[0]
	assert.Equal(t, mutation.StateCommitted.String(), committed.State)
	require.Len(t, committed.Entries, 1)
	assert.Equal(t, uint64(2), committed.Entries[0].Version)
	assert.False(t, committed.Entries[0].Stale)
	assert.Contains(t, committed.Entries[0].Value, `"status":"interview"`)

	rejected := results[1]
	assert.Equal(t, mutation.StateRolledBack.String(), rejected.State)
	assert.Equal(t, "permission denied", rejected.Error)
	assert.Contains(t, rejected.Entries[0].Value, `"status":"applied"`)

	listAndSingle := results[2]
	assert.Equal(t, []string{
		dashboard.GetJob("j1").String(),
		dashboard.GetJobs("u1", dashboard.JobFilter{}).String(),
	}, listAndSingle.Restored)
	for _, entry := range listAndSingle.Entries {
		assert.Contains(t, entry.Value, `"status":"applied"`)
	}
}

func TestSimulate_NoFailures(t *testing.T) {
	out, err := execute(t, "simulate", "--fail=", "--serialize", "-o", "yaml")
	require.NoError(t, err)

	var results []ScenarioResult
	require.NoError(t, yaml.Unmarshal([]byte(out), &results))
	for _, result := range results {
		assert.Equal(t, mutation.StateCommitted.String(), result.State, result.Name)
	}
}

func TestSimulate_Table(t *testing.T) {
	out, err := execute(t, "simulate")
	require.NoError(t, err)

	assert.Contains(t, out, "Scenario: commit (committed)")
	assert.Contains(t, out, "Error: permission denied")
	assert.Contains(t, out, "Restored 1: getJob")
}
