// Copyright 2025 NetApp, Inc. All Rights Reserved.

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jobloop/querycache/core"
	"github.com/jobloop/querycache/core/cache"
	"github.com/jobloop/querycache/core/mutation"
	"github.com/jobloop/querycache/dashboard"
	. "github.com/jobloop/querycache/logging"
	persistentstore "github.com/jobloop/querycache/persistent_store"
	"github.com/jobloop/querycache/utils/errors"
)

const (
	simulationUser = "u1"
	simulationJob  = "j1"
)

var (
	failOperations []string
	serialize      bool
)

func init() {
	RootCmd.AddCommand(simulateCmd)
	simulateCmd.Flags().StringSliceVar(&failOperations, "fail", []string{dashboard.OpUpdateJobStatus},
		"Remote operations rejected with \"permission denied\" in the failing scenarios")
	simulateCmd.Flags().BoolVar(&serialize, "serialize", false, "Queue mutations that patch the same cache key")
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run optimistic mutation scenarios against an in-memory store",
	Long: `Run a job status update through the query layer three times: once committing, once
rejected by the remote store and once rejected while both a job list and the single job are
cached. The cache state after each run is printed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		results := make([]ScenarioResult, 0, len(scenarios))
		for _, s := range scenarios {
			result, err := runScenario(WithLogLayer(ctx(), LogLayerCLI), s)
			if err != nil {
				return err
			}
			results = append(results, result)
		}
		return writeScenarioResults(cmd.OutOrStdout(), results)
	},
}

type scenario struct {
	name  string
	fail  bool
	reads []cache.QueryKey
}

var scenarios = []scenario{
	{
		name:  "commit",
		reads: []cache.QueryKey{dashboard.GetJob(simulationJob)},
	},
	{
		name:  "remote rejection",
		fail:  true,
		reads: []cache.QueryKey{dashboard.GetJob(simulationJob)},
	},
	{
		name:  "list and single rollback",
		fail:  true,
		reads: []cache.QueryKey{dashboard.GetJobs(simulationUser, dashboard.JobFilter{}), dashboard.GetJob(simulationJob)},
	},
}

type EntryState struct {
	Key     string `json:"key" yaml:"key"`
	Status  string `json:"status" yaml:"status"`
	Version uint64 `json:"version" yaml:"version"`
	Stale   bool   `json:"stale" yaml:"stale"`
	Value   string `json:"value" yaml:"value"`
}

type ScenarioResult struct {
	Name     string       `json:"name" yaml:"name"`
	State    string       `json:"state" yaml:"state"`
	Error    string       `json:"error,omitempty" yaml:"error,omitempty"`
	Restored []string     `json:"restored,omitempty" yaml:"restored,omitempty"`
	Entries  []EntryState `json:"entries" yaml:"entries"`
}

// rejectingRemote fails the named operations the way a store enforcing ownership rules would.
func rejectingRemote(remote mutation.RemoteOperation, operations []string) mutation.RemoteOperation {
	return mutation.RemoteOperationFunc(func(ctx context.Context, operation string, args any) (any, error) {
		if slices.Contains(operations, operation) {
			return nil, errors.PermissionDeniedError("permission denied")
		}
		return remote.Invoke(ctx, operation, args)
	})
}

func seedSimulationStore(ctx context.Context, client persistentstore.Client) error {
	return client.Put(ctx, dashboard.JobsCollection, simulationJob, persistentstore.Document{
		"id":      simulationJob,
		"userId":  simulationUser,
		"title":   "Backend Engineer",
		"company": "Acme",
		"status":  string(dashboard.JobStatusApplied),
		"score":   82.0,
	})
}

func runScenario(ctx context.Context, s scenario) (ScenarioResult, error) {
	client := persistentstore.NewInMemoryClient()
	if err := seedSimulationStore(ctx, client); err != nil {
		return ScenarioResult{}, err
	}

	var remote mutation.RemoteOperation = dashboard.NewStoreRemote(client)
	if s.fail {
		remote = rejectingRemote(remote, failOperations)
	}

	layerConfig := *cfg
	layerConfig.Mutation.SerializeOverlapping = layerConfig.Mutation.SerializeOverlapping || serialize
	layer, err := core.NewQueryLayer(&layerConfig, remote)
	if err != nil {
		return ScenarioResult{}, err
	}
	defer layer.Stop(ctx)
	svc := dashboard.NewService(layer, remote)

	for _, key := range s.reads {
		if _, err := layer.Read(ctx, key, svc.Fetch); err != nil {
			return ScenarioResult{}, fmt.Errorf("could not load %s; %v", key, err)
		}
	}

	result := ScenarioResult{Name: s.name}
	unsubscribe := layer.Cache().Subscribe(func(event cache.ChangeEvent) {
		if event.IsRollback() {
			result.Restored = append(result.Restored, event.Key.String())
		}
	})
	m, err := svc.UpdateJobStatus(ctx, simulationUser, simulationJob, dashboard.JobStatusInterview)
	unsubscribe()

	if m != nil {
		result.State = m.State.String()
	}
	if err != nil {
		result.Error = err.Error()
		Logc(ctx).WithField("scenario", s.name).WithError(err).Debug("Simulated mutation failed.")
	}

	for _, key := range layer.Cache().Keys() {
		entry, ok := layer.Cache().Get(key)
		if !ok {
			continue
		}
		value, err := json.Marshal(entry.Value)
		if err != nil {
			return ScenarioResult{}, err
		}
		result.Entries = append(result.Entries, EntryState{
			Key:     key.String(),
			Status:  entry.Status.String(),
			Version: entry.Version,
			Stale:   entry.Stale,
			Value:   string(value),
		})
	}
	return result, nil
}

func writeScenarioResults(out io.Writer, results []ScenarioResult) error {
	switch OutputFormat {
	case FormatJSON:
		resultsJSON, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(resultsJSON))
		return err
	case FormatYAML:
		resultsYAML, err := yaml.Marshal(results)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(out, string(resultsYAML))
		return err
	}

	for _, result := range results {
		fmt.Fprintf(out, "Scenario: %s (%s)\n", result.Name, result.State)
		if result.Error != "" {
			fmt.Fprintf(out, "Error: %s\n", result.Error)
		}
		for i, key := range result.Restored {
			fmt.Fprintf(out, "Restored %d: %s\n", i+1, key)
		}

		table := tablewriter.NewWriter(out)
		table.SetHeader([]string{"Key", "Status", "Version", "Stale", "Value"})
		table.SetAutoWrapText(false)
		for _, entry := range result.Entries {
			table.Append([]string{
				entry.Key,
				entry.Status,
				strconv.FormatUint(entry.Version, 10),
				strconv.FormatBool(entry.Stale),
				entry.Value,
			})
		}
		table.Render()
		fmt.Fprintln(out)
	}
	return nil
}
