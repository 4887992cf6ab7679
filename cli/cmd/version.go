// Copyright 2025 NetApp, Inc. All Rights Reserved.

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jobloop/querycache/config"
)

type VersionResponse struct {
	Version   string `json:"version" yaml:"version"`
	BuildType string `json:"buildType" yaml:"buildType"`
	BuildHash string `json:"buildHash" yaml:"buildHash"`
	BuildTime string `json:"buildTime" yaml:"buildTime"`
	GoVersion string `json:"goVersion" yaml:"goVersion"`
}

func init() {
	RootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of " + config.CLIName,
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeVersion(cmd.OutOrStdout(), getVersion())
	},
}

func getVersion() VersionResponse {
	return VersionResponse{
		Version:   config.Version,
		BuildType: config.BuildType,
		BuildHash: config.BuildHash,
		BuildTime: config.BuildTime,
		GoVersion: runtime.Version(),
	}
}

func writeVersion(out io.Writer, version VersionResponse) error {
	switch OutputFormat {
	case FormatJSON:
		versionJSON, err := json.MarshalIndent(version, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(versionJSON))
		return err
	case FormatYAML:
		versionYAML, err := yaml.Marshal(version)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(out, string(versionYAML))
		return err
	default:
		table := tablewriter.NewWriter(out)
		table.SetHeader([]string{"Version", "Build Type", "Go Version"})
		table.Append([]string{version.Version, version.BuildType, version.GoVersion})
		table.Render()
		return nil
	}
}
