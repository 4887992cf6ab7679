// Copyright 2025 NetApp, Inc. All Rights Reserved.

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jobloop/querycache/config"
	"github.com/jobloop/querycache/logging"
)

const (
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatTable = "table"

	ExitCodeSuccess = 0
	ExitCodeFailure = 1
)

var (
	ExitCode int

	Debug        bool
	ConfigPath   string
	LogLevel     string
	LogFormat    string
	OutputFormat string

	// AppFs is where configuration files are read from.
	AppFs = afero.NewOsFs()

	// cfg is loaded before any subcommand runs.
	cfg = config.DefaultConfig()

	ctx = context.TODO
)

var RootCmd = &cobra.Command{
	SilenceUsage: true,
	Use:          config.CLIName,
	Short:        "A CLI tool for the jobloop query cache",
	Long:         `A CLI tool for exercising the jobloop optimistic query cache and mutation coordinator`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initCommand(cmd)
	},
}

func init() {
	RootCmd.PersistentFlags().BoolVarP(&Debug, "debug", "d", false, "Debug output")
	RootCmd.PersistentFlags().StringVar(&ConfigPath, "config", "", "Path to a YAML configuration file")
	RootCmd.PersistentFlags().StringVar(&LogLevel, "log-level", config.DefaultLogLevel,
		"Logging level (trace, debug, info, warn, error, fatal)")
	RootCmd.PersistentFlags().StringVar(&LogFormat, "log-format", config.DefaultLogFormat, "Logging format (text, json)")
	RootCmd.PersistentFlags().StringVarP(&OutputFormat, "output", "o", FormatTable,
		"Output format. One of json|yaml|table")
}

// initCommand loads the configuration and sets up logging. Flags given on the command line take
// precedence over the configuration file.
func initCommand(cmd *cobra.Command) error {
	loaded, err := config.LoadConfig(AppFs, ConfigPath)
	if err != nil {
		return err
	}
	cfg = loaded

	level, format := cfg.Logging.Level, cfg.Logging.Format
	if flagChanged(cmd.Flags(), "log-level") {
		level = LogLevel
	}
	if flagChanged(cmd.Flags(), "log-format") {
		format = LogFormat
	}
	if err := logging.InitLogging(cmd.ErrOrStderr(), Debug, level, format); err != nil {
		return err
	}

	switch OutputFormat {
	case FormatJSON, FormatYAML, FormatTable:
	default:
		return fmt.Errorf("unknown output format: %s", OutputFormat)
	}
	return nil
}

func flagChanged(flags *pflag.FlagSet, name string) bool {
	flag := flags.Lookup(name)
	return flag != nil && flag.Changed
}
