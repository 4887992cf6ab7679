// Copyright 2025 NetApp, Inc. All Rights Reserved.

package main

import (
	"os"

	"github.com/jobloop/querycache/cli/cmd"
)

func main() {
	cmd.ExitCode = cmd.ExitCodeSuccess

	if err := cmd.RootCmd.Execute(); err != nil {
		cmd.ExitCode = cmd.ExitCodeFailure
	}

	os.Exit(cmd.ExitCode)
}
