// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/benchmarkify/cmd/benchmarkify/config"
	"github.com/AleutianAI/benchmarkify/cmd/benchmarkify/suites"
	"github.com/AleutianAI/benchmarkify/pkg/bench/platform"
	"github.com/AleutianAI/benchmarkify/pkg/ux"
)

func runList(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	machine := ux.GetPersonality().Level == ux.PersonalityMachine

	width := 0
	for _, d := range suites.Catalog() {
		width = max(width, len(d.Name))
	}
	for _, d := range suites.Catalog() {
		if machine {
			fmt.Fprintln(out, d.Name)
			continue
		}
		fmt.Fprintf(out, "  %-*s  %s\n", width, d.Name, ux.Styles.Muted.Render(d.Description))
	}
	return nil
}

func runPlatform(cmd *cobra.Command, format string) error {
	info, err := platform.Collect(cmd.Context())
	if err != nil {
		ux.SetOutput(nil, cmd.ErrOrStderr())
		ux.Warning(fmt.Sprintf("platform probe incomplete: %v", err))
	}

	if format != "" && format != config.FormatText {
		return encodeReport(cmd.OutOrStdout(), format, info)
	}
	for _, line := range info.Lines() {
		fmt.Fprintln(cmd.OutOrStdout(), line)
	}
	return nil
}

func runInit(cmd *cobra.Command, args []string) error {
	path := config.DefaultPath
	if len(args) == 1 {
		path = args[0]
	}
	if err := config.WriteDefault(path); err != nil {
		return err
	}
	ux.SetOutput(cmd.OutOrStdout(), cmd.ErrOrStderr())
	ux.Success("Wrote " + path)
	return nil
}

func runVersion(cmd *cobra.Command, args []string) {
	fmt.Fprintf(cmd.OutOrStdout(), "benchmarkify %s (%s %s/%s)\n", version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
