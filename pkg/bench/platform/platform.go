// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package platform describes the machine a benchmark runs on.
//
// Results are only comparable between runs on the same hardware and
// runtime, so reports print this block before the first suite.
package platform

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
)

// CPU is one processor model and how many logical CPUs carry it.
type CPU struct {
	Model string `json:"model" yaml:"model"`
	Count int    `json:"count" yaml:"count"`
}

// Info is a snapshot of the host and the Go runtime.
type Info struct {
	OS         string `json:"os" yaml:"os"`
	Platform   string `json:"platform,omitempty" yaml:"platform,omitempty"`
	Kernel     string `json:"kernel,omitempty" yaml:"kernel,omitempty"`
	Arch       string `json:"arch" yaml:"arch"`
	GoVersion  string `json:"goVersion" yaml:"go_version"`
	GOMAXPROCS int    `json:"gomaxprocs" yaml:"gomaxprocs"`
	CPUs       []CPU  `json:"cpus" yaml:"cpus"`
}

// Lines renders the snapshot one fact per line, without indentation.
func (i Info) Lines() []string {
	var parts []string
	for _, p := range []string{i.OS, i.Kernel, i.Arch} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	system := strings.Join(parts, " ")
	if i.Platform != "" {
		system += fmt.Sprintf(" (%s)", i.Platform)
	}

	lines := []string{
		system,
		"Go: " + i.GoVersion,
		fmt.Sprintf("GOMAXPROCS: %d", i.GOMAXPROCS),
	}
	for _, c := range i.CPUs {
		lines = append(lines, fmt.Sprintf("%s × %d", c.Model, c.Count))
	}
	return lines
}

// Collector gathers Info. The zero value is not usable; call NewCollector.
type Collector struct {
	hostInfo func(ctx context.Context) (*host.InfoStat, error)
	cpuInfo  func(ctx context.Context) ([]cpu.InfoStat, error)
}

// NewCollector returns a Collector backed by gopsutil.
func NewCollector() *Collector {
	return &Collector{
		hostInfo: host.InfoWithContext,
		cpuInfo:  cpu.InfoWithContext,
	}
}

// Collect returns the platform snapshot.
//
// Description:
//
//	Runtime facts always come from the runtime package. Host and CPU
//	facts come from gopsutil; when a probe fails the snapshot falls back
//	to what the runtime knows and the failures are returned joined, so
//	callers can log them and still print the snapshot.
//
// Outputs:
//   - Info: Always usable.
//   - error: Probe failures, nil when every probe succeeded.
func (c *Collector) Collect(ctx context.Context) (Info, error) {
	info := Info{
		OS:         runtime.GOOS,
		Arch:       runtime.GOARCH,
		GoVersion:  runtime.Version(),
		GOMAXPROCS: runtime.GOMAXPROCS(0),
	}

	var errs []error

	if h, err := c.hostInfo(ctx); err != nil {
		errs = append(errs, fmt.Errorf("host info: %w", err))
	} else if h != nil {
		info.Kernel = h.KernelVersion
		if h.KernelArch != "" {
			info.Arch = h.KernelArch
		}
		info.Platform = strings.TrimSpace(h.Platform + " " + h.PlatformVersion)
	}

	cpus, err := c.cpuInfo(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("cpu info: %w", err))
	}
	info.CPUs = groupCPUs(cpus)
	if len(info.CPUs) == 0 {
		info.CPUs = []CPU{{Model: "unknown", Count: runtime.NumCPU()}}
	}

	return info, errors.Join(errs...)
}

// Collect gathers the snapshot with the default collector.
func Collect(ctx context.Context) (Info, error) {
	return NewCollector().Collect(ctx)
}

// groupCPUs counts logical CPUs per model, keeping first-seen order.
func groupCPUs(stats []cpu.InfoStat) []CPU {
	var out []CPU
	index := make(map[string]int)
	for _, s := range stats {
		model := strings.TrimSpace(s.ModelName)
		if model == "" {
			model = "unknown"
		}
		n := int(max(s.Cores, 1))
		if i, ok := index[model]; ok {
			out[i].Count += n
			continue
		}
		index[model] = len(out)
		out = append(out, CPU{Model: model, Count: n})
	}
	return out
}
