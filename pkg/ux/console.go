// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ux

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/AleutianAI/benchmarkify/pkg/bench"
	"github.com/AleutianAI/benchmarkify/pkg/bench/format"
	"github.com/AleutianAI/benchmarkify/pkg/bench/platform"
)

const (
	// separatorWidth is the width of the rule closing a suite table.
	separatorWidth = 72

	// progressNameWidth is the minimum width of the name column of a
	// progress line.
	progressNameWidth = 24
)

// ConsoleSink renders a benchmark run as human-readable text.
//
// Description:
//
//	Prints a "Suite: name" title when a suite starts, one progress line per
//	case while the suite runs (with a spinner while a case cycles) and the
//	ranked table when the suite finishes:
//
//	  builder*            +12.34%    (1,234,567 rps)  (avg: 810ns)
//
//	"*" marks async cases and "(#)" the reference. The fastest case is
//	highlighted. In machine mode nothing is styled and no spinner runs.
//
// Thread Safety: Safe for concurrent use; events are serialized.
type ConsoleSink struct {
	w       io.Writer
	level   PersonalityLevel
	theme   Theme
	spinner *Spinner

	mu        sync.Mutex
	nameWidth int
}

// ConsoleOption configures a ConsoleSink.
type ConsoleOption func(*ConsoleSink)

// WithLevel overrides the personality level of the sink.
func WithLevel(level PersonalityLevel) ConsoleOption {
	return func(c *ConsoleSink) { c.level = level }
}

// WithoutSpinner disables the progress spinner.
func WithoutSpinner() ConsoleOption {
	return func(c *ConsoleSink) { c.spinner = nil }
}

// NewConsoleSink creates a sink printing to w.
//
// Description:
//
//	The level defaults to the current personality. Colors follow the
//	capabilities of w, so a buffer or a pipe gets plain text. The spinner
//	only runs when w is a terminal and the level shows progress.
func NewConsoleSink(w io.Writer, opts ...ConsoleOption) *ConsoleSink {
	c := &ConsoleSink{
		w:     w,
		level: GetPersonality().Level,
		theme: NewTheme(lipgloss.NewRenderer(w)),
	}
	c.spinner = NewSpinner(w, "").WithStyle(c.theme.Highlight)

	for _, opt := range opts {
		opt(c)
	}

	if c.spinner != nil && (!IsTerminal(w) || !c.level.Animated()) {
		c.spinner = nil
	}
	return c
}

func (c *ConsoleSink) machine() bool {
	return !c.level.Styled()
}

// render applies style unless the sink prints plain text.
func (c *ConsoleSink) render(style lipgloss.Style, s string) string {
	if c.machine() {
		return s
	}
	return style.Render(s)
}

func (c *ConsoleSink) println(s string) {
	fmt.Fprintln(c.w, s)
}

func (c *ConsoleSink) stopSpinner() {
	if c.spinner != nil {
		c.spinner.Stop()
	}
}

// -----------------------------------------------------------------------------
// Header
// -----------------------------------------------------------------------------

// PrintHeader prints the run banner and, when info is non-nil, the
// platform block.
//
//	==============
//	  hashing
//	==============
func (c *ConsoleSink) PrintHeader(name string, info *platform.Info) {
	c.mu.Lock()
	defer c.mu.Unlock()

	title := "  " + name + "  "
	rule := strings.Repeat("=", len([]rune(title)))
	c.println(c.render(c.theme.Header, rule))
	c.println(c.render(c.theme.Header, title))
	c.println(c.render(c.theme.Header, rule))
	c.println("")

	if info == nil {
		return
	}
	c.println("Platform info:")
	c.println("==============")
	for _, line := range info.Lines() {
		c.println("   " + line)
	}
	c.println("")
}

// -----------------------------------------------------------------------------
// bench.Sink
// -----------------------------------------------------------------------------

// RunStarted implements bench.Sink.
func (c *ConsoleSink) RunStarted(context.Context, string) {}

// SuiteStarted prints the suite title.
func (c *ConsoleSink) SuiteStarted(_ context.Context, suite string, _ int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nameWidth = progressNameWidth
	c.println(c.render(c.theme.Suite, "Suite: "+suite))
}

// CaseStarted starts the spinner for the case.
func (c *ConsoleSink) CaseStarted(_ context.Context, _ string, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.spinner == nil {
		return
	}
	c.spinner.UpdateMessage(fmt.Sprintf("Running '%s'...", name))
	c.spinner.Start()
}

// CaseFinished prints the progress line of the case.
func (c *ConsoleSink) CaseFinished(_ context.Context, _ string, result bench.TestResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopSpinner()

	switch {
	case result.Skipped:
		c.println(c.prefix(IconWarning) + c.render(c.theme.Warning, "[SKIP] "+result.Name))
	case result.Failed():
		c.println(c.prefix(IconError) + c.render(c.theme.Error, "[ERR] "+result.Name))
		c.println(c.render(c.theme.Error, "  "+*result.Error))
	case result.Stat != nil:
		name := caseLabel(result, false)
		c.nameWidth = max(c.nameWidth, len([]rune(name))+2)
		line := padRight(name, c.nameWidth) +
			fmt.Sprintf("%20s", format.Number(result.Stat.RPS, 0)+" rps")
		c.println(c.prefix(IconSuccess) + line)
	}
}

// prefix is the status marker of a progress line.
func (c *ConsoleSink) prefix(icon Icon) string {
	if c.machine() {
		return "›› "
	}
	switch icon {
	case IconSuccess:
		return c.theme.Success.Render(string(icon)) + " "
	case IconWarning:
		return c.theme.Warning.Render(string(icon)) + " "
	case IconError:
		return c.theme.Error.Render(string(icon)) + " "
	default:
		return string(icon) + " "
	}
}

// SuiteFinished prints the ranked table.
func (c *ConsoleSink) SuiteFinished(_ context.Context, report bench.SuiteReport) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopSpinner()
	c.println("")
	for _, line := range c.table(report) {
		c.println(line)
	}
	c.println(c.render(c.theme.Muted, strings.Repeat("-", separatorWidth)))
	c.println("")
}

// RunFinished clears a spinner left running by an aborted run.
func (c *ConsoleSink) RunFinished(context.Context, *bench.Report) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopSpinner()
}

// table renders one line per case in registration order.
func (c *ConsoleSink) table(report bench.SuiteReport) []string {
	width := 0
	for _, t := range report.Tests {
		if t.Stat != nil {
			width = max(width, len([]rune(t.Name)))
		}
	}

	lines := make([]string, 0, len(report.Tests))
	for _, t := range report.Tests {
		switch {
		case t.Skipped:
			lines = append(lines, c.render(c.theme.Warning, fmt.Sprintf("  %s (skipped)", t.Name)))
		case t.Failed():
			lines = append(lines, c.render(c.theme.Error, fmt.Sprintf("  %s (error: %s)", t.Name, *t.Error)))
		case t.Stat != nil:
			line := "  " +
				padRight(caseLabel(t, true), width+5) +
				fmt.Sprintf("%8s", format.NumberWithSign(t.Stat.Percent, 2)+"%") +
				fmt.Sprintf("%20s", "  ("+format.Number(t.Stat.RPS, 0)+" rps)") +
				"  (avg: " + format.Short(format.Seconds(t.Stat.Avg)) + ")"

			style := c.theme.Case
			if t.Fastest {
				style = c.theme.Fastest
			}
			lines = append(lines, c.render(style, line))
		}
	}
	return lines
}

// caseLabel is the case name with its async and reference flags.
func caseLabel(t bench.TestResult, withRef bool) string {
	label := t.Name
	if t.Async {
		label += "*"
	}
	if withRef && t.Reference {
		label += " (#)"
	}
	return label
}

func padRight(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

var _ bench.Sink = (*ConsoleSink)(nil)
