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
	"bytes"
	"os"
	"strings"
	"testing"
)

// captureOutput redirects the print helpers to buffers for the test.
func captureOutput(t *testing.T) (*bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var out, errOut bytes.Buffer
	SetOutput(&out, &errOut)
	t.Cleanup(func() { SetOutput(os.Stdout, os.Stderr) })
	return &out, &errOut
}

// =============================================================================
// Icon.Render Tests
// =============================================================================

func TestIcon_Render(t *testing.T) {
	for _, icon := range []Icon{IconSuccess, IconWarning, IconError, IconPending, IconArrow, IconBullet} {
		if got := icon.Render(); !strings.Contains(got, string(icon)) {
			t.Errorf("Render() = %q, want it to contain %q", got, icon)
		}
	}
}

// =============================================================================
// Theme Tests
// =============================================================================

func TestNewTheme_NilRendererUsesDefault(t *testing.T) {
	theme := NewTheme(nil)
	if got := theme.Bold.Render("x"); !strings.Contains(got, "x") {
		t.Errorf("Bold.Render() = %q", got)
	}
}

// =============================================================================
// Print Helper Tests
// =============================================================================

func TestTitle(t *testing.T) {
	tests := []struct {
		level PersonalityLevel
		want  string
	}{
		{PersonalityStandard, "Benchmarks\n"},
		{PersonalityMachine, ""},
	}

	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			withPersonality(t, Personality{Level: tt.level})
			out, _ := captureOutput(t)

			Title("Benchmarks")

			if tt.want == "" && out.Len() != 0 {
				t.Errorf("expected no output, got %q", out.String())
			}
			if tt.want != "" && !strings.Contains(out.String(), "Benchmarks") {
				t.Errorf("expected title, got %q", out.String())
			}
		})
	}
}

func TestSuccess_Machine(t *testing.T) {
	withPersonality(t, Personality{Level: PersonalityMachine})
	out, _ := captureOutput(t)

	Success("report written")

	if got := out.String(); got != "OK: report written\n" {
		t.Errorf("got %q", got)
	}
}

func TestSuccess_Standard(t *testing.T) {
	withPersonality(t, Personality{Level: PersonalityStandard})
	out, _ := captureOutput(t)

	Success("report written")

	got := out.String()
	if !strings.Contains(got, string(IconSuccess)) || !strings.Contains(got, "report written") {
		t.Errorf("got %q", got)
	}
}

func TestWarning_MachineGoesToStderr(t *testing.T) {
	withPersonality(t, Personality{Level: PersonalityMachine})
	out, errOut := captureOutput(t)

	Warning("slow clock")

	if out.Len() != 0 {
		t.Errorf("stdout = %q, want empty", out.String())
	}
	if got := errOut.String(); got != "WARN: slow clock\n" {
		t.Errorf("stderr = %q", got)
	}
}

func TestWarning_Minimal(t *testing.T) {
	withPersonality(t, Personality{Level: PersonalityMinimal})
	out, _ := captureOutput(t)

	Warning("slow clock")

	if !strings.Contains(out.String(), "slow clock") {
		t.Errorf("got %q", out.String())
	}
}

func TestError_AlwaysStderr(t *testing.T) {
	for _, level := range []PersonalityLevel{PersonalityFull, PersonalityStandard, PersonalityMinimal, PersonalityMachine} {
		t.Run(string(level), func(t *testing.T) {
			withPersonality(t, Personality{Level: level})
			out, errOut := captureOutput(t)

			Error("suite failed")

			if out.Len() != 0 {
				t.Errorf("stdout = %q, want empty", out.String())
			}
			if !strings.Contains(errOut.String(), "suite failed") {
				t.Errorf("stderr = %q", errOut.String())
			}
		})
	}
}

func TestInfo(t *testing.T) {
	withPersonality(t, Personality{Level: PersonalityMachine})
	out, _ := captureOutput(t)

	Info("3 suites")

	if got := out.String(); got != "3 suites\n" {
		t.Errorf("got %q", got)
	}
}

func TestMuted_HiddenInMachineMode(t *testing.T) {
	withPersonality(t, Personality{Level: PersonalityMachine})
	out, _ := captureOutput(t)

	Muted("details")

	if out.Len() != 0 {
		t.Errorf("got %q", out.String())
	}
}

func TestBox(t *testing.T) {
	t.Run("machine", func(t *testing.T) {
		withPersonality(t, Personality{Level: PersonalityMachine})
		out, _ := captureOutput(t)

		Box("Report", "written to out.json")

		if got := out.String(); got != "Report: written to out.json\n" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("standard", func(t *testing.T) {
		withPersonality(t, Personality{Level: PersonalityStandard})
		out, _ := captureOutput(t)

		Box("Report", "written to out.json")

		got := out.String()
		if !strings.Contains(got, "Report") || !strings.Contains(got, "written to out.json") {
			t.Errorf("got %q", got)
		}
	})
}

func TestSetOutput_NilKeepsWriter(t *testing.T) {
	withPersonality(t, Personality{Level: PersonalityMachine})
	out, _ := captureOutput(t)

	SetOutput(nil, nil)
	Info("still here")

	if !strings.Contains(out.String(), "still here") {
		t.Errorf("got %q", out.String())
	}
}
