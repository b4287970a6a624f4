// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ux

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
)

// PersonalityEnv selects the output level when no flag or config sets one.
const PersonalityEnv = "BENCHMARKIFY_PERSONALITY"

// PersonalityLevel is how much decoration benchmark output carries.
type PersonalityLevel string

const (
	// PersonalityFull is the styled table with the spinner.
	PersonalityFull PersonalityLevel = "full"

	// PersonalityStandard is the same as full; kept as the fallback for
	// unrecognised input.
	PersonalityStandard PersonalityLevel = "standard"

	// PersonalityMinimal keeps styles and icons but never animates.
	PersonalityMinimal PersonalityLevel = "minimal"

	// PersonalityMachine is undecorated text for pipes and scripts.
	PersonalityMachine PersonalityLevel = "machine"
)

var levelAliases = map[string]PersonalityLevel{
	"full": PersonalityFull, "f": PersonalityFull,
	"standard": PersonalityStandard, "std": PersonalityStandard, "s": PersonalityStandard,
	"minimal": PersonalityMinimal, "min": PersonalityMinimal, "m": PersonalityMinimal,
	"machine": PersonalityMachine, "quiet": PersonalityMachine, "q": PersonalityMachine,
}

// ParsePersonalityLevel maps a level name or alias to a level. Unknown
// input yields PersonalityStandard.
func ParsePersonalityLevel(s string) PersonalityLevel {
	if level, ok := levelAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return level
	}
	return PersonalityStandard
}

// Animated reports whether the level allows the progress spinner.
func (l PersonalityLevel) Animated() bool {
	return l != PersonalityMachine && l != PersonalityMinimal
}

// Styled reports whether the level uses icons and colours.
func (l PersonalityLevel) Styled() bool {
	return l != PersonalityMachine
}

// Personality is the process-wide output setting shared by the console
// sink and the one-line helpers in output.go.
type Personality struct {
	Level PersonalityLevel
}

// DefaultPersonality is full output.
func DefaultPersonality() Personality {
	return Personality{Level: PersonalityFull}
}

var (
	personalityMu      sync.RWMutex
	currentPersonality = DefaultPersonality()
)

// GetPersonality returns the current setting.
func GetPersonality() Personality {
	personalityMu.RLock()
	defer personalityMu.RUnlock()
	return currentPersonality
}

// SetPersonality replaces the current setting.
func SetPersonality(p Personality) {
	personalityMu.Lock()
	defer personalityMu.Unlock()
	currentPersonality = p
}

// SetPersonalityLevel replaces the current level.
func SetPersonalityLevel(level PersonalityLevel) {
	SetPersonality(Personality{Level: level})
}

// DetectPersonality picks a level for output written to w.
//
// The PersonalityEnv variable wins. Otherwise a terminal gets full output
// and anything else (a pipe, a file, a buffer) gets machine output.
func DetectPersonality(w io.Writer, getenv func(string) string) PersonalityLevel {
	if env := getenv(PersonalityEnv); env != "" {
		return ParsePersonalityLevel(env)
	}
	if IsTerminal(w) {
		return PersonalityFull
	}
	return PersonalityMachine
}

// InitPersonality sets the level detected for stdout.
func InitPersonality() {
	SetPersonalityLevel(DetectPersonality(os.Stdout, os.Getenv))
}

// IsTerminal reports whether w is a terminal (including Cygwin/MSYS ptys).
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
