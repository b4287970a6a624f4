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
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// SpinnerType defines the animation style
type SpinnerType int

const (
	SpinnerDots SpinnerType = iota
	SpinnerEllipsis
	SpinnerCompass
)

var spinnerFrames = map[SpinnerType][]string{
	SpinnerDots:     {"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
	SpinnerEllipsis: {".  ", ".. ", "...", " ..", "  .", "   "},
	SpinnerCompass:  {"◐", "◓", "◑", "◒"},
}

// Spinner provides an animated progress indicator on one terminal line.
//
// A Spinner can be started and stopped repeatedly; each Stop clears the
// line so the next output starts at column zero.
type Spinner struct {
	w        io.Writer
	style    lipgloss.Style
	spinType SpinnerType
	interval time.Duration

	mu         sync.Mutex
	message    string
	isRunning  bool
	stop       chan struct{}
	done       chan struct{}
	frameIndex int
}

// NewSpinner creates a spinner that draws on w
func NewSpinner(w io.Writer, message string) *Spinner {
	return &Spinner{
		w:        w,
		style:    Styles.Highlight,
		spinType: SpinnerDots,
		interval: 80 * time.Millisecond,
		message:  message,
	}
}

// WithType sets the spinner animation type
func (s *Spinner) WithType(t SpinnerType) *Spinner {
	s.spinType = t
	return s
}

// WithStyle sets the style of the animation frame
func (s *Spinner) WithStyle(style lipgloss.Style) *Spinner {
	s.style = style
	return s
}

// WithInterval sets the frame interval
func (s *Spinner) WithInterval(d time.Duration) *Spinner {
	if d > 0 {
		s.interval = d
	}
	return s
}

// Running reports whether the animation is active
func (s *Spinner) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// Start begins the spinner animation. Starting a running spinner is a no-op.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return
	}
	s.isRunning = true
	s.stop = make(chan struct{})
	s.done = make(chan struct{})

	go s.loop(s.stop, s.done)
}

func (s *Spinner) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	frames := spinnerFrames[s.spinType]
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			fmt.Fprint(s.w, "\r\033[K")
			return
		case <-ticker.C:
			s.mu.Lock()
			frame := s.style.Render(frames[s.frameIndex])
			msg := s.message
			s.frameIndex = (s.frameIndex + 1) % len(frames)
			s.mu.Unlock()
			fmt.Fprintf(s.w, "\r\033[K%s %s", frame, msg)
		}
	}
}

// Stop halts the animation and clears the line. Stopping a stopped
// spinner is a no-op.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	stop, done := s.stop, s.done
	s.mu.Unlock()

	close(stop)
	<-done
}

// UpdateMessage changes the spinner message while running
func (s *Spinner) UpdateMessage(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}
