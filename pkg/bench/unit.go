// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package bench

// SyncFunc is a synchronous unit of work. A non-nil error fails the case.
type SyncFunc func() error

// Done signals that one invocation of an AsyncFunc completed.
//
// It must be called once per invocation, from any goroutine. Calls after the
// first are ignored. A non-nil error fails the case.
type Done func(err error)

// AsyncFunc is a unit of work that reports completion through done.
type AsyncFunc func(done Done)

// Unit is a unit of work together with its execution mode.
//
// Build one with Sync, SyncFn or Async; the zero Unit is invalid.
type Unit struct {
	sync  SyncFunc
	async AsyncFunc
}

// Sync wraps a synchronous unit that can fail.
func Sync(fn SyncFunc) Unit {
	return Unit{sync: fn}
}

// SyncFn wraps a synchronous unit that cannot fail.
//
// The extra call adds a few nanoseconds per invocation; use Sync for the
// tightest measurements.
func SyncFn(fn func()) Unit {
	return Unit{sync: func() error {
		fn()
		return nil
	}}
}

// Async wraps a unit that signals completion through a Done callback.
func Async(fn AsyncFunc) Unit {
	return Unit{async: fn}
}

// IsAsync reports whether the unit uses the asynchronous strategy.
func (u Unit) IsAsync() bool {
	return u.async != nil
}

func (u Unit) valid() bool {
	return u.sync != nil || u.async != nil
}
