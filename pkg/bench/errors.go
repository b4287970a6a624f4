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

import (
	"errors"
	"fmt"
)

// -----------------------------------------------------------------------------
// Errors
// -----------------------------------------------------------------------------

var (
	// ErrInvalidConfig indicates an invalid benchmark configuration.
	//
	// Negative budgets and counts are clamped at registration instead of
	// being rejected, so the harness only reports it for a case registered
	// with a zero Unit. Front ends that validate user input (config files,
	// flags) wrap it too.
	ErrInvalidConfig = errors.New("invalid benchmark configuration")

	// ErrOrchestration is the parent of every invalid-state error.
	ErrOrchestration = errors.New("benchmark orchestration error")

	// ErrAlreadyRunning indicates Run was called while a run is in progress.
	ErrAlreadyRunning = fmt.Errorf("%w: already running", ErrOrchestration)

	// ErrAlreadyRan indicates Run was called on a suite or case that finished.
	// Statistics are write-once, so a finished unit cannot run again.
	ErrAlreadyRan = fmt.Errorf("%w: already ran", ErrOrchestration)

	// ErrDuplicateReference indicates a second reference case in one suite.
	ErrDuplicateReference = fmt.Errorf("%w: suite already has a reference case", ErrOrchestration)

	// ErrRegistrationClosed indicates registration after Run started.
	ErrRegistrationClosed = fmt.Errorf("%w: registration is closed once run starts", ErrOrchestration)

	// ErrUnknownSuite indicates a suite that does not belong to the harness.
	ErrUnknownSuite = fmt.Errorf("%w: unknown suite", ErrOrchestration)
)

// ExecutionError reports that a benchmarked unit failed during a cycle.
//
// Description:
//
//	ExecutionError wraps whatever the unit returned, passed to Done, or
//	panicked with. The suite catches it per case, records it and moves on
//	to the next case; it never aborts the harness.
//
// Example:
//
//	var execErr *bench.ExecutionError
//	if errors.As(err, &execErr) {
//	    log.Printf("case %s failed: %v", execErr.Case, execErr.Err)
//	}
type ExecutionError struct {
	// Suite is the owning suite name.
	Suite string

	// Case is the failing case name.
	Case string

	// Err is the underlying failure.
	Err error
}

// Error implements error.
func (e *ExecutionError) Error() string {
	if e.Suite == "" {
		return fmt.Sprintf("case %q: %v", e.Case, e.Err)
	}
	return fmt.Sprintf("suite %q case %q: %v", e.Suite, e.Case, e.Err)
}

// Unwrap returns the underlying failure.
func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// PanicError carries a value recovered from a panicking unit.
type PanicError struct {
	Value any
}

// Error implements error.
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap exposes the panic value when it is itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
