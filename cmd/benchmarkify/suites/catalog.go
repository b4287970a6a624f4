// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package suites holds the benchmark suites built into the CLI.
package suites

import (
	"errors"
	"fmt"
	"slices"

	"github.com/AleutianAI/benchmarkify/pkg/bench"
)

// Definition describes one built-in suite.
type Definition struct {
	Name        string
	Description string

	// Register adds the cases of the suite.
	Register func(s *bench.Suite)
}

// catalog lists the suites in the order they run.
var catalog = []Definition{
	{Name: "strings", Description: "string concatenation strategies", Register: registerStrings},
	{Name: "hashing", Description: "non-cryptographic and cryptographic hashes of a 1 KiB payload", Register: registerHashing},
	{Name: "encoding", Description: "JSON and YAML round trips of a report-sized document", Register: registerEncoding},
	{Name: "ids", Description: "UUID generation", Register: registerIDs},
	{Name: "async", Description: "completion callbacks across goroutines", Register: registerAsync},
}

// Catalog returns the built-in suites in run order.
func Catalog() []Definition {
	return slices.Clone(catalog)
}

// Names returns the names of the built-in suites in run order.
func Names() []string {
	names := make([]string, len(catalog))
	for i, d := range catalog {
		names[i] = d.Name
	}
	return names
}

// Register creates the named suites on h, in catalog order.
//
// An empty names list registers every suite. Unknown names are reported
// together, each wrapping bench.ErrUnknownSuite, and nothing is
// registered.
func Register(h *bench.Harness, names []string, opts ...bench.Option) ([]*bench.Suite, error) {
	var errs []error
	for _, n := range names {
		if !slices.ContainsFunc(catalog, func(d Definition) bool { return d.Name == n }) {
			errs = append(errs, fmt.Errorf("%w: %q", bench.ErrUnknownSuite, n))
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	var created []*bench.Suite
	for _, d := range catalog {
		if len(names) > 0 && !slices.Contains(names, d.Name) {
			continue
		}
		s := h.CreateSuite(d.Name, opts...)
		d.Register(s)
		created = append(created, s)
	}
	return created, nil
}
