// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/benchmarkify/cmd/benchmarkify/config"
)

// encodeReport writes v to w in the given format.
//
// "json" is indented with two spaces; "yaml" uses the yaml tags of the
// report types. The text format has no document form.
func encodeReport(w io.Writer, format string, v any) error {
	switch format {
	case config.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case config.FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("format %q has no document encoding", format)
	}
}

// writeReport encodes v to path, or to stdout when path is empty.
func writeReport(stdout io.Writer, path, format string, v any) error {
	if path == "" {
		return encodeReport(stdout, format, v)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create the report directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create the report file: %w", err)
	}
	if err := encodeReport(f, format, v); err != nil {
		f.Close()
		return fmt.Errorf("failed to write the report: %w", err)
	}
	return f.Close()
}
