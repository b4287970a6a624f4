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
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/benchmarkify/pkg/bench"
)

func sampleReport() *bench.Report {
	msg := "boom"
	return &bench.Report{
		Name: "sample",
		Suites: []bench.SuiteReport{{
			Name: "s",
			Tests: []bench.TestResult{
				{Name: "a", Fastest: true, Stat: &bench.Stat{Cycle: 1, Count: 10, RPS: 100}},
				{Name: "b", Error: &msg},
			},
		}},
		Timestamp: 1700000000000,
		Generated: "Tue, 14 Nov 2023 22:13:20 +0000",
		Started:   1699999999000,
		ElapsedMs: 1000,
	}
}

func TestEncodeReport_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, encodeReport(&buf, "json", sampleReport()))

	out := buf.String()
	assert.Contains(t, out, "\n  \"name\": \"sample\"")
	assert.Contains(t, out, `"error": "boom"`)
	assert.Contains(t, out, `"stat": null`)
	assert.Contains(t, out, `"elapsedMs": 1000`)
}

func TestEncodeReport_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, encodeReport(&buf, "yaml", sampleReport()))

	out := buf.String()
	assert.Contains(t, out, "name: sample\n")
	assert.Contains(t, out, "elapsed_ms: 1000")
	assert.Contains(t, out, "error: boom")
}

func TestEncodeReport_TextIsRejected(t *testing.T) {
	err := encodeReport(&bytes.Buffer{}, "text", sampleReport())
	assert.Error(t, err)
}

func TestWriteReport_CreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "report.json")

	require.NoError(t, writeReport(nil, path, "json", sampleReport()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"name": "sample"`)
}

func TestWriteReport_Stdout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, "", "yaml", sampleReport()))

	assert.Contains(t, buf.String(), "suites:")
}
