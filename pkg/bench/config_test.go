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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 5*time.Second, cfg.TimeBudget)
	assert.Equal(t, 1000, cfg.Cycles)
	assert.Equal(t, 5, cfg.MinSamples)
}

func TestResolve(t *testing.T) {
	parent := Config{TimeBudget: time.Second, Cycles: 100, MinSamples: 10}

	tests := []struct {
		name string
		opts []Option
		want Config
	}{
		{
			name: "no options inherits parent",
			want: parent,
		},
		{
			name: "explicit zero budget is honoured",
			opts: []Option{WithTimeBudget(0)},
			want: Config{TimeBudget: 0, Cycles: 100, MinSamples: 10},
		},
		{
			name: "explicit zero min samples is honoured",
			opts: []Option{WithMinSamples(0)},
			want: Config{TimeBudget: time.Second, Cycles: 100, MinSamples: 0},
		},
		{
			name: "negative values clamp to zero",
			opts: []Option{WithTimeBudget(-time.Second), WithMinSamples(-3)},
			want: Config{TimeBudget: 0, Cycles: 100, MinSamples: 0},
		},
		{
			name: "cycles clamp to one",
			opts: []Option{WithCycles(0)},
			want: Config{TimeBudget: time.Second, Cycles: 1, MinSamples: 10},
		},
		{
			name: "later option wins",
			opts: []Option{WithCycles(5), WithCycles(7)},
			want: Config{TimeBudget: time.Second, Cycles: 7, MinSamples: 10},
		},
		{
			name: "with config sets every field",
			opts: []Option{WithConfig(Config{TimeBudget: time.Minute, Cycles: -1, MinSamples: 2})},
			want: Config{TimeBudget: time.Minute, Cycles: 1, MinSamples: 2},
		},
		{
			name: "nil option is ignored",
			opts: []Option{nil, WithMinSamples(3)},
			want: Config{TimeBudget: time.Second, Cycles: 100, MinSamples: 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolve(parent, tt.opts))
		})
	}
}

func TestConfigInheritance(t *testing.T) {
	h := quietHarness(WithDefaults(WithTimeBudget(time.Second), WithCycles(50)))
	s := h.CreateSuite("suite", WithCycles(20), WithMinSamples(0))
	s.Add("inherits", Sync(noop)).
		Add("overrides", Sync(noop), WithTimeBudget(0), WithMinSamples(9))

	assert.Equal(t, Config{TimeBudget: time.Second, Cycles: 50, MinSamples: DefaultMinSamples}, h.Defaults())
	assert.Equal(t, Config{TimeBudget: time.Second, Cycles: 20, MinSamples: 0}, s.Config())

	cases := s.Cases()
	assert.Equal(t, Config{TimeBudget: time.Second, Cycles: 20, MinSamples: 0}, cases[0].Config())
	assert.Equal(t, Config{TimeBudget: 0, Cycles: 20, MinSamples: 9}, cases[1].Config())
}

func TestCreateSuite_MinSamplesSetsCycles(t *testing.T) {
	h := quietHarness(WithDefaults(WithTimeBudget(time.Second), WithCycles(50)))

	tests := []struct {
		name string
		opts []Option
		want Config
	}{
		{
			name: "min samples alone",
			opts: []Option{WithMinSamples(40)},
			want: Config{TimeBudget: time.Second, Cycles: 40, MinSamples: 40},
		},
		{
			name: "explicit cycles win",
			opts: []Option{WithMinSamples(40), WithCycles(8)},
			want: Config{TimeBudget: time.Second, Cycles: 8, MinSamples: 40},
		},
		{
			name: "zero min samples inherits cycles",
			opts: []Option{WithMinSamples(0)},
			want: Config{TimeBudget: time.Second, Cycles: 50, MinSamples: 0},
		},
		{
			name: "no options",
			want: Config{TimeBudget: time.Second, Cycles: 50, MinSamples: DefaultMinSamples},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, h.CreateSuite(tt.name, tt.opts...).Config())
		})
	}
}

func TestCaseOptions_MinSamplesKeepsCycles(t *testing.T) {
	h := quietHarness(WithDefaults(WithCycles(50)))
	c := h.CreateSuite("suite").Add("case", Sync(noop), WithMinSamples(7)).Cases()[0]

	assert.Equal(t, 50, c.Config().Cycles)
}
