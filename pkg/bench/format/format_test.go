// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const sample = 123.567

func TestNumber(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		decimals int
		want     string
	}{
		{name: "ignores positive sign", value: sample, want: "124"},
		{name: "serializes negative sign", value: -sample, want: "-124"},
		{name: "rounds to specified decimals", value: sample, decimals: 1, want: "123.6"},
		{name: "groups thousands", value: 1234567.891, want: "1,234,568"},
		{name: "drops trailing zeros", value: 2.5, decimals: 3, want: "2.5"},
		{name: "drops the point of a whole value", value: 7, decimals: 2, want: "7"},
		{name: "zero", value: 0, decimals: 2, want: "0"},
		{name: "negative decimals clamp to zero", value: sample, decimals: -2, want: "124"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Number(tt.value, tt.decimals))
		})
	}
}

func TestNumberWithSign(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		decimals int
		want     string
	}{
		{name: "serializes positive sign", value: sample, want: "+124"},
		{name: "serializes negative sign", value: -sample, want: "-124"},
		{name: "rounds to specified decimals", value: sample, decimals: 1, want: "+123.6"},
		{name: "percent with two decimals", value: -42.1234, decimals: 2, want: "-42.12"},
		{name: "zero has no sign", value: 0, decimals: 2, want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NumberWithSign(tt.value, tt.decimals))
		})
	}
}

func TestShort(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0ns"},
		{850 * time.Nanosecond, "850ns"},
		{1234 * time.Nanosecond, "1.23µs"},
		{4500 * time.Microsecond, "4.5ms"},
		{2 * time.Second, "2s"},
		{90 * time.Second, "1.5m"},
		{3 * time.Hour, "3h"},
		{-2 * time.Millisecond, "-2ms"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Short(tt.in))
		})
	}
}

func TestSeconds(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, Seconds(1.5))
	assert.Equal(t, 250*time.Millisecond, Seconds(0.25))
}
