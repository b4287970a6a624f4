// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package format renders benchmark numbers and durations for humans.
package format

import (
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// MaxDecimals is the highest precision Number supports.
const MaxDecimals = 9

// Number rounds v to decimals places and groups the integer digits with
// commas. Trailing fractional zeros are dropped.
//
//	Number(1234567.891, 0) // "1,234,568"
//	Number(123.567, 1)     // "123.6"
//	Number(2.5, 3)         // "2.5"
func Number(v float64, decimals int) string {
	return render("", v, decimals)
}

// NumberWithSign is Number with an explicit "+" for positive values.
//
//	NumberWithSign(123.567, 0) // "+124"
//	NumberWithSign(-5.25, 2)   // "-5.25"
func NumberWithSign(v float64, decimals int) string {
	return render("+", v, decimals)
}

func render(sign string, v float64, decimals int) string {
	decimals = min(max(decimals, 0), MaxDecimals)

	layout := sign + "#,###."
	if decimals > 0 {
		layout += strings.Repeat("#", decimals)
	}

	s := humanize.FormatFloat(layout, v)
	if decimals > 0 {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	return s
}

// Short renders d with the largest unit that keeps the value at or above
// one, with at most two decimals: "850ns", "1.23µs", "4.5ms", "2s", "1.5m".
func Short(d time.Duration) string {
	if d < 0 {
		return "-" + Short(-d)
	}

	units := []struct {
		size   time.Duration
		suffix string
	}{
		{time.Hour, "h"},
		{time.Minute, "m"},
		{time.Second, "s"},
		{time.Millisecond, "ms"},
		{time.Microsecond, "µs"},
	}
	for _, u := range units {
		if d >= u.size {
			return humanize.FtoaWithDigits(float64(d)/float64(u.size), 2) + u.suffix
		}
	}
	return humanize.FtoaWithDigits(float64(d), 2) + "ns"
}

// Seconds converts a duration expressed in float seconds, as stored in
// bench.Stat, to a time.Duration.
func Seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
