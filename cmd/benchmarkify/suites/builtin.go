// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package suites

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"hash/crc32"
	"hash/fnv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/benchmarkify/pkg/bench"
)

// sink keeps results reachable so the compiler cannot drop the work.
var sink any

// -----------------------------------------------------------------------------
// strings
// -----------------------------------------------------------------------------

var words = strings.Fields("the quick brown fox jumps over the lazy dog again and again")

func registerStrings(s *bench.Suite) {
	s.Ref("plus", bench.SyncFn(func() {
		var out string
		for _, w := range words {
			out += w + " "
		}
		sink = out
	})).
		Add("builder", bench.SyncFn(func() {
			var b strings.Builder
			for _, w := range words {
				b.WriteString(w)
				b.WriteByte(' ')
			}
			sink = b.String()
		})).
		Add("join", bench.SyncFn(func() {
			sink = strings.Join(words, " ")
		})).
		Add("sprintf", bench.SyncFn(func() {
			var out string
			for _, w := range words {
				out = fmt.Sprintf("%s%s ", out, w)
			}
			sink = out
		}))
}

// -----------------------------------------------------------------------------
// hashing
// -----------------------------------------------------------------------------

var payload = func() []byte {
	b := make([]byte, 1024)
	for i := range b {
		b[i] = byte(i * 31)
	}
	return b
}()

func registerHashing(s *bench.Suite) {
	s.Ref("xxhash", bench.SyncFn(func() {
		sink = xxhash.Sum64(payload)
	})).
		Add("fnv64a", bench.SyncFn(func() {
			h := fnv.New64a()
			_, _ = h.Write(payload)
			sink = h.Sum64()
		})).
		Add("crc32", bench.SyncFn(func() {
			sink = crc32.ChecksumIEEE(payload)
		})).
		Add("sha256", bench.SyncFn(func() {
			sink = sha256.Sum256(payload)
		}))
}

// -----------------------------------------------------------------------------
// encoding
// -----------------------------------------------------------------------------

// document mirrors the shape of a suite report.
var document = bench.SuiteReport{
	Name: "encoding",
	Tests: []bench.TestResult{
		{Name: "a", Reference: true, Stat: &bench.Stat{Duration: 1.5, Cycle: 12, Count: 12000, Avg: 0.000125, RPS: 8000}},
		{Name: "b", Fastest: true, Stat: &bench.Stat{Duration: 1.2, Cycle: 15, Count: 15000, Avg: 0.00008, RPS: 12500, Percent: 56.25}},
		{Name: "c", Skipped: true},
	},
}

var (
	documentJSON = mustMarshal(json.Marshal, document)
	documentYAML = mustMarshal(yaml.Marshal, document)
)

func mustMarshal(marshal func(any) ([]byte, error), v any) []byte {
	b, err := marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

func registerEncoding(s *bench.Suite) {
	s.Ref("json-marshal", bench.Sync(func() error {
		b, err := json.Marshal(document)
		sink = b
		return err
	})).
		Add("yaml-marshal", bench.Sync(func() error {
			b, err := yaml.Marshal(document)
			sink = b
			return err
		})).
		Add("json-unmarshal", bench.Sync(func() error {
			var out bench.SuiteReport
			err := json.Unmarshal(documentJSON, &out)
			sink = out
			return err
		})).
		Add("yaml-unmarshal", bench.Sync(func() error {
			var out bench.SuiteReport
			err := yaml.Unmarshal(documentYAML, &out)
			sink = out
			return err
		}))
}

// -----------------------------------------------------------------------------
// ids
// -----------------------------------------------------------------------------

func registerIDs(s *bench.Suite) {
	s.Ref("uuid-v4", bench.SyncFn(func() {
		sink = uuid.New()
	})).
		Add("uuid-v4-string", bench.SyncFn(func() {
			sink = uuid.NewString()
		})).
		Add("uuid-v7", bench.Sync(func() error {
			id, err := uuid.NewV7()
			sink = id
			return err
		})).
		Add("uuid-parse", bench.Sync(func() error {
			id, err := uuid.Parse("0193a1f2-8c3e-7b2a-9d4f-5e6a7b8c9d0e")
			sink = id
			return err
		}))
}

// -----------------------------------------------------------------------------
// async
// -----------------------------------------------------------------------------

func registerAsync(s *bench.Suite) {
	s.Ref("inline", bench.Async(func(done bench.Done) {
		done(nil)
	})).
		Add("goroutine", bench.Async(func(done bench.Done) {
			go done(nil)
		})).
		Add("errgroup", bench.Async(func(done bench.Done) {
			go func() {
				var g errgroup.Group
				for range 4 {
					g.Go(func() error { return nil })
				}
				done(g.Wait())
			}()
		})).
		Add("timer", bench.Async(func(done bench.Done) {
			time.AfterFunc(0, func() { done(nil) })
		}))
}
