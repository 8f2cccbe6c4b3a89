/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package logbuffer

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
)

func TestBufferWrapsAround(t *testing.T) {
	b := New(3)
	for _, msg := range []string{"a", "b", "c", "d"} {
		b.Add(Entry{Message: msg})
	}
	all := b.All()
	if len(all) != 3 || all[0].Message != "b" || all[2].Message != "d" {
		t.Fatalf("unexpected entries %+v", all)
	}
}

func TestWriterCapturesZerolog(t *testing.T) {
	b := New(10)
	var out bytes.Buffer
	logger := zerolog.New(NewWriter(b, &out)).With().Timestamp().Logger()

	logger.Info().Str("component", "sweep").Str("run_id", "r1").Msg("sweep item done")
	logger.Warn().Str("component", "plans").Str("plan_id", "p1").Msg("cache miss")
	logger.Error().Str("component", "sweep").Str("run_id", "r2").Msg("Sweep item failed")

	if out.Len() == 0 {
		t.Fatal("expected lines passed through")
	}

	tests := []struct {
		name string
		q    Query
		want int
	}{
		{"all", Query{}, 3},
		{"component", Query{Component: "sweep"}, 2},
		{"level", Query{Level: "warn"}, 1},
		{"field", Query{Fields: map[string]string{"run_id": "r1"}}, 1},
		{"search is case insensitive", Query{Search: "SWEEP ITEM"}, 2},
		{"limit", Query{Limit: 1}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := b.Find(tt.q); len(got) != tt.want {
				t.Fatalf("expected %d entries, got %d", tt.want, len(got))
			}
		})
	}

	newest := b.Find(Query{Descending: true, Limit: 1})
	if newest[0].Level != "error" {
		t.Fatalf("expected newest entry first, got %+v", newest[0])
	}

	st := b.Stats()
	if st.Count != 3 || st.LevelCount["info"] != 1 || len(st.Components) != 2 {
		t.Fatalf("unexpected stats %+v", st)
	}
}
