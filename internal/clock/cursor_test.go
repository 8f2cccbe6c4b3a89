/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package clock

import (
	"testing"
	"time"
)

func TestCursorAdvanceRetreat(t *testing.T) {
	day := time.Date(2026, 11, 14, 0, 0, 0, 0, time.UTC)
	c := At(day, 9, 0)

	c.Advance(45)
	if got, want := c.Current(), time.Date(2026, 11, 14, 9, 45, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("after advance = %v, want %v", got, want)
	}

	c.Retreat(90)
	if got, want := c.Current(), time.Date(2026, 11, 14, 8, 15, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("after retreat = %v, want %v", got, want)
	}

	c.Advance(-15)
	if got, want := c.Current(), time.Date(2026, 11, 14, 8, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("negative advance = %v, want %v", got, want)
	}
}

func TestCursorForkIsIndependent(t *testing.T) {
	c := New(time.Date(2026, 11, 14, 10, 0, 0, 0, time.UTC))
	f := c.Fork()
	f.Advance(30)

	if !c.Current().Equal(time.Date(2026, 11, 14, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("fork advanced the original cursor: %v", c.Current())
	}
	if f.MinutesUntil(c.Current()) != -30 {
		t.Fatalf("MinutesUntil = %d, want -30", f.MinutesUntil(c.Current()))
	}
}

func TestCursorSnapshotCannotMutate(t *testing.T) {
	c := New(time.Date(2026, 11, 14, 10, 0, 0, 0, time.UTC))
	snap := c.Current()
	snap = snap.Add(time.Hour)
	_ = snap

	if !c.Current().Equal(time.Date(2026, 11, 14, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("snapshot mutation leaked into cursor")
	}
}

func TestCursorPullTo(t *testing.T) {
	base := time.Date(2026, 11, 14, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		name   string
		target time.Time
		moved  bool
		want   time.Time
	}{
		{"later target pulls forward", base.Add(20 * time.Minute), true, base.Add(20 * time.Minute)},
		{"earlier target is ignored", base.Add(-20 * time.Minute), false, base},
		{"equal target is ignored", base, false, base},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(base)
			if moved := c.PullTo(tt.target); moved != tt.moved {
				t.Errorf("PullTo moved = %v, want %v", moved, tt.moved)
			}
			if !c.Current().Equal(tt.want) {
				t.Errorf("cursor = %v, want %v", c.Current(), tt.want)
			}
		})
	}
}
