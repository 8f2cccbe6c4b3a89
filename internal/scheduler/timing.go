/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package scheduler

import (
	"github.com/friendsincode/matchday/internal/matchplan"
)

// matchOffsets returns each match's start in minutes from the round start.
// A table pair is free again when its previous match ends. On four tables
// the pair not used by the first match opens nextStart minutes later and
// consecutive starts stay at least nextStart apart.
func matchOffsets(entries []matchplan.Entry, tables, duration, nextStart int) []int {
	offs := make([]int, len(entries))
	if len(entries) == 0 {
		return offs
	}
	var free [2]int
	if tables == 4 {
		free[1-pairIndex(entries[0])] = nextStart
	}
	prev := 0
	for i, e := range entries {
		pr, gap := pairIndex(e), nextStart
		if tables != 4 {
			pr, gap = 0, 0
		}
		if i == 0 {
			gap = 0
		}
		start := max(free[pr], prev+gap)
		offs[i] = start
		free[pr] = start + duration
		prev = start
	}
	return offs
}

func pairIndex(e matchplan.Entry) int {
	if e.Table1 == 3 {
		return 1
	}
	return 0
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
