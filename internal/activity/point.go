/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package activity

import "fmt"

// Point is a named place in the day where an organiser can pin a fixed block.
type Point string

const (
	PointAfterTestRound Point = "after_test_round"
	PointAfterRound1    Point = "after_round_1"
	PointAfterRound2    Point = "after_round_2"
	PointLunch          Point = "lunch"
	PointBeforeFinals   Point = "before_finals"
	PointBeforeAwards   Point = "before_awards"
)

// ParsePoint validates an insertion point name.
func ParsePoint(s string) (Point, error) {
	p := Point(s)
	switch p {
	case PointAfterTestRound, PointAfterRound1, PointAfterRound2, PointLunch, PointBeforeFinals, PointBeforeAwards:
		return p, nil
	}
	return "", fmt.Errorf("unknown insertion point %q", s)
}

// Track returns the timeline a block at this point is written to.
func (p Point) Track() Track {
	switch p {
	case PointAfterTestRound, PointAfterRound1, PointAfterRound2, PointBeforeFinals:
		return TrackRobotGame
	case PointLunch, PointBeforeAwards:
		return TrackChallenge
	}
	panic(fmt.Sprintf("activity: unknown point %q", string(p)))
}

// AfterRound returns the point following robot-game round r. Round 3 is
// followed by the finals and has no point of its own.
func AfterRound(r int) (Point, bool) {
	switch r {
	case 0:
		return PointAfterTestRound, true
	case 1:
		return PointAfterRound1, true
	case 2:
		return PointAfterRound2, true
	}
	return "", false
}
