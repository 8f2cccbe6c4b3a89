/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package activity

import (
	"context"
	"time"

	"github.com/friendsincode/matchday/internal/clock"
)

// Activity is one timetable entry. Zero team, table and lane fields mean
// not applicable.
type Activity struct {
	Kind  Kind
	Start time.Time
	End   time.Time

	// Block is the judging block, 1-based.
	Block int
	Lane  int

	Round int
	Match int
	// Stage is the number of teams entering a finals stage.
	Stage int

	Table1 int
	Table2 int
	Team1  int
	Team2  int

	// Point and Label are set on fixed blocks.
	Point Point
	Label string
}

// Track returns the activity's timeline.
func (a Activity) Track() Track {
	if a.Kind == KindFixedBlock && a.Point != "" {
		return a.Point.Track()
	}
	return a.Kind.Track()
}

// Room returns where the activity takes place.
func (a Activity) Room() Room {
	return a.Kind.Room()
}

// Duration is the activity length in whole minutes.
func (a Activity) Duration() int {
	return int(a.End.Sub(a.Start) / time.Minute)
}

// Teams returns the non-empty teams present at the activity.
func (a Activity) Teams() []int {
	var out []int
	if a.Team1 != 0 {
		out = append(out, a.Team1)
	}
	if a.Team2 != 0 {
		out = append(out, a.Team2)
	}
	return out
}

// Tables returns the robot-game tables the activity occupies.
func (a Activity) Tables() []int {
	if a.Kind != KindMatch && a.Kind != KindFinalMatch {
		return nil
	}
	var out []int
	if a.Table1 != 0 {
		out = append(out, a.Table1)
	}
	if a.Table2 != 0 {
		out = append(out, a.Table2)
	}
	return out
}

// Span builds an activity of kind k starting at cur lasting minutes.
func Span(k Kind, start time.Time, minutes int) Activity {
	return Activity{Kind: k, Start: start, End: start.Add(time.Duration(minutes) * time.Minute)}
}

// GroupID identifies an activity group within one generation run.
type GroupID int

// Writer receives the generator's output. The generator never reads back.
type Writer interface {
	// BeginGroup opens a group; later activities belong to it.
	BeginGroup(ctx context.Context, label string) (GroupID, error)
	WriteActivity(ctx context.Context, a Activity) error
	WriteActivities(ctx context.Context, as []Activity) error
	// InsertTimedBlock writes the fixed block configured at point and
	// advances cur past it. Without one, cur advances by fallback minutes.
	InsertTimedBlock(ctx context.Context, point Point, fallback int, cur *clock.Cursor) error
	// HasTimedBlock reports whether a fixed block is configured at point.
	HasTimedBlock(point Point) bool
}
