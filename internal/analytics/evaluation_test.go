/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package analytics

import (
	"testing"
	"time"

	"github.com/friendsincode/matchday/internal/activity"
	"github.com/friendsincode/matchday/internal/matchplan"
	"github.com/friendsincode/matchday/internal/params"
)

func buildPlan(t *testing.T, teams, lanes, tables int) *matchplan.Plan {
	t.Helper()
	p, err := params.Load(params.MapSource(params.Overlay(params.Preset(), map[string]any{
		params.KeyTeams: teams, params.KeyLanes: lanes, params.KeyTables: tables,
	})))
	if err != nil {
		t.Fatalf("load params: %v", err)
	}
	plan, err := matchplan.Build(p, matchplan.Identity{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return plan
}

func TestEvaluateRotation(t *testing.T) {
	plan := buildPlan(t, 12, 3, 2)
	start := time.Date(2026, 11, 14, 8, 0, 0, 0, time.UTC)
	ev := Evaluate(plan, nil, start, start.Add(9*time.Hour))

	if ev.DurationMinutes != 540 {
		t.Fatalf("DurationMinutes = %d, want 540", ev.DurationMinutes)
	}
	if ev.MinOpponents != 2 || ev.MaxOpponents != 2 || ev.AvgOpponents != 2 {
		t.Fatalf("opponents = %d..%d avg %.2f, want 2", ev.MinOpponents, ev.MaxOpponents, ev.AvgOpponents)
	}
	if ev.MinTables != 2 || ev.MaxTables != 2 {
		t.Fatalf("tables = %d..%d, want 2", ev.MinTables, ev.MaxTables)
	}
	if ev.RepeatedOpponents != 6 {
		t.Fatalf("RepeatedOpponents = %d, want 6", ev.RepeatedOpponents)
	}
}

func TestEvaluateGaps(t *testing.T) {
	plan := buildPlan(t, 12, 3, 2)
	at := time.Date(2026, 11, 14, 9, 0, 0, 0, time.UTC)
	span := func(k activity.Kind, offset, minutes, team int) activity.Activity {
		a := activity.Span(k, at.Add(time.Duration(offset)*time.Minute), minutes)
		a.Team1 = team
		return a
	}
	acts := []activity.Activity{
		span(activity.KindWithTeam, 0, 30, 1),
		span(activity.KindScoring, 30, 10, 0),
		span(activity.KindWithTeam, 55, 30, 4),
		span(activity.KindRobotCheck, 40, 2, 1),
		span(activity.KindMatch, 42, 8, 1),
		span(activity.KindMatch, 100, 8, 4),
	}
	ev := Evaluate(plan, acts, at, at.Add(2*time.Hour))
	if ev.JudgingIdleMinutes != 15 {
		t.Fatalf("JudgingIdleMinutes = %d, want 15", ev.JudgingIdleMinutes)
	}
	if ev.MinTeamGapMinutes != 10 {
		t.Fatalf("MinTeamGapMinutes = %d, want 10", ev.MinTeamGapMinutes)
	}
}
