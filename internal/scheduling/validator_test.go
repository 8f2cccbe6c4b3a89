/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package scheduling

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/friendsincode/matchday/internal/activity"
)

var day = time.Date(2026, 11, 14, 0, 0, 0, 0, time.UTC)

func at(hhmm string) time.Time {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		panic(err)
	}
	return day.Add(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute)
}

func judging(team int, from, to string) activity.Activity {
	return activity.Activity{Kind: activity.KindWithTeam, Start: at(from), End: at(to), Block: 1, Lane: 1, Team1: team}
}

func match(t1, t2, tbl1, tbl2 int, from, to string) activity.Activity {
	return activity.Activity{Kind: activity.KindMatch, Start: at(from), End: at(to), Round: 1, Match: 1,
		Team1: t1, Team2: t2, Table1: tbl1, Table2: tbl2}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		acts     []activity.Activity
		transfer int
		errors   []RuleType
		warnings int
	}{
		{
			name: "clean",
			acts: []activity.Activity{
				judging(1, "09:00", "09:30"),
				match(1, 2, 1, 2, "09:40", "09:48"),
			},
			transfer: 5,
		},
		{
			name: "team in two places",
			acts: []activity.Activity{
				judging(1, "09:00", "09:30"),
				match(1, 2, 1, 2, "09:20", "09:28"),
			},
			errors:   []RuleType{RuleTeamOverlap},
			transfer: 0,
		},
		{
			name: "table double booked",
			acts: []activity.Activity{
				match(1, 2, 1, 2, "09:00", "09:08"),
				match(3, 4, 2, 3, "09:04", "09:12"),
			},
			errors: []RuleType{RuleTableOverlap},
		},
		{
			name: "adjacent bookings do not overlap",
			acts: []activity.Activity{
				match(1, 2, 1, 2, "09:00", "09:08"),
				match(1, 2, 1, 2, "09:08", "09:16"),
			},
		},
		{
			name: "track goes back in time",
			acts: []activity.Activity{
				match(1, 2, 1, 2, "09:10", "09:18"),
				match(3, 4, 3, 4, "09:00", "09:08"),
			},
			errors: []RuleType{RuleTrackOrder},
		},
		{
			name: "briefings are exempt from track order",
			acts: []activity.Activity{
				judging(1, "09:00", "09:30"),
				{Kind: activity.KindJudgeBriefing, Start: at("08:00"), End: at("08:30")},
			},
		},
		{
			name: "short transfer warns",
			acts: []activity.Activity{
				judging(1, "09:00", "09:30"),
				match(1, 2, 1, 2, "09:32", "09:40"),
			},
			transfer: 5,
			warnings: 1,
		},
		{
			name: "zero transfer disables warnings",
			acts: []activity.Activity{
				judging(1, "09:00", "09:30"),
				match(1, 2, 1, 2, "09:30", "09:38"),
			},
		},
	}

	v := NewValidator(zerolog.Nop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := v.Validate(tt.acts, Options{Transfer: tt.transfer})
			if res.Valid != (len(tt.errors) == 0) {
				t.Fatalf("valid=%v with errors %+v", res.Valid, res.Errors)
			}
			if len(res.Errors) != len(tt.errors) {
				t.Fatalf("expected %d errors, got %+v", len(tt.errors), res.Errors)
			}
			for i, rule := range tt.errors {
				if res.Errors[i].RuleType != rule || res.Errors[i].Severity != SeverityError {
					t.Fatalf("error %d: expected %s, got %+v", i, rule, res.Errors[i])
				}
			}
			if len(res.Warnings) != tt.warnings {
				t.Fatalf("expected %d warnings, got %+v", tt.warnings, res.Warnings)
			}
		})
	}
}

func TestOverlapDetails(t *testing.T) {
	acts := []activity.Activity{
		match(1, 2, 1, 2, "09:00", "09:08"),
		match(3, 4, 2, 3, "09:04", "09:12"),
	}
	res := NewValidator(zerolog.Nop()).Validate(acts, Options{})
	if len(res.Errors) != 1 {
		t.Fatalf("expected one error, got %+v", res.Errors)
	}
	got := res.Errors[0]
	if !got.StartsAt.Equal(at("09:04")) || !got.EndsAt.Equal(at("09:08")) {
		t.Fatalf("unexpected overlap window %s-%s", got.StartsAt, got.EndsAt)
	}
	if got.Details["table"] != 2 || got.Details["index_a"] != 0 || got.Details["index_b"] != 1 {
		t.Fatalf("unexpected details %v", got.Details)
	}
}
