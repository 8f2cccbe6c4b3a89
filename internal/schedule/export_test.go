/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package schedule

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/friendsincode/matchday/internal/models"
)

var errMissing = errors.New("missing")

type fakePlans struct {
	plan *models.Plan
	acts []models.Activity
}

func (f fakePlans) Get(_ context.Context, id string) (*models.Plan, error) {
	if f.plan == nil || f.plan.ID != id {
		return nil, errMissing
	}
	return f.plan, nil
}

func (f fakePlans) Activities(_ context.Context, _ string) ([]models.Activity, error) {
	return f.acts, nil
}

func fixture() fakePlans {
	day := time.Date(2026, 11, 14, 9, 0, 0, 0, time.UTC)
	at := func(min int) time.Time { return day.Add(time.Duration(min) * time.Minute) }
	return fakePlans{
		plan: &models.Plan{ID: "p1", Name: "Regional, North", Teams: 4, StartsAt: day},
		acts: []models.Activity{
			{ID: "a1", Kind: "opening", Room: "stage", StartsAt: at(0), EndsAt: at(30)},
			{ID: "a2", Kind: "judging_with_team", Room: "judging", Block: 1, Lane: 1, Team1: 1, StartsAt: at(35), EndsAt: at(65)},
			{ID: "a3", Kind: "match", Room: "arena", Round: 0, Match: 1, Table1: 1, Table2: 2, Team1: 2, Team2: 3, StartsAt: at(35), EndsAt: at(43)},
			{ID: "a4", Kind: "match", Room: "arena", Round: 1, Match: 1, Table1: 1, Table2: 2, Team1: 1, Team2: 0, StartsAt: at(70), EndsAt: at(78)},
			{ID: "a5", Kind: "deliberations", Room: "judges_lounge", StartsAt: at(80), EndsAt: at(140)},
			{ID: "a6", Kind: "awards", Room: "stage", StartsAt: at(150), EndsAt: at(195)},
		},
	}
}

func TestExportWholePlan(t *testing.T) {
	svc := NewExportService(fixture(), zerolog.Nop())
	res, err := svc.ExportToICal(context.Background(), "p1", 0)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if res.Events != 6 {
		t.Fatalf("expected 6 events, got %d", res.Events)
	}
	out := string(res.Data)
	for _, want := range []string{
		"BEGIN:VCALENDAR\r\n",
		"X-WR-CALNAME:Regional\\, North Timetable\r\n",
		"DTSTART:20261114T090000\r\n",
		"SUMMARY:Robot game round test\\, match 1: team 2 vs team 3 (tables 1/2)\r\n",
		"SUMMARY:Robot game round 1\\, match 1: team 1 vs open slot (tables 1/2)\r\n",
		"LOCATION:judges_lounge\r\n",
		"END:VCALENDAR\r\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in output", want)
		}
	}
	if res.Filename != "regional-north-2026-11-14.ics" {
		t.Fatalf("unexpected filename %q", res.Filename)
	}
}

func TestExportTeamCalendar(t *testing.T) {
	svc := NewExportService(fixture(), zerolog.Nop())
	res, err := svc.ExportToICal(context.Background(), "p1", 1)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	// opening, judging, round 1 match, awards
	if res.Events != 4 {
		t.Fatalf("expected 4 events for team 1, got %d", res.Events)
	}
	if strings.Contains(string(res.Data), "deliberations") {
		t.Fatal("team calendar must not show deliberations")
	}
	if !strings.Contains(res.Filename, "team-1") {
		t.Fatalf("unexpected filename %q", res.Filename)
	}
}

func TestExportRejectsUnknownTeamOrPlan(t *testing.T) {
	svc := NewExportService(fixture(), zerolog.Nop())
	if _, err := svc.ExportToICal(context.Background(), "p1", 5); err == nil {
		t.Fatal("expected error for team outside the plan")
	}
	if _, err := svc.ExportToICal(context.Background(), "p2", 0); !errors.Is(err, errMissing) {
		t.Fatalf("expected plan lookup error, got %v", err)
	}
}
