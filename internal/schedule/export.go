/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package schedule renders stored timetables for calendars.
package schedule

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/friendsincode/matchday/internal/activity"
	"github.com/friendsincode/matchday/internal/models"
)

// PlanSource reads stored plans.
type PlanSource interface {
	Get(ctx context.Context, id string) (*models.Plan, error)
	Activities(ctx context.Context, id string) ([]models.Activity, error)
}

// ExportService handles timetable export.
type ExportService struct {
	plans  PlanSource
	logger zerolog.Logger
}

// NewExportService creates a new export service.
func NewExportService(plans PlanSource, logger zerolog.Logger) *ExportService {
	return &ExportService{
		plans:  plans,
		logger: logger.With().Str("component", "schedule_export").Logger(),
	}
}

// ExportICalResult contains the iCal export data.
type ExportICalResult struct {
	Data        []byte
	Filename    string
	ContentType string
	Events      int
}

// ExportToICal exports a plan. With team > 0 only that team's activities
// and the event-wide ceremonies are included.
func (s *ExportService) ExportToICal(ctx context.Context, planID string, team int) (*ExportICalResult, error) {
	plan, err := s.plans.Get(ctx, planID)
	if err != nil {
		return nil, err
	}
	if team < 0 || team > plan.Teams {
		return nil, fmt.Errorf("team %d is not part of plan with %d teams", team, plan.Teams)
	}
	acts, err := s.plans.Activities(ctx, planID)
	if err != nil {
		return nil, err
	}

	res := RenderICal(plan, acts, team, time.Now())
	s.logger.Debug().Str("plan_id", planID).Int("team", team).Int("events", res.Events).Msg("plan exported to iCal")
	return res, nil
}

// RenderICal builds the calendar. Times are floating local times, as generated.
func RenderICal(plan *models.Plan, acts []models.Activity, team int, stamp time.Time) *ExportICalResult {
	name := plan.Name
	if name == "" {
		name = "Competition"
	}
	calName := name + " Timetable"
	if team > 0 {
		calName = fmt.Sprintf("%s Team %d", name, team)
	}

	var buf bytes.Buffer
	buf.WriteString("BEGIN:VCALENDAR\r\n")
	buf.WriteString("VERSION:2.0\r\n")
	buf.WriteString("PRODID:-//Matchday//Timetable Export//EN\r\n")
	buf.WriteString(fmt.Sprintf("X-WR-CALNAME:%s\r\n", escapeICalText(calName)))
	buf.WriteString("CALSCALE:GREGORIAN\r\n")
	buf.WriteString("METHOD:PUBLISH\r\n")

	events := 0
	for _, a := range acts {
		if team > 0 && !forTeam(a, team) {
			continue
		}
		events++
		buf.WriteString("BEGIN:VEVENT\r\n")
		buf.WriteString(fmt.Sprintf("UID:%s@matchday\r\n", a.ID))
		buf.WriteString(fmt.Sprintf("DTSTAMP:%s\r\n", stamp.UTC().Format("20060102T150405Z")))
		buf.WriteString(fmt.Sprintf("DTSTART:%s\r\n", formatICalTime(a.StartsAt)))
		buf.WriteString(fmt.Sprintf("DTEND:%s\r\n", formatICalTime(a.EndsAt)))
		buf.WriteString(fmt.Sprintf("SUMMARY:%s\r\n", escapeICalText(summary(a))))
		if a.Room != "" {
			buf.WriteString(fmt.Sprintf("LOCATION:%s\r\n", escapeICalText(a.Room)))
		}
		buf.WriteString(fmt.Sprintf("CATEGORIES:%s\r\n", escapeICalText(a.Kind)))
		buf.WriteString("END:VEVENT\r\n")
	}

	buf.WriteString("END:VCALENDAR\r\n")

	filename := fmt.Sprintf("%s-%s.ics", slugify(name), plan.StartsAt.Format("2006-01-02"))
	if team > 0 {
		filename = fmt.Sprintf("%s-team-%d-%s.ics", slugify(name), team, plan.StartsAt.Format("2006-01-02"))
	}
	return &ExportICalResult{
		Data:        buf.Bytes(),
		Filename:    filename,
		ContentType: "text/calendar; charset=utf-8",
		Events:      events,
	}
}

// forTeam reports whether a team calendar shows the activity.
func forTeam(a models.Activity, team int) bool {
	if a.Team1 == team || a.Team2 == team {
		return true
	}
	switch a.Kind {
	case activity.KindOpening.String(), activity.KindCoachBriefing.String(), activity.KindAwards.String(), activity.KindExplore.String():
		return true
	}
	return false
}

func summary(a models.Activity) string {
	switch a.Kind {
	case activity.KindMatch.String():
		return fmt.Sprintf("Robot game round %s, match %d: %s vs %s (tables %d/%d)",
			roundName(a.Round), a.Match, teamName(a.Team1), teamName(a.Team2), a.Table1, a.Table2)
	case activity.KindFinalMatch.String():
		return fmt.Sprintf("Final of %d, match %d: tables %d/%d", a.Stage, a.Match, a.Table1, a.Table2)
	case activity.KindRobotCheck.String():
		return fmt.Sprintf("Robot check round %s, match %d", roundName(a.Round), a.Match)
	case activity.KindWithTeam.String():
		return fmt.Sprintf("Judging block %d, lane %d: %s", a.Block, a.Lane, teamName(a.Team1))
	case activity.KindFixedBlock.String():
		if a.Label != "" {
			return a.Label
		}
	}
	return strings.ReplaceAll(a.Kind, "_", " ")
}

func roundName(r int) string {
	if r == 0 {
		return "test"
	}
	return fmt.Sprint(r)
}

func teamName(t int) string {
	if t == 0 {
		return "open slot"
	}
	return fmt.Sprintf("team %d", t)
}

func formatICalTime(t time.Time) string {
	return t.Format("20060102T150405")
}

func escapeICalText(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}

func slugify(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "-")
	var result strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			result.WriteRune(r)
		}
	}
	return result.String()
}
