/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package scheduling

import (
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/friendsincode/matchday/internal/activity"
)

// RuleType names a validation rule.
type RuleType string

const (
	RuleTeamOverlap  RuleType = "team_overlap"
	RuleTableOverlap RuleType = "table_overlap"
	RuleTrackOrder   RuleType = "track_order"
	RuleTransfer     RuleType = "transfer"
)

// Severity of a violation.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Violation is a single rule breach.
type Violation struct {
	RuleType RuleType       `json:"rule_type"`
	Severity Severity       `json:"severity"`
	Message  string         `json:"message"`
	StartsAt time.Time      `json:"starts_at"`
	EndsAt   time.Time      `json:"ends_at"`
	Details  map[string]any `json:"details,omitempty"`
}

// Result collects the violations of one timetable.
type Result struct {
	Valid     bool        `json:"valid"`
	Errors    []Violation `json:"errors"`
	Warnings  []Violation `json:"warnings"`
	CheckedAt time.Time   `json:"checked_at"`
}

// Options tune the checks. Transfer is the minimum gap, in minutes, a team
// needs between a judging room and a robot-game table; zero disables it.
type Options struct {
	Transfer int
}

// Validator checks generated timetables.
type Validator struct {
	logger zerolog.Logger
}

// NewValidator creates a new timetable validator.
func NewValidator(logger zerolog.Logger) *Validator {
	return &Validator{
		logger: logger.With().Str("component", "timetable_validator").Logger(),
	}
}

// Validate checks activities given in write order.
func (v *Validator) Validate(acts []activity.Activity, opts Options) *Result {
	result := &Result{
		Valid:     true,
		Errors:    []Violation{},
		Warnings:  []Violation{},
		CheckedAt: time.Now(),
	}

	for _, violation := range v.checkTeams(acts) {
		result.Errors = append(result.Errors, violation)
	}
	for _, violation := range v.checkTables(acts) {
		result.Errors = append(result.Errors, violation)
	}
	for _, violation := range v.checkTrackOrder(acts) {
		result.Errors = append(result.Errors, violation)
	}
	if opts.Transfer > 0 {
		result.Warnings = append(result.Warnings, v.checkTransfers(acts, opts.Transfer)...)
	}
	result.Valid = len(result.Errors) == 0

	if !result.Valid {
		v.logger.Debug().Int("errors", len(result.Errors)).Msg("timetable has violations")
	}
	return result
}

type occupancy struct {
	activity.Activity
	index int
}

// byResource groups activities by team or table number.
func byResource(acts []activity.Activity, resources func(activity.Activity) []int) map[int][]occupancy {
	out := make(map[int][]occupancy)
	for i, a := range acts {
		for _, r := range resources(a) {
			out[r] = append(out[r], occupancy{Activity: a, index: i})
		}
	}
	for _, list := range out {
		sort.SliceStable(list, func(i, j int) bool { return list[i].Start.Before(list[j].Start) })
	}
	return out
}

func sortedKeys(m map[int][]occupancy) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func teamsOf(a activity.Activity) []int {
	return a.Teams()
}

func tablesOf(a activity.Activity) []int {
	return a.Tables()
}

// checkTeams finds teams expected in two places at once.
func (v *Validator) checkTeams(acts []activity.Activity) []Violation {
	return overlaps(byResource(acts, teamsOf), RuleTeamOverlap, "team")
}

// checkTables finds tables hosting two matches at once.
func (v *Validator) checkTables(acts []activity.Activity) []Violation {
	return overlaps(byResource(acts, tablesOf), RuleTableOverlap, "table")
}

func overlaps(groups map[int][]occupancy, rule RuleType, noun string) []Violation {
	var violations []Violation
	for _, key := range sortedKeys(groups) {
		list := groups[key]
		for i := 0; i < len(list); i++ {
			for j := i + 1; j < len(list); j++ {
				if !list[j].Start.Before(list[i].End) {
					break
				}
				overlapStart := maxTime(list[i].Start, list[j].Start)
				overlapEnd := minTime(list[i].End, list[j].End)
				violations = append(violations, Violation{
					RuleType: rule,
					Severity: SeverityError,
					Message: fmt.Sprintf("%s %d is booked for %s and %s between %s and %s",
						noun, key, label(list[i].Activity), label(list[j].Activity),
						overlapStart.Format("15:04"), overlapEnd.Format("15:04")),
					StartsAt: overlapStart,
					EndsAt:   overlapEnd,
					Details: map[string]any{
						noun:      key,
						"index_a": list[i].index,
						"index_b": list[j].index,
					},
				})
			}
		}
	}
	return violations
}

// checkTrackOrder verifies starts never go back in time along a track.
// Briefings are scheduled backwards from the opening and are exempt.
func (v *Validator) checkTrackOrder(acts []activity.Activity) []Violation {
	var violations []Violation
	last := make(map[activity.Track]time.Time)
	for i, a := range acts {
		if a.Kind.Briefing() {
			continue
		}
		tr := a.Track()
		if prev, ok := last[tr]; ok && a.Start.Before(prev) {
			violations = append(violations, Violation{
				RuleType: RuleTrackOrder,
				Severity: SeverityError,
				Message:  fmt.Sprintf("%s on the %s track starts at %s, before the previous activity at %s", label(a), tr, a.Start.Format("15:04"), prev.Format("15:04")),
				StartsAt: a.Start,
				EndsAt:   a.End,
				Details:  map[string]any{"index": i, "track": tr.String()},
			})
		}
		last[tr] = a.Start
	}
	return violations
}

// checkTransfers warns when a team has less than the transfer time between
// a judging session and robot game.
func (v *Validator) checkTransfers(acts []activity.Activity, transfer int) []Violation {
	var violations []Violation
	gap := time.Duration(transfer) * time.Minute
	groups := byResource(acts, teamsOf)
	for _, team := range sortedKeys(groups) {
		list := groups[team]
		for i := 1; i < len(list); i++ {
			a, b := list[i-1], list[i]
			if a.Room() == b.Room() || (a.Room() != activity.RoomJudging && b.Room() != activity.RoomJudging) {
				continue
			}
			if b.Start.Sub(a.End) < gap {
				violations = append(violations, Violation{
					RuleType: RuleTransfer,
					Severity: SeverityWarning,
					Message:  fmt.Sprintf("team %d has %d minutes between %s and %s", team, int(b.Start.Sub(a.End).Minutes()), label(a.Activity), label(b.Activity)),
					StartsAt: a.End,
					EndsAt:   b.Start,
					Details:  map[string]any{"team": team},
				})
			}
		}
	}
	return violations
}

func label(a activity.Activity) string {
	switch a.Kind {
	case activity.KindMatch:
		return fmt.Sprintf("round %d match %d", a.Round, a.Match)
	case activity.KindFinalMatch:
		return fmt.Sprintf("final %d match %d", a.Stage, a.Match)
	case activity.KindWithTeam:
		return fmt.Sprintf("judging block %d lane %d", a.Block, a.Lane)
	case activity.KindFixedBlock:
		return a.Label
	}
	return a.Kind.String()
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
