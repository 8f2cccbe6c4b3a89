/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package analytics scores generated timetables so that parameter sweeps can
// compare them.
package analytics

import (
	"sort"
	"time"

	"github.com/friendsincode/matchday/internal/activity"
	"github.com/friendsincode/matchday/internal/matchplan"
)

// Evaluation summarises the quality of one timetable.
type Evaluation struct {
	Teams  int `json:"teams"`
	Lanes  int `json:"lanes"`
	Tables int `json:"tables"`

	DurationMinutes int `json:"duration_minutes"`

	// Distinct opponents and tables per team over the scored rounds.
	MinOpponents      int     `json:"min_opponents"`
	MaxOpponents      int     `json:"max_opponents"`
	AvgOpponents      float64 `json:"avg_opponents"`
	MinTables         int     `json:"min_tables"`
	MaxTables         int     `json:"max_tables"`
	RepeatedOpponents int     `json:"repeated_opponents"`

	// JudgingIdleMinutes adds up the gaps on the judging track.
	JudgingIdleMinutes int `json:"judging_idle_minutes"`
	// MinTeamGapMinutes is the shortest rest between two activities of one team.
	MinTeamGapMinutes int `json:"min_team_gap_minutes"`
}

// Evaluate scores plan and the activities generated from it. start and end
// bound the day.
func Evaluate(plan *matchplan.Plan, acts []activity.Activity, start, end time.Time) Evaluation {
	ev := Evaluation{
		Teams:             plan.Teams,
		Lanes:             plan.Lanes,
		Tables:            plan.Tables,
		DurationMinutes:   int(end.Sub(start) / time.Minute),
		RepeatedOpponents: matchplan.CountRepeatedOpponents(plan),
	}
	rotationStats(plan, &ev)
	ev.JudgingIdleMinutes = judgingIdle(acts)
	ev.MinTeamGapMinutes = minTeamGap(acts)
	return ev
}

func rotationStats(plan *matchplan.Plan, ev *Evaluation) {
	opponents := make(map[int]map[int]bool, plan.Teams)
	tables := make(map[int]map[int]bool, plan.Teams)
	add := func(m map[int]map[int]bool, team, v int) {
		if m[team] == nil {
			m[team] = make(map[int]bool)
		}
		m[team][v] = true
	}
	for r := matchplan.Round1; r <= matchplan.Round3; r++ {
		for _, e := range plan.Round(r) {
			if e.Team1 != 0 {
				add(tables, e.Team1, e.Table1)
			}
			if e.Team2 != 0 {
				add(tables, e.Team2, e.Table2)
			}
			if e.Team1 != 0 && e.Team2 != 0 {
				add(opponents, e.Team1, e.Team2)
				add(opponents, e.Team2, e.Team1)
			}
		}
	}

	total := 0
	for team := 1; team <= plan.Teams; team++ {
		o, t := len(opponents[team]), len(tables[team])
		if team == 1 || o < ev.MinOpponents {
			ev.MinOpponents = o
		}
		if t < ev.MinTables || team == 1 {
			ev.MinTables = t
		}
		ev.MaxOpponents = max(ev.MaxOpponents, o)
		ev.MaxTables = max(ev.MaxTables, t)
		total += o
	}
	if plan.Teams > 0 {
		ev.AvgOpponents = float64(total) / float64(plan.Teams)
	}
}

func judgingIdle(acts []activity.Activity) int {
	var track []activity.Activity
	for _, a := range acts {
		if a.Track() == activity.TrackJudging && !a.Kind.Briefing() {
			track = append(track, a)
		}
	}
	if len(track) == 0 {
		return 0
	}
	sort.SliceStable(track, func(i, j int) bool { return track[i].Start.Before(track[j].Start) })
	idle := time.Duration(0)
	busyUntil := track[0].End
	for _, a := range track[1:] {
		if a.Start.After(busyUntil) {
			idle += a.Start.Sub(busyUntil)
		}
		if a.End.After(busyUntil) {
			busyUntil = a.End
		}
	}
	return int(idle / time.Minute)
}

func minTeamGap(acts []activity.Activity) int {
	byTeam := make(map[int][]activity.Activity)
	for _, a := range acts {
		for _, team := range a.Teams() {
			byTeam[team] = append(byTeam[team], a)
		}
	}
	gap := -1
	for _, list := range byTeam {
		sort.SliceStable(list, func(i, j int) bool { return list[i].Start.Before(list[j].Start) })
		for i := 1; i < len(list); i++ {
			// A robot check runs straight into its match.
			if list[i-1].Kind == activity.KindRobotCheck && list[i].Kind == activity.KindMatch {
				continue
			}
			g := int(list[i].Start.Sub(list[i-1].End) / time.Minute)
			if gap < 0 || g < gap {
				gap = g
			}
		}
	}
	return max(gap, 0)
}
