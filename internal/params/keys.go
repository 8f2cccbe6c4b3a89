/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package params

// Parameter keys. The prefix names the owning track: c_ challenge-overall,
// j_ judging, r_ robot game, e_ explore, g_ general.
const (
	KeyTeams  = "c_teams"
	KeyLanes  = "j_lanes"
	KeyTables = "r_tables"

	KeyFinale       = "g_finale"
	KeyDate         = "g_date"
	KeyStartOpening = "g_start_opening"

	KeyOpening       = "c_duration_opening"
	KeyTransfer      = "c_duration_transfer"
	KeyCoachBriefing = "c_duration_coach_briefing"
	KeyAwards        = "c_duration_awards"

	KeyJudgeBriefing = "j_duration_briefing"
	KeyWithTeam      = "j_duration_with_team"
	KeyScoring       = "j_duration_scoring"
	KeyJudgingBreak  = "j_duration_break"
	KeyJudgingLunch  = "j_duration_lunch"
	KeyDeliberations = "j_duration_deliberations"

	KeyRefereeBriefing = "r_duration_briefing"
	KeyMatch           = "r_duration_match"
	KeyNextStart       = "r_duration_next_start"
	KeyRobotCheck      = "r_duration_robot_check"
	KeyRobotCheckOn    = "r_robot_check"
	KeyRobotBreak      = "r_duration_break"
	KeyRobotLunch      = "r_duration_lunch"
	KeyResults         = "r_duration_results"
	KeyBeforeFinals    = "r_duration_before_finals"
	KeyFinal16         = "r_final_16"
	KeyFinal8          = "r_final_8"
	KeyRobotCheck16    = "r_robot_check_16"
	KeyRobotCheck8     = "r_robot_check_8"
	KeyRobotCheck4     = "r_robot_check_4"
	KeyRobotCheck2     = "r_robot_check_2"

	KeyExploreOn     = "e_integrated"
	KeyExploreLength = "e_duration_ceremony"
)

// Preset returns the reference parameter set used by the bundled example
// files. Callers overlay event specific values on top of it; the generator
// never falls back to it on its own.
func Preset() map[string]any {
	return map[string]any{
		KeyTeams:  24,
		KeyLanes:  4,
		KeyTables: 4,

		KeyFinale:       false,
		KeyDate:         "2026-11-14",
		KeyStartOpening: "09:00",

		KeyOpening:       30,
		KeyTransfer:      5,
		KeyCoachBriefing: 20,
		KeyAwards:        45,

		KeyJudgeBriefing: 30,
		KeyWithTeam:      30,
		KeyScoring:       10,
		KeyJudgingBreak:  5,
		KeyJudgingLunch:  45,
		KeyDeliberations: 60,

		KeyRefereeBriefing: 30,
		KeyMatch:           8,
		KeyNextStart:       4,
		KeyRobotCheck:      2,
		KeyRobotCheckOn:    false,
		KeyRobotBreak:      10,
		KeyRobotLunch:      45,
		KeyResults:         10,
		KeyBeforeFinals:    15,
		KeyFinal16:         false,
		KeyFinal8:          true,
		KeyRobotCheck16:    false,
		KeyRobotCheck8:     true,
		KeyRobotCheck4:     true,
		KeyRobotCheck2:     true,

		KeyExploreOn:     false,
		KeyExploreLength: 30,
	}
}

// Overlay returns a copy of base with every key of over applied on top.
func Overlay(base, over map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(over))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range over {
		out[k] = v
	}
	return out
}
