/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package activity defines the timetable entries the generator emits and
// the writer contract it emits them through.
package activity

import "fmt"

// Kind identifies what happens in an activity.
type Kind int

const (
	KindCoachBriefing Kind = iota + 1
	KindJudgeBriefing
	KindRefereeBriefing
	KindOpening
	KindWithTeam
	KindScoring
	KindJudgingBreak
	KindJudgingLunch
	KindDeliberations
	KindRobotCheck
	KindMatch
	KindRobotLunch
	KindFinalMatch
	KindResults
	KindExplore
	KindFixedBlock
	KindAwards
)

var kindNames = map[Kind]string{
	KindCoachBriefing:   "coach_briefing",
	KindJudgeBriefing:   "judge_briefing",
	KindRefereeBriefing: "referee_briefing",
	KindOpening:         "opening",
	KindWithTeam:        "judging_with_team",
	KindScoring:         "judging_scoring",
	KindJudgingBreak:    "judging_break",
	KindJudgingLunch:    "judging_lunch",
	KindDeliberations:   "deliberations",
	KindRobotCheck:      "robot_check",
	KindMatch:           "match",
	KindRobotLunch:      "robot_game_lunch",
	KindFinalMatch:      "final_match",
	KindResults:         "results",
	KindExplore:         "explore_ceremony",
	KindFixedBlock:      "fixed_block",
	KindAwards:          "awards",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown activity kind %q", s)
}

// Track is the parallel timeline an activity belongs to.
type Track int

const (
	TrackChallenge Track = iota + 1
	TrackJudging
	TrackRobotGame
	TrackExplore
)

func (t Track) String() string {
	switch t {
	case TrackChallenge:
		return "challenge"
	case TrackJudging:
		return "judging"
	case TrackRobotGame:
		return "robot_game"
	case TrackExplore:
		return "explore"
	}
	return fmt.Sprintf("track(%d)", int(t))
}

// Room is where an activity takes place.
type Room int

const (
	RoomStage Room = iota + 1
	RoomBriefing
	RoomJudging
	RoomJudgesLounge
	RoomArena
	RoomRobotCheck
	RoomCatering
	RoomExplore
)

func (r Room) String() string {
	switch r {
	case RoomStage:
		return "stage"
	case RoomBriefing:
		return "briefing"
	case RoomJudging:
		return "judging"
	case RoomJudgesLounge:
		return "judges_lounge"
	case RoomArena:
		return "arena"
	case RoomRobotCheck:
		return "robot_check"
	case RoomCatering:
		return "catering"
	case RoomExplore:
		return "explore"
	}
	return fmt.Sprintf("room(%d)", int(r))
}

// Track returns the timeline of kinds with a fixed track. Fixed blocks take
// their track from the insertion point.
func (k Kind) Track() Track {
	switch k {
	case KindCoachBriefing, KindOpening, KindAwards:
		return TrackChallenge
	case KindJudgeBriefing, KindWithTeam, KindScoring, KindJudgingBreak, KindJudgingLunch, KindDeliberations:
		return TrackJudging
	case KindRefereeBriefing, KindRobotCheck, KindMatch, KindRobotLunch, KindFinalMatch, KindResults:
		return TrackRobotGame
	case KindExplore:
		return TrackExplore
	case KindFixedBlock:
		return TrackChallenge
	}
	panic(fmt.Sprintf("activity: no track for %s", k))
}

// Room returns where activities of the kind take place.
func (k Kind) Room() Room {
	switch k {
	case KindOpening, KindAwards, KindFixedBlock:
		return RoomStage
	case KindCoachBriefing, KindJudgeBriefing, KindRefereeBriefing:
		return RoomBriefing
	case KindWithTeam:
		return RoomJudging
	case KindScoring, KindDeliberations, KindJudgingBreak:
		return RoomJudgesLounge
	case KindMatch, KindFinalMatch, KindResults:
		return RoomArena
	case KindRobotCheck:
		return RoomRobotCheck
	case KindJudgingLunch, KindRobotLunch:
		return RoomCatering
	case KindExplore:
		return RoomExplore
	}
	panic(fmt.Sprintf("activity: no room for %s", k))
}

// Briefing reports kinds scheduled backwards from the opening.
func (k Kind) Briefing() bool {
	return k == KindCoachBriefing || k == KindJudgeBriefing || k == KindRefereeBriefing
}
