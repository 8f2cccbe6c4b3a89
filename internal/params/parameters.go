/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package params

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// ScheduleParameters is the read-only configuration of one generation run.
// Durations are whole minutes.
type ScheduleParameters struct {
	Teams  int `json:"c_teams"`
	Lanes  int `json:"j_lanes"`
	Tables int `json:"r_tables"`

	Finale  bool      `json:"g_finale"`
	Date    time.Time `json:"g_date"`
	Opening TimeOfDay `json:"g_start_opening"`

	OpeningDuration int `json:"c_duration_opening"`
	Transfer        int `json:"c_duration_transfer"`
	CoachBriefing   int `json:"c_duration_coach_briefing"`
	Awards          int `json:"c_duration_awards"`

	JudgeBriefing int `json:"j_duration_briefing"`
	WithTeam      int `json:"j_duration_with_team"`
	Scoring       int `json:"j_duration_scoring"`
	JudgingBreak  int `json:"j_duration_break"`
	JudgingLunch  int `json:"j_duration_lunch"`
	Deliberations int `json:"j_duration_deliberations"`

	RefereeBriefing int  `json:"r_duration_briefing"`
	Match           int  `json:"r_duration_match"`
	NextStart       int  `json:"r_duration_next_start"`
	RobotCheck      int  `json:"r_duration_robot_check"`
	RobotCheckOn    bool `json:"r_robot_check"`
	RobotBreak      int  `json:"r_duration_break"`
	RobotLunch      int  `json:"r_duration_lunch"`
	Results         int  `json:"r_duration_results"`
	BeforeFinals    int  `json:"r_duration_before_finals"`
	Final16         bool `json:"r_final_16"`
	Final8          bool `json:"r_final_8"`
	RobotCheck16    bool `json:"r_robot_check_16"`
	RobotCheck8     bool `json:"r_robot_check_8"`
	RobotCheck4     bool `json:"r_robot_check_4"`
	RobotCheck2     bool `json:"r_robot_check_2"`

	ExploreIntegrated bool `json:"e_integrated"`
	ExploreCeremony   int  `json:"e_duration_ceremony"`

	derived *Derived
}

// Derived holds the values computed once from the primary parameters.
type Derived struct {
	JudgingRounds    int
	MatchesPerRound  int
	NeedsVolunteer   bool
	AsymmetricTables bool
}

// Load reads every required key from src and computes the derived values.
func Load(src Source) (ScheduleParameters, error) {
	r := reader{src: src}
	p := ScheduleParameters{
		Teams:  r.int(KeyTeams),
		Lanes:  r.int(KeyLanes),
		Tables: r.int(KeyTables),

		Finale:  r.bool(KeyFinale),
		Date:    r.date(KeyDate),
		Opening: r.timeOfDay(KeyStartOpening),

		OpeningDuration: r.int(KeyOpening),
		Transfer:        r.int(KeyTransfer),
		CoachBriefing:   r.int(KeyCoachBriefing),
		Awards:          r.int(KeyAwards),

		JudgeBriefing: r.int(KeyJudgeBriefing),
		WithTeam:      r.int(KeyWithTeam),
		Scoring:       r.int(KeyScoring),
		JudgingBreak:  r.int(KeyJudgingBreak),
		JudgingLunch:  r.int(KeyJudgingLunch),
		Deliberations: r.int(KeyDeliberations),

		RefereeBriefing: r.int(KeyRefereeBriefing),
		Match:           r.int(KeyMatch),
		NextStart:       r.int(KeyNextStart),
		RobotCheck:      r.int(KeyRobotCheck),
		RobotCheckOn:    r.bool(KeyRobotCheckOn),
		RobotBreak:      r.int(KeyRobotBreak),
		RobotLunch:      r.int(KeyRobotLunch),
		Results:         r.int(KeyResults),
		BeforeFinals:    r.int(KeyBeforeFinals),
		Final16:         r.bool(KeyFinal16),
		Final8:          r.bool(KeyFinal8),
		RobotCheck16:    r.bool(KeyRobotCheck16),
		RobotCheck8:     r.bool(KeyRobotCheck8),
		RobotCheck4:     r.bool(KeyRobotCheck4),
		RobotCheck2:     r.bool(KeyRobotCheck2),

		ExploreIntegrated: r.bool(KeyExploreOn),
		ExploreCeremony:   r.int(KeyExploreLength),
	}
	if r.err != nil {
		return ScheduleParameters{}, r.err
	}
	if p.Teams <= 0 || p.Lanes <= 0 || p.Tables <= 0 {
		return ScheduleParameters{}, fmt.Errorf("%w: team, lane and table counts must be positive", ErrInvalidParameter)
	}
	d := derive(p.Teams, p.Lanes, p.Tables)
	p.derived = &d
	return p, nil
}

func derive(teams, lanes, tables int) Derived {
	rounds := ceilDiv(teams, lanes)
	if rounds < 4 {
		rounds = 4
	}
	matches := ceilDiv(teams, 2)
	return Derived{
		JudgingRounds:    rounds,
		MatchesPerRound:  matches,
		NeedsVolunteer:   matches*2 != teams,
		AsymmetricTables: tables == 4 && (teams%4 == 1 || teams%4 == 2),
	}
}

// Derived returns the values computed by Load. It panics for parameters
// that were not produced by Load.
func (p ScheduleParameters) Derived() Derived {
	if p.derived == nil {
		panic("params: derived values requested on unloaded parameters")
	}
	return *p.derived
}

// JudgingRounds is ceil(teams/lanes) clamped to at least four.
func (p ScheduleParameters) JudgingRounds() int { return p.Derived().JudgingRounds }

// MatchesPerRound is ceil(teams/2).
func (p ScheduleParameters) MatchesPerRound() int { return p.Derived().MatchesPerRound }

// NeedsVolunteer reports an odd team count.
func (p ScheduleParameters) NeedsVolunteer() bool { return p.Derived().NeedsVolunteer }

// AsymmetricTables reports a four table plan whose table pairs cannot stay balanced.
func (p ScheduleParameters) AsymmetricTables() bool { return p.Derived().AsymmetricTables }

// TeamsInJudgingRound returns how many teams are judged in block b (1-based).
func (p ScheduleParameters) TeamsInJudgingRound(b int) int {
	n := p.Teams - (b-1)*p.Lanes
	switch {
	case n <= 0:
		return 0
	case n > p.Lanes:
		return p.Lanes
	}
	return n
}

// LastJudgedBlock is the last judging block that has teams.
func (p ScheduleParameters) LastJudgedBlock() int {
	return ceilDiv(p.Teams, p.Lanes)
}

// TimeAwayForJudging is how long a judged team is unavailable for robot game.
func (p ScheduleParameters) TimeAwayForJudging() int {
	return p.WithTeam + p.Transfer
}

// JudgingCycle is the length of one regular judging block.
func (p ScheduleParameters) JudgingCycle() int {
	return p.WithTeam + p.Scoring + p.JudgingBreak
}

// StartOfDay returns the opening instant.
func (p ScheduleParameters) StartOfDay() time.Time {
	return time.Date(p.Date.Year(), p.Date.Month(), p.Date.Day(), p.Opening.Hour, p.Opening.Minute, 0, 0, time.UTC)
}

// Validate checks the cross-parameter preconditions of the generator. The
// supported team/lane/table combination is checked by the match plan.
func (p ScheduleParameters) Validate() error {
	durations := []struct {
		key string
		v   int
	}{
		{KeyOpening, p.OpeningDuration}, {KeyTransfer, p.Transfer}, {KeyCoachBriefing, p.CoachBriefing},
		{KeyAwards, p.Awards}, {KeyJudgeBriefing, p.JudgeBriefing}, {KeyScoring, p.Scoring},
		{KeyJudgingBreak, p.JudgingBreak}, {KeyJudgingLunch, p.JudgingLunch}, {KeyDeliberations, p.Deliberations},
		{KeyRefereeBriefing, p.RefereeBriefing}, {KeyRobotCheck, p.RobotCheck}, {KeyRobotBreak, p.RobotBreak},
		{KeyRobotLunch, p.RobotLunch}, {KeyResults, p.Results}, {KeyBeforeFinals, p.BeforeFinals},
		{KeyExploreLength, p.ExploreCeremony},
	}
	for _, d := range durations {
		if d.v < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidParameter, d.key)
		}
	}
	if p.WithTeam <= 0 {
		return fmt.Errorf("%w: %s must be positive", ErrInvalidParameter, KeyWithTeam)
	}
	if p.Match <= 0 {
		return fmt.Errorf("%w: %s must be positive", ErrInvalidParameter, KeyMatch)
	}
	if p.Tables == 4 && (p.NextStart <= 0 || p.NextStart > p.Match) {
		return fmt.Errorf("%w: %s must be between 1 and %s", ErrInvalidParameter, KeyNextStart, KeyMatch)
	}
	if p.Teams < 4 {
		return fmt.Errorf("%w: finals need at least 4 teams", ErrInvalidParameter)
	}
	if p.Final16 && p.Teams < 16 {
		return fmt.Errorf("%w: %s needs at least 16 teams", ErrInvalidParameter, KeyFinal16)
	}
	if p.Final8 && p.Teams < 8 {
		return fmt.Errorf("%w: %s needs at least 8 teams", ErrInvalidParameter, KeyFinal8)
	}
	// Teams judged two blocks ahead play right after the next block's teams.
	if need := ceilDiv(p.Lanes, 2) * p.Match; p.JudgingCycle() < need {
		return fmt.Errorf("%w: judging cycle of %d min is shorter than %d min of robot game per block", ErrInvalidParameter, p.JudgingCycle(), need)
	}
	return nil
}

// Fingerprint identifies the parameters and fixed blocks of a run.
func (p ScheduleParameters) Fingerprint(blocks []BlockSpec) string {
	data, err := json.Marshal(struct {
		Params ScheduleParameters `json:"params"`
		Blocks []BlockSpec        `json:"blocks"`
	}{p, blocks})
	if err != nil {
		panic(fmt.Sprintf("params: marshal fingerprint: %v", err))
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

type reader struct {
	src Source
	err error
}

func (r *reader) int(key string) int {
	if r.err != nil {
		return 0
	}
	v, err := r.src.Int(key)
	r.err = err
	return v
}

func (r *reader) bool(key string) bool {
	if r.err != nil {
		return false
	}
	v, err := r.src.Bool(key)
	r.err = err
	return v
}

func (r *reader) date(key string) time.Time {
	if r.err != nil {
		return time.Time{}
	}
	v, err := r.src.Date(key)
	r.err = err
	return v
}

func (r *reader) timeOfDay(key string) TimeOfDay {
	if r.err != nil {
		return TimeOfDay{}
	}
	v, err := r.src.TimeOfDay(key)
	r.err = err
	return v
}
