/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package matchplan

import "fmt"

// Entry is one robot-game match. Team 0 is an empty slot.
type Entry struct {
	Round  int `json:"round"`
	Match  int `json:"match"`
	Table1 int `json:"table_1"`
	Table2 int `json:"table_2"`
	Team1  int `json:"team_1"`
	Team2  int `json:"team_2"`
}

// Empty reports a match without any team.
func (e Entry) Empty() bool {
	return e.Team1 == 0 && e.Team2 == 0
}

// Has reports whether team plays in the match.
func (e Entry) Has(team int) bool {
	return team != 0 && (e.Team1 == team || e.Team2 == team)
}

// Plan is the complete match plan: the test round and three scored rounds.
type Plan struct {
	Teams  int
	Lanes  int
	Tables int

	JudgingRounds   int
	MatchesPerRound int
	NeedsVolunteer  bool
	Asymmetric      bool

	rounds [Rounds][]Entry
}

// Round returns a copy of the entries of round r in match order.
func (p *Plan) Round(r int) []Entry {
	out := make([]Entry, len(p.rounds[r]))
	copy(out, p.rounds[r])
	return out
}

// Entries returns all entries, round by round.
func (p *Plan) Entries() []Entry {
	var out []Entry
	for r := range p.rounds {
		out = append(out, p.rounds[r]...)
	}
	return out
}

// MatchOf returns the entry in round r in which team plays.
func (p *Plan) MatchOf(r, team int) (Entry, bool) {
	for _, e := range p.rounds[r] {
		if e.Has(team) {
			return e, true
		}
	}
	return Entry{}, false
}

// mustPartition panics unless every round holds each team exactly once and,
// for scored rounds, exactly one bye when a volunteer is needed.
func (p *Plan) mustPartition() {
	for r := range p.rounds {
		seen := make([]int, p.Teams+1)
		for _, e := range p.rounds[r] {
			if e.Round != r {
				panic(fmt.Sprintf("matchplan: entry of round %d filed under round %d", e.Round, r))
			}
			seen[e.Team1]++
			seen[e.Team2]++
		}
		for team := 1; team <= p.Teams; team++ {
			if seen[team] != 1 {
				panic(fmt.Sprintf("matchplan: team %d appears %d times in round %d", team, seen[team], r))
			}
		}
		byes := 0
		if p.NeedsVolunteer {
			byes = 1
		}
		if r == TestRound && p.Asymmetric {
			byes += 2
		}
		if seen[0] != byes {
			panic(fmt.Sprintf("matchplan: round %d has %d empty slots, want %d", r, seen[0], byes))
		}
	}
}
