/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package matchplan

import (
	"github.com/friendsincode/matchday/internal/params"
)

// Table pairs on a four table layout.
var (
	pairA = [2]int{1, 2}
	pairB = [2]int{3, 4}
)

// Build creates the match plan for p. Rounds 2 and 3 are handed to opt for
// pairing diversity; a nil opt keeps the rotation order.
func Build(p params.ScheduleParameters, opt RotationOptimizer) (*Plan, error) {
	if err := CheckSupported(p.Teams, p.Lanes, p.Tables); err != nil {
		return nil, err
	}
	if opt == nil {
		opt = Identity{}
	}

	plan := &Plan{
		Teams:           p.Teams,
		Lanes:           p.Lanes,
		Tables:          p.Tables,
		JudgingRounds:   p.JudgingRounds(),
		MatchesPerRound: p.MatchesPerRound(),
		NeedsVolunteer:  p.NeedsVolunteer(),
		Asymmetric:      p.AsymmetricTables(),
	}

	for r := TestRound; r < Rounds; r++ {
		start := p.Lanes
		if r != TestRound {
			start = pointer(p.Teams, p.Lanes, plan.JudgingRounds, r)
		}
		plan.rounds[r] = plan.fill(r, start)
	}

	if plan.Tables == 4 && !plan.q2Skipped() {
		plan.copyRound1Tables()
	}
	if plan.Asymmetric {
		plan.insertEmptyTestMatch()
	}

	plan.rotate(opt)
	plan.mustPartition()
	return plan, nil
}

// fill walks backwards from the last match, placing the team at the pointer
// as team2 and the one before it as team1.
func (p *Plan) fill(r, start int) []Entry {
	n := p.Teams
	if p.NeedsVolunteer {
		n++
	}
	dec := func(x int) int {
		x--
		if x == 0 {
			x = n
		}
		return x
	}
	norm := func(x int) int {
		if x > p.Teams {
			return 0
		}
		return x
	}

	entries := make([]Entry, p.MatchesPerRound)
	cur := start
	for m := p.MatchesPerRound; m >= 1; m-- {
		e := Entry{Round: r, Match: m}
		e.Team2 = norm(cur)
		cur = dec(cur)
		e.Team1 = norm(cur)
		cur = dec(cur)
		e.Table1, e.Table2 = p.tablesFor(m)
		entries[m-1] = e
	}
	return entries
}

func (p *Plan) tablesFor(match int) (int, int) {
	if p.Tables == 2 || match%2 == 1 {
		return pairA[0], pairA[1]
	}
	return pairB[0], pairB[1]
}

// q2Skipped reports the layout where test-round pairs straddle round 1 pairs.
func (p *Plan) q2Skipped() bool {
	return p.Lanes%2 == 1 && p.Tables == 4 && p.JudgingRounds == 4
}

// copyRound1Tables moves each test match to the table pair its first team
// uses in round 1.
func (p *Plan) copyRound1Tables() {
	for i, e := range p.rounds[TestRound] {
		team := e.Team1
		if team == 0 {
			team = e.Team2
		}
		r1, ok := p.MatchOf(Round1, team)
		if !ok {
			continue
		}
		p.rounds[TestRound][i].Table1 = r1.Table1
		p.rounds[TestRound][i].Table2 = r1.Table2
	}
}

// insertEmptyTestMatch adds an all-empty match on the second table pair
// after the lanes-th test match.
func (p *Plan) insertEmptyTestMatch() {
	at := min(p.Lanes, len(p.rounds[TestRound]))
	round := make([]Entry, 0, len(p.rounds[TestRound])+1)
	round = append(round, p.rounds[TestRound][:at]...)
	round = append(round, Entry{Round: TestRound, Table1: pairB[0], Table2: pairB[1]})
	round = append(round, p.rounds[TestRound][at:]...)
	for i := range round {
		round[i].Match = i + 1
	}
	p.rounds[TestRound] = round
}

// rotate hands rounds 2 and 3 to the optimizer and splices the returned
// pairings back by match order. Match numbers and tables stay.
func (p *Plan) rotate(opt RotationOptimizer) {
	in := RotationInput{
		Tables: p.Tables,
		Lanes:  p.Lanes,
		Round1: flatten(p.rounds[Round1]),
		Round2: split(flatten(p.rounds[Round2]), p.Lanes),
		Round3: split(flatten(p.rounds[Round3]), p.Lanes),
	}
	out := opt.Optimize(in)
	p.splice(Round2, in.Round2.Joined(), out.Round2)
	p.splice(Round3, in.Round3.Joined(), out.Round3)
}

func (p *Plan) splice(r int, before, after []int) {
	if len(after) != len(before) || !sameMultiset(before, after) {
		panic("matchplan: rotation optimizer changed the teams of a round")
	}
	for i := range p.rounds[r] {
		p.rounds[r][i].Team1 = after[2*i]
		p.rounds[r][i].Team2 = after[2*i+1]
	}
}

func flatten(entries []Entry) []int {
	out := make([]int, 0, 2*len(entries))
	for _, e := range entries {
		out = append(out, e.Team1, e.Team2)
	}
	return out
}

func split(seq []int, n int) Segments {
	n = min(n, len(seq)/2)
	return Segments{
		First:  append([]int(nil), seq[:n]...),
		Middle: append([]int(nil), seq[n:len(seq)-n]...),
		Last:   append([]int(nil), seq[len(seq)-n:]...),
	}
}

func sameMultiset(a, b []int) bool {
	counts := make(map[int]int, len(a))
	for _, x := range a {
		counts[x]++
	}
	for _, x := range b {
		counts[x]--
		if counts[x] < 0 {
			return false
		}
	}
	return len(a) == len(b)
}
