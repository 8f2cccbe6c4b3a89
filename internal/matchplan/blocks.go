/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package matchplan

// Round numbers. TestRound is the unscored warm-up round.
const (
	TestRound = 0
	Round1    = 1
	Round2    = 2
	Round3    = 3
	Rounds    = 4
)

// noRound marks a judging block that hosts no robot-game round.
const noRound = -1

var blockRounds = map[int][]int{
	4: {TestRound, Round1, Round2, Round3},
	5: {TestRound, noRound, Round1, Round2, Round3},
	6: {TestRound, noRound, Round1, Round2, noRound, Round3},
}

// RoundForBlock returns the robot-game round played while judging block b
// (1-based) runs. ok is false for blocks without a round.
func RoundForBlock(judgingRounds, b int) (round int, ok bool) {
	m, found := blockRounds[judgingRounds]
	if !found {
		panic("matchplan: no block mapping for judging rounds")
	}
	if b < 1 || b > len(m) {
		return 0, false
	}
	r := m[b-1]
	return r, r != noRound
}

// AnchorBlock returns the judging block during which round r is played.
func AnchorBlock(judgingRounds, r int) int {
	for b, round := range blockRounds[judgingRounds] {
		if round == r {
			return b + 1
		}
	}
	panic("matchplan: round has no anchor block")
}

// pointer is the last team of the round's backward fill. Teams of the anchor
// block play last, teams of the following block first.
func pointer(teams, lanes, judgingRounds, r int) int {
	return min(AnchorBlock(judgingRounds, r)*lanes, teams)
}
