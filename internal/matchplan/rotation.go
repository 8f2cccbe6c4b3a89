/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package matchplan

// Segments splits a flattened round into the first and last lanes-many
// slots and everything in between. First holds the next judging block's
// teams, Last the teams judged while the round runs.
type Segments struct {
	First  []int
	Middle []int
	Last   []int
}

// Joined returns the flattened round.
func (s Segments) Joined() []int {
	out := make([]int, 0, len(s.First)+len(s.Middle)+len(s.Last))
	out = append(out, s.First...)
	out = append(out, s.Middle...)
	return append(out, s.Last...)
}

// RotationInput is what a RotationOptimizer sees. Sequences are flattened
// pairings: slot 2i is team1 and slot 2i+1 is team2 of match i+1.
type RotationInput struct {
	Tables int
	Lanes  int
	Round1 []int
	Round2 Segments
	Round3 Segments
}

// RotationOutput carries the reordered round 2 and round 3 sequences.
type RotationOutput struct {
	Round2 []int
	Round3 []int
}

// RotationOptimizer reorders round 2 and 3 pairings. The output must hold
// the same teams as the input.
type RotationOptimizer interface {
	Optimize(in RotationInput) RotationOutput
}

// Identity keeps the rotation order.
type Identity struct{}

// Optimize implements RotationOptimizer.
func (Identity) Optimize(in RotationInput) RotationOutput {
	return RotationOutput{Round2: in.Round2.Joined(), Round3: in.Round3.Joined()}
}

// Diversity greedily swaps teams of the same judging block between slots so
// that teams meet new opponents and play on new tables. Swaps never cross
// judging blocks, which keeps every team's slot timing intact.
type Diversity struct {
	// OpponentWeight is the cost of a repeated opponent. Zero means 2.
	OpponentWeight int
	// TableWeight is the cost per previous game on the same table. Zero means 1.
	TableWeight int
}

// Optimize implements RotationOptimizer.
func (d Diversity) Optimize(in RotationInput) RotationOutput {
	h := newHistory(in.Tables)
	h.record(in.Round1)
	r2 := d.reorder(in.Round2.Joined(), in.Lanes, h)
	h.record(r2)
	r3 := d.reorder(in.Round3.Joined(), in.Lanes, h)
	return RotationOutput{Round2: r2, Round3: r3}
}

func (d Diversity) weights() (int, int) {
	opp, tab := d.OpponentWeight, d.TableWeight
	if opp == 0 {
		opp = 2
	}
	if tab == 0 {
		tab = 1
	}
	return opp, tab
}

func (d Diversity) reorder(seq []int, lanes int, h *history) []int {
	oppW, tabW := d.weights()
	block := func(team int) int {
		if team == 0 {
			return 0
		}
		return (team-1)/lanes + 1
	}

	pool := make(map[int][]int)
	for _, team := range seq {
		b := block(team)
		pool[b] = append(pool[b], team)
	}

	out := make([]int, len(seq))
	for i, team := range seq {
		if team == 0 {
			out[i] = 0
			continue
		}
		b := block(team)
		table := h.slotTable(i)
		best, bestCost := -1, 0
		for j, cand := range pool[b] {
			cost := tabW * h.tables[[2]int{cand, table}]
			if i%2 == 1 && out[i-1] != 0 && h.met(cand, out[i-1]) {
				cost += oppW
			}
			if best < 0 || cost < bestCost {
				best, bestCost = j, cost
			}
		}
		out[i] = pool[b][best]
		pool[b] = append(pool[b][:best], pool[b][best+1:]...)
	}
	return out
}

type history struct {
	numTables int
	opponents map[[2]int]bool
	tables    map[[2]int]int
}

func newHistory(numTables int) *history {
	return &history{
		numTables: numTables,
		opponents: make(map[[2]int]bool),
		tables:    make(map[[2]int]int),
	}
}

// slotTable is the table of flattened slot i under the default pairing.
func (h *history) slotTable(i int) int {
	match := i/2 + 1
	pair := pairA
	if h.numTables == 4 && match%2 == 0 {
		pair = pairB
	}
	return pair[i%2]
}

func (h *history) met(a, b int) bool {
	if a > b {
		a, b = b, a
	}
	return h.opponents[[2]int{a, b}]
}

func (h *history) record(seq []int) {
	for i := 0; i+1 < len(seq); i += 2 {
		a, b := seq[i], seq[i+1]
		if a != 0 && b != 0 {
			if a > b {
				a, b = b, a
			}
			h.opponents[[2]int{a, b}] = true
		}
	}
	for i, team := range seq {
		if team != 0 {
			h.tables[[2]int{team, h.slotTable(i)}]++
		}
	}
}

// CountRepeatedOpponents returns how many scored-round matches pair two
// teams that already met in an earlier scored round.
func CountRepeatedOpponents(p *Plan) int {
	seen := make(map[[2]int]bool)
	repeats := 0
	for r := Round1; r <= Round3; r++ {
		for _, e := range p.rounds[r] {
			if e.Team1 == 0 || e.Team2 == 0 {
				continue
			}
			key := [2]int{min(e.Team1, e.Team2), max(e.Team1, e.Team2)}
			if seen[key] {
				repeats++
			}
			seen[key] = true
		}
	}
	return repeats
}
