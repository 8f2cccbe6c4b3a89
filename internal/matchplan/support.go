/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package matchplan

import (
	"errors"
	"fmt"
)

// ErrUnsupportedPlan indicates a team/lane/table combination the builder cannot schedule.
var ErrUnsupportedPlan = errors.New("unsupported match plan")

// MaxLanes is the largest number of parallel judging lanes.
const MaxLanes = 6

// CheckSupported reports whether a plan can be built for the given counts.
// It must pass before Build runs.
func CheckSupported(teams, lanes, tables int) error {
	if tables != 2 && tables != 4 {
		return fmt.Errorf("%w: %d tables (want 2 or 4)", ErrUnsupportedPlan, tables)
	}
	if lanes < 1 || lanes > MaxLanes {
		return fmt.Errorf("%w: %d lanes (want 1..%d)", ErrUnsupportedPlan, lanes, MaxLanes)
	}
	if teams < 4 {
		return fmt.Errorf("%w: %d teams (want at least 4)", ErrUnsupportedPlan, teams)
	}
	blocks := (teams + lanes - 1) / lanes
	if blocks < 3 || blocks > 6 {
		return fmt.Errorf("%w: %d teams on %d lanes need %d judging blocks (want 3..6)", ErrUnsupportedPlan, teams, lanes, blocks)
	}
	return nil
}

// SupportedTriple is a team/lane/table combination accepted by CheckSupported.
type SupportedTriple struct {
	Teams  int
	Lanes  int
	Tables int
}

// Supported enumerates every accepted combination with teams in [minTeams, maxTeams].
// No combination has more than six full blocks on MaxLanes lanes.
func Supported(minTeams, maxTeams int) []SupportedTriple {
	maxTeams = min(maxTeams, MaxLanes*6)
	var out []SupportedTriple
	for teams := minTeams; teams <= maxTeams; teams++ {
		for lanes := 1; lanes <= MaxLanes; lanes++ {
			for _, tables := range []int{2, 4} {
				if CheckSupported(teams, lanes, tables) == nil {
					out = append(out, SupportedTriple{Teams: teams, Lanes: lanes, Tables: tables})
				}
			}
		}
	}
	return out
}
