/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/friendsincode/matchday/internal/activity"
	"github.com/friendsincode/matchday/internal/clock"
)

// finalStage is one elimination stage, named by the teams entering it.
type finalStage struct {
	teams int
	check bool
}

func (s *synchronizer) finalStages() []finalStage {
	var stages []finalStage
	if s.p.Final16 {
		stages = append(stages, finalStage{teams: 16, check: s.p.RobotCheck16})
	}
	if s.p.Final8 || s.p.Final16 {
		stages = append(stages, finalStage{teams: 8, check: s.p.RobotCheck8})
	}
	return append(stages,
		finalStage{teams: 4, check: s.p.RobotCheck4},
		finalStage{teams: 2, check: s.p.RobotCheck2},
	)
}

// finals plays the elimination stages on the robot-game track. Teams are
// unknown until results come in, so every match is written 0 vs 0.
func (s *synchronizer) finals(ctx context.Context) error {
	for _, st := range s.finalStages() {
		var acts []activity.Activity
		if st.teams == 2 {
			acts = s.finalMatches(st)
		} else {
			acts = s.stageMatches(st)
			res := activity.Span(activity.KindResults, s.tr.robot.Current(), s.p.Results)
			res.Stage = st.teams
			acts = append(acts, res)
			s.tr.robot.Advance(s.p.Results)
		}
		if err := s.write(ctx, acts...); err != nil {
			return writeErr(fmt.Sprintf("final stage %d", st.teams), err)
		}
	}
	return nil
}

// stageMatches alternates table pairs on four tables, starting a match
// every next-start interval; the stage's last match runs its full length.
func (s *synchronizer) stageMatches(st finalStage) []activity.Activity {
	n := st.teams / 2
	cur := s.tr.robot.Current()
	free := [2]time.Time{cur, cur}
	var acts []activity.Activity
	for i := 0; i < n; i++ {
		pair := 0
		if s.p.Tables == 4 {
			pair = i % 2
		}
		start, placed := s.placeFinal(cur, free[pair], st.teams, i+1, pair, st.check)
		acts = append(acts, placed...)
		free[pair] = start.Add(minutes(s.p.Match))
		if s.p.Tables == 4 && i < n-1 {
			cur = start.Add(minutes(s.p.NextStart))
		} else {
			cur = start.Add(minutes(s.p.Match))
		}
	}
	s.tr.robot.Set(cur)
	return acts
}

// finalMatches plays the final: two matches back to back on alternating
// pairs, with a robot check only before the first.
func (s *synchronizer) finalMatches(st finalStage) []activity.Activity {
	cur := s.tr.robot.Current()
	var acts []activity.Activity
	for i := 0; i < 2; i++ {
		pair := 0
		if s.p.Tables == 4 {
			pair = i % 2
		}
		start, placed := s.placeFinal(cur, cur, st.teams, i+1, pair, st.check && i == 0)
		acts = append(acts, placed...)
		cur = start.Add(minutes(s.p.Match))
	}
	s.tr.robot.Set(cur)
	return acts
}

// placeFinal schedules one finals match no earlier than cur plus its robot
// check and not before its table pair is free.
func (s *synchronizer) placeFinal(cur, pairFree time.Time, stage, match, pair int, check bool) (time.Time, []activity.Activity) {
	rc := 0
	if check {
		rc = s.p.RobotCheck
	}
	start := clock.Later(cur.Add(minutes(rc)), pairFree)
	var acts []activity.Activity
	if rc > 0 {
		c := activity.Span(activity.KindRobotCheck, start.Add(-minutes(rc)), rc)
		c.Stage, c.Match = stage, match
		acts = append(acts, c)
	}
	m := activity.Span(activity.KindFinalMatch, start, s.p.Match)
	m.Stage, m.Match = stage, match
	m.Table1, m.Table2 = 2*pair+1, 2*pair+2
	return start, append(acts, m)
}
