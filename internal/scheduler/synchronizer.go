/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package scheduler

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/friendsincode/matchday/internal/activity"
	"github.com/friendsincode/matchday/internal/clock"
	"github.com/friendsincode/matchday/internal/matchplan"
	"github.com/friendsincode/matchday/internal/params"
	"github.com/rs/zerolog"
)

// synchronizer walks the judging blocks and places each robot-game round so
// that no team is expected at a judging room and a table at the same time.
type synchronizer struct {
	p      params.ScheduleParameters
	plan   *matchplan.Plan
	w      activity.Writer
	logger zerolog.Logger

	tr tracks

	// nextAvail is the earliest start of the next judging block. Zero when
	// the previous block set no constraint.
	nextAvail time.Time
	// judgedUntil and playedUntil record when each team leaves a judging
	// room or a table for the last time so far.
	judgedUntil map[int]time.Time
	playedUntil map[int]time.Time

	lastStart map[activity.Track]time.Time
	explore   ExploreSlot
	start     time.Time
	end       time.Time
	written   int
}

func newSynchronizer(p params.ScheduleParameters, plan *matchplan.Plan, w activity.Writer, logger zerolog.Logger) *synchronizer {
	return &synchronizer{
		p:           p,
		plan:        plan,
		w:           w,
		logger:      logger,
		judgedUntil: make(map[int]time.Time),
		playedUntil: make(map[int]time.Time),
		lastStart:   make(map[activity.Track]time.Time),
		explore:     ExploreSlot{Status: ExplorePending, Duration: p.ExploreCeremony},
	}
}

func (s *synchronizer) run(ctx context.Context) error {
	if err := s.opening(ctx); err != nil {
		return err
	}
	for b := 1; b <= s.plan.JudgingRounds; b++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.block(ctx, b); err != nil {
			return err
		}
	}
	return s.closing(ctx)
}

// opening writes the briefings, counted back from the opening ceremony, and
// the ceremony itself. Both competition tracks start one transfer later.
func (s *synchronizer) opening(ctx context.Context) error {
	open := s.p.StartOfDay()
	s.tr.challenge = clock.New(open)
	s.start = open

	if _, err := s.w.BeginGroup(ctx, "Briefings"); err != nil {
		return writeErr("briefings", err)
	}
	briefings := []struct {
		kind     activity.Kind
		duration int
	}{
		{activity.KindCoachBriefing, s.p.CoachBriefing},
		{activity.KindJudgeBriefing, s.p.JudgeBriefing},
		{activity.KindRefereeBriefing, s.p.RefereeBriefing},
	}
	var acts []activity.Activity
	for _, br := range briefings {
		if br.duration == 0 {
			continue
		}
		c := s.tr.challenge.Fork()
		c.Retreat(s.p.Transfer + br.duration)
		acts = append(acts, activity.Span(br.kind, c.Current(), br.duration))
		if c.Before(s.start) {
			s.start = c.Current()
		}
	}
	if err := s.write(ctx, acts...); err != nil {
		return writeErr("briefings", err)
	}

	if _, err := s.w.BeginGroup(ctx, "Opening"); err != nil {
		return writeErr("opening", err)
	}
	if err := s.write(ctx, activity.Span(activity.KindOpening, open, s.p.OpeningDuration)); err != nil {
		return writeErr("opening", err)
	}
	s.tr.challenge.Advance(s.p.OpeningDuration)

	s.tr.judging = s.tr.challenge.Fork()
	s.tr.judging.Advance(s.p.Transfer)
	s.tr.robot = s.tr.judging.Fork()
	return nil
}

// block runs judging block b and the robot-game round that belongs to it.
func (s *synchronizer) block(ctx context.Context, b int) error {
	teams := s.p.TeamsInJudgingRound(b)
	round, hasRound := matchplan.RoundForBlock(s.plan.JudgingRounds, b)
	log := s.logger.With().Int("block", b).Int("teams", teams).Logger()

	judging := s.tr.judging.Current()
	if teams > 0 {
		s.pullJudging(b, teams, log)
		judging = s.tr.judging.Current()
		if err := s.judge(ctx, b, teams); err != nil {
			return err
		}
	}

	s.nextAvail = time.Time{}
	if hasRound {
		if err := s.round(ctx, b, round, judging, teams, log); err != nil {
			return err
		}
	}
	if s.p.Finale && b == 4 {
		s.nextAvail = s.tr.judging.Current()
	}

	if b == s.plan.JudgingRounds {
		return nil
	}
	if b == s.lunchBlock() {
		return s.lunch(ctx, round, hasRound)
	}
	return s.shortBreak(ctx, b, teams, round, hasRound)
}

// pullJudging moves judging forward until the block's teams are back from
// the robot-game tables.
func (s *synchronizer) pullJudging(b, teams int, log zerolog.Logger) {
	if !s.nextAvail.IsZero() && s.tr.judging.PullTo(s.nextAvail) {
		log.Debug().Time("judging", s.nextAvail).Msg("judging pulled to next availability")
	}
	first := (b-1)*s.p.Lanes + 1
	for team := first; team < first+teams; team++ {
		until, ok := s.playedUntil[team]
		if !ok {
			continue
		}
		if s.tr.judging.PullTo(until.Add(minutes(s.p.Transfer))) {
			log.Debug().Int("team", team).Msg("judging held for team still at robot game")
		}
	}
}

func (s *synchronizer) judge(ctx context.Context, b, teams int) error {
	if _, err := s.w.BeginGroup(ctx, fmt.Sprintf("Judging block %d", b)); err != nil {
		return writeErr("judging", err)
	}
	start := s.tr.judging.Current()
	scoring := start.Add(minutes(s.p.WithTeam))
	acts := make([]activity.Activity, 0, 2*teams)
	for lane := 1; lane <= teams; lane++ {
		team := (b-1)*s.p.Lanes + lane
		a := activity.Span(activity.KindWithTeam, start, s.p.WithTeam)
		a.Block, a.Lane, a.Team1 = b, lane, team
		acts = append(acts, a)
		s.judgedUntil[team] = a.End
	}
	for lane := 1; lane <= teams; lane++ {
		a := activity.Span(activity.KindScoring, scoring, s.p.Scoring)
		a.Block, a.Lane = b, lane
		acts = append(acts, a)
	}
	if err := s.write(ctx, acts...); err != nil {
		return writeErr("judging", err)
	}
	s.tr.judging.Advance(s.p.WithTeam + s.p.Scoring)
	return nil
}

// matchesBefore is the index of the first match whose teams are judged in
// block b. Those matches must not start before the teams are back.
func (s *synchronizer) matchesBefore(b, round, teams int) int {
	mpr := s.plan.MatchesPerRound
	rmb := mpr - ceilDiv(s.p.Lanes, 2)
	switch {
	case b < s.plan.JudgingRounds && s.p.TeamsInJudgingRound(b+1) == 0:
		rmb = 0
	case b == s.plan.JudgingRounds && teams < s.p.Lanes:
		rmb = mpr - ceilDiv(teams, 2)
	}
	if round == matchplan.TestRound && s.plan.Asymmetric && s.plan.JudgingRounds != 4 {
		rmb++
	}
	return rmb
}

// round places robot-game round r, played while block b is judged from
// judging onwards.
func (s *synchronizer) round(ctx context.Context, b, r int, judging time.Time, teams int, log zerolog.Logger) error {
	entries := s.plan.Round(r)
	offs := matchOffsets(entries, s.p.Tables, s.p.Match, s.p.NextStart)
	check := 0
	if s.p.RobotCheckOn {
		check = s.p.RobotCheck
	}

	if teams > 0 {
		rmb := min(s.matchesBefore(b, r, teams), len(entries)-1)
		away := s.p.TimeAwayForJudging()
		target := judging.Add(minutes(away - offs[rmb]))
		pulled := s.tr.robot.PullTo(target)
		log.Debug().
			Int("round", r).
			Int("matches_before", rmb).
			Int("time_to_match", offs[rmb]).
			Bool("pulled", pulled).
			Msg("robot game aligned to judging")
	}
	for i, e := range entries {
		for _, team := range []int{e.Team1, e.Team2} {
			until, ok := s.judgedUntil[team]
			if !ok {
				continue
			}
			if s.tr.robot.PullTo(until.Add(minutes(s.p.Transfer - offs[i]))) {
				log.Debug().Int("round", r).Int("team", team).Msg("robot game held for team still in judging")
			}
		}
	}

	start := s.tr.robot.Current()
	end := start
	acts := make([]activity.Activity, 0, 2*len(entries))
	for i, e := range entries {
		at := start.Add(minutes(offs[i]))
		if check > 0 && !e.Empty() {
			c := activity.Span(activity.KindRobotCheck, at, check)
			c.Round, c.Match, c.Team1, c.Team2 = r, e.Match, e.Team1, e.Team2
			acts = append(acts, c)
		}
		m := activity.Span(activity.KindMatch, at.Add(minutes(check)), s.p.Match)
		m.Round, m.Match = r, e.Match
		m.Table1, m.Table2, m.Team1, m.Team2 = e.Table1, e.Table2, e.Team1, e.Team2
		acts = append(acts, m)
		for _, team := range m.Teams() {
			s.playedUntil[team] = m.End
		}
		end = clock.Later(end, m.End)
	}
	sort.SliceStable(acts, func(i, j int) bool { return acts[i].Start.Before(acts[j].Start) })

	label := fmt.Sprintf("Robot game round %d", r)
	if r == matchplan.TestRound {
		label = "Robot game test round"
	}
	if _, err := s.w.BeginGroup(ctx, label); err != nil {
		return writeErr(label, err)
	}
	if err := s.write(ctx, acts...); err != nil {
		return writeErr(label, err)
	}
	s.tr.robot.Set(end)

	// Teams of the next block play first; judging waits for them.
	first := min(ceilDiv(s.p.Lanes, 2), len(entries))
	done := 0
	for i := 0; i < first; i++ {
		done = max(done, offs[i]+s.p.Match)
	}
	a4j := check + done + s.p.Transfer
	s.nextAvail = start.Add(minutes(a4j))
	log.Debug().Int("round", r).Int("a4j", a4j).Time("next_availability", s.nextAvail).Msg("robot game round placed")
	return nil
}

// lunchBlock is the judging block followed by lunch.
func (s *synchronizer) lunchBlock() int {
	if s.plan.JudgingRounds == 4 {
		return 2
	}
	return 3
}

func (s *synchronizer) lunch(ctx context.Context, round int, hasRound bool) error {
	if _, err := s.w.BeginGroup(ctx, "Lunch"); err != nil {
		return writeErr("lunch", err)
	}
	if hasRound {
		if pt, ok := activity.AfterRound(round); ok {
			if err := s.w.InsertTimedBlock(ctx, pt, 0, s.tr.robot); err != nil {
				return writeErr(string(pt), err)
			}
		}
	}

	if s.w.HasTimedBlock(activity.PointLunch) {
		at := clock.Later(s.tr.judging.Current(), s.tr.robot.Current())
		s.tr.challenge.PullTo(at)
		if s.p.ExploreIntegrated {
			if err := s.scheduleExplore(ctx, s.tr.challenge.Current(), s.p.ExploreCeremony); err != nil {
				return err
			}
		}
		if err := s.w.InsertTimedBlock(ctx, activity.PointLunch, 0, s.tr.challenge); err != nil {
			return writeErr("lunch", err)
		}
		s.tr.judging.PullTo(s.tr.challenge.Current())
		s.tr.robot.PullTo(s.tr.challenge.Current())
		return nil
	}

	jl := activity.Span(activity.KindJudgingLunch, s.tr.judging.Current(), s.p.JudgingLunch)
	robotLunch := s.p.RobotLunch
	if s.p.ExploreIntegrated {
		robotLunch = max(robotLunch, s.p.ExploreCeremony)
		if err := s.scheduleExplore(ctx, s.tr.robot.Current(), s.p.ExploreCeremony); err != nil {
			return err
		}
	}
	rl := activity.Span(activity.KindRobotLunch, s.tr.robot.Current(), robotLunch)
	if err := s.write(ctx, jl, rl); err != nil {
		return writeErr("lunch", err)
	}
	s.tr.judging.Advance(s.p.JudgingLunch)
	s.tr.robot.Advance(robotLunch)
	return nil
}

func (s *synchronizer) scheduleExplore(ctx context.Context, at time.Time, duration int) error {
	a := activity.Span(activity.KindExplore, at, duration)
	if err := s.write(ctx, a); err != nil {
		return writeErr("explore ceremony", err)
	}
	s.explore = ExploreSlot{Status: ExploreScheduled, Start: a.Start, Duration: duration, End: a.End}
	return nil
}

func (s *synchronizer) shortBreak(ctx context.Context, b, teams, round int, hasRound bool) error {
	if teams > 0 && s.p.JudgingBreak > 0 {
		a := activity.Span(activity.KindJudgingBreak, s.tr.judging.Current(), s.p.JudgingBreak)
		a.Block = b
		if err := s.write(ctx, a); err != nil {
			return writeErr("judging break", err)
		}
		s.tr.judging.Advance(s.p.JudgingBreak)
	}
	if !hasRound {
		return nil
	}
	pt, ok := activity.AfterRound(round)
	if !ok {
		s.tr.robot.Advance(s.p.RobotBreak)
		return nil
	}
	if err := s.w.InsertTimedBlock(ctx, pt, s.p.RobotBreak, s.tr.robot); err != nil {
		return writeErr(string(pt), err)
	}
	return nil
}

// closing writes deliberations, the finals and the awards.
func (s *synchronizer) closing(ctx context.Context) error {
	judgingEnd := s.tr.judging.Current()
	if _, err := s.w.BeginGroup(ctx, "Deliberations"); err != nil {
		return writeErr("deliberations", err)
	}
	if err := s.write(ctx, activity.Span(activity.KindDeliberations, judgingEnd, s.p.Deliberations)); err != nil {
		return writeErr("deliberations", err)
	}
	s.tr.judging.Advance(s.p.Deliberations)

	s.tr.challenge.PullTo(clock.Later(judgingEnd.Add(-minutes(s.p.Scoring)), s.tr.robot.Current()))
	s.tr.robot.PullTo(s.tr.challenge.Current())

	if _, err := s.w.BeginGroup(ctx, "Finals"); err != nil {
		return writeErr("finals", err)
	}
	if err := s.w.InsertTimedBlock(ctx, activity.PointBeforeFinals, s.p.BeforeFinals, s.tr.robot); err != nil {
		return writeErr("before finals", err)
	}
	if err := s.finals(ctx); err != nil {
		return err
	}

	s.tr.challenge.PullTo(clock.Later(s.tr.robot.Current(), s.tr.judging.Current()))
	if _, err := s.w.BeginGroup(ctx, "Awards"); err != nil {
		return writeErr("awards", err)
	}
	if err := s.w.InsertTimedBlock(ctx, activity.PointBeforeAwards, 0, s.tr.challenge); err != nil {
		return writeErr("before awards", err)
	}
	if err := s.write(ctx, activity.Span(activity.KindAwards, s.tr.challenge.Current(), s.p.Awards)); err != nil {
		return writeErr("awards", err)
	}
	s.tr.challenge.Advance(s.p.Awards)
	s.end = s.tr.challenge.Current()
	return nil
}

// write hands activities to the writer. Per track, starts never go back in
// time except for briefings.
func (s *synchronizer) write(ctx context.Context, acts ...activity.Activity) error {
	if len(acts) == 0 {
		return nil
	}
	for _, a := range acts {
		if a.Kind.Briefing() {
			continue
		}
		tr := a.Track()
		if last, ok := s.lastStart[tr]; ok && a.Start.Before(last) {
			panic(fmt.Sprintf("scheduler: %s at %s goes back on the %s track (last start %s)",
				a.Kind, a.Start.Format("15:04"), tr, last.Format("15:04")))
		}
		s.lastStart[tr] = a.Start
	}
	var err error
	if len(acts) == 1 {
		err = s.w.WriteActivity(ctx, acts[0])
	} else {
		err = s.w.WriteActivities(ctx, acts)
	}
	if err != nil {
		return err
	}
	s.written += len(acts)
	return nil
}
