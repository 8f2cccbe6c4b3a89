/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"github.com/friendsincode/matchday/internal/activity"
	"github.com/friendsincode/matchday/internal/matchplan"
	"github.com/friendsincode/matchday/internal/params"
	"github.com/friendsincode/matchday/internal/scheduling"
)

func loadParams(t *testing.T, over map[string]any) params.ScheduleParameters {
	t.Helper()
	p, err := params.Load(params.MapSource(params.Overlay(params.Preset(), over)))
	if err != nil {
		t.Fatalf("load params: %v", err)
	}
	return p
}

func generate(t *testing.T, over map[string]any, blocks []activity.Block) (*Result, *activity.Recorder) {
	t.Helper()
	rec := activity.NewRecorder(blocks)
	res, err := New(matchplan.Diversity{}, zerolog.Nop()).Generate(context.Background(), loadParams(t, over), rec)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return res, rec
}

func ofKind(acts []activity.Activity, k activity.Kind) []activity.Activity {
	var out []activity.Activity
	for _, a := range acts {
		if a.Kind == k {
			out = append(out, a)
		}
	}
	return out
}

func parityOffset(idx, tables, duration, nextStart int) int {
	if tables == 2 {
		return idx * duration
	}
	return (idx/2)*duration + (idx%2)*nextStart
}

func TestMatchOffsetsEqualParityForAlternatingRounds(t *testing.T) {
	for _, tc := range []struct{ teams, lanes, tables, nextStart int }{
		{24, 4, 4, 4},
		{24, 4, 4, 3},
		{12, 3, 2, 4},
		{20, 5, 4, 2},
	} {
		p := loadParams(t, map[string]any{
			params.KeyTeams: tc.teams, params.KeyLanes: tc.lanes, params.KeyTables: tc.tables, params.KeyNextStart: tc.nextStart,
		})
		plan, err := matchplan.Build(p, nil)
		if err != nil {
			t.Fatalf("Build: %v", err)
		}
		for r := matchplan.Round1; r <= matchplan.Round3; r++ {
			offs := matchOffsets(plan.Round(r), p.Tables, p.Match, p.NextStart)
			for i, got := range offs {
				if want := parityOffset(i, p.Tables, p.Match, p.NextStart); got != want {
					t.Fatalf("%+v round %d match %d: offset %d, want %d", tc, r, i+1, got, want)
				}
			}
		}
	}
}

func TestMatchOffsetsNeverDoubleBookAPair(t *testing.T) {
	entries := []matchplan.Entry{
		{Table1: 1, Table2: 2}, {Table1: 3, Table2: 4}, {Table1: 1, Table2: 2},
		{Table1: 1, Table2: 2}, {Table1: 3, Table2: 4},
	}
	got := matchOffsets(entries, 4, 8, 4)
	if diff := cmp.Diff([]int{0, 4, 8, 16, 20}, got); diff != "" {
		t.Fatalf("offsets mismatch (-want +got):\n%s", diff)
	}

	got = matchOffsets(entries[:3], 4, 8, 8)
	if diff := cmp.Diff([]int{0, 8, 16}, got); diff != "" {
		t.Fatalf("full-length next start (-want +got):\n%s", diff)
	}
}

// On four tables no two consecutive matches start closer than the
// next-start interval, including rounds where the table pairs repeat.
func TestMatchOffsetsKeepNextStartApart(t *testing.T) {
	for _, tr := range matchplan.Supported(4, 60) {
		if tr.Tables != 4 {
			continue
		}
		for _, nextStart := range []int{4, 6} {
			p := loadParams(t, map[string]any{
				params.KeyTeams: tr.Teams, params.KeyLanes: tr.Lanes, params.KeyTables: tr.Tables, params.KeyNextStart: nextStart,
			})
			plan, err := matchplan.Build(p, matchplan.Diversity{})
			if err != nil {
				t.Fatalf("%+v: Build: %v", tr, err)
			}
			for r := matchplan.TestRound; r <= matchplan.Round3; r++ {
				entries := plan.Round(r)
				offs := matchOffsets(entries, p.Tables, p.Match, p.NextStart)
				for i := 1; i < len(offs); i++ {
					if d := offs[i] - offs[i-1]; d < p.NextStart {
						t.Fatalf("%+v next start %d round %d: matches %d and %d start %d min apart", tr, nextStart, r, i, i+1, d)
					}
				}
				busy := map[int]int{}
				for i, e := range entries {
					pr := pairIndex(e)
					if end, ok := busy[pr]; ok && offs[i] < end {
						t.Fatalf("%+v round %d: match %d starts at %d on a pair busy until %d", tr, r, i+1, offs[i], end)
					}
					busy[pr] = offs[i] + p.Match
				}
			}
		}
	}
}

func TestMatchesBefore(t *testing.T) {
	tests := []struct {
		name                       string
		teams, lanes, tables, b, r int
		want                       int
	}{
		{"regular block", 24, 4, 4, 3, matchplan.Round1, 10},
		{"asymmetric test round", 22, 4, 4, 1, matchplan.TestRound, 10},
		{"partial final block", 22, 4, 4, 6, matchplan.Round3, 10},
		{"partial final block odd", 21, 4, 4, 6, matchplan.Round3, 10},
		{"next block empty", 9, 3, 2, 3, matchplan.Round2, 0},
		{"four blocks asymmetric test round", 14, 4, 4, 1, matchplan.TestRound, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := loadParams(t, map[string]any{params.KeyTeams: tt.teams, params.KeyLanes: tt.lanes, params.KeyTables: tt.tables})
			plan, err := matchplan.Build(p, nil)
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			s := newSynchronizer(p, plan, nil, zerolog.Nop())
			if got := s.matchesBefore(tt.b, tt.r, p.TeamsInJudgingRound(tt.b)); got != tt.want {
				t.Fatalf("matchesBefore = %d, want %d", got, tt.want)
			}
		})
	}
}

// Every supported combination yields a timetable without double bookings
// and with every track moving forward.
func TestGenerateGridIsConflictFree(t *testing.T) {
	v := scheduling.NewValidator(zerolog.Nop())
	for _, tr := range matchplan.Supported(8, 36) {
		for _, check := range []bool{false, true} {
			over := map[string]any{
				params.KeyTeams: tr.Teams, params.KeyLanes: tr.Lanes, params.KeyTables: tr.Tables,
				params.KeyRobotCheckOn: check,
			}
			_, rec := generate(t, over, nil)
			res := v.Validate(rec.Activities(), scheduling.Options{Transfer: params.Preset()[params.KeyTransfer].(int)})
			if !res.Valid {
				t.Fatalf("%+v check=%v: %d violations, first: %s", tr, check, len(res.Errors), res.Errors[0].Message)
			}
			if len(res.Warnings) != 0 {
				t.Fatalf("%+v check=%v: transfer warning: %s", tr, check, res.Warnings[0].Message)
			}
		}
	}
}

func TestGenerateJudgesEveryTeamOnce(t *testing.T) {
	_, rec := generate(t, map[string]any{params.KeyTeams: 23, params.KeyLanes: 4}, nil)
	seen := make(map[int]int)
	for _, a := range ofKind(rec.Activities(), activity.KindWithTeam) {
		if want := (a.Block-1)*4 + a.Lane; a.Team1 != want {
			t.Fatalf("block %d lane %d hosts team %d, want %d", a.Block, a.Lane, a.Team1, want)
		}
		seen[a.Team1]++
	}
	for team := 1; team <= 23; team++ {
		if seen[team] != 1 {
			t.Fatalf("team %d judged %d times", team, seen[team])
		}
	}
}

func TestGenerateFinalsAfterEightTeams(t *testing.T) {
	_, rec := generate(t, map[string]any{params.KeyFinal8: true}, nil)
	acts := rec.Activities()

	var eight, four []activity.Activity
	for _, a := range ofKind(acts, activity.KindFinalMatch) {
		switch a.Stage {
		case 8:
			eight = append(eight, a)
		case 4:
			four = append(four, a)
		}
	}
	if len(eight) != 4 {
		t.Fatalf("got %d quarter-final matches, want 4", len(eight))
	}
	for _, a := range eight {
		if a.Team1 != 0 || a.Team2 != 0 {
			t.Fatalf("finals match has teams %d vs %d", a.Team1, a.Team2)
		}
	}
	var results []activity.Activity
	for _, a := range ofKind(acts, activity.KindResults) {
		if a.Stage == 8 {
			results = append(results, a)
		}
	}
	if len(results) != 1 {
		t.Fatalf("got %d results buffers after the quarter-finals, want 1", len(results))
	}
	for _, a := range eight {
		if a.End.After(results[0].Start) {
			t.Fatal("results buffer starts before the quarter-finals end")
		}
	}
	if len(four) != 2 || four[0].Start.Before(results[0].End) {
		t.Fatalf("semi-finals must follow the results buffer: %+v", four)
	}
	if eight[0].Table1 == eight[1].Table1 {
		t.Fatal("quarter-final matches should alternate table pairs")
	}

	final := ofKind(acts, activity.KindFinalMatch)
	last := final[len(final)-2:]
	if last[0].Stage != 2 || last[1].Stage != 2 || last[1].Start.Before(last[0].End) {
		t.Fatalf("final should be two sequential matches: %+v", last)
	}
	for _, a := range ofKind(acts, activity.KindResults) {
		if a.Stage == 2 {
			t.Fatal("no results buffer expected after the final")
		}
	}
}

func stageActivities(acts []activity.Activity, k activity.Kind) map[int][]activity.Activity {
	out := make(map[int][]activity.Activity)
	for _, a := range ofKind(acts, k) {
		if a.Stage != 0 {
			out[a.Stage] = append(out[a.Stage], a)
		}
	}
	return out
}

func TestGenerateFinalsSixteen(t *testing.T) {
	_, rec := generate(t, map[string]any{
		params.KeyFinal16: true, params.KeyFinal8: false, params.KeyRobotCheck16: true,
	}, nil)
	acts := rec.Activities()
	p := loadParams(t, nil)

	matches := stageActivities(acts, activity.KindFinalMatch)
	results := stageActivities(acts, activity.KindResults)
	checks := stageActivities(acts, activity.KindRobotCheck)

	got := map[int]int{}
	for stage, ms := range matches {
		got[stage] = len(ms)
	}
	if diff := cmp.Diff(map[int]int{16: 8, 8: 4, 4: 2, 2: 2}, got); diff != "" {
		t.Fatalf("matches per stage (-want +got):\n%s", diff)
	}

	for _, stage := range []int{16, 8, 4} {
		ms := matches[stage]
		if len(results[stage]) != 1 {
			t.Fatalf("stage %d: %d results buffers, want 1", stage, len(results[stage]))
		}
		res := results[stage][0]
		last := ms[len(ms)-1]
		if !res.Start.Equal(last.End) || last.Duration() != p.Match {
			t.Fatalf("stage %d: results at %s, last match %s-%s", stage, res.Start, last.Start, last.End)
		}
		for i := 1; i < len(ms); i++ {
			if ms[i].Table1 == ms[i-1].Table1 {
				t.Fatalf("stage %d: matches %d and %d share a table pair", stage, i, i+1)
			}
			if ms[i].Start.Sub(ms[i-1].Start) < minutes(p.NextStart) {
				t.Fatalf("stage %d: matches %d and %d start too close", stage, i, i+1)
			}
		}
		if len(checks[stage]) != len(ms) {
			t.Fatalf("stage %d: %d robot checks for %d matches", stage, len(checks[stage]), len(ms))
		}
		if next := stage / 2; matches[next][0].Start.Before(res.End) {
			t.Fatalf("stage %d starts before the stage %d results are announced", next, stage)
		}
	}
	if len(results[2]) != 0 {
		t.Fatal("no results buffer expected after the final")
	}
}

func TestGenerateFinalRobotChecks(t *testing.T) {
	tests := []struct {
		name string
		over map[string]any
		want map[int]int
	}{
		{"defaults", nil, map[int]int{8: 4, 4: 2, 2: 1}},
		{"all off", map[string]any{
			params.KeyRobotCheck8: false, params.KeyRobotCheck4: false, params.KeyRobotCheck2: false,
		}, map[int]int{}},
		{"final only", map[string]any{
			params.KeyRobotCheck8: false, params.KeyRobotCheck4: false,
		}, map[int]int{2: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, rec := generate(t, tt.over, nil)
			acts := rec.Activities()
			got := map[int]int{}
			for stage, cs := range stageActivities(acts, activity.KindRobotCheck) {
				got[stage] = len(cs)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("robot checks per stage (-want +got):\n%s", diff)
			}
			for _, c := range stageActivities(acts, activity.KindRobotCheck)[2] {
				if c.Match != 1 {
					t.Fatalf("robot check before final match %d", c.Match)
				}
				first := stageActivities(acts, activity.KindFinalMatch)[2][0]
				if !c.End.Equal(first.Start) {
					t.Fatalf("final robot check ends %s, match starts %s", c.End, first.Start)
				}
			}
		})
	}
}

// In the finale shape the fifth judging block only waits for the fourth
// block and its own teams, not for the fourth robot-game round.
func TestGenerateFinaleShape(t *testing.T) {
	withTeam := func(acts []activity.Activity, block int) activity.Activity {
		for _, a := range ofKind(acts, activity.KindWithTeam) {
			if a.Block == block {
				return a
			}
		}
		t.Fatalf("no judging in block %d", block)
		return activity.Activity{}
	}
	brk := func(acts []activity.Activity, block int) activity.Activity {
		for _, a := range ofKind(acts, activity.KindJudgingBreak) {
			if a.Block == block {
				return a
			}
		}
		t.Fatalf("no judging break after block %d", block)
		return activity.Activity{}
	}

	_, regular := generate(t, nil, nil)
	_, finale := generate(t, map[string]any{params.KeyFinale: true}, nil)

	r4, f4 := withTeam(regular.Activities(), 4), withTeam(finale.Activities(), 4)
	if !r4.Start.Equal(f4.Start) {
		t.Fatalf("block 4 moved: %s vs %s", r4.Start, f4.Start)
	}
	r5, f5 := withTeam(regular.Activities(), 5), withTeam(finale.Activities(), 5)
	if f5.Start.After(r5.Start) {
		t.Fatalf("finale block 5 at %s, later than regular %s", f5.Start, r5.Start)
	}
	if f5.Start.Before(brk(finale.Activities(), 4).End) {
		t.Fatal("finale block 5 starts before the judging break ends")
	}

	res := scheduling.NewValidator(zerolog.Nop()).Validate(finale.Activities(), scheduling.Options{Transfer: params.Preset()[params.KeyTransfer].(int)})
	if !res.Valid {
		t.Fatalf("finale timetable: %d violations, first: %s", len(res.Errors), res.Errors[0].Message)
	}
}

func TestGenerateIsIdempotent(t *testing.T) {
	over := map[string]any{params.KeyTeams: 19, params.KeyLanes: 4, params.KeyRobotCheckOn: true}
	_, a := generate(t, over, nil)
	_, b := generate(t, over, nil)
	if diff := cmp.Diff(a.Activities(), b.Activities()); diff != "" {
		t.Fatalf("runs differ (-first +second):\n%s", diff)
	}
}

func TestGenerateExploreSlot(t *testing.T) {
	res, rec := generate(t, nil, nil)
	if res.Explore.Ready() {
		t.Fatal("explore slot should stay pending when not integrated")
	}

	res, rec = generate(t, map[string]any{params.KeyExploreOn: true, params.KeyExploreLength: 60}, nil)
	if !res.Explore.Ready() || res.Explore.Duration != 60 {
		t.Fatalf("unexpected explore slot %+v", res.Explore)
	}
	lunch := ofKind(rec.Activities(), activity.KindRobotLunch)
	if len(lunch) != 1 || lunch[0].Duration() != 60 || !lunch[0].Start.Equal(res.Explore.Start) {
		t.Fatalf("robot-game lunch should host the ceremony: %+v", lunch)
	}
}

func TestGenerateFixedLunch(t *testing.T) {
	blocks := []activity.Block{{Point: activity.PointLunch, Label: "Lunch", Duration: 50}}
	_, rec := generate(t, nil, blocks)
	acts := rec.Activities()
	if n := len(ofKind(acts, activity.KindJudgingLunch)) + len(ofKind(acts, activity.KindRobotLunch)); n != 0 {
		t.Fatalf("automatic lunch written next to a fixed one (%d)", n)
	}
	fixed := ofKind(acts, activity.KindFixedBlock)
	if len(fixed) != 1 || fixed[0].Duration() != 50 || fixed[0].Point != activity.PointLunch {
		t.Fatalf("unexpected fixed blocks %+v", fixed)
	}
	for _, a := range acts {
		if (a.Kind == activity.KindWithTeam || a.Kind == activity.KindMatch) &&
			a.Start.Before(fixed[0].End) && fixed[0].Start.Before(a.End) {
			t.Fatalf("%s overlaps the fixed lunch", a.Kind)
		}
	}
}

func TestGenerateRejectsBeforeWriting(t *testing.T) {
	rec := activity.NewRecorder(nil)
	p := loadParams(t, map[string]any{params.KeyTeams: 30, params.KeyLanes: 4})
	_, err := New(nil, zerolog.Nop()).Generate(context.Background(), p, rec)
	if !errors.Is(err, matchplan.ErrUnsupportedPlan) {
		t.Fatalf("expected ErrUnsupportedPlan, got %v", err)
	}
	if len(rec.Groups()) != 0 || len(rec.Records()) != 0 {
		t.Fatal("nothing should be written for an unsupported plan")
	}

	p = loadParams(t, map[string]any{params.KeyNextStart: 20})
	if _, err := New(nil, zerolog.Nop()).Generate(context.Background(), p, rec); !errors.Is(err, params.ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
}

var errBoom = errors.New("boom")

type failingWriter struct {
	*activity.Recorder
	after int
	calls int
}

func (f *failingWriter) WriteActivities(ctx context.Context, as []activity.Activity) error {
	f.calls++
	if f.calls > f.after {
		return errBoom
	}
	return f.Recorder.WriteActivities(ctx, as)
}

func (f *failingWriter) WriteActivity(ctx context.Context, a activity.Activity) error {
	return f.WriteActivities(ctx, []activity.Activity{a})
}

func TestGenerateStopsOnWriterFailure(t *testing.T) {
	w := &failingWriter{Recorder: activity.NewRecorder(nil), after: 3}
	_, err := New(nil, zerolog.Nop()).Generate(context.Background(), loadParams(t, nil), w)
	if !errors.Is(err, errBoom) {
		t.Fatalf("expected writer error, got %v", err)
	}
}

func TestGenerateHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(nil, zerolog.Nop()).Generate(ctx, loadParams(t, nil), activity.NewRecorder(nil))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestGenerateBriefingsPrecedeOpening(t *testing.T) {
	res, rec := generate(t, nil, nil)
	opening := ofKind(rec.Activities(), activity.KindOpening)[0]
	for _, k := range []activity.Kind{activity.KindCoachBriefing, activity.KindJudgeBriefing, activity.KindRefereeBriefing} {
		b := ofKind(rec.Activities(), k)
		if len(b) != 1 || b[0].End.After(opening.Start) {
			t.Fatalf("%s should end before the opening: %+v", k, b)
		}
		if b[0].Start.Before(res.Start) {
			t.Fatalf("result start %v after %s", res.Start, k)
		}
	}
	awards := ofKind(rec.Activities(), activity.KindAwards)
	if len(awards) != 1 || !awards[0].End.Equal(res.End) {
		t.Fatalf("awards should close the day: %+v", awards)
	}
	delib := ofKind(rec.Activities(), activity.KindDeliberations)[0]
	if awards[0].Start.Before(delib.End) {
		t.Fatal("awards start before deliberations end")
	}
}
