/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package params

import (
	"errors"
	"testing"
	"time"
)

func load(t *testing.T, over map[string]any) ScheduleParameters {
	t.Helper()
	p, err := Load(MapSource(Overlay(Preset(), over)))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return p
}

func TestLoadDerived(t *testing.T) {
	tests := []struct {
		name                          string
		teams, lanes, tables          int
		wantRounds, wantMatches       int
		wantVolunteer, wantAsymmetric bool
	}{
		{"even four tables", 24, 4, 4, 6, 12, false, false},
		{"few teams clamp to four rounds", 9, 3, 4, 4, 5, true, true},
		{"two tables never asymmetric", 10, 2, 2, 5, 5, false, false},
		{"ten teams four tables", 10, 2, 4, 5, 5, false, true},
		{"odd three mod four", 15, 4, 4, 4, 8, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := load(t, map[string]any{KeyTeams: tt.teams, KeyLanes: tt.lanes, KeyTables: tt.tables})
			if got := p.JudgingRounds(); got != tt.wantRounds {
				t.Fatalf("JudgingRounds = %d, want %d", got, tt.wantRounds)
			}
			if got := p.MatchesPerRound(); got != tt.wantMatches {
				t.Fatalf("MatchesPerRound = %d, want %d", got, tt.wantMatches)
			}
			if got := p.NeedsVolunteer(); got != tt.wantVolunteer {
				t.Fatalf("NeedsVolunteer = %v, want %v", got, tt.wantVolunteer)
			}
			if got := p.AsymmetricTables(); got != tt.wantAsymmetric {
				t.Fatalf("AsymmetricTables = %v, want %v", got, tt.wantAsymmetric)
			}
		})
	}
}

func TestLoadMissingKey(t *testing.T) {
	values := Preset()
	delete(values, KeyScoring)
	_, err := Load(MapSource(values))
	if !errors.Is(err, ErrMissingParameter) {
		t.Fatalf("expected ErrMissingParameter, got %v", err)
	}
}

func TestLoadWrongType(t *testing.T) {
	_, err := Load(MapSource(Overlay(Preset(), map[string]any{KeyMatch: "eight"})))
	if !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestDerivedPanicsOnLiteral(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	_ = ScheduleParameters{Teams: 4}.JudgingRounds()
}

func TestTeamsInJudgingRound(t *testing.T) {
	p := load(t, map[string]any{KeyTeams: 9, KeyLanes: 3, KeyTables: 4})
	want := []int{3, 3, 3, 0}
	for i, w := range want {
		if got := p.TeamsInJudgingRound(i + 1); got != w {
			t.Fatalf("block %d: got %d teams, want %d", i+1, got, w)
		}
	}
	p = load(t, map[string]any{KeyTeams: 23, KeyLanes: 4})
	if got := p.TeamsInJudgingRound(6); got != 3 {
		t.Fatalf("partial block: got %d, want 3", got)
	}
	if got := p.LastJudgedBlock(); got != 6 {
		t.Fatalf("LastJudgedBlock = %d, want 6", got)
	}
}

func TestStartOfDay(t *testing.T) {
	p := load(t, map[string]any{KeyDate: "2026-03-07", KeyStartOpening: "08:45"})
	want := time.Date(2026, 3, 7, 8, 45, 0, 0, time.UTC)
	if got := p.StartOfDay(); !got.Equal(want) {
		t.Fatalf("StartOfDay = %v, want %v", got, want)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		over    map[string]any
		wantErr bool
	}{
		{"preset", nil, false},
		{"next start longer than match", map[string]any{KeyNextStart: 9}, true},
		{"next start ignored on two tables", map[string]any{KeyTables: 2, KeyNextStart: 0}, false},
		{"final 16 needs teams", map[string]any{KeyTeams: 12, KeyLanes: 3, KeyFinal16: true}, true},
		{"final 8 needs teams", map[string]any{KeyTeams: 6, KeyLanes: 2, KeyFinal8: true}, true},
		{"negative duration", map[string]any{KeyAwards: -1}, true},
		{"judging cycle too short", map[string]any{KeyLanes: 6, KeyWithTeam: 10, KeyScoring: 5, KeyJudgingBreak: 0, KeyMatch: 8}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := load(t, tt.over).Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidParameter) {
					t.Fatalf("expected ErrInvalidParameter, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate: %v", err)
			}
		})
	}
}

func TestFingerprintStable(t *testing.T) {
	a := load(t, nil)
	b := load(t, nil)
	if a.Fingerprint(nil) != b.Fingerprint(nil) {
		t.Fatal("fingerprint differs for equal parameters")
	}
	c := load(t, map[string]any{KeyTeams: 20})
	if a.Fingerprint(nil) == c.Fingerprint(nil) {
		t.Fatal("fingerprint equal for different parameters")
	}
	blocks := []BlockSpec{{Point: "lunch", Label: "Lunch", Duration: 60}}
	if a.Fingerprint(nil) == a.Fingerprint(blocks) {
		t.Fatal("fingerprint ignores fixed blocks")
	}
}

func TestValidateReportsFirstNegativeDuration(t *testing.T) {
	p := load(t, map[string]any{KeyAwards: -1, KeyResults: -2, KeyTransfer: -3, KeyRobotLunch: -4})
	want := "invalid parameter: " + KeyTransfer + " must not be negative"
	for i := 0; i < 20; i++ {
		if err := p.Validate(); err == nil || err.Error() != want {
			t.Fatalf("run %d: got %v, want %q", i, err, want)
		}
	}
}
