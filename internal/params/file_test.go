/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package params

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const sampleFile = `
parameters:
  c_teams: 10
  j_lanes: 2
  r_tables: 4
  g_date: 2026-05-02
  g_start_opening: "08:30"
blocks:
  - point: lunch
    label: Lunch
    duration: 50
`

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "event.yaml")
	if err := os.WriteFile(path, []byte(sampleFile), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	f, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(f.Blocks) != 1 || f.Blocks[0].Point != "lunch" || f.Blocks[0].Duration != 50 {
		t.Fatalf("unexpected blocks: %+v", f.Blocks)
	}
	p, err := f.Load(Preset())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Teams != 10 || p.Lanes != 2 || p.Opening.String() != "08:30" {
		t.Fatalf("unexpected parameters: %+v", p)
	}
	if p.Date.Day() != 2 || p.Date.Month() != 5 {
		t.Fatalf("unexpected date %v", p.Date)
	}
}

func TestLoadFileWithoutPresetRequiresAllKeys(t *testing.T) {
	f, err := ParseFile([]byte(sampleFile))
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if _, err := f.Load(nil); !errors.Is(err, ErrMissingParameter) {
		t.Fatalf("expected ErrMissingParameter, got %v", err)
	}
}

func TestParseFileRejectsBadBlocks(t *testing.T) {
	_, err := ParseFile([]byte("parameters: {c_teams: 4}\nblocks:\n  - label: x\n    duration: 5\n"))
	if !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
	if _, err := ParseFile([]byte("blocks: []\n")); !errors.Is(err, ErrMissingParameter) {
		t.Fatalf("expected ErrMissingParameter, got %v", err)
	}
}
