/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/friendsincode/matchday/internal/params"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

func TestGenerateJSON(t *testing.T) {
	data, err := json.Marshal(params.File{Parameters: params.Overlay(params.Preset(), map[string]any{
		params.KeyTeams:  12,
		params.KeyLanes:  3,
		params.KeyTables: 2,
	})})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	path := filepath.Join(t.TempDir(), "plan.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	out, err := execute(t, "generate", "-f", path, "--json")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	var got struct {
		Activities []jsonActivity  `json:"activities"`
		Evaluation json.RawMessage `json:"evaluation"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	matches := 0
	for _, a := range got.Activities {
		if a.Kind == "match" {
			matches++
		}
	}
	if matches == 0 {
		t.Fatal("expected match activities in output")
	}
	if len(got.Evaluation) == 0 {
		t.Fatal("expected evaluation in output")
	}
}

func TestGenerateRequiresFile(t *testing.T) {
	if _, err := execute(t, "generate", "-f", filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestSupported(t *testing.T) {
	out, err := execute(t, "supported", "--min", "8", "--max", "8")
	if err != nil {
		t.Fatalf("supported: %v", err)
	}
	if !strings.Contains(out, "8 teams") {
		t.Fatalf("unexpected output %q", out)
	}
	if _, err := execute(t, "supported", "--min", "9", "--max", "8"); err == nil {
		t.Fatal("expected error for inverted range")
	}
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "matchday ") {
		t.Fatalf("unexpected version output %q", out)
	}
}
