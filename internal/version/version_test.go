/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package version

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	old := Version
	Version = "9.9.9"
	defer func() { Version = old }()

	got := String()
	if !strings.HasPrefix(got, "matchday 9.9.9 (") {
		t.Fatalf("unexpected version line %q", got)
	}
}
