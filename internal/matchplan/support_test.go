/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package matchplan

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSupportedStopsAtLargestPlan(t *testing.T) {
	all := Supported(1, MaxLanes*6)
	if len(all) == 0 {
		t.Fatal("expected supported combinations")
	}
	for _, tr := range all {
		if err := CheckSupported(tr.Teams, tr.Lanes, tr.Tables); err != nil {
			t.Fatalf("%+v: %v", tr, err)
		}
	}
	if CheckSupported(MaxLanes*6+1, MaxLanes, 4) == nil {
		t.Fatalf("%d teams should not fit %d lanes", MaxLanes*6+1, MaxLanes)
	}

	if diff := cmp.Diff(all, Supported(1, math.MaxInt)); diff != "" {
		t.Fatalf("unbounded range mismatch (-want +got):\n%s", diff)
	}
	if got := Supported(math.MaxInt-1, math.MaxInt); len(got) != 0 {
		t.Fatalf("expected no combinations above the largest plan, got %d", len(got))
	}
}
