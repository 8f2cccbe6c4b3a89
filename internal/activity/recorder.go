/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package activity

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/friendsincode/matchday/internal/clock"
	"github.com/friendsincode/matchday/internal/params"
)

// ErrNoGroup is returned when an activity is written before any group.
var ErrNoGroup = errors.New("activity written outside a group")

// Block is a fixed block pinned at an insertion point.
type Block struct {
	Point    Point
	Label    string
	Duration int
}

// BlocksFromSpecs validates configured fixed blocks. At most one block
// may be pinned per point.
func BlocksFromSpecs(specs []params.BlockSpec) ([]Block, error) {
	seen := make(map[Point]bool, len(specs))
	out := make([]Block, 0, len(specs))
	for _, s := range specs {
		p, err := ParsePoint(s.Point)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", params.ErrInvalidParameter, err)
		}
		if seen[p] {
			return nil, fmt.Errorf("%w: more than one block at %s", params.ErrInvalidParameter, p)
		}
		seen[p] = true
		label := s.Label
		if label == "" {
			label = string(p)
		}
		out = append(out, Block{Point: p, Label: label, Duration: s.Duration})
	}
	return out, nil
}

// Group is a labelled run of activities.
type Group struct {
	ID    GroupID
	Label string
}

// Record is a written activity with its group and write order.
type Record struct {
	Activity
	Group GroupID
	Seq   int
}

// Recorder is an in-memory Writer. Activities are kept in write order.
type Recorder struct {
	mu       sync.Mutex
	blocks   map[Point]Block
	inserted map[Point]bool
	groups   []Group
	records  []Record
}

// NewRecorder creates a recorder serving the given fixed blocks.
func NewRecorder(blocks []Block) *Recorder {
	r := &Recorder{
		blocks:   make(map[Point]Block, len(blocks)),
		inserted: make(map[Point]bool),
	}
	for _, b := range blocks {
		r.blocks[b.Point] = b
	}
	return r
}

// BeginGroup implements Writer.
func (r *Recorder) BeginGroup(ctx context.Context, label string) (GroupID, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	id := GroupID(len(r.groups) + 1)
	r.groups = append(r.groups, Group{ID: id, Label: label})
	return id, nil
}

// WriteActivity implements Writer.
func (r *Recorder) WriteActivity(ctx context.Context, a Activity) error {
	return r.WriteActivities(ctx, []Activity{a})
}

// WriteActivities implements Writer.
func (r *Recorder) WriteActivities(ctx context.Context, as []Activity) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.groups) == 0 {
		return ErrNoGroup
	}
	group := r.groups[len(r.groups)-1].ID
	for _, a := range as {
		if a.End.Before(a.Start) {
			return fmt.Errorf("%s ends before it starts", a.Kind)
		}
		r.records = append(r.records, Record{Activity: a, Group: group, Seq: len(r.records) + 1})
	}
	return nil
}

// HasTimedBlock implements Writer.
func (r *Recorder) HasTimedBlock(point Point) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.blocks[point]
	return ok
}

// InsertTimedBlock implements Writer. A configured block is written once;
// later insertions at the same point fall back.
func (r *Recorder) InsertTimedBlock(ctx context.Context, point Point, fallback int, cur *clock.Cursor) error {
	r.mu.Lock()
	b, ok := r.blocks[point]
	if ok && r.inserted[point] {
		ok = false
	}
	if ok {
		r.inserted[point] = true
	}
	r.mu.Unlock()

	if !ok {
		cur.Advance(fallback)
		return nil
	}
	a := Span(KindFixedBlock, cur.Current(), b.Duration)
	a.Point = point
	a.Label = b.Label
	if err := r.WriteActivity(ctx, a); err != nil {
		return err
	}
	cur.Advance(b.Duration)
	return nil
}

// Groups returns the groups in creation order.
func (r *Recorder) Groups() []Group {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Group(nil), r.groups...)
}

// Records returns the written activities in write order.
func (r *Recorder) Records() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Record(nil), r.records...)
}

// Activities returns the written activities without bookkeeping.
func (r *Recorder) Activities() []Activity {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Activity, len(r.records))
	for i, rec := range r.records {
		out[i] = rec.Activity
	}
	return out
}
