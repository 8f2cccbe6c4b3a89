/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package scheduler turns schedule parameters into the timetable of a
// competition day: a judging track and a robot-game track kept in step
// block by block, followed by the finals bracket and the awards.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/friendsincode/matchday/internal/activity"
	"github.com/friendsincode/matchday/internal/clock"
	"github.com/friendsincode/matchday/internal/matchplan"
	"github.com/friendsincode/matchday/internal/params"
	"github.com/rs/zerolog"
)

// ExploreStatus tells whether the integrated Explore ceremony has a slot yet.
type ExploreStatus string

const (
	ExplorePending   ExploreStatus = "pending"
	ExploreScheduled ExploreStatus = "scheduled"
)

// ExploreSlot is the ceremony slot handed to the Explore generator.
type ExploreSlot struct {
	Status   ExploreStatus `json:"status"`
	Start    time.Time     `json:"start,omitempty"`
	Duration int           `json:"duration"`
	End      time.Time     `json:"end,omitempty"`
}

// Ready reports whether the slot has been scheduled.
func (s ExploreSlot) Ready() bool {
	return s.Status == ExploreScheduled
}

// Result summarises a generation run. The activities themselves went to the writer.
type Result struct {
	Plan       *matchplan.Plan
	Explore    ExploreSlot
	Start      time.Time
	End        time.Time
	Activities int
}

// Generator builds complete competition timetables.
type Generator struct {
	optimizer matchplan.RotationOptimizer
	logger    zerolog.Logger
}

// New creates a generator. A nil optimizer keeps the plain rotation.
func New(optimizer matchplan.RotationOptimizer, logger zerolog.Logger) *Generator {
	if optimizer == nil {
		optimizer = matchplan.Identity{}
	}
	return &Generator{
		optimizer: optimizer,
		logger:    logger.With().Str("component", "scheduler").Logger(),
	}
}

// Generate writes the full timetable for p to w. Preconditions are checked
// before anything is written; a writer failure aborts the run.
func (g *Generator) Generate(ctx context.Context, p params.ScheduleParameters, w activity.Writer) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	plan, err := matchplan.Build(p, g.optimizer)
	if err != nil {
		return nil, err
	}

	s := newSynchronizer(p, plan, w, g.logger)
	if err := s.run(ctx); err != nil {
		return nil, err
	}

	g.logger.Debug().
		Int("teams", p.Teams).
		Int("lanes", p.Lanes).
		Int("tables", p.Tables).
		Int("activities", s.written).
		Time("end", s.end).
		Msg("timetable generated")

	return &Result{
		Plan:       plan,
		Explore:    s.explore,
		Start:      s.start,
		End:        s.end,
		Activities: s.written,
	}, nil
}

// tracks holds one cursor per timeline.
type tracks struct {
	challenge *clock.Cursor
	judging   *clock.Cursor
	robot     *clock.Cursor
}

func minutes(n int) time.Duration {
	return time.Duration(n) * time.Minute
}

func writeErr(what string, err error) error {
	return fmt.Errorf("write %s: %w", what, err)
}
