/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package plans generates timetables and stores them.
package plans

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/friendsincode/matchday/internal/activity"
	"github.com/friendsincode/matchday/internal/cache"
	"github.com/friendsincode/matchday/internal/events"
	"github.com/friendsincode/matchday/internal/matchplan"
	"github.com/friendsincode/matchday/internal/models"
	"github.com/friendsincode/matchday/internal/params"
	"github.com/friendsincode/matchday/internal/scheduler"
	"github.com/friendsincode/matchday/internal/telemetry"
)

// ErrPlanNotFound is returned when no plan has the requested id.
var ErrPlanNotFound = errors.New("plan not found")

const tracerName = "matchday/plans"

// Request describes one generation.
type Request struct {
	Name       string             `json:"name,omitempty"`
	Parameters map[string]any     `json:"parameters"`
	Blocks     []params.BlockSpec `json:"blocks,omitempty"`
	// Reuse returns an existing plan generated from identical input.
	Reuse bool `json:"reuse,omitempty"`
}

// Service generates plans and reads them back.
type Service struct {
	db     *gorm.DB
	gen    *scheduler.Generator
	cache  *cache.Cache
	bus    *events.Bus
	logger zerolog.Logger
}

// NewService creates a plan service. cache may be nil.
func NewService(db *gorm.DB, gen *scheduler.Generator, c *cache.Cache, bus *events.Bus, logger zerolog.Logger) *Service {
	return &Service{
		db:     db,
		gen:    gen,
		cache:  c,
		bus:    bus,
		logger: logger.With().Str("component", "plans").Logger(),
	}
}

// Generate runs the scheduler for req and persists the result in one
// transaction. Nothing is stored when generation fails.
func (s *Service) Generate(ctx context.Context, req Request) (*models.Plan, error) {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "plans.generate")
	defer span.End()

	p, blocks, err := resolve(req)
	if err != nil {
		telemetry.GenerationErrors.WithLabelValues("params").Inc()
		telemetry.RecordError(span, err)
		return nil, err
	}
	fingerprint := p.Fingerprint(req.Blocks)
	span.SetAttributes(telemetry.PlanAttributes(p.Teams, p.Lanes, p.Tables)...)
	span.SetAttributes(attribute.String("matchday.fingerprint", fingerprint))

	if req.Reuse {
		if existing, ok := s.findByFingerprint(ctx, fingerprint); ok {
			s.logger.Debug().Str("plan_id", existing.ID).Msg("reusing plan with identical parameters")
			return existing, nil
		}
	}

	rec := activity.NewRecorder(blocks)
	started := time.Now()
	res, err := s.gen.Generate(ctx, p, rec)
	if err != nil {
		stage := "write"
		if errors.Is(err, params.ErrInvalidParameter) || errors.Is(err, params.ErrMissingParameter) || errors.Is(err, matchplan.ErrUnsupportedPlan) {
			stage = "plan"
		}
		telemetry.GenerationErrors.WithLabelValues(stage).Inc()
		telemetry.RecordError(span, err)
		s.publishFailure(req, err)
		return nil, err
	}
	telemetry.GenerationDuration.WithLabelValues(strconv.Itoa(p.Tables)).Observe(time.Since(started).Seconds())

	plan, acts, err := s.persist(ctx, req.Name, p, fingerprint, res, rec)
	if err != nil {
		telemetry.GenerationErrors.WithLabelValues("persist").Inc()
		telemetry.RecordError(span, err)
		s.publishFailure(req, err)
		return nil, err
	}
	telemetry.ActivitiesGenerated.Add(float64(len(acts)))

	if s.cache != nil {
		if err := s.cache.SetActivities(ctx, plan.ID, toCached(acts)); err != nil {
			s.logger.Debug().Err(err).Msg("cache activities")
		}
		if err := s.cache.SetPlanFingerprint(ctx, fingerprint, plan.ID); err != nil {
			s.logger.Debug().Err(err).Msg("cache fingerprint")
		}
	}

	if s.bus != nil {
		s.bus.Publish(events.EventPlanGenerated, events.Payload{
			"plan_id":    plan.ID,
			"teams":      plan.Teams,
			"lanes":      plan.Lanes,
			"tables":     plan.Tables,
			"activities": len(acts),
			"starts_at":  plan.StartsAt,
			"ends_at":    plan.EndsAt,
		})
	}

	s.logger.Info().
		Str("plan_id", plan.ID).
		Int("teams", plan.Teams).
		Int("lanes", plan.Lanes).
		Int("tables", plan.Tables).
		Int("activities", len(acts)).
		Msg("plan generated")

	return plan, nil
}

// resolve turns a request into validated parameters and fixed blocks.
func resolve(req Request) (params.ScheduleParameters, []activity.Block, error) {
	f := params.File{Parameters: req.Parameters, Blocks: req.Blocks}
	if f.Parameters == nil {
		return params.ScheduleParameters{}, nil, fmt.Errorf("%w: parameters", params.ErrMissingParameter)
	}
	p, err := f.Load(nil)
	if err != nil {
		return params.ScheduleParameters{}, nil, err
	}
	blocks, err := activity.BlocksFromSpecs(req.Blocks)
	if err != nil {
		return params.ScheduleParameters{}, nil, err
	}
	return p, blocks, nil
}

func (s *Service) persist(ctx context.Context, name string, p params.ScheduleParameters, fingerprint string, res *scheduler.Result, rec *activity.Recorder) (*models.Plan, []models.Activity, error) {
	values, err := parameterMap(p)
	if err != nil {
		return nil, nil, err
	}

	plan := &models.Plan{
		ID:         uuid.NewString(),
		Name:       name,
		Teams:      p.Teams,
		Lanes:      p.Lanes,
		Tables:     p.Tables,
		ParamsHash: fingerprint,
		Parameters: values,
		StartsAt:   res.Start,
		EndsAt:     res.End,
	}
	if res.Explore.Ready() {
		start, end := res.Explore.Start, res.Explore.End
		plan.ExploreStartsAt = &start
		plan.ExploreEndsAt = &end
	}

	groupIDs := make(map[activity.GroupID]string)
	groups := make([]models.ActivityGroup, 0, len(rec.Groups()))
	for i, g := range rec.Groups() {
		id := uuid.NewString()
		groupIDs[g.ID] = id
		groups = append(groups, models.ActivityGroup{ID: id, PlanID: plan.ID, Seq: i + 1, Label: g.Label})
	}

	records := rec.Records()
	acts := make([]models.Activity, 0, len(records))
	for _, r := range records {
		acts = append(acts, models.Activity{
			ID:       uuid.NewString(),
			PlanID:   plan.ID,
			GroupID:  groupIDs[r.Group],
			Seq:      r.Seq,
			Kind:     r.Kind.String(),
			Room:     r.Room().String(),
			StartsAt: r.Start,
			EndsAt:   r.End,
			Block:    r.Block,
			Lane:     r.Lane,
			Round:    r.Round,
			Match:    r.Match,
			Stage:    r.Stage,
			Table1:   r.Table1,
			Table2:   r.Table2,
			Team1:    r.Team1,
			Team2:    r.Team2,
			Label:    r.Label,
		})
	}

	entries := res.Plan.Entries()
	rows := make([]models.MatchPlanRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, models.MatchPlanRow{
			ID:     uuid.NewString(),
			PlanID: plan.ID,
			Round:  e.Round,
			Match:  e.Match,
			Table1: e.Table1,
			Table2: e.Table2,
			Team1:  e.Team1,
			Team2:  e.Team2,
		})
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(plan).Error; err != nil {
			return fmt.Errorf("create plan: %w", err)
		}
		if len(groups) > 0 {
			if err := tx.CreateInBatches(groups, 200).Error; err != nil {
				return fmt.Errorf("create activity groups: %w", err)
			}
		}
		if len(acts) > 0 {
			if err := tx.CreateInBatches(acts, 200).Error; err != nil {
				return fmt.Errorf("create activities: %w", err)
			}
		}
		if len(rows) > 0 {
			if err := tx.CreateInBatches(rows, 200).Error; err != nil {
				return fmt.Errorf("create match plan: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return plan, acts, nil
}

// parameterMap stores the resolved parameters as plain JSON values.
func parameterMap(p params.ScheduleParameters) (map[string]any, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal parameters: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("unmarshal parameters: %w", err)
	}
	return out, nil
}

func (s *Service) publishFailure(req Request, err error) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(events.EventPlanFailed, events.Payload{
		"name":  req.Name,
		"error": err.Error(),
	})
}

func (s *Service) findByFingerprint(ctx context.Context, fingerprint string) (*models.Plan, bool) {
	if s.cache != nil {
		if id, ok := s.cache.GetPlanByFingerprint(ctx, fingerprint); ok {
			if plan, err := s.Get(ctx, id); err == nil {
				telemetry.PlanCacheLookups.WithLabelValues("hit").Inc()
				return plan, true
			}
		}
		telemetry.PlanCacheLookups.WithLabelValues("miss").Inc()
	}
	var plan models.Plan
	err := s.db.WithContext(ctx).
		Where("params_hash = ?", fingerprint).
		Order("created_at DESC").
		First(&plan).Error
	if err != nil {
		return nil, false
	}
	return &plan, true
}
