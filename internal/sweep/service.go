/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package sweep evaluates the generator over ranges of team, lane and
// table counts. Runs are persisted queues: each run has at most one item
// in flight and keeps going until it is empty.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/friendsincode/matchday/internal/events"
	"github.com/friendsincode/matchday/internal/matchplan"
	"github.com/friendsincode/matchday/internal/models"
	"github.com/friendsincode/matchday/internal/params"
	"github.com/friendsincode/matchday/internal/scheduler"
	"github.com/friendsincode/matchday/internal/storage"
)

var (
	// ErrRunNotFound is returned when no run has the requested id.
	ErrRunNotFound = errors.New("sweep run not found")
	// ErrEmptySweep is returned when a range contains no supported combination.
	ErrEmptySweep = errors.New("sweep range contains no supported combination")
)

const tracerName = "matchday/sweep"

// CreateRequest describes a new run. Empty Lanes or Tables mean every supported value.
type CreateRequest struct {
	Name       string         `json:"name"`
	MinTeams   int            `json:"min_teams"`
	MaxTeams   int            `json:"max_teams"`
	Lanes      []int          `json:"lanes,omitempty"`
	Tables     []int          `json:"tables,omitempty"`
	Parameters map[string]any `json:"parameters"`
}

// Service manages sweep runs.
type Service struct {
	db      *gorm.DB
	gen     *scheduler.Generator
	store   storage.ObjectStore
	bus     *events.Bus
	logger  zerolog.Logger
	workers int
}

// NewService creates a sweep service running up to workers runs at once.
func NewService(db *gorm.DB, gen *scheduler.Generator, store storage.ObjectStore, bus *events.Bus, workers int, logger zerolog.Logger) *Service {
	if workers < 1 {
		workers = 1
	}
	return &Service{
		db:      db,
		gen:     gen,
		store:   store,
		bus:     bus,
		logger:  logger.With().Str("component", "sweep").Logger(),
		workers: workers,
	}
}

// Create validates req and stores a pending run with one item per combination.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*models.SweepRun, error) {
	if req.Parameters == nil {
		return nil, fmt.Errorf("%w: parameters", params.ErrMissingParameter)
	}
	if req.MinTeams < 1 || req.MaxTeams < req.MinTeams {
		return nil, fmt.Errorf("%w: team range %d..%d", params.ErrInvalidParameter, req.MinTeams, req.MaxTeams)
	}

	var triples []matchplan.SupportedTriple
	for _, tr := range matchplan.Supported(req.MinTeams, req.MaxTeams) {
		if len(req.Lanes) > 0 && !slices.Contains(req.Lanes, tr.Lanes) {
			continue
		}
		if len(req.Tables) > 0 && !slices.Contains(req.Tables, tr.Tables) {
			continue
		}
		triples = append(triples, tr)
	}
	if len(triples) == 0 {
		return nil, ErrEmptySweep
	}

	// Base parameters must load for at least the first combination.
	if _, err := itemParameters(req.Parameters, triples[0].Teams, triples[0].Lanes, triples[0].Tables); err != nil {
		return nil, err
	}

	run := &models.SweepRun{
		ID:             uuid.NewString(),
		Name:           req.Name,
		Status:         models.SweepPending,
		Total:          len(triples),
		BaseParameters: req.Parameters,
	}
	items := make([]models.SweepItem, len(triples))
	for i, tr := range triples {
		items[i] = models.SweepItem{
			ID:     uuid.NewString(),
			RunID:  run.ID,
			Seq:    i + 1,
			Teams:  tr.Teams,
			Lanes:  tr.Lanes,
			Tables: tr.Tables,
			Status: models.SweepPending,
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(run).Error; err != nil {
			return fmt.Errorf("create sweep run: %w", err)
		}
		if err := tx.CreateInBatches(items, 200).Error; err != nil {
			return fmt.Errorf("create sweep items: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.refreshQueueDepth(ctx)
	s.publish(events.EventSweepCreated, events.Payload{"run_id": run.ID, "name": run.Name, "total": run.Total})
	s.logger.Info().Str("run_id", run.ID).Int("items", run.Total).Msg("sweep run created")
	return run, nil
}

// Get loads a run by id.
func (s *Service) Get(ctx context.Context, id string) (*models.SweepRun, error) {
	var run models.SweepRun
	err := s.db.WithContext(ctx).First(&run, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load sweep run: %w", err)
	}
	return &run, nil
}

// List returns the most recent runs, newest first.
func (s *Service) List(ctx context.Context, limit int) ([]models.SweepRun, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	var runs []models.SweepRun
	if err := s.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("list sweep runs: %w", err)
	}
	return runs, nil
}

// Items returns a run's items in sequence order.
func (s *Service) Items(ctx context.Context, runID string) ([]models.SweepItem, error) {
	if _, err := s.Get(ctx, runID); err != nil {
		return nil, err
	}
	var items []models.SweepItem
	if err := s.db.WithContext(ctx).Where("run_id = ?", runID).Order("seq").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("load sweep items: %w", err)
	}
	return items, nil
}

// Cancel stops a run. Pending items are marked cancelled; an item in
// flight finishes normally.
func (s *Service) Cancel(ctx context.Context, runID string) error {
	if _, err := s.Get(ctx, runID); err != nil {
		return err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.SweepItem{}).
			Where("run_id = ? AND status = ?", runID, models.SweepPending).
			Update("status", models.SweepCancelled).Error; err != nil {
			return err
		}
		return tx.Model(&models.SweepRun{}).
			Where("id = ? AND status IN ?", runID, []models.SweepStatus{models.SweepPending, models.SweepRunning}).
			Update("status", models.SweepCancelled).Error
	})
	if err != nil {
		return fmt.Errorf("cancel sweep run: %w", err)
	}
	s.refreshQueueDepth(ctx)
	return nil
}

// RecoverStale puts items left running by a crashed process back in the queue.
func (s *Service) RecoverStale(ctx context.Context) error {
	var stale []models.SweepItem
	if err := s.db.WithContext(ctx).Where("status = ?", models.SweepRunning).Find(&stale).Error; err != nil {
		return fmt.Errorf("find stale sweep items: %w", err)
	}
	if len(stale) == 0 {
		return nil
	}
	s.logger.Warn().Int("count", len(stale)).Msg("found stale sweep items from previous run")

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.SweepItem{}).
			Where("status = ?", models.SweepRunning).
			Update("status", models.SweepPending).Error; err != nil {
			return err
		}
		return tx.Model(&models.SweepRun{}).
			Where("in_flight <> ?", "").
			Update("in_flight", "").Error
	})
}

func (s *Service) publish(t events.EventType, p events.Payload) {
	if s.bus != nil {
		s.bus.Publish(t, p)
	}
}

// itemParameters overlays the item's counts on the run's base parameters.
func itemParameters(base map[string]any, teams, lanes, tables int) (params.ScheduleParameters, error) {
	values := params.Overlay(base, map[string]any{
		params.KeyTeams:  teams,
		params.KeyLanes:  lanes,
		params.KeyTables: tables,
	})
	return params.Load(params.MapSource(values))
}
