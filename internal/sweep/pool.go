/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package sweep

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/friendsincode/matchday/internal/activity"
	"github.com/friendsincode/matchday/internal/analytics"
	"github.com/friendsincode/matchday/internal/events"
	"github.com/friendsincode/matchday/internal/models"
	"github.com/friendsincode/matchday/internal/scheduling"
	"github.com/friendsincode/matchday/internal/telemetry"
)

// Run drains open runs every interval until ctx is cancelled.
func (s *Service) Run(ctx context.Context, interval time.Duration) error {
	s.logger.Info().Int("workers", s.workers).Msg("sweep loop started")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if err := s.RunPending(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error().Err(err).Msg("sweep pass failed")
		}
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("sweep loop stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunPending works every open run to completion, up to s.workers runs at a
// time. Items of one run are evaluated strictly one after another.
func (s *Service) RunPending(ctx context.Context) error {
	var ids []string
	err := s.db.WithContext(ctx).
		Model(&models.SweepRun{}).
		Where("status IN ?", []models.SweepStatus{models.SweepPending, models.SweepRunning}).
		Order("created_at ASC").
		Pluck("id", &ids).Error
	if err != nil {
		return fmt.Errorf("list open sweep runs: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for _, id := range ids {
		g.Go(func() error {
			return s.drain(gctx, id)
		})
	}
	return g.Wait()
}

// RunOne works a single run to completion.
func (s *Service) RunOne(ctx context.Context, runID string) error {
	if _, err := s.Get(ctx, runID); err != nil {
		return err
	}
	return s.drain(ctx, runID)
}

// drain keeps claiming the next item of a run until it is empty. Only
// cancellation is returned as an error; other failures are logged so that
// sibling runs keep going.
func (s *Service) drain(ctx context.Context, runID string) error {
	telemetry.SweepRunsActive.Inc()
	defer telemetry.SweepRunsActive.Dec()

	run, err := s.Get(ctx, runID)
	if err != nil {
		s.logger.Error().Err(err).Str("run_id", runID).Msg("load sweep run")
		return nil
	}
	logger := s.logger.With().Str("run_id", runID).Logger()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		item, err := s.claimNext(ctx, runID)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Error().Err(err).Msg("claim sweep item")
			return nil
		}
		if item == nil {
			return nil
		}

		finished, err := s.process(ctx, run, item)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Error().Err(err).Str("item_id", item.ID).Msg("record sweep item")
			return nil
		}
		if finished {
			s.finishRun(ctx, runID)
			return nil
		}
	}
}

func (s *Service) process(ctx context.Context, run *models.SweepRun, item *models.SweepItem) (bool, error) {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "sweep.item",
		append(telemetry.PlanAttributes(item.Teams, item.Lanes, item.Tables),
			attribute.String("matchday.sweep_run", run.ID))...)
	defer span.End()

	evaluation, itemErr := s.evaluate(ctx, run.BaseParameters, item)
	if err := ctx.Err(); err != nil {
		s.release(item)
		return false, err
	}
	if itemErr != nil {
		telemetry.RecordError(span, itemErr)
	}

	finished, err := s.complete(ctx, item, evaluation, itemErr)
	if err != nil {
		s.release(item)
		return false, err
	}
	s.refreshQueueDepth(ctx)

	payload := events.Payload{
		"run_id": run.ID,
		"item":   item.ID,
		"seq":    item.Seq,
		"teams":  item.Teams,
		"lanes":  item.Lanes,
		"tables": item.Tables,
		"status": string(models.SweepDone),
	}
	if itemErr != nil {
		payload["status"] = string(models.SweepFailed)
		payload["error"] = itemErr.Error()
	}
	s.publish(events.EventSweepItemDone, payload)
	return finished, nil
}

// evaluate generates one timetable and scores it. A timetable with
// validation errors fails the item but keeps its evaluation.
func (s *Service) evaluate(ctx context.Context, base map[string]any, item *models.SweepItem) (map[string]any, error) {
	p, err := itemParameters(base, item.Teams, item.Lanes, item.Tables)
	if err != nil {
		return nil, err
	}
	rec := activity.NewRecorder(nil)
	res, err := s.gen.Generate(ctx, p, rec)
	if err != nil {
		return nil, err
	}
	acts := rec.Activities()

	ev := analytics.Evaluate(res.Plan, acts, res.Start, res.End)
	check := scheduling.NewValidator(s.logger).Validate(acts, scheduling.Options{Transfer: p.Transfer})

	out, err := toMap(ev)
	if err != nil {
		return nil, err
	}
	out["activities"] = len(acts)
	out["errors"] = len(check.Errors)
	out["warnings"] = len(check.Warnings)

	if !check.Valid {
		return out, fmt.Errorf("timetable has %d violations, first: %s", len(check.Errors), check.Errors[0].Message)
	}
	return out, nil
}

// finishRun exports the report of a completed run and announces it.
func (s *Service) finishRun(ctx context.Context, runID string) {
	run, err := s.Get(ctx, runID)
	if err != nil || run.Status != models.SweepDone {
		return
	}
	if s.store != nil {
		if _, err := s.Export(ctx, runID, FormatCSV); err != nil {
			s.logger.Error().Err(err).Str("run_id", runID).Msg("export sweep report")
		}
	}
	s.publish(events.EventSweepRunDone, events.Payload{
		"run_id": run.ID,
		"total":  run.Total,
		"done":   run.Done,
		"failed": run.Failed,
	})
	s.logger.Info().
		Str("run_id", run.ID).
		Int("done", run.Done).
		Int("failed", run.Failed).
		Msg("sweep run complete")
}

func toMap(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
