/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package plans

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/friendsincode/matchday/internal/cache"
	"github.com/friendsincode/matchday/internal/events"
	"github.com/friendsincode/matchday/internal/models"
	"github.com/friendsincode/matchday/internal/telemetry"
)

// Get loads a plan by id.
func (s *Service) Get(ctx context.Context, id string) (*models.Plan, error) {
	var plan models.Plan
	err := s.db.WithContext(ctx).First(&plan, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load plan: %w", err)
	}
	return &plan, nil
}

// List returns the most recent plans, newest first.
func (s *Service) List(ctx context.Context, limit int) ([]models.Plan, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	var out []models.Plan
	if err := s.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	return out, nil
}

// Activities returns the plan's activities in write order.
func (s *Service) Activities(ctx context.Context, id string) ([]models.Activity, error) {
	if s.cache != nil {
		if cached, ok := s.cache.GetActivities(ctx, id); ok {
			telemetry.PlanCacheLookups.WithLabelValues("hit").Inc()
			return fromCached(id, cached), nil
		}
		telemetry.PlanCacheLookups.WithLabelValues("miss").Inc()
	}

	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	var acts []models.Activity
	if err := s.db.WithContext(ctx).Where("plan_id = ?", id).Order("seq").Find(&acts).Error; err != nil {
		return nil, fmt.Errorf("load activities: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetActivities(ctx, id, toCached(acts)); err != nil {
			s.logger.Debug().Err(err).Str("plan_id", id).Msg("cache activities")
		}
	}
	return acts, nil
}

// Groups returns the plan's activity groups in order.
func (s *Service) Groups(ctx context.Context, id string) ([]models.ActivityGroup, error) {
	var groups []models.ActivityGroup
	if err := s.db.WithContext(ctx).Where("plan_id = ?", id).Order("seq").Find(&groups).Error; err != nil {
		return nil, fmt.Errorf("load activity groups: %w", err)
	}
	return groups, nil
}

// MatchPlan returns the robot-game match plan ordered by round and match.
func (s *Service) MatchPlan(ctx context.Context, id string) ([]models.MatchPlanRow, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	var rows []models.MatchPlanRow
	if err := s.db.WithContext(ctx).Where("plan_id = ?", id).Order("round, match_no").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load match plan: %w", err)
	}
	return rows, nil
}

// Delete removes a plan and everything generated with it.
func (s *Service) Delete(ctx context.Context, id string) error {
	plan, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range []any{&models.Activity{}, &models.ActivityGroup{}, &models.MatchPlanRow{}} {
			if err := tx.Where("plan_id = ?", id).Delete(m).Error; err != nil {
				return fmt.Errorf("delete plan rows: %w", err)
			}
		}
		return tx.Delete(&models.Plan{}, "id = ?", id).Error
	})
	if err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.InvalidatePlan(ctx, id, plan.ParamsHash); err != nil {
			s.logger.Debug().Err(err).Str("plan_id", id).Msg("invalidate cached plan")
		}
	}
	if s.bus != nil {
		s.bus.Publish(events.EventPlanDeleted, events.Payload{"plan_id": id, "params_hash": plan.ParamsHash})
	}
	return nil
}

func toCached(acts []models.Activity) []cache.CachedActivity {
	out := make([]cache.CachedActivity, len(acts))
	for i, a := range acts {
		out[i] = cache.CachedActivity{
			ID: a.ID, GroupID: a.GroupID, Seq: a.Seq, Kind: a.Kind, Room: a.Room,
			StartsAt: a.StartsAt, EndsAt: a.EndsAt, Block: a.Block, Lane: a.Lane,
			Round: a.Round, Match: a.Match, Stage: a.Stage,
			Table1: a.Table1, Table2: a.Table2, Team1: a.Team1, Team2: a.Team2, Label: a.Label,
		}
	}
	return out
}

func fromCached(planID string, cached []cache.CachedActivity) []models.Activity {
	out := make([]models.Activity, len(cached))
	for i, a := range cached {
		out[i] = models.Activity{
			ID: a.ID, PlanID: planID, GroupID: a.GroupID, Seq: a.Seq, Kind: a.Kind, Room: a.Room,
			StartsAt: a.StartsAt, EndsAt: a.EndsAt, Block: a.Block, Lane: a.Lane,
			Round: a.Round, Match: a.Match, Stage: a.Stage,
			Table1: a.Table1, Table2: a.Table2, Team1: a.Team1, Team2: a.Team2, Label: a.Label,
		}
	}
	return out
}
