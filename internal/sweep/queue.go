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

	"gorm.io/gorm"

	"github.com/friendsincode/matchday/internal/models"
	"github.com/friendsincode/matchday/internal/telemetry"
)

// claimNext takes the lowest pending item of a run. It returns nil when the
// run is empty or another worker already holds it.
func (s *Service) claimNext(ctx context.Context, runID string) (*models.SweepItem, error) {
	var item models.SweepItem
	err := s.db.WithContext(ctx).
		Where("run_id = ? AND status = ?", runID, models.SweepPending).
		Order("seq ASC").
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	claimed := false
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.SweepRun{}).
			Where("id = ? AND in_flight = ? AND status IN ?", runID, "", []models.SweepStatus{models.SweepPending, models.SweepRunning}).
			Updates(map[string]any{"in_flight": item.ID, "status": models.SweepRunning, "updated_at": time.Now()})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		res = tx.Model(&models.SweepItem{}).
			Where("id = ? AND status = ?", item.ID, models.SweepPending).
			Updates(map[string]any{"status": models.SweepRunning, "updated_at": time.Now()})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Cancelled between the read and the claim; undo the run lock.
			return tx.Model(&models.SweepRun{}).Where("id = ?", runID).Update("in_flight", "").Error
		}
		claimed = true
		return nil
	})
	if err != nil || !claimed {
		return nil, err
	}
	item.Status = models.SweepRunning
	return &item, nil
}

// complete records an item's outcome, releases the run and closes the run
// when nothing is left.
func (s *Service) complete(ctx context.Context, item *models.SweepItem, evaluation map[string]any, itemErr error) (finished bool, err error) {
	// Map updates bypass the column serializer.
	encoded, err := json.Marshal(evaluation)
	if err != nil {
		return false, fmt.Errorf("encode evaluation: %w", err)
	}

	status := models.SweepDone
	counter := "done"
	message := ""
	if itemErr != nil {
		status = models.SweepFailed
		counter = "failed"
		message = itemErr.Error()
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.SweepItem{}).
			Where("id = ?", item.ID).
			Updates(map[string]any{
				"status":     status,
				"error":      message,
				"evaluation": string(encoded),
				"updated_at": time.Now(),
			}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.SweepRun{}).
			Where("id = ?", item.RunID).
			Updates(map[string]any{
				counter:      gorm.Expr(counter + " + 1"),
				"in_flight":  "",
				"updated_at": time.Now(),
			}).Error; err != nil {
			return err
		}

		var pending int64
		if err := tx.Model(&models.SweepItem{}).
			Where("run_id = ? AND status IN ?", item.RunID, []models.SweepStatus{models.SweepPending, models.SweepRunning}).
			Count(&pending).Error; err != nil {
			return err
		}
		if pending > 0 {
			return nil
		}
		finished = true
		return tx.Model(&models.SweepRun{}).
			Where("id = ? AND status = ?", item.RunID, models.SweepRunning).
			Update("status", models.SweepDone).Error
	})
	if err != nil {
		return false, err
	}
	telemetry.SweepItemsProcessed.WithLabelValues(string(status)).Inc()
	return finished, nil
}

// release hands an abandoned item back to the queue.
func (s *Service) release(item *models.SweepItem) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.SweepItem{}).
			Where("id = ? AND status = ?", item.ID, models.SweepRunning).
			Update("status", models.SweepPending).Error; err != nil {
			return err
		}
		return tx.Model(&models.SweepRun{}).
			Where("id = ? AND in_flight = ?", item.RunID, item.ID).
			Update("in_flight", "").Error
	})
	if err != nil {
		s.logger.Error().Err(err).Str("item_id", item.ID).Msg("release sweep item")
	}
}

// refreshQueueDepth updates the pending-items gauge.
func (s *Service) refreshQueueDepth(ctx context.Context) {
	var pending int64
	if err := s.db.WithContext(ctx).Model(&models.SweepItem{}).Where("status = ?", models.SweepPending).Count(&pending).Error; err != nil {
		return
	}
	telemetry.SweepQueueDepth.Set(float64(pending))
}
