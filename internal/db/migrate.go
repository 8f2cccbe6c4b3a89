/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package db

import (
	"gorm.io/gorm"

	"github.com/friendsincode/matchday/internal/models"
)

// Migrate applies database schema migrations using GORM auto-migrate.
func Migrate(database *gorm.DB) error {
	if err := database.AutoMigrate(
		// Generated timetables
		&models.Plan{},
		&models.ActivityGroup{},
		&models.Activity{},
		&models.MatchPlanRow{},

		// Batch evaluation
		&models.SweepRun{},
		&models.SweepItem{},
	); err != nil {
		return err
	}

	return applyPostgresActivityGuard(database)
}

// applyPostgresActivityGuard rejects activities that end before they start.
func applyPostgresActivityGuard(database *gorm.DB) error {
	if database.Dialector.Name() != "postgres" {
		return nil
	}

	stmt := `
DO $$
BEGIN
  IF NOT EXISTS (
    SELECT 1 FROM pg_constraint WHERE conname = 'chk_activities_time_order'
  ) THEN
    ALTER TABLE activities
      ADD CONSTRAINT chk_activities_time_order CHECK (ends_at >= starts_at);
  END IF;
END;
$$;
`
	return database.Exec(stmt).Error
}
