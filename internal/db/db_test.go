/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package db

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/friendsincode/matchday/internal/config"
	"github.com/friendsincode/matchday/internal/models"
)

func TestConnectAndMigrateSQLite(t *testing.T) {
	cfg := &config.Config{DBBackend: config.DatabaseSQLite, DBDSN: ":memory:", Environment: "test"}
	database, err := Connect(cfg)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer Close(database)

	if err := Migrate(database); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	// Second run must be a no-op.
	if err := Migrate(database); err != nil {
		t.Fatalf("migrate again: %v", err)
	}

	now := time.Date(2026, 5, 9, 9, 0, 0, 0, time.UTC)
	plan := models.Plan{
		ID:         uuid.NewString(),
		Teams:      12,
		Lanes:      3,
		Tables:     2,
		Parameters: map[string]any{"c_teams": 12},
		StartsAt:   now,
		EndsAt:     now.Add(8 * time.Hour),
	}
	if err := database.Create(&plan).Error; err != nil {
		t.Fatalf("create plan: %v", err)
	}

	var loaded models.Plan
	if err := database.First(&loaded, "id = ?", plan.ID).Error; err != nil {
		t.Fatalf("load plan: %v", err)
	}
	if loaded.Parameters["c_teams"] != float64(12) {
		t.Fatalf("parameters not round-tripped: %v", loaded.Parameters)
	}

	UpdateConnectionMetrics(database)
}

func TestConnectRejectsUnknownBackend(t *testing.T) {
	if _, err := Connect(&config.Config{DBBackend: "oracle", DBDSN: "x"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
