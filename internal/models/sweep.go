/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package models

import "time"

// SweepStatus tracks sweep run and item progress.
type SweepStatus string

const (
	SweepPending   SweepStatus = "pending"
	SweepRunning   SweepStatus = "running"
	SweepDone      SweepStatus = "done"
	SweepFailed    SweepStatus = "failed"
	SweepCancelled SweepStatus = "cancelled"
)

// SweepRun is one batch evaluation over a range of team, lane and table
// counts. InFlight holds the id of the item being evaluated, empty when idle.
type SweepRun struct {
	ID             string         `gorm:"type:uuid;primaryKey" json:"id"`
	Name           string         `gorm:"type:varchar(128)" json:"name"`
	Status         SweepStatus    `gorm:"type:varchar(16);index" json:"status"`
	Total          int            `json:"total"`
	Done           int            `json:"done"`
	Failed         int            `json:"failed"`
	BaseParameters map[string]any `gorm:"type:text;serializer:json" json:"base_parameters"`
	ReportKey      string         `gorm:"type:varchar(255)" json:"report_key,omitempty"`
	InFlight       string         `gorm:"type:varchar(36)" json:"in_flight,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// SweepItem is one (teams, lanes, tables) combination of a run.
type SweepItem struct {
	ID         string         `gorm:"type:uuid;primaryKey" json:"id"`
	RunID      string         `gorm:"type:uuid;uniqueIndex:idx_sweep_item_seq,priority:1" json:"run_id"`
	Seq        int            `gorm:"uniqueIndex:idx_sweep_item_seq,priority:2" json:"seq"`
	Teams      int            `json:"teams"`
	Lanes      int            `json:"lanes"`
	Tables     int            `json:"tables"`
	Status     SweepStatus    `gorm:"type:varchar(16);index" json:"status"`
	Error      string         `gorm:"type:text" json:"error,omitempty"`
	Evaluation map[string]any `gorm:"type:text;serializer:json" json:"evaluation,omitempty"`
	UpdatedAt  time.Time      `json:"updated_at"`
}
