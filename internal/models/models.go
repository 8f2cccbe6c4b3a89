/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package models

import "time"

// Plan is one generated event timetable.
type Plan struct {
	ID         string         `gorm:"type:uuid;primaryKey" json:"id"`
	Name       string         `gorm:"type:varchar(128)" json:"name,omitempty"`
	Teams      int            `json:"teams"`
	Lanes      int            `json:"lanes"`
	Tables     int            `json:"tables"`
	ParamsHash string         `gorm:"type:varchar(64);index" json:"params_hash"`
	Parameters map[string]any `gorm:"type:text;serializer:json" json:"parameters"`
	// Explore slot, zero when no integrated ceremony was scheduled.
	ExploreStartsAt *time.Time `json:"explore_starts_at,omitempty"`
	ExploreEndsAt   *time.Time `json:"explore_ends_at,omitempty"`
	StartsAt        time.Time  `json:"starts_at"`
	EndsAt          time.Time  `json:"ends_at"`
	CreatedAt       time.Time  `json:"created_at"`
}

// ActivityGroup collects activities written together, such as one judging block.
type ActivityGroup struct {
	ID     string `gorm:"type:uuid;primaryKey" json:"id"`
	PlanID string `gorm:"type:uuid;index" json:"plan_id"`
	Seq    int    `json:"seq"`
	Label  string `gorm:"type:varchar(128)" json:"label"`
}

// Activity is a single timetable entry.
type Activity struct {
	ID       string    `gorm:"type:uuid;primaryKey" json:"id"`
	PlanID   string    `gorm:"type:uuid;index:idx_activity_plan_seq,priority:1" json:"plan_id"`
	GroupID  string    `gorm:"type:uuid;index" json:"group_id"`
	Seq      int       `gorm:"index:idx_activity_plan_seq,priority:2" json:"seq"`
	Kind     string    `gorm:"type:varchar(32)" json:"kind"`
	Room     string    `gorm:"type:varchar(32)" json:"room"`
	StartsAt time.Time `gorm:"index" json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
	Block    int       `json:"block,omitempty"`
	Lane     int       `json:"lane,omitempty"`
	Round    int       `json:"round,omitempty"`
	Match    int       `gorm:"column:match_no" json:"match,omitempty"`
	Stage    int       `json:"stage,omitempty"`
	Table1   int       `json:"table1,omitempty"`
	Table2   int       `json:"table2,omitempty"`
	Team1    int       `json:"team1,omitempty"`
	Team2    int       `json:"team2,omitempty"`
	Label    string    `gorm:"type:varchar(128)" json:"label,omitempty"`
}

// MatchPlanRow stores one robot-game match of a plan.
type MatchPlanRow struct {
	ID     string `gorm:"type:uuid;primaryKey" json:"id"`
	PlanID string `gorm:"type:uuid;index" json:"plan_id"`
	Round  int    `json:"round"`
	Match  int    `gorm:"column:match_no" json:"match"`
	Table1 int    `json:"table1"`
	Table2 int    `json:"table2"`
	Team1  int    `json:"team1"`
	Team2  int    `json:"team2"`
}
