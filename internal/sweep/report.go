/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package sweep

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/friendsincode/matchday/internal/events"
	"github.com/friendsincode/matchday/internal/models"
)

// Format selects the report encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat validates a report format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatCSV, FormatJSON:
		return Format(s), nil
	case "":
		return FormatCSV, nil
	}
	return "", fmt.Errorf("unknown report format %q", s)
}

// evaluationColumns fixes the CSV column order of evaluation values.
var evaluationColumns = []string{
	"duration_minutes",
	"activities",
	"min_opponents",
	"max_opponents",
	"avg_opponents",
	"min_tables",
	"max_tables",
	"repeated_opponents",
	"judging_idle_minutes",
	"min_team_gap_minutes",
	"errors",
	"warnings",
}

// Report renders the items of a run.
func (s *Service) Report(ctx context.Context, runID string, format Format) ([]byte, error) {
	items, err := s.Items(ctx, runID)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatJSON:
		return json.MarshalIndent(items, "", "  ")
	case FormatCSV:
		return encodeCSV(items)
	}
	return nil, fmt.Errorf("unknown report format %q", format)
}

// Export writes the report to the object store and records its key on the run.
func (s *Service) Export(ctx context.Context, runID string, format Format) (string, error) {
	if s.store == nil {
		return "", fmt.Errorf("no report storage configured")
	}
	data, err := s.Report(ctx, runID, format)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("sweeps/%s/report.%s", runID, format)
	if err := s.store.Put(ctx, key, data); err != nil {
		return "", err
	}
	if err := s.db.WithContext(ctx).Model(&models.SweepRun{}).Where("id = ?", runID).Update("report_key", key).Error; err != nil {
		return "", fmt.Errorf("record report key: %w", err)
	}
	s.publish(events.EventSweepReportOut, events.Payload{
		"run_id":   runID,
		"key":      key,
		"location": s.store.Location(key),
	})
	return key, nil
}

func encodeCSV(items []models.SweepItem) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := append([]string{"seq", "teams", "lanes", "tables", "status", "error"}, evaluationColumns...)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, it := range items {
		row := []string{
			strconv.Itoa(it.Seq),
			strconv.Itoa(it.Teams),
			strconv.Itoa(it.Lanes),
			strconv.Itoa(it.Tables),
			string(it.Status),
			it.Error,
		}
		for _, col := range evaluationColumns {
			v, ok := it.Evaluation[col]
			if !ok || v == nil {
				row = append(row, "")
				continue
			}
			row = append(row, fmt.Sprint(v))
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
