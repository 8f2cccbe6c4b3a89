/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/friendsincode/matchday/internal/activity"
	"github.com/friendsincode/matchday/internal/analytics"
	"github.com/friendsincode/matchday/internal/matchplan"
	"github.com/friendsincode/matchday/internal/params"
	"github.com/friendsincode/matchday/internal/plans"
	"github.com/friendsincode/matchday/internal/scheduler"
	"github.com/friendsincode/matchday/internal/scheduling"
)

var (
	generateFile     string
	generateName     string
	generateSave     bool
	generateJSON     bool
	generateIdentity bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a timetable from a parameter file",
	Long: `Generate a full competition day from a YAML parameter file.

Without --save the timetable is printed and nothing is stored.

Examples:
  # Print a timetable
  matchday generate -f regional.yaml

  # Store it and print the plan id
  matchday generate -f regional.yaml --save --name "Regional Hamburg"
`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&generateFile, "file", "f", "", "Parameter file (YAML or JSON)")
	generateCmd.Flags().StringVar(&generateName, "name", "", "Plan name when saving")
	generateCmd.Flags().BoolVar(&generateSave, "save", false, "Store the plan in the database")
	generateCmd.Flags().BoolVar(&generateJSON, "json", false, "Print activities as JSON")
	generateCmd.Flags().BoolVar(&generateIdentity, "no-optimize", false, "Keep the canonical rotation without the opponent diversity pass")
	_ = generateCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	f, err := params.LoadFile(generateFile)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	if generateSave {
		svc, closeFn, err := openServices(ctx)
		if err != nil {
			return err
		}
		defer closeFn()
		plan, err := svc.plans.Generate(ctx, plans.Request{Name: generateName, Parameters: f.Parameters, Blocks: f.Blocks})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "plan %s: %d teams, %d lanes, %d tables, %s - %s\n",
			plan.ID, plan.Teams, plan.Lanes, plan.Tables,
			plan.StartsAt.Format("15:04"), plan.EndsAt.Format("15:04"))
		return nil
	}

	p, err := f.Load(nil)
	if err != nil {
		return err
	}
	blocks, err := activity.BlocksFromSpecs(f.Blocks)
	if err != nil {
		return err
	}

	var opt matchplan.RotationOptimizer = matchplan.Diversity{}
	if generateIdentity {
		opt = matchplan.Identity{}
	}
	rec := activity.NewRecorder(blocks)
	res, err := scheduler.New(opt, zerolog.Nop()).Generate(ctx, p, rec)
	if err != nil {
		return err
	}
	acts := rec.Activities()
	eval := analytics.Evaluate(res.Plan, acts, res.Start, res.End)
	check := scheduling.NewValidator(zerolog.Nop()).Validate(acts, scheduling.Options{Transfer: p.Transfer})

	out := cmd.OutOrStdout()
	if generateJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"explore":    res.Explore,
			"evaluation": eval,
			"validation": check,
			"activities": jsonActivities(acts),
		})
	}
	printTimetable(out, acts)
	fmt.Fprintf(out, "\n%d activities, %s - %s, %d min\n", len(acts), res.Start.Format("15:04"), res.End.Format("15:04"), eval.DurationMinutes)
	fmt.Fprintf(out, "opponents per team %d-%d (avg %.2f), tables per team %d-%d, repeated pairings %d\n",
		eval.MinOpponents, eval.MaxOpponents, eval.AvgOpponents, eval.MinTables, eval.MaxTables, eval.RepeatedOpponents)
	if res.Explore.Ready() {
		fmt.Fprintf(out, "explore ceremony %s - %s\n", res.Explore.Start.Format("15:04"), res.Explore.End.Format("15:04"))
	}
	for _, v := range check.Errors {
		fmt.Fprintf(out, "error: %s\n", v.Message)
	}
	for _, v := range check.Warnings {
		fmt.Fprintf(out, "warning: %s\n", v.Message)
	}
	if !check.Valid {
		return fmt.Errorf("timetable has %d rule violations", len(check.Errors))
	}
	return nil
}

type jsonActivity struct {
	Kind   string `json:"kind"`
	Room   string `json:"room"`
	Start  string `json:"start"`
	End    string `json:"end"`
	Block  int    `json:"block,omitempty"`
	Lane   int    `json:"lane,omitempty"`
	Round  int    `json:"round,omitempty"`
	Match  int    `json:"match,omitempty"`
	Stage  int    `json:"stage,omitempty"`
	Table1 int    `json:"table1,omitempty"`
	Table2 int    `json:"table2,omitempty"`
	Team1  int    `json:"team1,omitempty"`
	Team2  int    `json:"team2,omitempty"`
	Label  string `json:"label,omitempty"`
}

func jsonActivities(acts []activity.Activity) []jsonActivity {
	out := make([]jsonActivity, 0, len(acts))
	for _, a := range acts {
		out = append(out, jsonActivity{
			Kind: a.Kind.String(), Room: a.Room().String(),
			Start: a.Start.Format("2006-01-02T15:04"), End: a.End.Format("2006-01-02T15:04"),
			Block: a.Block, Lane: a.Lane, Round: a.Round, Match: a.Match, Stage: a.Stage,
			Table1: a.Table1, Table2: a.Table2, Team1: a.Team1, Team2: a.Team2, Label: a.Label,
		})
	}
	return out
}

func printTimetable(w io.Writer, acts []activity.Activity) {
	for _, a := range acts {
		var detail []string
		if a.Block > 0 {
			detail = append(detail, fmt.Sprintf("block %d", a.Block))
		}
		if a.Lane > 0 {
			detail = append(detail, fmt.Sprintf("lane %d", a.Lane))
		}
		if a.Round > 0 || a.Kind == activity.KindMatch {
			detail = append(detail, fmt.Sprintf("round %d match %d", a.Round, a.Match))
		}
		if a.Stage > 0 {
			detail = append(detail, fmt.Sprintf("stage %d", a.Stage))
		}
		if a.Table1 > 0 || a.Table2 > 0 {
			detail = append(detail, fmt.Sprintf("tables %d/%d", a.Table1, a.Table2))
		}
		if len(a.Teams()) > 0 {
			detail = append(detail, fmt.Sprintf("teams %d/%d", a.Team1, a.Team2))
		}
		if a.Label != "" {
			detail = append(detail, a.Label)
		}
		fmt.Fprintf(w, "%s-%s  %-18s %s\n", a.Start.Format("15:04"), a.End.Format("15:04"), a.Kind, strings.Join(detail, ", "))
	}
}

var supportedMin, supportedMax int

var supportedCmd = &cobra.Command{
	Use:   "supported",
	Short: "List supported team, lane and table combinations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if supportedMin > supportedMax {
			return fmt.Errorf("%w: min %d exceeds max %d", params.ErrInvalidParameter, supportedMin, supportedMax)
		}
		for _, tr := range matchplan.Supported(supportedMin, supportedMax) {
			fmt.Fprintf(cmd.OutOrStdout(), "%3d teams  %d lanes  %d tables\n", tr.Teams, tr.Lanes, tr.Tables)
		}
		return nil
	},
}

func init() {
	supportedCmd.Flags().IntVar(&supportedMin, "min", 4, "Smallest team count")
	supportedCmd.Flags().IntVar(&supportedMax, "max", 60, "Largest team count")
	rootCmd.AddCommand(supportedCmd)
}

// stdoutOr opens path for writing, or returns stdout for "" and "-".
func stdoutOr(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
