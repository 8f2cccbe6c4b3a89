/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/friendsincode/matchday/internal/params"
	"github.com/friendsincode/matchday/internal/sweep"
)

var (
	sweepName    string
	sweepFile    string
	sweepMin     int
	sweepMax     int
	sweepLanes   []int
	sweepTables  []int
	sweepFormat  string
	sweepOutPath string
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Evaluate many team, lane and table combinations",
	Long: `A sweep generates one timetable per supported combination in a team
range and records its evaluation. Runs are processed by "matchday serve"
or, offline, by "matchday sweep run".`,
}

var sweepCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Queue a sweep run",
	RunE: func(cmd *cobra.Command, args []string) error {
		base := params.Preset()
		if sweepFile != "" {
			f, err := params.LoadFile(sweepFile)
			if err != nil {
				return err
			}
			base = params.Overlay(base, f.Parameters)
		}

		svc, closeFn, err := openServices(cmd.Context())
		if err != nil {
			return err
		}
		defer closeFn()

		run, err := svc.sweeps.Create(cmd.Context(), sweep.CreateRequest{
			Name:       sweepName,
			MinTeams:   sweepMin,
			MaxTeams:   sweepMax,
			Lanes:      sweepLanes,
			Tables:     sweepTables,
			Parameters: base,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "sweep %s queued with %d items\n", run.ID, run.Total)
		return nil
	},
}

var sweepRunCmd = &cobra.Command{
	Use:   "run [run-id]",
	Short: "Process queued sweep items and exit",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeFn, err := openServices(cmd.Context())
		if err != nil {
			return err
		}
		defer closeFn()

		if err := svc.sweeps.RecoverStale(cmd.Context()); err != nil {
			return err
		}
		if len(args) == 1 {
			err = svc.sweeps.RunOne(cmd.Context(), args[0])
		} else {
			err = svc.sweeps.RunPending(cmd.Context())
		}
		if err != nil {
			return err
		}

		runs, err := svc.sweeps.List(cmd.Context(), 20)
		if err != nil {
			return err
		}
		for _, r := range runs {
			if len(args) == 1 && r.ID != args[0] {
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %-10s %d/%d done, %d failed\n", r.ID, r.Status, r.Done, r.Total, r.Failed)
		}
		return nil
	},
}

var sweepReportCmd = &cobra.Command{
	Use:   "report <run-id>",
	Short: "Print a sweep run's report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := sweep.ParseFormat(sweepFormat)
		if err != nil {
			return err
		}
		svc, closeFn, err := openServices(cmd.Context())
		if err != nil {
			return err
		}
		defer closeFn()

		data, err := svc.sweeps.Report(cmd.Context(), args[0], format)
		if err != nil {
			return err
		}
		w, err := stdoutOr(sweepOutPath)
		if err != nil {
			return err
		}
		if _, err := w.Write(data); err != nil {
			_ = w.Close()
			return err
		}
		return w.Close()
	},
}

var sweepCancelCmd = &cobra.Command{
	Use:   "cancel <run-id>",
	Short: "Cancel a sweep run's pending items",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeFn, err := openServices(cmd.Context())
		if err != nil {
			return err
		}
		defer closeFn()
		return svc.sweeps.Cancel(cmd.Context(), args[0])
	},
}

func init() {
	sweepCreateCmd.Flags().StringVar(&sweepName, "name", "", "Run name")
	sweepCreateCmd.Flags().StringVarP(&sweepFile, "file", "f", "", "Parameter file overriding the preset")
	sweepCreateCmd.Flags().IntVar(&sweepMin, "min", 4, "Smallest team count")
	sweepCreateCmd.Flags().IntVar(&sweepMax, "max", 60, "Largest team count")
	sweepCreateCmd.Flags().IntSliceVar(&sweepLanes, "lanes", nil, "Judging lane counts to include (default all)")
	sweepCreateCmd.Flags().IntSliceVar(&sweepTables, "tables", nil, "Table counts to include (default all)")
	sweepReportCmd.Flags().StringVar(&sweepFormat, "format", "csv", "Report format: csv or json")
	sweepReportCmd.Flags().StringVarP(&sweepOutPath, "out", "o", "", "Output file (default stdout)")

	sweepCmd.AddCommand(sweepCreateCmd, sweepRunCmd, sweepReportCmd, sweepCancelCmd)
	rootCmd.AddCommand(sweepCmd)
}
