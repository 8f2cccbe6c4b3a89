/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	plansLimit  int
	icalTeam    int
	icalOutPath string
)

var plansCmd = &cobra.Command{
	Use:   "plans",
	Short: "Inspect stored plans",
}

var plansListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored plans, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeFn, err := openServices(cmd.Context())
		if err != nil {
			return err
		}
		defer closeFn()

		list, err := svc.plans.List(cmd.Context(), plansLimit)
		if err != nil {
			return err
		}
		for _, p := range list {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %-24s %3d/%d/%d  %s\n",
				p.ID, p.Name, p.Teams, p.Lanes, p.Tables, p.StartsAt.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

var plansShowCmd = &cobra.Command{
	Use:   "show <plan-id>",
	Short: "Print a stored plan's match plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeFn, err := openServices(cmd.Context())
		if err != nil {
			return err
		}
		defer closeFn()

		plan, err := svc.plans.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		rows, err := svc.plans.MatchPlan(cmd.Context(), plan.ID)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s (%d teams, %d lanes, %d tables)\n", plan.Name, plan.Teams, plan.Lanes, plan.Tables)
		for _, r := range rows {
			fmt.Fprintf(out, "round %d match %2d  table %d: team %2d  table %d: team %2d\n",
				r.Round, r.Match, r.Table1, r.Team1, r.Table2, r.Team2)
		}
		return nil
	},
}

var plansDeleteCmd = &cobra.Command{
	Use:   "delete <plan-id>",
	Short: "Delete a stored plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeFn, err := openServices(cmd.Context())
		if err != nil {
			return err
		}
		defer closeFn()
		return svc.plans.Delete(cmd.Context(), args[0])
	},
}

var plansICalCmd = &cobra.Command{
	Use:   "ical <plan-id>",
	Short: "Export a stored plan as an iCal calendar",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeFn, err := openServices(cmd.Context())
		if err != nil {
			return err
		}
		defer closeFn()

		res, err := svc.export.ExportToICal(cmd.Context(), args[0], icalTeam)
		if err != nil {
			return err
		}
		w, err := stdoutOr(icalOutPath)
		if err != nil {
			return err
		}
		if _, err := w.Write(res.Data); err != nil {
			_ = w.Close()
			return err
		}
		return w.Close()
	},
}

func init() {
	plansListCmd.Flags().IntVar(&plansLimit, "limit", 50, "Maximum number of plans")
	plansICalCmd.Flags().IntVar(&icalTeam, "team", 0, "Only this team's calendar (0 = whole event)")
	plansICalCmd.Flags().StringVarP(&icalOutPath, "out", "o", "", "Output file (default stdout)")
	plansCmd.AddCommand(plansListCmd, plansShowCmd, plansDeleteCmd, plansICalCmd)
	rootCmd.AddCommand(plansCmd)
}
