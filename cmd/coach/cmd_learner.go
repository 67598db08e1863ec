package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/yungbote/strandcoach/internal/app"
	"github.com/yungbote/strandcoach/internal/platform/dbctx"
	"github.com/yungbote/strandcoach/internal/services"
)

func runBootstrap(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(ctx context.Context, a *app.App) error {
		n, err := a.Services.Coach.Bootstrap(dbctx.Context{Ctx: ctx})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created %d cards\n", n)
		return nil
	})
}

func runCheck(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(ctx context.Context, a *app.App) error {
		report, err := a.Services.Coach.CheckConsistency(dbctx.Context{Ctx: ctx})
		if err != nil {
			return err
		}
		if err := printJSON(cmd.OutOrStdout(), report); err != nil {
			return err
		}
		if !report.OK() {
			return fmt.Errorf("%d consistency violations", len(report.Violations))
		}
		return nil
	})
}

func runPromote(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(ctx context.Context, a *app.App) error {
		report, err := a.Services.Coach.PromoteSecureLevels(dbctx.Context{Ctx: ctx}, learnerID)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), report)
	})
}

func runPlan(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(ctx context.Context, a *app.App) error {
		plan, err := a.Services.Coach.Preview(dbctx.Context{Ctx: ctx}, services.PlanRequest{
			LearnerID: learnerID,
			Duration:  time.Duration(minutes * float64(time.Minute)),
		})
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), plan)
	})
}
