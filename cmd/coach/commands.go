package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yungbote/strandcoach/internal/app"
)

var (
	learnerID   string
	minutes     float64
	syncToNeo4j bool

	rootCmd = &cobra.Command{
		Use:           "coach",
		Short:         "Language-learning coach: scheduling, strand balance and session planning",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API until interrupted",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}

	// --- Graph ---
	graphCmd = &cobra.Command{
		Use:   "graph",
		Short: "Manage the concept prerequisite graph",
	}
	graphLoadCmd = &cobra.Command{
		Use:   "load [seed dir]",
		Short: "Replace the stored graph with the YAML seeds in a directory",
		Args:  cobra.ExactArgs(1),
		RunE:  runGraphLoad, // cmd_graph.go
	}
	graphSyncCmd = &cobra.Command{
		Use:   "sync-neo4j",
		Short: "Mirror the stored graph into Neo4j",
		Args:  cobra.NoArgs,
		RunE:  runGraphSync, // cmd_graph.go
	}

	// --- Maintenance ---
	bootstrapCmd = &cobra.Command{
		Use:   "bootstrap",
		Short: "Create a new card for every concept that has none",
		Args:  cobra.NoArgs,
		RunE:  runBootstrap, // cmd_learner.go
	}
	checkCmd = &cobra.Command{
		Use:   "check",
		Short: "Report card and graph consistency violations",
		Args:  cobra.NoArgs,
		RunE:  runCheck, // cmd_learner.go
	}

	// --- Learner ---
	promoteCmd = &cobra.Command{
		Use:   "promote",
		Short: "Advance secure levels and mark fluency-eligible cards",
		Args:  cobra.NoArgs,
		RunE:  runPromote, // cmd_learner.go
	}
	planCmd = &cobra.Command{
		Use:   "plan",
		Short: "Preview the next session plan without starting it",
		Args:  cobra.NoArgs,
		RunE:  runPlan, // cmd_learner.go
	}
)

func init() {
	graphLoadCmd.Flags().BoolVar(&syncToNeo4j, "sync-neo4j", false, "also mirror the loaded graph into Neo4j")
	graphCmd.AddCommand(graphLoadCmd, graphSyncCmd)

	for _, c := range []*cobra.Command{promoteCmd, planCmd} {
		c.Flags().StringVar(&learnerID, "learner", "", "learner id")
		_ = c.MarkFlagRequired("learner")
	}
	planCmd.Flags().Float64Var(&minutes, "minutes", 20, "session length in minutes")

	rootCmd.AddCommand(serveCmd, graphCmd, bootstrapCmd, checkCmd, promoteCmd, planCmd)
}

// withApp wires the app for one command and tears it down afterwards.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := app.New(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	cmd.SetContext(ctx)
	return withApp(cmd, func(ctx context.Context, a *app.App) error {
		return a.Run(ctx)
	})
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
