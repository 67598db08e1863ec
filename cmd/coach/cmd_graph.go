package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yungbote/strandcoach/internal/app"
	"github.com/yungbote/strandcoach/internal/data/graph"
)

func runGraphLoad(cmd *cobra.Command, args []string) error {
	g, err := graph.LoadYAMLSeeds(args[0])
	if err != nil {
		return err
	}
	return withApp(cmd, func(ctx context.Context, a *app.App) error {
		if err := graph.ReplaceGraph(ctx, a.DB, a.Log, g); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "loaded %d concepts\n", g.Len())
		if !syncToNeo4j {
			return nil
		}
		if a.Clients.Neo4j == nil {
			return fmt.Errorf("--sync-neo4j needs NEO4J_URI")
		}
		if err := graph.SyncToNeo4j(ctx, a.Clients.Neo4j, a.Log, g); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "synced to neo4j")
		return nil
	})
}

func runGraphSync(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(ctx context.Context, a *app.App) error {
		if a.Clients.Neo4j == nil {
			return fmt.Errorf("sync-neo4j needs NEO4J_URI")
		}
		g, err := graph.NewSQLReader(a.DB, a.Log).Load(ctx)
		if err != nil {
			return err
		}
		if err := graph.SyncToNeo4j(ctx, a.Clients.Neo4j, a.Log, g); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "synced %d concepts to neo4j\n", g.Len())
		return nil
	})
}
