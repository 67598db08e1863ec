package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/yungbote/strandcoach/internal/modules/learning/frontier"
	"github.com/yungbote/strandcoach/internal/platform/logger"
	"github.com/yungbote/strandcoach/internal/platform/neo4jdb"
)

// SyncToNeo4j mirrors g into Neo4j. Concepts no longer in g are removed and
// prerequisite relationships are rebuilt from scratch.
func SyncToNeo4j(ctx context.Context, client *neo4jdb.Client, log *logger.Logger, g *frontier.Graph) error {
	if client == nil || client.Driver == nil {
		return fmt.Errorf("neo4j concept graph sync: client not initialized")
	}
	if g == nil {
		return fmt.Errorf("neo4j concept graph sync: missing graph")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)

	ids := make([]string, 0, g.Len())
	nodes := make([]map[string]any, 0, g.Len())
	for _, n := range g.Nodes() {
		ids = append(ids, n.ConceptID)
		nodes = append(nodes, map[string]any{
			"id":         n.ConceptID,
			"type":       string(n.Type),
			"level":      int64(n.Level),
			"cefr_level": n.Level.String(),
			"label":      n.Label,
			"synced_at":  now,
		})
	}
	rels := make([]map[string]any, 0, g.EdgeCount())
	for _, e := range g.Edges() {
		rels = append(rels, map[string]any{
			"from_id": e.PrerequisiteID,
			"to_id":   e.DependentID,
		})
	}

	session := client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: client.Database,
	})
	defer session.Close(ctx)

	// Best effort; restricted users may not be allowed to create constraints.
	if res, err := session.Run(ctx, `CREATE CONSTRAINT concept_id_unique IF NOT EXISTS FOR (c:`+conceptLabel+`) REQUIRE c.id IS UNIQUE`, nil); err != nil {
		if log != nil {
			log.Warn("neo4j schema init failed (continuing)", "error", err)
		}
	} else {
		_, _ = res.Consume(ctx)
	}

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		steps := []struct {
			query  string
			params map[string]any
		}{
			{`MATCH (c:` + conceptLabel + `) WHERE NOT c.id IN $ids DETACH DELETE c`, map[string]any{"ids": ids}},
			{`MATCH (:` + conceptLabel + `)-[e:` + prereqRel + `]->(:` + conceptLabel + `) DELETE e`, nil},
			{`
UNWIND $nodes AS n
MERGE (c:` + conceptLabel + ` {id: n.id})
SET c += n
`, map[string]any{"nodes": nodes}},
			{`
UNWIND $rels AS r
MATCH (a:` + conceptLabel + ` {id: r.from_id})
MATCH (b:` + conceptLabel + ` {id: r.to_id})
MERGE (a)-[:` + prereqRel + `]->(b)
`, map[string]any{"rels": rels}},
		}
		for _, s := range steps {
			res, err := tx.Run(ctx, s.query, s.params)
			if err != nil {
				return nil, err
			}
			if _, err := res.Consume(ctx); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("neo4j concept graph sync: %w", err)
	}
	if log != nil {
		log.Info("Synced prerequisite graph to neo4j", "concepts", len(nodes), "edges", len(rels))
	}
	return nil
}
