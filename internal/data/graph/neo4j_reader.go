package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/yungbote/strandcoach/internal/domain/learning"
	"github.com/yungbote/strandcoach/internal/modules/learning/frontier"
	"github.com/yungbote/strandcoach/internal/platform/logger"
	"github.com/yungbote/strandcoach/internal/platform/neo4jdb"
)

const (
	conceptLabel = "Concept"
	prereqRel    = "PREREQUISITE_OF"
)

// Neo4jReader loads the prerequisite graph mirrored into Neo4j by SyncToNeo4j.
type Neo4jReader struct {
	client *neo4jdb.Client
	log    *logger.Logger
}

func NewNeo4jReader(client *neo4jdb.Client, baseLog *logger.Logger) *Neo4jReader {
	return &Neo4jReader{client: client, log: baseLog.With("reader", "Neo4jGraphReader")}
}

func (r *Neo4jReader) Load(ctx context.Context) (*frontier.Graph, error) {
	if r.client == nil || r.client.Driver == nil {
		return nil, fmt.Errorf("neo4j graph reader: client not initialized")
	}

	session := r.client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: r.client.Database,
	})
	defer session.Close(ctx)

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		var (
			nodes []learning.ConceptNode
			edges []learning.PrerequisiteEdge
		)

		res, err := tx.Run(ctx, `
MATCH (c:`+conceptLabel+`)
RETURN c.id AS id, c.type AS type, c.level AS level, coalesce(c.label, '') AS label
ORDER BY id
`, nil)
		if err != nil {
			return nil, err
		}
		recs, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}
		for _, rec := range recs {
			n, err := nodeFromRecord(rec)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, n)
		}

		res, err = tx.Run(ctx, `
MATCH (a:`+conceptLabel+`)-[:`+prereqRel+`]->(b:`+conceptLabel+`)
RETURN a.id AS from, b.id AS to
ORDER BY to, from
`, nil)
		if err != nil {
			return nil, err
		}
		recs, err = res.Collect(ctx)
		if err != nil {
			return nil, err
		}
		for _, rec := range recs {
			from, _ := recordString(rec, "from")
			to, _ := recordString(rec, "to")
			edges = append(edges, learning.PrerequisiteEdge{PrerequisiteID: from, DependentID: to})
		}
		return [2]any{nodes, edges}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("neo4j graph read: %w", err)
	}

	pair := out.([2]any)
	nodes, _ := pair[0].([]learning.ConceptNode)
	edges, _ := pair[1].([]learning.PrerequisiteEdge)
	g, err := frontier.NewGraph(nodes, edges)
	if err != nil {
		r.log.Error("Refusing to load prerequisite graph", "error", err)
		return nil, err
	}
	return g, nil
}

func nodeFromRecord(rec *neo4j.Record) (learning.ConceptNode, error) {
	id, _ := recordString(rec, "id")
	rawType, _ := recordString(rec, "type")
	label, _ := recordString(rec, "label")
	typ, err := learning.ParseConceptType(rawType)
	if err != nil {
		return learning.ConceptNode{}, fmt.Errorf("concept %q: %w", id, err)
	}
	var level learning.Level
	if v, ok := rec.Get("level"); ok {
		if n, ok := v.(int64); ok {
			level = learning.Level(n)
		}
	}
	return learning.ConceptNode{ConceptID: id, Type: typ, Level: level, Label: label}, nil
}

func recordString(rec *neo4j.Record, key string) (string, bool) {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
