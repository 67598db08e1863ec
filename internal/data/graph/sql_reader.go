package graph

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/strandcoach/internal/data/repos"
	"github.com/yungbote/strandcoach/internal/domain/learning"
	"github.com/yungbote/strandcoach/internal/modules/learning/frontier"
	"github.com/yungbote/strandcoach/internal/platform/dbctx"
	"github.com/yungbote/strandcoach/internal/platform/logger"
)

// SQLReader loads the prerequisite graph from the concepts and concept_edges
// tables.
type SQLReader struct {
	concepts repos.ConceptRepo
	edges    repos.ConceptEdgeRepo
	log      *logger.Logger
}

func NewSQLReader(db *gorm.DB, baseLog *logger.Logger) *SQLReader {
	return &SQLReader{
		concepts: repos.NewConceptRepo(db, baseLog),
		edges:    repos.NewConceptEdgeRepo(db, baseLog),
		log:      baseLog.With("reader", "SQLGraphReader"),
	}
}

func (r *SQLReader) Load(ctx context.Context) (*frontier.Graph, error) {
	dbc := dbctx.Context{Ctx: ctx}
	nodes, err := r.concepts.ListAll(dbc)
	if err != nil {
		return nil, fmt.Errorf("load concepts: %w", err)
	}
	edges, err := r.edges.ListAll(dbc)
	if err != nil {
		return nil, fmt.Errorf("load concept edges: %w", err)
	}

	nv := make([]learning.ConceptNode, 0, len(nodes))
	for _, n := range nodes {
		nv = append(nv, *n)
	}
	ev := make([]learning.PrerequisiteEdge, 0, len(edges))
	for _, e := range edges {
		ev = append(ev, *e)
	}

	g, err := frontier.NewGraph(nv, ev)
	if err != nil {
		r.log.Error("Refusing to load prerequisite graph", "error", err)
		return nil, err
	}
	return g, nil
}
