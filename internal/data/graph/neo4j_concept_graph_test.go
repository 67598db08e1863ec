package graph

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/yungbote/strandcoach/internal/data/repos/testutil"
	"github.com/yungbote/strandcoach/internal/domain/learning"
	"github.com/yungbote/strandcoach/internal/modules/learning/frontier"
	"github.com/yungbote/strandcoach/internal/platform/neo4jdb"
)

func TestNeo4jSyncAndRead(t *testing.T) {
	uri := os.Getenv("TEST_NEO4J_URI")
	if uri == "" {
		t.Skip("set TEST_NEO4J_URI to run neo4j integration tests")
	}
	log := testutil.Logger(t)
	client, err := neo4jdb.New(neo4jdb.Config{
		URI:      uri,
		User:     os.Getenv("TEST_NEO4J_USER"),
		Password: os.Getenv("TEST_NEO4J_PASSWORD"),
		Database: os.Getenv("TEST_NEO4J_DATABASE"),
		Timeout:  5 * time.Second,
	}, log)
	if err != nil {
		t.Fatalf("neo4jdb.New: %v", err)
	}
	ctx := context.Background()
	t.Cleanup(func() { _ = client.Close(ctx) })

	g, err := frontier.NewGraph(
		[]learning.ConceptNode{
			{ConceptID: "lex.a", Type: learning.ConceptLexeme, Level: learning.LevelA1, Label: "a"},
			{ConceptID: "cando.b", Type: learning.ConceptCanDo, Level: learning.LevelA2, Label: "b"},
		},
		[]learning.PrerequisiteEdge{{PrerequisiteID: "lex.a", DependentID: "cando.b"}},
	)
	if err != nil {
		t.Fatalf("NewGraph: %v", err)
	}
	if err := SyncToNeo4j(ctx, client, log, g); err != nil {
		t.Fatalf("SyncToNeo4j: %v", err)
	}

	got, err := NewNeo4jReader(client, log).Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(g.Edges(), got.Edges()); diff != "" {
		t.Fatalf("edges mismatch (-want +got):\n%s", diff)
	}
	if got.Level("cando.b") != learning.LevelA2 {
		t.Fatalf("cando.b level: got %v", got.Level("cando.b"))
	}
}
