package graph

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/yungbote/strandcoach/internal/data/repos/testutil"
	"github.com/yungbote/strandcoach/internal/domain/learning"
	coacherr "github.com/yungbote/strandcoach/internal/pkg/errors"
)

func writeSeed(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoadYAMLSeeds_CompilesNodesAndEdges(t *testing.T) {
	dir := t.TempDir()
	writeSeed(t, dir, "lex_hola.yaml", `
id: lex.hola
type: Lexeme
label: hola
cefr_level: A1
prompts:
  - "Say hello"
`)
	writeSeed(t, dir, "cando.yml", `
- id: cando.greet
  type: CanDo
  label: Greet someone
  cefr_level: A1
  prerequisites: lex.hola
- id: topic.cafe
  type: Topic
  label: At the cafe
  cefr_level: a2
  prerequisites: [lex.hola, cando.greet]
`)
	writeSeed(t, dir, "README.md", "not a seed")

	g, err := LoadYAMLSeeds(dir)
	if err != nil {
		t.Fatalf("LoadYAMLSeeds: %v", err)
	}
	if g.Len() != 3 || g.EdgeCount() != 3 {
		t.Fatalf("got %d nodes, %d edges; want 3, 3", g.Len(), g.EdgeCount())
	}
	if got := g.Level("topic.cafe"); got != learning.LevelA2 {
		t.Fatalf("topic.cafe level: got %v want A2", got)
	}
	want := []string{"cando.greet", "lex.hola"}
	if diff := cmp.Diff(want, g.Prerequisites("topic.cafe")); diff != "" {
		t.Fatalf("prerequisites mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadYAMLSeeds_Rejects(t *testing.T) {
	cases := []struct {
		name string
		body string
		want error
	}{
		{"unknown_type", "id: a\ntype: Widget\nlabel: a\n", coacherr.ErrValidation},
		{"unknown_level", "id: a\ntype: Lexeme\nlabel: a\ncefr_level: Z9\n", coacherr.ErrValidation},
		{"missing_label", "id: a\ntype: Lexeme\n", coacherr.ErrValidation},
		{"dangling_prerequisite", "id: a\ntype: Lexeme\nlabel: a\nprerequisites: [ghost]\n", coacherr.ErrConsistency},
		{"duplicate_id", "- {id: a, type: Lexeme, label: a}\n- {id: a, type: Morph, label: b}\n", coacherr.ErrConsistency},
		{"cycle", "- {id: a, type: Lexeme, label: a, prerequisites: [b]}\n- {id: b, type: Lexeme, label: b, prerequisites: [a]}\n", coacherr.ErrCyclicGraph},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			writeSeed(t, dir, "seed.yaml", tc.body)
			_, err := LoadYAMLSeeds(dir)
			if !errors.Is(err, tc.want) {
				t.Fatalf("want %v, got %v", tc.want, err)
			}
		})
	}
}

func TestReplaceGraph_RoundTripsThroughSQLReader(t *testing.T) {
	db := testutil.FreshDB(t)
	log := testutil.Logger(t)
	ctx := context.Background()

	dir := t.TempDir()
	writeSeed(t, dir, "seed.yaml", `
- {id: lex.a, type: Lexeme, label: a, cefr_level: A1}
- {id: lex.b, type: Lexeme, label: b, cefr_level: A1, prerequisites: [lex.a]}
`)
	g, err := LoadYAMLSeeds(dir)
	if err != nil {
		t.Fatalf("LoadYAMLSeeds: %v", err)
	}
	if err := ReplaceGraph(ctx, db, log, g); err != nil {
		t.Fatalf("ReplaceGraph: %v", err)
	}

	// A second load replaces rather than merges.
	writeSeed(t, dir, "seed.yaml", `
- {id: lex.a, type: Lexeme, label: a, cefr_level: A2}
- {id: topic.c, type: Topic, label: c, cefr_level: A1, prerequisites: [lex.a]}
`)
	g, err = LoadYAMLSeeds(dir)
	if err != nil {
		t.Fatalf("LoadYAMLSeeds(2): %v", err)
	}
	if err := ReplaceGraph(ctx, db, log, g); err != nil {
		t.Fatalf("ReplaceGraph(2): %v", err)
	}

	got, err := NewSQLReader(db, log).Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(g.Edges(), got.Edges()); diff != "" {
		t.Fatalf("edges mismatch (-want +got):\n%s", diff)
	}
	if _, ok := got.Node("lex.b"); ok {
		t.Fatalf("lex.b survived the replace")
	}
	if got.Level("lex.a") != learning.LevelA2 {
		t.Fatalf("lex.a level not replaced: %v", got.Level("lex.a"))
	}
}

func TestSQLReader_RefusesCyclicStore(t *testing.T) {
	db := testutil.FreshDB(t)
	ctx := context.Background()

	testutil.SeedConcept(t, ctx, db, "a", learning.ConceptLexeme, learning.LevelA1)
	testutil.SeedConcept(t, ctx, db, "b", learning.ConceptLexeme, learning.LevelA1)
	testutil.SeedEdge(t, ctx, db, "a", "b")
	testutil.SeedEdge(t, ctx, db, "b", "a")

	if _, err := NewSQLReader(db, testutil.Logger(t)).Load(ctx); !errors.Is(err, coacherr.ErrCyclicGraph) {
		t.Fatalf("want ErrCyclicGraph, got %v", err)
	}
}
