package frontier

import (
	"errors"
	"strings"
	"testing"

	"github.com/yungbote/strandcoach/internal/domain/learning"
	coacherr "github.com/yungbote/strandcoach/internal/pkg/errors"
)

func node(id string, lvl learning.Level, typ learning.ConceptType) learning.ConceptNode {
	return learning.ConceptNode{ConceptID: id, Level: lvl, Type: typ}
}

func edge(from, to string) learning.PrerequisiteEdge {
	return learning.PrerequisiteEdge{PrerequisiteID: from, DependentID: to}
}

func TestNewGraph_RejectsCycles(t *testing.T) {
	nodes := []learning.ConceptNode{
		node("a", learning.LevelA1, learning.ConceptLexeme),
		node("b", learning.LevelA1, learning.ConceptLexeme),
		node("c", learning.LevelA1, learning.ConceptLexeme),
	}
	cases := map[string][]learning.PrerequisiteEdge{
		"self_loop":   {edge("a", "a")},
		"two_cycle":   {edge("a", "b"), edge("b", "a")},
		"three_cycle": {edge("a", "b"), edge("b", "c"), edge("c", "a")},
	}
	for name, edges := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewGraph(nodes, edges)
			if !errors.Is(err, coacherr.ErrCyclicGraph) || !errors.Is(err, coacherr.ErrConsistency) {
				t.Fatalf("err=%v, want cyclic graph consistency error", err)
			}
			if !strings.Contains(err.Error(), "->") {
				t.Fatalf("error should name the cycle: %v", err)
			}
		})
	}
}

func TestNewGraph_AcceptsDiamondAndDedupesEdges(t *testing.T) {
	g, err := NewGraph(
		[]learning.ConceptNode{
			node("d", learning.LevelA2, learning.ConceptCanDo),
			node("a", learning.LevelA1, learning.ConceptLexeme),
			node("b", learning.LevelA1, learning.ConceptLexeme),
			node("c", learning.LevelA1, learning.ConceptMorph),
		},
		[]learning.PrerequisiteEdge{edge("a", "b"), edge("a", "c"), edge("b", "d"), edge("c", "d"), edge("c", "d")},
	)
	if err != nil {
		t.Fatalf("NewGraph: %v", err)
	}
	if g.Len() != 4 || g.EdgeCount() != 4 {
		t.Fatalf("len=%d edges=%d", g.Len(), g.EdgeCount())
	}
	if got := g.Prerequisites("d"); len(got) != 2 || got[0] != "b" || got[1] != "c" {
		t.Fatalf("prereqs(d)=%v", got)
	}
	if g.Nodes()[0].ConceptID != "a" {
		t.Fatalf("nodes not sorted")
	}
}

func TestNewGraph_RejectsBadNodes(t *testing.T) {
	cases := map[string][]learning.ConceptNode{
		"duplicate":    {node("a", learning.LevelA1, learning.ConceptLexeme), node("a", learning.LevelA2, learning.ConceptTopic)},
		"empty_id":     {node(" ", learning.LevelA1, learning.ConceptLexeme)},
		"unknown_type": {node("a", learning.LevelA1, learning.ConceptType("Widget"))},
	}
	for name, nodes := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := NewGraph(nodes, nil); !errors.Is(err, coacherr.ErrConsistency) {
				t.Fatalf("err=%v", err)
			}
		})
	}
}
