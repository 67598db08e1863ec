package frontier

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/yungbote/strandcoach/internal/domain/learning"
	coacherr "github.com/yungbote/strandcoach/internal/pkg/errors"
)

// Reader loads the prerequisite graph from wherever it is stored.
type Reader interface {
	Load(ctx context.Context) (*Graph, error)
}

// Graph is an immutable, acyclic view of concepts and prerequisite edges.
type Graph struct {
	nodes   map[string]learning.ConceptNode
	prereqs map[string][]string
	ids     []string
	edges   int
}

// NewGraph indexes nodes and edges and refuses graphs that contain a cycle.
// Edges may name concepts absent from nodes; such a prerequisite can never be
// satisfied by a card-less concept, so it simply blocks its dependent.
func NewGraph(nodes []learning.ConceptNode, edges []learning.PrerequisiteEdge) (*Graph, error) {
	g := &Graph{
		nodes:   make(map[string]learning.ConceptNode, len(nodes)),
		prereqs: make(map[string][]string),
	}
	for _, n := range nodes {
		id := strings.TrimSpace(n.ConceptID)
		if id == "" {
			return nil, coacherr.Inconsistent("concept", "", "empty concept_id")
		}
		if _, dup := g.nodes[id]; dup {
			return nil, coacherr.Inconsistent("concept", id, "duplicate concept_id")
		}
		if _, err := n.Type.Category(); err != nil {
			return nil, coacherr.Inconsistent("concept", id, err.Error())
		}
		n.ConceptID = id
		g.nodes[id] = n
		g.ids = append(g.ids, id)
	}
	sort.Strings(g.ids)

	seen := map[[2]string]bool{}
	for _, e := range edges {
		key := [2]string{e.PrerequisiteID, e.DependentID}
		if seen[key] {
			continue
		}
		seen[key] = true
		g.prereqs[e.DependentID] = append(g.prereqs[e.DependentID], e.PrerequisiteID)
		g.edges++
	}
	for id := range g.prereqs {
		sort.Strings(g.prereqs[id])
	}

	if cycle := g.findCycle(); cycle != nil {
		return nil, fmt.Errorf("%w: %w: %s", coacherr.ErrConsistency, coacherr.ErrCyclicGraph, strings.Join(cycle, " -> "))
	}
	return g, nil
}

func (g *Graph) Len() int { return len(g.ids) }

func (g *Graph) EdgeCount() int { return g.edges }

func (g *Graph) Node(id string) (learning.ConceptNode, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Level is the tier of a concept, or LevelUnknown when the concept is absent.
func (g *Graph) Level(id string) learning.Level {
	return g.nodes[id].Level
}

// Prerequisites returns the sorted prerequisite ids of a concept.
func (g *Graph) Prerequisites(id string) []string {
	return append([]string(nil), g.prereqs[id]...)
}

// Nodes returns every concept sorted by id.
func (g *Graph) Nodes() []learning.ConceptNode {
	out := make([]learning.ConceptNode, 0, len(g.ids))
	for _, id := range g.ids {
		out = append(out, g.nodes[id])
	}
	return out
}

// Edges returns every distinct edge sorted by dependent then prerequisite.
func (g *Graph) Edges() []learning.PrerequisiteEdge {
	deps := make([]string, 0, len(g.prereqs))
	for id := range g.prereqs {
		deps = append(deps, id)
	}
	sort.Strings(deps)
	out := make([]learning.PrerequisiteEdge, 0, g.edges)
	for _, dep := range deps {
		for _, pre := range g.prereqs[dep] {
			out = append(out, learning.PrerequisiteEdge{PrerequisiteID: pre, DependentID: dep})
		}
	}
	return out
}

// findCycle walks prerequisite edges depth first and returns the first cycle
// found, closed on its starting id, or nil.
func (g *Graph) findCycle() []string {
	const (
		white = iota
		grey
		black
	)
	color := map[string]int{}
	var stack []string
	var cycle []string

	var visit func(id string) bool
	visit = func(id string) bool {
		color[id] = grey
		stack = append(stack, id)
		for _, pre := range g.prereqs[id] {
			switch color[pre] {
			case grey:
				for i := len(stack) - 1; i >= 0; i-- {
					if stack[i] == pre {
						cycle = append(append([]string(nil), stack[i:]...), pre)
						return true
					}
				}
			case white:
				if visit(pre) {
					return true
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[id] = black
		return false
	}

	starts := make([]string, 0, len(g.prereqs))
	for id := range g.prereqs {
		starts = append(starts, id)
	}
	sort.Strings(starts)
	for _, id := range starts {
		if color[id] == white && visit(id) {
			return cycle
		}
	}
	return nil
}
