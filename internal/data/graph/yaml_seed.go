package graph

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/yungbote/strandcoach/internal/data/repos"
	types "github.com/yungbote/strandcoach/internal/domain"
	"github.com/yungbote/strandcoach/internal/domain/learning"
	"github.com/yungbote/strandcoach/internal/modules/learning/frontier"
	coacherr "github.com/yungbote/strandcoach/internal/pkg/errors"
	"github.com/yungbote/strandcoach/internal/platform/dbctx"
	"github.com/yungbote/strandcoach/internal/platform/logger"
)

// SeedNode is one concept as written in a graph seed file. Other keys in the
// file (prompts, diagnostics, ...) are ignored.
type SeedNode struct {
	ID            string     `yaml:"id"`
	Type          string     `yaml:"type"`
	Label         string     `yaml:"label"`
	CEFRLevel     string     `yaml:"cefr_level"`
	Prerequisites stringList `yaml:"prerequisites"`
}

// stringList accepts either a scalar or a sequence.
type stringList []string

func (s *stringList) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		if v := strings.TrimSpace(n.Value); v != "" {
			*s = []string{v}
		}
		return nil
	case yaml.SequenceNode:
		var out []string
		if err := n.Decode(&out); err != nil {
			return err
		}
		*s = out
		return nil
	}
	return fmt.Errorf("line %d: expected a string or a list of strings", n.Line)
}

// LoadYAMLSeeds compiles every *.yaml and *.yml file in dir into a validated
// graph. A file holds one node or a list of nodes. Unknown types or levels,
// duplicate ids, prerequisites naming unknown concepts, and cycles are
// rejected.
func LoadYAMLSeeds(dir string) (*frontier.Graph, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("seed dir: %w", err)
	}
	if !info.IsDir() {
		return nil, coacherr.Invalid("dir", dir, "not a directory")
	}

	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		m, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, m...)
	}
	sort.Strings(files)

	var seeds []SeedNode
	for _, f := range files {
		got, err := readSeedFile(f)
		if err != nil {
			return nil, err
		}
		seeds = append(seeds, got...)
	}
	return compileSeeds(seeds)
}

func readSeedFile(path string) ([]SeedNode, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	if len(doc.Content) == 0 {
		return nil, coacherr.Invalid("file", filepath.Base(path), "empty seed file")
	}
	root := doc.Content[0]

	var out []SeedNode
	switch root.Kind {
	case yaml.MappingNode:
		var n SeedNode
		if err := root.Decode(&n); err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		out = append(out, n)
	case yaml.SequenceNode:
		if err := root.Decode(&out); err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
	default:
		return nil, coacherr.Invalid("file", filepath.Base(path), "expected a node or a list of nodes")
	}
	for _, n := range out {
		switch {
		case strings.TrimSpace(n.ID) == "":
			return nil, coacherr.Invalid("id", "", fmt.Sprintf("missing in %s", filepath.Base(path)))
		case strings.TrimSpace(n.Type) == "":
			return nil, coacherr.Invalid("type", n.ID, "missing")
		case strings.TrimSpace(n.Label) == "":
			return nil, coacherr.Invalid("label", n.ID, "missing")
		}
	}
	return out, nil
}

func compileSeeds(seeds []SeedNode) (*frontier.Graph, error) {
	known := make(map[string]bool, len(seeds))
	nodes := make([]learning.ConceptNode, 0, len(seeds))
	for _, s := range seeds {
		id := strings.TrimSpace(s.ID)
		if known[id] {
			return nil, coacherr.Inconsistent("concept", id, "defined more than once")
		}
		known[id] = true

		typ, err := learning.ParseConceptType(s.Type)
		if err != nil {
			return nil, coacherr.Invalid("type", s.Type, err.Error())
		}
		level := learning.LevelUnknown
		if strings.TrimSpace(s.CEFRLevel) != "" {
			if level, err = learning.ParseLevel(s.CEFRLevel); err != nil {
				return nil, coacherr.Invalid("cefr_level", s.CEFRLevel, err.Error())
			}
		}
		nodes = append(nodes, learning.ConceptNode{
			ConceptID: id,
			Type:      typ,
			Level:     level,
			Label:     strings.TrimSpace(s.Label),
		})
	}

	var edges []learning.PrerequisiteEdge
	for _, s := range seeds {
		for _, p := range s.Prerequisites {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			if !known[p] {
				return nil, coacherr.Inconsistent("concept", s.ID, fmt.Sprintf("prerequisite %q is not defined", p))
			}
			edges = append(edges, learning.PrerequisiteEdge{PrerequisiteID: p, DependentID: strings.TrimSpace(s.ID)})
		}
	}
	return frontier.NewGraph(nodes, edges)
}

// ReplaceGraph swaps the stored graph for g in a single transaction.
func ReplaceGraph(ctx context.Context, db *gorm.DB, baseLog *logger.Logger, g *frontier.Graph) error {
	if g == nil {
		return coacherr.Invalid("graph", nil, "required")
	}
	concepts := repos.NewConceptRepo(db, baseLog)
	edges := repos.NewConceptEdgeRepo(db, baseLog)

	now := time.Now().UTC()
	nodeRows := make([]*types.ConceptNode, 0, g.Len())
	for _, n := range g.Nodes() {
		n := n
		n.CreatedAt = now
		n.UpdatedAt = now
		nodeRows = append(nodeRows, &n)
	}
	edgeRows := make([]*types.PrerequisiteEdge, 0, g.EdgeCount())
	for _, e := range g.Edges() {
		edgeRows = append(edgeRows, &types.PrerequisiteEdge{
			PrerequisiteID: e.PrerequisiteID,
			DependentID:    e.DependentID,
			CreatedAt:      now,
		})
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if err := edges.FullDeleteAll(dbc); err != nil {
			return err
		}
		if err := concepts.FullDeleteAll(dbc); err != nil {
			return err
		}
		if err := concepts.Upsert(dbc, nodeRows); err != nil {
			return err
		}
		if _, err := edges.CreateIgnoreDuplicates(dbc, edgeRows); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("replace graph: %w", err)
	}
	baseLog.Info("Prerequisite graph stored", "concepts", len(nodeRows), "edges", len(edgeRows))
	return nil
}
