package frontier

import (
	"sort"

	"github.com/yungbote/strandcoach/internal/domain/learning"
	coacherr "github.com/yungbote/strandcoach/internal/pkg/errors"
)

// Progress summarizes the cards that exist for one concept.
type Progress struct {
	Cards   int
	Started int
}

// Unstarted is true when the concept has no card or only new cards.
func (p Progress) Unstarted() bool { return p.Started == 0 }

// Satisfied is true when the concept has cards and none of them is new.
func (p Progress) Satisfied() bool { return p.Cards > 0 && p.Started == p.Cards }

// ProgressIndex maps concept ids to their card progress.
type ProgressIndex map[string]Progress

func IndexCards(cards []*learning.Card) ProgressIndex {
	idx := ProgressIndex{}
	for _, c := range cards {
		if c == nil {
			continue
		}
		p := idx[c.ConceptID]
		p.Cards++
		if c.MasteryStatus != learning.MasteryNew {
			p.Started++
		}
		idx[c.ConceptID] = p
	}
	return idx
}

// Candidate is an admissible concept, tagged with its inferred strand.
type Candidate struct {
	ConceptID        string               `json:"concept_id"`
	Type             learning.ConceptType `json:"type"`
	Label            string               `json:"label,omitempty"`
	Level            learning.Level       `json:"level"`
	Category         learning.Category    `json:"category"`
	Skill            learning.Skill       `json:"skill,omitempty"`
	HasPrerequisites bool                 `json:"has_prerequisites"`
	HasCard          bool                 `json:"has_card"`
}

// Compute returns up to limit concepts at or below maxLevel that are not yet
// started and whose prerequisites all have started cards. Concepts without
// prerequisites come first, then lower tiers, then ids. limit <= 0 means no
// limit.
func Compute(g *Graph, progress ProgressIndex, maxLevel learning.Level, limit int) ([]Candidate, error) {
	if g == nil {
		return []Candidate{}, nil
	}
	out := []Candidate{}
	for _, n := range g.Nodes() {
		if !n.Level.Valid() || n.Level > maxLevel {
			continue
		}
		p := progress[n.ConceptID]
		if !p.Unstarted() {
			continue
		}
		prereqs := g.prereqs[n.ConceptID]
		admissible := true
		for _, pre := range prereqs {
			if !progress[pre].Satisfied() {
				admissible = false
				break
			}
		}
		if !admissible {
			continue
		}
		cat, err := n.Type.Category()
		if err != nil {
			return nil, coacherr.Inconsistent("concept", n.ConceptID, err.Error())
		}
		out = append(out, Candidate{
			ConceptID:        n.ConceptID,
			Type:             n.Type,
			Label:            n.Label,
			Level:            n.Level,
			Category:         cat,
			Skill:            n.Type.DefaultSkill(),
			HasPrerequisites: len(prereqs) > 0,
			HasCard:          p.Cards > 0,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.HasPrerequisites != b.HasPrerequisites {
			return !a.HasPrerequisites
		}
		if a.Level != b.Level {
			return a.Level < b.Level
		}
		return a.ConceptID < b.ConceptID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Admissible reports whether a card-holding concept may be introduced now.
// Concepts missing from the graph have no known prerequisites and are
// admissible.
func Admissible(g *Graph, progress ProgressIndex, conceptID string) bool {
	if g == nil {
		return true
	}
	for _, pre := range g.prereqs[conceptID] {
		if !progress[pre].Satisfied() {
			return false
		}
	}
	return true
}
