package frontier

import (
	"sort"

	"github.com/yungbote/strandcoach/internal/domain/learning"
)

// SelectFluency keeps the mastered cards of one skill whose concept sits at or
// below secure, strongest first. Cards without a skill never qualify, and
// neither do cards whose concept has no known tier.
func SelectFluency(g *Graph, cards []*learning.Card, skill learning.Skill, secure learning.Level, limit int) []*learning.Card {
	out := []*learning.Card{}
	if skill == learning.SkillNone {
		return out
	}
	for _, c := range cards {
		if c == nil || c.Skill != skill || !c.MasteryStatus.IsMastered() {
			continue
		}
		lvl := g.Level(c.ConceptID)
		if !lvl.Valid() || lvl > secure {
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Stability != b.Stability {
			return a.Stability > b.Stability
		}
		at, bt := a.LastReviewedAt, b.LastReviewedAt
		if at != nil && bt != nil && !at.Equal(*bt) {
			return at.Before(*bt)
		}
		return a.ItemID < b.ItemID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
