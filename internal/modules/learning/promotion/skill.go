package promotion

import (
	"github.com/yungbote/strandcoach/internal/domain/learning"
)

// DefaultSkillThreshold is the mastered share of next-tier cards required to
// advance a skill's secure level.
const DefaultSkillThreshold = 0.8

// LeveledCard pairs a card with the proficiency tier of its concept.
type LeveledCard struct {
	Card  *learning.Card
	Level learning.Level
}

type SkillRule struct {
	Threshold float64
	Criteria  Criteria
}

func DefaultSkillRule() SkillRule {
	return SkillRule{Threshold: DefaultSkillThreshold, Criteria: DefaultCriteria}
}

// SkillEvaluation is the evidence considered for one skill.
type SkillEvaluation struct {
	Skill    learning.Skill `json:"skill"`
	From     learning.Level `json:"from"`
	To       learning.Level `json:"to"`
	Total    int            `json:"total"`
	Mastered int            `json:"mastered"`
	Promoted bool           `json:"promoted"`
}

// Evaluate counts the skill's cards at the tier above secure and decides
// whether that tier is now secure. A tier with no cards never promotes.
func (r SkillRule) Evaluate(skill learning.Skill, secure learning.Level, cards []LeveledCard) SkillEvaluation {
	ev := SkillEvaluation{Skill: skill, From: secure, To: secure}
	next, ok := secure.Next()
	if !ok {
		return ev
	}
	for _, lc := range cards {
		if lc.Card == nil || lc.Card.Skill != skill || lc.Level != next {
			continue
		}
		ev.Total++
		if lc.Card.MasteryStatus.IsMastered() {
			ev.Mastered++
		}
	}
	if ev.Total > 0 && float64(ev.Mastered) >= r.Threshold*float64(ev.Total) {
		ev.To = next
		ev.Promoted = true
	}
	return ev
}

// Promote advances each skill's secure level by at most one tier and returns
// the updated profile. The input profile is not modified. Secure levels only
// ever move up.
func (r SkillRule) Promote(profile learning.ProficiencyProfile, cards []LeveledCard) (learning.ProficiencyProfile, []SkillEvaluation) {
	out := profile
	out.Skills = make(map[learning.Skill]learning.SkillLevels, len(learning.Skills))
	for k, v := range profile.Skills {
		out.Skills[k] = v
	}

	evals := make([]SkillEvaluation, 0, len(learning.Skills))
	for _, skill := range learning.Skills {
		levels := out.Skills[skill]
		ev := r.Evaluate(skill, profile.SecureLevel(skill), cards)
		evals = append(evals, ev)
		if !ev.Promoted {
			continue
		}
		levels.SecureLevel = ev.To
		if !levels.CurrentLevel.Valid() {
			levels.CurrentLevel = learning.LevelA1
		}
		out.Skills[skill] = levels
	}
	return out, evals
}

// FluencyEligible reports whether a mastered card may be marked fluency
// eligible under the profile: it must carry a skill and its concept must sit
// at or below that skill's secure level.
func (r SkillRule) FluencyEligible(profile learning.ProficiencyProfile, lc LeveledCard) bool {
	c := lc.Card
	if c == nil || c.Skill == learning.SkillNone || c.MasteryStatus != learning.MasteryMastered {
		return false
	}
	if !r.Criteria.Met(c) {
		return false
	}
	return lc.Level.Valid() && lc.Level <= profile.SecureLevel(c.Skill)
}
