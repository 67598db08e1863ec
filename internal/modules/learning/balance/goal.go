package balance

import (
	"strings"

	"github.com/yungbote/strandcoach/internal/domain/learning"
)

// overRepresentedShare is the share above which a goal's emphasis on a
// category is halved.
const overRepresentedShare = 0.35

type goalRule struct {
	keywords []string
	set      map[learning.Category]float64
}

// goalRules are checked in order; the first rule with a matching keyword wins.
var goalRules = []goalRule{
	{
		keywords: []string{"travel", "trip", "vacation", "booking", "hotel", "restaurant"},
		set: map[learning.Category]float64{
			learning.CategoryCommunicativeOutput: 2.0,
			learning.CategoryComprehensionInput:  1.5,
		},
	},
	{
		keywords: []string{"grammar", "correct", "accuracy", "mistakes", "rules"},
		set: map[learning.Category]float64{
			learning.CategoryExplicitStudy:       2.5,
			learning.CategoryCommunicativeOutput: 0.5,
		},
	},
	{
		keywords: []string{"fluent", "fluency", "speed", "automatic", "faster"},
		set: map[learning.Category]float64{
			learning.CategoryFluencyAutomaticity: 2.5,
			learning.CategoryCommunicativeOutput: 1.5,
			learning.CategoryExplicitStudy:       0.5,
		},
	},
	{
		keywords: []string{"understand", "listening", "comprehension", "podcast", "movie"},
		set: map[learning.Category]float64{
			learning.CategoryComprehensionInput:  2.5,
			learning.CategoryCommunicativeOutput: 0.8,
		},
	},
	{
		keywords: []string{"speak", "speaking", "conversation", "talk", "communicate"},
		set: map[learning.Category]float64{
			learning.CategoryCommunicativeOutput: 2.5,
			learning.CategoryComprehensionInput:  1.2,
		},
	},
	{
		keywords: []string{"write", "writing", "email", "letter", "essay"},
		set: map[learning.Category]float64{
			learning.CategoryCommunicativeOutput: 2.0,
			learning.CategoryExplicitStudy:       1.5,
		},
	},
}

// PreferenceForGoal maps a free-text learner goal to a preference vector.
// Categories already above 35% of recent time get half the emphasis. The
// result is bounded and sums to WeightTotal. shares may be nil.
func PreferenceForGoal(goal string, shares *learning.CategoryVector) learning.CategoryVector {
	pref := learning.CategoryVector{1, 1, 1, 1}
	g := strings.ToLower(goal)
	for _, rule := range goalRules {
		if !containsAny(g, rule.keywords) {
			continue
		}
		for c, w := range rule.set {
			pref.Set(c, w)
		}
		break
	}
	if shares != nil {
		for i, s := range shares {
			if s > overRepresentedShare {
				pref[i] *= 0.5
			}
		}
	}
	for i := range pref {
		pref[i] = clamp(pref[i], 0, MaxWeight)
	}
	return normalizeBounded(pref, allActive())
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
