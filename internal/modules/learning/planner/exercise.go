package planner

import (
	"fmt"
	"time"

	"github.com/yungbote/strandcoach/internal/domain/learning"
	"github.com/yungbote/strandcoach/internal/modules/learning/frontier"
)

const (
	ExerciseComprehension   = "comprehension"
	ExerciseProduction      = "production"
	ExerciseControlledDrill = "controlled_drill"
	ExerciseSpeedDrill      = "speed_drill"
)

// EstimatedDuration is the time budgeted for one exercise of a category.
func EstimatedDuration(c learning.Category) time.Duration {
	if c == learning.CategoryComprehensionInput {
		return 2 * time.Minute
	}
	return time.Minute
}

func exerciseType(c learning.Category) string {
	switch c {
	case learning.CategoryComprehensionInput:
		return ExerciseComprehension
	case learning.CategoryCommunicativeOutput:
		return ExerciseProduction
	case learning.CategoryFluencyAutomaticity:
		return ExerciseSpeedDrill
	default:
		return ExerciseControlledDrill
	}
}

func instructions(c learning.Category, conceptID string) string {
	switch c {
	case learning.CategoryComprehensionInput:
		return fmt.Sprintf("Understand %s in context", conceptID)
	case learning.CategoryCommunicativeOutput:
		return fmt.Sprintf("Communicate using %s", conceptID)
	case learning.CategoryFluencyAutomaticity:
		return fmt.Sprintf("Speed practice: %s (focus on fluency, not accuracy)", conceptID)
	default:
		return fmt.Sprintf("Practice %s (focus on accuracy)", conceptID)
	}
}

func newExercise(c learning.Category, itemID, conceptID string, src learning.ExerciseSource, skill learning.Skill) learning.Exercise {
	return learning.Exercise{
		ItemID:           itemID,
		ConceptID:        conceptID,
		Category:         c,
		ExerciseType:     exerciseType(c),
		Source:           src,
		EstimatedSeconds: int(EstimatedDuration(c) / time.Second),
		Instructions:     instructions(c, conceptID),
		Skill:            skill,
	}
}

func cardExercise(c learning.Category, card *learning.Card, src learning.ExerciseSource) learning.Exercise {
	return newExercise(c, card.ItemID, card.ConceptID, src, card.Skill)
}

// bootstrapExercise plans a frontier concept that has no card yet. The card
// is created when the session starts.
func bootstrapExercise(cand frontier.Candidate) learning.Exercise {
	ex := newExercise(cand.Category, learning.BootstrapItemID(cand.ConceptID), cand.ConceptID, learning.SourceFrontier, cand.Skill)
	ex.Bootstrap = true
	return ex
}
