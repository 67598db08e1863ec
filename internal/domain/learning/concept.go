package learning

import (
	"fmt"
	"strings"
	"time"
)

// ConceptType is the closed set of node kinds the graph compiler emits.
type ConceptType string

const (
	ConceptLexeme              ConceptType = "Lexeme"
	ConceptConstruction        ConceptType = "Construction"
	ConceptMorph               ConceptType = "Morph"
	ConceptCanDo               ConceptType = "CanDo"
	ConceptFunction            ConceptType = "Function"
	ConceptDiscourseMove       ConceptType = "DiscourseMove"
	ConceptPragmaticCue        ConceptType = "PragmaticCue"
	ConceptAssessmentCriterion ConceptType = "AssessmentCriterion"
	ConceptTopic               ConceptType = "Topic"
)

var ConceptTypes = []ConceptType{
	ConceptLexeme,
	ConceptConstruction,
	ConceptMorph,
	ConceptCanDo,
	ConceptFunction,
	ConceptDiscourseMove,
	ConceptPragmaticCue,
	ConceptAssessmentCriterion,
	ConceptTopic,
}

func ParseConceptType(raw string) (ConceptType, error) {
	s := strings.TrimSpace(raw)
	for _, t := range ConceptTypes {
		if strings.EqualFold(string(t), s) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown concept type %q", raw)
}

// Category maps a concept type to the strand its cards primarily serve.
// Every ConceptType must have a case here; the default branch only fires for
// values that bypassed ParseConceptType.
func (t ConceptType) Category() (Category, error) {
	switch t {
	case ConceptLexeme, ConceptConstruction, ConceptMorph:
		return CategoryExplicitStudy, nil
	case ConceptCanDo, ConceptFunction, ConceptDiscourseMove, ConceptPragmaticCue, ConceptAssessmentCriterion:
		return CategoryCommunicativeOutput, nil
	case ConceptTopic:
		return CategoryComprehensionInput, nil
	default:
		return "", fmt.Errorf("no category mapping for concept type %q", string(t))
	}
}

// DefaultSkill is the skill assigned to cards bootstrapped for this type.
func (t ConceptType) DefaultSkill() Skill {
	cat, err := t.Category()
	if err != nil {
		return SkillNone
	}
	switch {
	case t == ConceptTopic:
		return SkillReading
	case cat == CategoryCommunicativeOutput:
		return SkillSpeaking
	case cat == CategoryExplicitStudy:
		return SkillWriting
	default:
		return SkillNone
	}
}

type ConceptNode struct {
	ConceptID string      `gorm:"column:concept_id;primaryKey" json:"concept_id"`
	Level     Level       `gorm:"column:level;not null;default:0;index" json:"level"`
	Type      ConceptType `gorm:"column:type;not null;index" json:"type"`
	Label     string      `gorm:"column:label" json:"label,omitempty"`
	CreatedAt time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time   `gorm:"not null" json:"updated_at"`
}

func (ConceptNode) TableName() string { return "concepts" }

// PrerequisiteEdge says PrerequisiteID must be started before DependentID.
type PrerequisiteEdge struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	PrerequisiteID string    `gorm:"column:prerequisite_id;not null;index;uniqueIndex:idx_concept_edge_pair" json:"from"`
	DependentID    string    `gorm:"column:dependent_id;not null;index;uniqueIndex:idx_concept_edge_pair" json:"to"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
}

func (PrerequisiteEdge) TableName() string { return "concept_edges" }
