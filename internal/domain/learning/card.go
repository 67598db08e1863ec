package learning

import (
	"fmt"
	"strings"
	"time"
)

type MasteryStatus string

const (
	MasteryNew             MasteryStatus = "new"
	MasteryLearning        MasteryStatus = "learning"
	MasteryMastered        MasteryStatus = "mastered"
	MasteryFluencyEligible MasteryStatus = "fluency_eligible"
)

func ParseMasteryStatus(raw string) (MasteryStatus, error) {
	s := MasteryStatus(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "-", "_"))
	switch s {
	case MasteryNew, MasteryLearning, MasteryMastered, MasteryFluencyEligible:
		return s, nil
	}
	return "", fmt.Errorf("unknown mastery status %q", raw)
}

// IsMastered reports whether s counts as mastered for promotion and fluency purposes.
func (s MasteryStatus) IsMastered() bool {
	return s == MasteryMastered || s == MasteryFluencyEligible
}

// DefaultDifficulty is assigned to cards that have never been reviewed.
const DefaultDifficulty = 5.0

// Card is one schedulable unit of learning content.
type Card struct {
	ItemID         string        `gorm:"column:item_id;primaryKey" json:"item_id"`
	ConceptID      string        `gorm:"column:concept_id;not null;index" json:"concept_id"`
	Category       Category      `gorm:"column:category;not null;index" json:"category"`
	Skill          Skill         `gorm:"column:skill;not null;default:'';index" json:"skill,omitempty"`
	Stability      float64       `gorm:"column:stability;not null;default:0" json:"stability"`
	Difficulty     float64       `gorm:"column:difficulty;not null;default:5" json:"difficulty"`
	Repetitions    int           `gorm:"column:repetitions;not null;default:0" json:"repetitions"`
	QualityTotal   int           `gorm:"column:quality_total;not null;default:0" json:"quality_total"`
	LastReviewedAt *time.Time    `gorm:"column:last_reviewed_at;index" json:"last_reviewed_at,omitempty"`
	MasteryStatus  MasteryStatus `gorm:"column:mastery_status;not null;default:'new';index" json:"mastery_status"`
	CreatedAt      time.Time     `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time     `gorm:"not null" json:"updated_at"`
}

func (Card) TableName() string { return "cards" }

// NewCard returns an unreviewed card.
func NewCard(itemID, conceptID string, category Category, skill Skill) *Card {
	return &Card{
		ItemID:        itemID,
		ConceptID:     conceptID,
		Category:      category,
		Skill:         skill,
		Difficulty:    DefaultDifficulty,
		MasteryStatus: MasteryNew,
	}
}

// AverageQuality is the mean quality over every review of the card.
func (c *Card) AverageQuality() float64 {
	if c == nil || c.Repetitions == 0 {
		return 0
	}
	return float64(c.QualityTotal) / float64(c.Repetitions)
}

// BootstrapItemID is the item id given to the first card spawned for a concept.
func BootstrapItemID(conceptID string) string {
	return conceptID + ".001"
}
