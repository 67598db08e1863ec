package learning

import (
	"time"

	"github.com/google/uuid"
)

// ReviewEvent is the immutable record of one review.
type ReviewEvent struct {
	ID               uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	LearnerID        string        `gorm:"column:learner_id;not null;index" json:"learner_id"`
	SessionID        uuid.UUID     `gorm:"type:uuid;column:session_id;not null;index" json:"session_id"`
	ItemID           string        `gorm:"column:item_id;not null;index" json:"item_id"`
	Category         Category      `gorm:"column:category;not null;index" json:"category"`
	Quality          int           `gorm:"column:quality;not null" json:"quality"`
	DurationSeconds  float64       `gorm:"column:duration_seconds;not null;default:0" json:"duration_seconds"`
	ReviewedAt       time.Time     `gorm:"column:reviewed_at;not null;index" json:"reviewed_at"`
	Retrievability   float64       `gorm:"column:retrievability;not null" json:"retrievability"`
	StabilityBefore  float64       `gorm:"column:stability_before;not null" json:"stability_before"`
	StabilityAfter   float64       `gorm:"column:stability_after;not null" json:"stability_after"`
	DifficultyBefore float64       `gorm:"column:difficulty_before;not null" json:"difficulty_before"`
	DifficultyAfter  float64       `gorm:"column:difficulty_after;not null" json:"difficulty_after"`
	MasteryBefore    MasteryStatus `gorm:"column:mastery_before;not null" json:"mastery_before"`
	MasteryAfter     MasteryStatus `gorm:"column:mastery_after;not null" json:"mastery_after"`
	NextDueAt        time.Time     `gorm:"column:next_due_at;not null" json:"next_due_at"`
}

func (ReviewEvent) TableName() string { return "review_events" }
