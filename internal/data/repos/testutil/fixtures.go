package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/strandcoach/internal/domain"
	"github.com/yungbote/strandcoach/internal/domain/learning"
)

func SeedConcept(tb testing.TB, ctx context.Context, tx *gorm.DB, id string, typ types.ConceptType, level types.Level) *types.ConceptNode {
	tb.Helper()
	now := time.Now().UTC()
	n := &types.ConceptNode{
		ConceptID: id,
		Type:      typ,
		Level:     level,
		Label:     id,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(n).Error; err != nil {
		tb.Fatalf("seed concept: %v", err)
	}
	return n
}

func SeedEdge(tb testing.TB, ctx context.Context, tx *gorm.DB, prerequisiteID, dependentID string) *types.PrerequisiteEdge {
	tb.Helper()
	e := &types.PrerequisiteEdge{
		PrerequisiteID: prerequisiteID,
		DependentID:    dependentID,
		CreatedAt:      time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Create(e).Error; err != nil {
		tb.Fatalf("seed edge: %v", err)
	}
	return e
}

// SeedCard inserts an unreviewed card.
func SeedCard(tb testing.TB, ctx context.Context, tx *gorm.DB, itemID, conceptID string, category types.Category, skill types.Skill) *types.Card {
	tb.Helper()
	c := learning.NewCard(itemID, conceptID, category, skill)
	c.CreatedAt = time.Now().UTC()
	c.UpdatedAt = c.CreatedAt
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed card: %v", err)
	}
	return c
}

// SeedReviewedCard inserts a card that already has review history.
func SeedReviewedCard(tb testing.TB, ctx context.Context, tx *gorm.DB, itemID string, category types.Category, stability float64, reps int, last time.Time, status types.MasteryStatus) *types.Card {
	tb.Helper()
	c := learning.NewCard(itemID, itemID, category, learning.SkillNone)
	c.Stability = stability
	c.Repetitions = reps
	c.QualityTotal = 4 * reps
	c.LastReviewedAt = PtrTime(last.UTC())
	c.MasteryStatus = status
	c.CreatedAt = time.Now().UTC()
	c.UpdatedAt = c.CreatedAt
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed reviewed card: %v", err)
	}
	return c
}

func SeedSession(tb testing.TB, ctx context.Context, tx *gorm.DB, learnerID string, state types.SessionState, startedAt *time.Time) *types.SessionRecord {
	tb.Helper()
	now := time.Now().UTC()
	s := &types.SessionRecord{
		ID:                    uuid.New(),
		LearnerID:             learnerID,
		State:                 state,
		PlannedAt:             now,
		StartedAt:             startedAt,
		DurationTargetSeconds: 600,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed session: %v", err)
	}
	return s
}

func SeedReviewEvent(tb testing.TB, ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, itemID string, category types.Category, seconds float64) *types.ReviewEvent {
	tb.Helper()
	now := time.Now().UTC()
	e := &types.ReviewEvent{
		ID:              uuid.New(),
		LearnerID:       "learner",
		SessionID:       sessionID,
		ItemID:          itemID,
		Category:        category,
		Quality:         4,
		DurationSeconds: seconds,
		ReviewedAt:      now,
		MasteryBefore:   learning.MasteryNew,
		MasteryAfter:    learning.MasteryLearning,
		NextDueAt:       now,
	}
	if err := tx.WithContext(ctx).Create(e).Error; err != nil {
		tb.Fatalf("seed review event: %v", err)
	}
	return e
}

func PtrTime(v time.Time) *time.Time { return &v }
