package promotion

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/yungbote/strandcoach/internal/domain/learning"
	"github.com/yungbote/strandcoach/internal/modules/learning/fsrs"
	coacherr "github.com/yungbote/strandcoach/internal/pkg/errors"
)

var t0 = time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)

func reviewedCard(stability float64, reps, qualityTotal int, status learning.MasteryStatus) *learning.Card {
	c := learning.NewCard("vocab.casa.001", "vocab.casa", learning.CategoryExplicitStudy, learning.SkillWriting)
	last := t0
	c.Stability = stability
	c.Repetitions = reps
	c.QualityTotal = qualityTotal
	c.LastReviewedAt = &last
	c.MasteryStatus = status
	return c
}

func TestAfterReview_Transitions(t *testing.T) {
	cases := []struct {
		name    string
		card    *learning.Card
		quality int
		want    learning.MasteryStatus
	}{
		{"first_review_learning", reviewedCard(2.4, 1, 3, learning.MasteryNew), 3, learning.MasteryLearning},
		{"meets_criteria", reviewedCard(25, 4, 17, learning.MasteryLearning), 4, learning.MasteryMastered},
		{"stability_short", reviewedCard(20.9, 4, 17, learning.MasteryLearning), 5, learning.MasteryLearning},
		{"too_few_reps", reviewedCard(40, 2, 10, learning.MasteryLearning), 5, learning.MasteryLearning},
		{"low_average", reviewedCard(40, 4, 13, learning.MasteryLearning), 4, learning.MasteryLearning},
		{"lapse_demotes_mastered", reviewedCard(22, 6, 27, learning.MasteryMastered), 2, learning.MasteryLearning},
		{"lapse_demotes_fluency", reviewedCard(22, 6, 27, learning.MasteryFluencyEligible), 0, learning.MasteryLearning},
		{"fluency_kept", reviewedCard(30, 6, 27, learning.MasteryFluencyEligible), 5, learning.MasteryFluencyEligible},
		{"mastered_drops_below_average", reviewedCard(30, 6, 20, learning.MasteryMastered), 3, learning.MasteryLearning},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DefaultCriteria.AfterReview(tc.card, tc.quality); got != tc.want {
				t.Fatalf("got %s want %s", got, tc.want)
			}
		})
	}
}

func TestCheckCard_FlagsContradictions(t *testing.T) {
	fresh := learning.NewCard("a.001", "a", learning.CategoryComprehensionInput, learning.SkillReading)
	if err := DefaultCriteria.CheckCard(fresh); err != nil {
		t.Fatalf("fresh card flagged: %v", err)
	}
	if err := DefaultCriteria.CheckCard(reviewedCard(25, 4, 17, learning.MasteryMastered)); err != nil {
		t.Fatalf("valid mastered card flagged: %v", err)
	}

	newWithReviews := reviewedCard(3, 1, 4, learning.MasteryNew)
	reviewedNoTimestamp := reviewedCard(3, 1, 4, learning.MasteryLearning)
	reviewedNoTimestamp.LastReviewedAt = nil
	learningNoReps := learning.NewCard("b.001", "b", learning.CategoryExplicitStudy, learning.SkillNone)
	learningNoReps.MasteryStatus = learning.MasteryLearning
	badCategory := reviewedCard(3, 1, 4, learning.MasteryLearning)
	badCategory.Category = "grammar"
	badDifficulty := reviewedCard(3, 1, 4, learning.MasteryLearning)
	badDifficulty.Difficulty = 0

	cases := map[string]*learning.Card{
		"mastered_few_reps":      reviewedCard(30, 2, 10, learning.MasteryMastered),
		"mastered_low_stability": reviewedCard(10, 5, 25, learning.MasteryMastered),
		"fluency_low_stability":  reviewedCard(10, 5, 25, learning.MasteryFluencyEligible),
		"new_with_reviews":       newWithReviews,
		"reviewed_no_timestamp":  reviewedNoTimestamp,
		"learning_no_reps":       learningNoReps,
		"impossible_quality":     reviewedCard(3, 1, 6, learning.MasteryLearning),
		"bad_category":           badCategory,
		"bad_difficulty":         badDifficulty,
	}
	for name, card := range cases {
		t.Run(name, func(t *testing.T) {
			err := DefaultCriteria.CheckCard(card)
			if !errors.Is(err, coacherr.ErrConsistency) {
				t.Fatalf("err=%v, want consistency error", err)
			}
		})
	}
}

// Every single update in a random review history must leave the card
// consistent, not just the final state.
func TestMasteryInvariantHoldsAfterEveryReview(t *testing.T) {
	sched := fsrs.Default()
	rng := rand.New(rand.NewSource(20260105))

	for run := 0; run < 200; run++ {
		card := learning.NewCard("item.001", "item", learning.CategoryCommunicativeOutput, learning.SkillSpeaking)
		now := t0
		for step := 0; step < 40; step++ {
			q := rng.Intn(6)
			if rng.Float64() < 0.6 {
				q = 3 + rng.Intn(3)
			}
			if step > 0 {
				now = now.Add(fsrs.Days(rng.Float64() * 60))
			}

			res, err := sched.Review(fsrs.StateOf(card), q, now)
			if err != nil {
				t.Fatalf("run %d step %d: review: %v", run, step, err)
			}
			fsrs.Apply(card, res.State)
			card.QualityTotal += q
			card.MasteryStatus = DefaultCriteria.AfterReview(card, q)

			if card.MasteryStatus.IsMastered() && (card.Stability < 21.0 || card.Repetitions < 3) {
				t.Fatalf("run %d step %d: %s with stability=%v reps=%d",
					run, step, card.MasteryStatus, card.Stability, card.Repetitions)
			}
			if err := DefaultCriteria.CheckCard(card); err != nil {
				t.Fatalf("run %d step %d: %v", run, step, err)
			}
		}
	}
}
