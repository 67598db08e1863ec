package promotion

import (
	"fmt"
	"math"

	"github.com/yungbote/strandcoach/internal/domain/learning"
	"github.com/yungbote/strandcoach/internal/modules/learning/fsrs"
	coacherr "github.com/yungbote/strandcoach/internal/pkg/errors"
)

// Criteria are the numeric thresholds a card must clear to count as mastered.
type Criteria struct {
	MinStability      float64
	MinRepetitions    int
	MinAverageQuality float64
}

var DefaultCriteria = Criteria{
	MinStability:      21.0,
	MinRepetitions:    3,
	MinAverageQuality: 3.5,
}

// Met reports whether the card's numeric fields satisfy c.
func (c Criteria) Met(card *learning.Card) bool {
	if card == nil {
		return false
	}
	return card.Stability >= c.MinStability &&
		card.Repetitions >= c.MinRepetitions &&
		card.AverageQuality() >= c.MinAverageQuality
}

// AfterReview returns the mastery status of a card whose scheduling fields and
// quality total already include a review of the given quality. A lapse always
// drops the card back to learning; otherwise the card is mastered exactly when
// it meets c. A fluency-eligible card that still meets c keeps that status.
func (c Criteria) AfterReview(card *learning.Card, quality int) learning.MasteryStatus {
	if card == nil || card.Repetitions == 0 {
		return learning.MasteryNew
	}
	if quality < fsrs.PassingQuality {
		return learning.MasteryLearning
	}
	if !c.Met(card) {
		return learning.MasteryLearning
	}
	if card.MasteryStatus == learning.MasteryFluencyEligible {
		return learning.MasteryFluencyEligible
	}
	return learning.MasteryMastered
}

// CheckCard returns a ConsistencyError describing the first invariant the card
// violates, or nil.
func (c Criteria) CheckCard(card *learning.Card) error {
	if card == nil {
		return coacherr.Inconsistent("card", "", "nil card")
	}
	id := card.ItemID
	bad := func(format string, args ...any) error {
		return coacherr.Inconsistent("card", id, fmt.Sprintf(format, args...))
	}
	switch {
	case id == "":
		return bad("empty item_id")
	case !card.Category.Valid():
		return bad("unknown category %q", card.Category)
	case math.IsNaN(card.Stability) || math.IsInf(card.Stability, 0) || card.Stability < 0:
		return bad("stability %v out of range", card.Stability)
	case math.IsNaN(card.Difficulty) || card.Difficulty < 1 || card.Difficulty > 10:
		return bad("difficulty %v outside [1,10]", card.Difficulty)
	case card.Repetitions < 0:
		return bad("negative repetitions %d", card.Repetitions)
	case card.QualityTotal < 0 || card.QualityTotal > fsrs.MaxQuality*card.Repetitions:
		return bad("quality_total %d impossible for %d repetitions", card.QualityTotal, card.Repetitions)
	}

	isNew := card.MasteryStatus == learning.MasteryNew
	unreviewed := card.LastReviewedAt == nil
	if (card.Repetitions == 0) != unreviewed || unreviewed != isNew {
		return bad("repetitions=%d last_reviewed_at_set=%t mastery_status=%s disagree",
			card.Repetitions, !unreviewed, card.MasteryStatus)
	}
	if card.MasteryStatus.IsMastered() && !c.Met(card) {
		return bad("%s with stability=%.2f repetitions=%d avg_quality=%.2f",
			card.MasteryStatus, card.Stability, card.Repetitions, card.AverageQuality())
	}
	if _, err := learning.ParseMasteryStatus(string(card.MasteryStatus)); err != nil {
		return bad("%v", err)
	}
	return nil
}
