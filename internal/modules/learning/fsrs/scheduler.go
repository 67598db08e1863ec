package fsrs

import (
	"math"
	"time"

	"github.com/yungbote/strandcoach/internal/domain/learning"
	coacherr "github.com/yungbote/strandcoach/internal/pkg/errors"
)

const (
	MinQuality = 0
	MaxQuality = 5
	// PassingQuality is the lowest quality that counts as a successful recall.
	PassingQuality = 3

	minDifficulty = 1.0
	maxDifficulty = 10.0

	// initialLapseStability is the first-review stability for a complete blackout.
	initialLapseStability = 0.1
)

const day = 24 * time.Hour

// State is the scheduling-relevant part of a card.
type State struct {
	Stability      float64
	Difficulty     float64
	Repetitions    int
	LastReviewedAt *time.Time
}

// Result is the outcome of one review.
type Result struct {
	State          State
	NextDue        time.Time
	Retrievability float64
	ElapsedDays    float64
}

// Scheduler applies the review update equations. It holds no mutable state.
type Scheduler struct {
	w Parameters
}

func New(p Parameters) (*Scheduler, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Scheduler{w: p}, nil
}

// Default returns a Scheduler over DefaultParameters.
func Default() *Scheduler {
	return &Scheduler{w: DefaultParameters}
}

func (s *Scheduler) Parameters() Parameters { return s.w }

// StateOf extracts the scheduling state of a card.
func StateOf(c *learning.Card) State {
	st := State{
		Stability:   c.Stability,
		Difficulty:  c.Difficulty,
		Repetitions: c.Repetitions,
	}
	if c.LastReviewedAt != nil {
		t := *c.LastReviewedAt
		st.LastReviewedAt = &t
	}
	return st
}

// Apply copies st onto the card's scheduling fields.
func Apply(c *learning.Card, st State) {
	c.Stability = st.Stability
	c.Difficulty = st.Difficulty
	c.Repetitions = st.Repetitions
	if st.LastReviewedAt == nil {
		c.LastReviewedAt = nil
		return
	}
	t := *st.LastReviewedAt
	c.LastReviewedAt = &t
}

func ValidateQuality(quality int) error {
	if quality < MinQuality || quality > MaxQuality {
		return coacherr.Invalid("quality", quality, "must be in [0,5]")
	}
	return nil
}

// ValidateState rejects malformed states instead of coercing them.
func ValidateState(st State) error {
	switch {
	case math.IsNaN(st.Stability) || math.IsInf(st.Stability, 0) || st.Stability < 0:
		return coacherr.Invalid("stability", st.Stability, "must be a finite non-negative number")
	case math.IsNaN(st.Difficulty) || st.Difficulty < minDifficulty || st.Difficulty > maxDifficulty:
		return coacherr.Invalid("difficulty", st.Difficulty, "must be in [1,10]")
	case st.Repetitions < 0:
		return coacherr.Invalid("repetitions", st.Repetitions, "must be non-negative")
	case st.Repetitions == 0 && st.LastReviewedAt != nil:
		return coacherr.Invalid("last_reviewed_at", *st.LastReviewedAt, "set on a card with no repetitions")
	case st.Repetitions > 0 && st.LastReviewedAt == nil:
		return coacherr.Invalid("last_reviewed_at", nil, "missing on a reviewed card")
	case st.Repetitions > 0 && st.Stability == 0:
		return coacherr.Invalid("stability", st.Stability, "must be positive on a reviewed card")
	}
	return nil
}

// Review computes the state after a review of the given quality at now.
func (s *Scheduler) Review(st State, quality int, now time.Time) (Result, error) {
	if err := ValidateQuality(quality); err != nil {
		return Result{}, err
	}
	if err := ValidateState(st); err != nil {
		return Result{}, err
	}
	if now.IsZero() {
		return Result{}, coacherr.Invalid("now", now, "timestamp is zero")
	}

	reviewedAt := now
	res := Result{Retrievability: 1}
	var next State
	if st.Repetitions == 0 {
		next.Stability = s.initialStability(quality)
		next.Difficulty = s.initialDifficulty(quality)
	} else {
		if now.Before(*st.LastReviewedAt) {
			return Result{}, coacherr.Invalid("now", now, "precedes last_reviewed_at")
		}
		res.ElapsedDays = now.Sub(*st.LastReviewedAt).Hours() / 24
		res.Retrievability = Retrievability(res.ElapsedDays, st.Stability)
		next.Stability = s.nextStability(st.Stability, st.Difficulty, res.Retrievability, quality)
		next.Difficulty = s.nextDifficulty(st.Difficulty, quality)
	}
	next.Repetitions = st.Repetitions + 1
	next.LastReviewedAt = &reviewedAt

	res.State = next
	res.NextDue = now.Add(Days(next.Stability))
	return res, nil
}

// Retrievability is R = exp(ln(0.9) * t / S), so R is 0.9 when t equals S.
func Retrievability(elapsedDays, stability float64) float64 {
	if stability <= 0 {
		return 0
	}
	r := math.Exp(math.Log(0.9) * elapsedDays / stability)
	return math.Max(0, math.Min(1, r))
}

// IsDue reports whether at least Stability days have passed since the last
// review. A never-reviewed state is always due.
func IsDue(st State, now time.Time) bool {
	if st.LastReviewedAt == nil {
		return true
	}
	return now.Sub(*st.LastReviewedAt) >= Days(st.Stability)
}

// DueAt is when st becomes due; ok is false for never-reviewed states.
func DueAt(st State) (time.Time, bool) {
	if st.LastReviewedAt == nil {
		return time.Time{}, false
	}
	return st.LastReviewedAt.Add(Days(st.Stability)), true
}

// Days converts a real-valued day count to a Duration.
func Days(d float64) time.Duration {
	return time.Duration(d * float64(day))
}

func (s *Scheduler) initialStability(q int) float64 {
	w := s.w
	switch {
	case q == 0:
		return initialLapseStability
	case q <= 2:
		return w[0] * float64(q) / 2
	case q == 3:
		return w[2]
	default:
		return w[2] + (w[3]-w[2])*float64(q-3)/2
	}
}

func (s *Scheduler) initialDifficulty(q int) float64 {
	return clampD(s.w[4] - s.w[10]*float64(q-3))
}

// nextDifficulty: failures raise difficulty, successes lower it.
func (s *Scheduler) nextDifficulty(d float64, q int) float64 {
	return clampD(d - s.w[12]*float64(q-PassingQuality))
}

func (s *Scheduler) nextStability(stab, d, r float64, q int) float64 {
	if q < PassingQuality {
		return s.lapseStability(stab, d, r)
	}
	return s.recallStability(stab, d, r, q)
}

// recallStability grows more the lower R was at review time; at R == 1 the
// stability is unchanged.
func (s *Scheduler) recallStability(stab, d, r float64, q int) float64 {
	w := s.w
	factor := w[7]
	switch q {
	case 4:
		factor = w[6]
	case 5:
		factor = w[5]
	}
	return stab * (1 +
		math.Exp(w[15])*
			(11-d)*
			math.Pow(stab, -w[13])*
			(math.Exp((1-r)*w[14])-1)*
			factor)
}

// lapseStability is the smaller of the long-term lapse curve and a fixed
// multiplicative decay, so a lapse always lowers stability.
func (s *Scheduler) lapseStability(stab, d, r float64) float64 {
	w := s.w
	long := w[11] *
		math.Pow(d, -w[12]) *
		(math.Pow(stab+1, w[13]) - 1) *
		math.Exp((1-r)*w[14])
	decayed := stab * math.Exp(-w[8])
	return math.Min(long, decayed)
}

func clampD(d float64) float64 {
	return math.Min(math.Max(d, minDifficulty), maxDifficulty)
}
