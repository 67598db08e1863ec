package balance

import (
	"math"

	"github.com/yungbote/strandcoach/internal/domain/learning"
	coacherr "github.com/yungbote/strandcoach/internal/pkg/errors"
)

const (
	// TargetShare is the share of session time every category aims for.
	TargetShare = 1.0 / learning.NumCategories
	// WeightTotal is the sum of a full weight vector; the mean weight is 1.
	WeightTotal = 4.0
	// MaxWeight caps any single category at twice the neutral weight.
	MaxWeight = 2.0

	tolerance    = 0.05
	moderateBand = 0.10

	systemBlend     = 0.7
	preferenceBlend = 0.3
)

// Deviation is TargetShare minus each category's share.
func Deviation(shares learning.CategoryVector) learning.CategoryVector {
	var out learning.CategoryVector
	for i := range shares {
		out[i] = TargetShare - shares[i]
	}
	return out
}

// PressureWeight is the progressive-pressure law: no correction inside the
// tolerance band, double slope up to 0.10, quadruple slope beyond, clamped to
// [0, MaxWeight].
func PressureWeight(deviation float64) float64 {
	abs := math.Abs(deviation)
	var w float64
	switch {
	case abs <= tolerance:
		w = 1.0
	case abs <= moderateBand:
		w = 1.0 + deviation*2
	default:
		w = 1.0 + deviation*4
	}
	return clamp(w, 0, MaxWeight)
}

// Weights turns recent per-category time into allocation weights. history
// holds non-negative totals; an all-zero history means no signal and yields
// the neutral vector. A nil preference skips blending.
func Weights(history learning.CategoryVector, preference *learning.CategoryVector) (learning.CategoryVector, error) {
	for i, x := range history {
		if math.IsNaN(x) || math.IsInf(x, 0) || x < 0 {
			return learning.CategoryVector{}, coacherr.Invalid("history."+string(learning.Categories[i]), x, "must be a finite non-negative number")
		}
	}

	dev := Deviation(history.Shares())
	var w learning.CategoryVector
	for i := range dev {
		w[i] = PressureWeight(dev[i])
	}

	if preference != nil {
		pref, err := NormalizePreference(*preference)
		if err != nil {
			return learning.CategoryVector{}, err
		}
		for i := range w {
			w[i] = w[i]*systemBlend + pref[i]*preferenceBlend
		}
	}
	return normalizeBounded(w, allActive()), nil
}

// NormalizePreference clamps each component to [0, MaxWeight] and rescales
// the vector to sum to WeightTotal without letting any component pass
// MaxWeight. An all-zero preference becomes the neutral vector.
func NormalizePreference(p learning.CategoryVector) (learning.CategoryVector, error) {
	var out learning.CategoryVector
	for i, x := range p {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return learning.CategoryVector{}, coacherr.Invalid("preference."+string(learning.Categories[i]), x, "must be finite")
		}
		out[i] = clamp(x, 0, MaxWeight)
	}
	return normalizeBounded(out, allActive()), nil
}

// ApplyScarcity zeroes the weight of every category with no available
// candidates and spreads the budget over the rest, each capped at MaxWeight.
// With fewer than two categories available the total falls below
// WeightTotal.
func ApplyScarcity(w learning.CategoryVector, available [learning.NumCategories]bool) learning.CategoryVector {
	return normalizeBounded(w, available)
}

// normalizeBounded rescales the active components of v to sum to
// min(WeightTotal, MaxWeight*active) with every component in [0, MaxWeight].
// Components that would exceed the cap are pinned to it and the remainder is
// spread proportionally over the others. Inactive components become 0.
func normalizeBounded(v learning.CategoryVector, active [learning.NumCategories]bool) learning.CategoryVector {
	var out learning.CategoryVector
	n := 0
	for i := range v {
		if active[i] {
			n++
		}
	}
	if n == 0 {
		return out
	}
	target := math.Min(WeightTotal, MaxWeight*float64(n))

	var capped [learning.NumCategories]bool
	for {
		remaining := target
		free, sum := 0, 0.0
		for i := range v {
			if !active[i] {
				continue
			}
			if capped[i] {
				remaining -= MaxWeight
				continue
			}
			free++
			sum += math.Max(v[i], 0)
		}
		if free == 0 {
			break
		}

		overflow := false
		for i := range v {
			if !active[i] || capped[i] {
				continue
			}
			if sum <= 0 {
				out[i] = remaining / float64(free)
			} else {
				out[i] = math.Max(v[i], 0) * remaining / sum
			}
			if out[i] > MaxWeight {
				capped[i] = true
				overflow = true
			}
		}
		if !overflow {
			break
		}
	}

	for i := range out {
		switch {
		case !active[i]:
			out[i] = 0
		case capped[i]:
			out[i] = MaxWeight
		}
	}
	return out
}

func allActive() [learning.NumCategories]bool {
	return [learning.NumCategories]bool{true, true, true, true}
}

func clamp(x, lo, hi float64) float64 {
	return math.Min(math.Max(x, lo), hi)
}
