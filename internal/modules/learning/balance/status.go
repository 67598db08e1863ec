package balance

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/yungbote/strandcoach/internal/domain/learning"
)

const (
	StatusBalanced        = "balanced"
	StatusSlightImbalance = "slight_imbalance"
	StatusSevereImbalance = "severe_imbalance"
)

// MaxDeviation is the largest absolute distance of any share from TargetShare.
func MaxDeviation(shares learning.CategoryVector) float64 {
	m := 0.0
	for _, d := range Deviation(shares) {
		m = math.Max(m, math.Abs(d))
	}
	return m
}

func Status(shares learning.CategoryVector) string {
	switch d := MaxDeviation(shares); {
	case d <= tolerance:
		return StatusBalanced
	case d <= moderateBand:
		return StatusSlightImbalance
	default:
		return StatusSevereImbalance
	}
}

// NeedsAttention is true once any category strays past the moderate band.
func NeedsAttention(shares learning.CategoryVector) bool {
	return MaxDeviation(shares) > moderateBand
}

// Guidance is the one-line instruction handed to the coach with a plan.
func Guidance(status string) string {
	switch status {
	case StatusBalanced:
		return "Category balance is good. Proceed with the planned exercises."
	case StatusSlightImbalance:
		return "Category balance is slightly off. This session emphasizes under-represented categories."
	default:
		return "Category balance needs correction. Focus on exercises that restore balance."
	}
}

// Notes summarizes recent shares, the emphasized categories and the per
// category exercise counts of a plan.
func Notes(shares, weights learning.CategoryVector, exercises []learning.Exercise) string {
	var b strings.Builder
	b.WriteString("Recent category distribution:\n")
	for i, c := range learning.Categories {
		fmt.Fprintf(&b, "  %s: %.1f%%\n", c, shares[i]*100)
	}

	order := []int{0, 1, 2, 3}
	sort.SliceStable(order, func(i, j int) bool { return weights[order[i]] > weights[order[j]] })
	var emphasized []string
	for _, i := range order[:2] {
		if weights[i] > 1.1 {
			emphasized = append(emphasized, string(learning.Categories[i]))
		}
	}
	if len(emphasized) > 0 {
		fmt.Fprintf(&b, "This session emphasizes: %s (rebalancing)\n", strings.Join(emphasized, ", "))
	}

	var counts [learning.NumCategories]int
	for _, ex := range exercises {
		if i := ex.Category.Index(); i >= 0 {
			counts[i]++
		}
	}
	b.WriteString("Exercises selected:")
	for i, c := range learning.Categories {
		fmt.Fprintf(&b, "\n  %s: %d", c, counts[i])
	}
	return b.String()
}
