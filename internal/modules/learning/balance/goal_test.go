package balance

import (
	"testing"

	"github.com/yungbote/strandcoach/internal/domain/learning"
)

func TestPreferenceForGoal(t *testing.T) {
	cases := []struct {
		name   string
		goal   string
		shares *learning.CategoryVector
		want   learning.CategoryVector
	}{
		{"no_keyword", "just practice", nil, learning.CategoryVector{1, 1, 1, 1}},
		// 1.5, 2, 1, 1 sums to 5.5.
		{"travel", "Planning a TRIP to Madrid", nil, learning.CategoryVector{1.5 * 4 / 5.5, 2 * 4 / 5.5, 4 / 5.5, 4 / 5.5}},
		// 2.5 clamps to 2; 1, 0.5, 2, 1 sums to 4.5.
		{"grammar", "fix my grammar mistakes", nil, learning.CategoryVector{4 / 4.5, 0.5 * 4 / 4.5, 2 * 4 / 4.5, 4 / 4.5}},
		// explicit study is over-represented: 2.5*0.5 = 1.25; 1, 0.5, 1.25, 1 sums to 3.75.
		{"grammar_overrepresented", "grammar", &learning.CategoryVector{0.1, 0.1, 0.7, 0.1}, learning.CategoryVector{4 / 3.75, 0.5 * 4 / 3.75, 1.25 * 4 / 3.75, 4 / 3.75}},
		// first matching rule wins: travel before speaking.
		{"first_rule_wins", "talk at the hotel", nil, learning.CategoryVector{1.5 * 4 / 5.5, 2 * 4 / 5.5, 4 / 5.5, 4 / 5.5}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := PreferenceForGoal(tc.goal, tc.shares)
			if !vecNear(got, tc.want) {
				t.Fatalf("got %v want %v", got, tc.want)
			}
			if !near(got.Sum(), WeightTotal) {
				t.Fatalf("sum %v", got.Sum())
			}
		})
	}
}
