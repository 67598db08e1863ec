package balance

import (
	"strings"
	"testing"

	"github.com/yungbote/strandcoach/internal/domain/learning"
)

func TestStatus(t *testing.T) {
	cases := []struct {
		shares learning.CategoryVector
		want   string
	}{
		{learning.CategoryVector{0.25, 0.25, 0.25, 0.25}, StatusBalanced},
		{learning.CategoryVector{0.29, 0.21, 0.25, 0.25}, StatusBalanced},
		{learning.CategoryVector{0.33, 0.17, 0.25, 0.25}, StatusSlightImbalance},
		{learning.CategoryVector{0, 0, 1, 0}, StatusSevereImbalance},
	}
	for _, tc := range cases {
		if got := Status(tc.shares); got != tc.want {
			t.Fatalf("Status(%v)=%s want %s", tc.shares, got, tc.want)
		}
	}
	if NeedsAttention(learning.CategoryVector{0.33, 0.17, 0.25, 0.25}) {
		t.Fatalf("slight imbalance should not need attention")
	}
	if !NeedsAttention(learning.CategoryVector{0, 0, 1, 0}) {
		t.Fatalf("severe imbalance should need attention")
	}
}

func TestNotes_MentionsEmphasisAndCounts(t *testing.T) {
	exercises := []learning.Exercise{
		{ItemID: "a", Category: learning.CategoryComprehensionInput},
		{ItemID: "b", Category: learning.CategoryComprehensionInput},
		{ItemID: "c", Category: learning.CategoryFluencyAutomaticity},
	}
	notes := Notes(
		learning.CategoryVector{0, 0, 1, 0},
		learning.CategoryVector{4.0 / 3, 4.0 / 3, 0, 4.0 / 3},
		exercises,
	)
	for _, want := range []string{
		"explicit_study: 100.0%",
		"comprehension_input, communicative_output (rebalancing)",
		"comprehension_input: 2",
		"fluency_automaticity: 1",
		"explicit_study: 0",
	} {
		if !strings.Contains(notes, want) {
			t.Fatalf("notes missing %q:\n%s", want, notes)
		}
	}
	if g := Guidance(StatusSevereImbalance); !strings.Contains(g, "needs correction") {
		t.Fatalf("guidance %q", g)
	}
}
