package planner

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/yungbote/strandcoach/internal/domain/learning"
	"github.com/yungbote/strandcoach/internal/modules/learning/frontier"
	coacherr "github.com/yungbote/strandcoach/internal/pkg/errors"
)

var now = time.Date(2026, 4, 2, 18, 0, 0, 0, time.UTC)

type fakeSource struct {
	history  learning.CategoryVector
	due      []*learning.Card
	fresh    []*learning.Card
	frontier []frontier.Candidate
	fluency  []*learning.Card
	err      error
}

func (f *fakeSource) CategoryHistory(context.Context, string, int) (learning.CategoryVector, error) {
	return f.history, f.err
}

func (f *fakeSource) DueReviews(context.Context, time.Time, int) ([]*learning.Card, error) {
	return f.due, nil
}

func (f *fakeSource) Unstarted(context.Context, learning.ProficiencyProfile, int) ([]*learning.Card, error) {
	return f.fresh, nil
}

func (f *fakeSource) Frontier(context.Context, learning.ProficiencyProfile, int) ([]frontier.Candidate, error) {
	return f.frontier, nil
}

func (f *fakeSource) Fluency(context.Context, learning.ProficiencyProfile, int) ([]*learning.Card, error) {
	return f.fluency, nil
}

func cards(prefix string, n int, cat learning.Category) []*learning.Card {
	out := make([]*learning.Card, 0, n)
	for i := 0; i < n; i++ {
		concept := fmt.Sprintf("%s.%02d", prefix, i)
		out = append(out, learning.NewCard(learning.BootstrapItemID(concept), concept, cat, learning.SkillWriting))
	}
	return out
}

func plan(t *testing.T, src *fakeSource, d time.Duration, pref *learning.CategoryVector) *Plan {
	t.Helper()
	p, err := NewAllocator(src, DefaultConfig(), nil).Plan(context.Background(), Request{
		LearnerID:  "learner",
		Duration:   d,
		Preference: pref,
		Profile:    learning.DefaultProfile("learner"),
		Now:        now,
	})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	return p
}

func countByCategory(p *Plan) [learning.NumCategories]int {
	var out [learning.NumCategories]int
	for _, ex := range p.Exercises {
		out[ex.Category.Index()]++
	}
	return out
}

func TestPlan_OnlyExplicitStudyAvailable(t *testing.T) {
	src := &fakeSource{fresh: cards("lex", 30, learning.CategoryExplicitStudy)}
	p := plan(t, src, 20*time.Minute, nil)

	if diff := cmp.Diff(learning.CategoryVector{1, 1, 1, 1}, p.BaseWeights); diff != "" {
		t.Fatalf("base weights (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(learning.CategoryVector{0, 0, 2, 0}, p.Weights); diff != "" {
		t.Fatalf("weights (-want +got):\n%s", diff)
	}
	if got := countByCategory(p); got != [4]int{0, 0, 10, 0} {
		t.Fatalf("counts %v", got)
	}
	if p.FilledSeconds != (learning.CategoryVector{0, 0, 600, 0}) {
		t.Fatalf("filled %v", p.FilledSeconds)
	}
	for _, ex := range p.Exercises {
		if ex.Source != learning.SourceNew || ex.ExerciseType != ExerciseControlledDrill || ex.EstimatedSeconds != 60 {
			t.Fatalf("unexpected exercise %+v", ex)
		}
	}
	if p.BalanceStatus != "balanced" {
		t.Fatalf("empty history should read as balanced, got %s", p.BalanceStatus)
	}
}

func TestPlan_ShortfallIsNotRedistributed(t *testing.T) {
	src := &fakeSource{
		frontier: []frontier.Candidate{{ConceptID: "topic.market", Category: learning.CategoryComprehensionInput, Skill: learning.SkillReading}},
		fresh: append(
			cards("can", 20, learning.CategoryCommunicativeOutput),
			cards("lex", 20, learning.CategoryExplicitStudy)...,
		),
		fluency: cards("flu", 20, learning.CategoryExplicitStudy),
	}
	p := plan(t, src, 20*time.Minute, nil)

	want := learning.CategoryVector{120, 300, 300, 300}
	if p.FilledSeconds != want {
		t.Fatalf("filled %v want %v", p.FilledSeconds, want)
	}
	if p.ShortfallSeconds[0] != 180 {
		t.Fatalf("comprehension shortfall %v", p.ShortfallSeconds[0])
	}
	if got := countByCategory(p); got != [4]int{1, 5, 5, 5} {
		t.Fatalf("counts %v", got)
	}

	boot := p.BootstrapConcepts()
	if len(boot) != 1 || boot[0].ItemID != "topic.market.001" || boot[0].Source != learning.SourceFrontier || boot[0].ExerciseType != ExerciseComprehension {
		t.Fatalf("bootstrap exercises %+v", boot)
	}
	for _, ex := range p.Exercises {
		if ex.Category == learning.CategoryFluencyAutomaticity && (ex.Source != learning.SourceFluency || ex.ExerciseType != ExerciseSpeedDrill) {
			t.Fatalf("fluency exercise %+v", ex)
		}
	}
}

func TestPlan_DueBeforeNewAndNoExplicitFrontier(t *testing.T) {
	last := now.Add(-30 * 24 * time.Hour)
	due := cards("due", 2, learning.CategoryExplicitStudy)
	for _, c := range due {
		c.Repetitions, c.Stability, c.QualityTotal, c.LastReviewedAt = 2, 3, 8, &last
		c.MasteryStatus = learning.MasteryLearning
	}
	src := &fakeSource{
		due:   due,
		fresh: cards("lex", 10, learning.CategoryExplicitStudy),
		frontier: []frontier.Candidate{
			{ConceptID: "morph.ar", Category: learning.CategoryExplicitStudy},
		},
	}
	// Only explicit study has candidates, so it gets the capped weight of 2:
	// 8 minutes * 2/4 = 4 one-minute drills.
	p := plan(t, src, 8*time.Minute, nil)

	var got []string
	for _, ex := range p.Exercises {
		got = append(got, ex.ItemID+"/"+string(ex.Source))
	}
	want := []string{"due.00.001/due", "due.01.001/due", "lex.00.001/new", "lex.01.001/new"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("order (-want +got):\n%s", diff)
	}
}

func TestPlan_PreferenceShiftsTargets(t *testing.T) {
	src := &fakeSource{
		fresh: append(
			cards("can", 40, learning.CategoryCommunicativeOutput),
			cards("lex", 40, learning.CategoryExplicitStudy)...,
		),
	}
	pref := learning.CategoryVector{0, 2, 2, 0}
	p := plan(t, src, 20*time.Minute, &pref)
	want := learning.CategoryVector{0, 2, 2, 0}
	for i := range want {
		if math.Abs(p.Weights[i]-want[i]) > 1e-9 {
			t.Fatalf("weights %v want %v", p.Weights, want)
		}
	}
	if math.Abs(p.BaseWeights.Sum()-4) > 1e-9 {
		t.Fatalf("base sum %v", p.BaseWeights.Sum())
	}
}

func TestPlan_EmptyPoolsYieldEmptyPlan(t *testing.T) {
	p := plan(t, &fakeSource{}, 20*time.Minute, nil)
	if len(p.Exercises) != 0 || p.Exercises == nil {
		t.Fatalf("exercises %v", p.Exercises)
	}
	if p.Notes != "No materials available for any category" {
		t.Fatalf("notes %q", p.Notes)
	}
}

func TestPlan_Validation(t *testing.T) {
	a := NewAllocator(&fakeSource{}, DefaultConfig(), nil)
	for _, req := range []Request{
		{LearnerID: "", Duration: time.Minute},
		{LearnerID: "x", Duration: 0},
		{LearnerID: "x", Duration: -time.Minute},
		{LearnerID: "x", Duration: 5 * time.Hour},
	} {
		if _, err := a.Plan(context.Background(), req); !errors.Is(err, coacherr.ErrValidation) {
			t.Fatalf("req %+v: err=%v", req, err)
		}
	}
}

func TestPlan_SourceErrorPropagates(t *testing.T) {
	boom := errors.New("boom")
	_, err := NewAllocator(&fakeSource{err: boom}, DefaultConfig(), nil).Plan(context.Background(), Request{LearnerID: "x", Duration: time.Minute, Now: now})
	if !errors.Is(err, boom) {
		t.Fatalf("err=%v", err)
	}
}

func TestPlan_DueCardIsNotAlsoPlannedAsFluency(t *testing.T) {
	card := learning.NewCard("lex.a.001", "lex.a", learning.CategoryExplicitStudy, learning.SkillWriting)
	card.MasteryStatus = learning.MasteryMastered
	card.Repetitions = 5
	src := &fakeSource{
		due:     []*learning.Card{card},
		fluency: []*learning.Card{card},
	}
	p := plan(t, src, 10*time.Minute, nil)

	var occurrences []learning.Exercise
	for _, ex := range p.Exercises {
		if ex.ItemID == card.ItemID {
			occurrences = append(occurrences, ex)
		}
	}
	if len(occurrences) != 1 {
		t.Fatalf("occurrences = %d, want 1: %+v", len(occurrences), p.Exercises)
	}
	if ex := occurrences[0]; ex.Source != learning.SourceDue || ex.Category != learning.CategoryExplicitStudy {
		t.Fatalf("kept %+v, want the due review", ex)
	}
	if p.FilledSeconds[learning.CategoryFluencyAutomaticity.Index()] != 0 {
		t.Fatalf("fluency filled %v", p.FilledSeconds)
	}
}
