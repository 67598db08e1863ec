package learning

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yungbote/strandcoach/internal/data/repos/testutil"
	types "github.com/yungbote/strandcoach/internal/domain"
	"github.com/yungbote/strandcoach/internal/domain/learning"
	coacherr "github.com/yungbote/strandcoach/internal/pkg/errors"
	"github.com/yungbote/strandcoach/internal/platform/dbctx"
)

func TestCardRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewCardRepo(db, testutil.Logger(t))

	a := learning.NewCard("lex.a.001", "lex.a", learning.CategoryExplicitStudy, learning.SkillWriting)
	b := learning.NewCard("cando.b.001", "cando.b", learning.CategoryCommunicativeOutput, learning.SkillSpeaking)
	if n, err := repo.CreateIgnoreDuplicates(dbc, []*types.Card{a, b}); err != nil || n != 2 {
		t.Fatalf("CreateIgnoreDuplicates: n=%d err=%v", n, err)
	}

	dup := learning.NewCard("lex.a.001", "lex.a", learning.CategoryExplicitStudy, learning.SkillWriting)
	fresh := learning.NewCard("topic.c.001", "topic.c", learning.CategoryComprehensionInput, learning.SkillReading)
	n, err := repo.CreateIgnoreDuplicates(dbc, []*types.Card{dup, fresh})
	if err != nil || n != 1 {
		t.Fatalf("CreateIgnoreDuplicates: n=%d err=%v", n, err)
	}

	if got, err := repo.GetByID(dbc, "lex.a.001"); err != nil || got == nil || got.ConceptID != "lex.a" {
		t.Fatalf("GetByID: got=%v err=%v", got, err)
	}
	if got, err := repo.GetByID(dbc, "missing"); err != nil || got != nil {
		t.Fatalf("GetByID(missing): got=%v err=%v", got, err)
	}
	if rows, err := repo.ListAll(dbc); err != nil || len(rows) != 3 || rows[0].ItemID != "cando.b.001" {
		t.Fatalf("ListAll: err=%v rows=%v", err, rows)
	}

	last := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	a.Stability = 2.4
	a.Difficulty = 4.93
	a.Repetitions = 1
	a.QualityTotal = 3
	a.LastReviewedAt = &last
	a.MasteryStatus = learning.MasteryLearning
	if err := repo.UpdateSchedule(dbc, a); err != nil {
		t.Fatalf("UpdateSchedule: %v", err)
	}
	got, err := repo.GetByID(dbc, a.ItemID)
	if err != nil || got == nil {
		t.Fatalf("GetByID after update: got=%v err=%v", got, err)
	}
	if got.Stability != 2.4 || got.Repetitions != 1 || got.MasteryStatus != learning.MasteryLearning {
		t.Fatalf("UpdateSchedule did not persist: %+v", got)
	}
	if got.LastReviewedAt == nil || !got.LastReviewedAt.Equal(last) {
		t.Fatalf("last_reviewed_at: got=%v want=%v", got.LastReviewedAt, last)
	}


	ghost := learning.NewCard("ghost", "ghost", learning.CategoryExplicitStudy, learning.SkillNone)
	if err := repo.UpdateSchedule(dbc, ghost); !errors.Is(err, coacherr.ErrNotFound) {
		t.Fatalf("UpdateSchedule(missing): want ErrNotFound, got %v", err)
	}

	if n, err := repo.SetMasteryStatus(dbc, []string{a.ItemID}, learning.MasteryFluencyEligible); err != nil || n != 1 {
		t.Fatalf("SetMasteryStatus: n=%d err=%v", n, err)
	}
	if _, err := repo.SetMasteryStatus(dbc, []string{a.ItemID}, "bogus"); !errors.Is(err, coacherr.ErrValidation) {
		t.Fatalf("SetMasteryStatus(bogus): want validation error, got %v", err)
	}
}
