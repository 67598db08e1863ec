package learning

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/strandcoach/internal/data/repos/testutil"
	types "github.com/yungbote/strandcoach/internal/domain"
	"github.com/yungbote/strandcoach/internal/domain/learning"
	"github.com/yungbote/strandcoach/internal/platform/dbctx"
)

func TestReviewEventRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewReviewEventRepo(db, testutil.Logger(t))

	s1 := uuid.New()
	s2 := uuid.New()
	other := uuid.New()
	testutil.SeedReviewEvent(t, ctx, tx, s1, "lex.a.001", learning.CategoryExplicitStudy, 60)
	testutil.SeedReviewEvent(t, ctx, tx, s1, "lex.b.001", learning.CategoryExplicitStudy, 45)
	testutil.SeedReviewEvent(t, ctx, tx, s2, "topic.a.001", learning.CategoryComprehensionInput, 120)
	testutil.SeedReviewEvent(t, ctx, tx, other, "cando.a.001", learning.CategoryCommunicativeOutput, 300)

	now := time.Now().UTC()
	ev := &types.ReviewEvent{
		LearnerID:     "learner",
		SessionID:     s2,
		ItemID:        "lex.a.001",
		Category:      learning.CategoryFluencyAutomaticity,
		Quality:       5,
		ReviewedAt:    now,
		MasteryBefore: learning.MasteryMastered,
		MasteryAfter:  learning.MasteryMastered,
		NextDueAt:     now,
	}
	if _, err := repo.Create(dbc, ev); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if ev.ID == uuid.Nil {
		t.Fatalf("Create did not assign an id")
	}

	if rows, err := repo.ListBySessionID(dbc, s1); err != nil || len(rows) != 2 {
		t.Fatalf("ListBySessionID: err=%v len=%d", err, len(rows))
	}
	if rows, err := repo.ListByItemID(dbc, "lex.a.001"); err != nil || len(rows) != 2 {
		t.Fatalf("ListByItemID: err=%v len=%d", err, len(rows))
	}

	got, err := repo.SumDurationByCategory(dbc, []uuid.UUID{s1, s2})
	if err != nil {
		t.Fatalf("SumDurationByCategory: %v", err)
	}
	want := types.CategoryVector{120, 0, 105, 0}
	if got != want {
		t.Fatalf("SumDurationByCategory: got=%v want=%v", got, want)
	}
	if got, err := repo.SumDurationByCategory(dbc, nil); err != nil || got.Sum() != 0 {
		t.Fatalf("SumDurationByCategory(nil): got=%v err=%v", got, err)
	}
}
