package learning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/strandcoach/internal/domain"
	"github.com/yungbote/strandcoach/internal/domain/learning"
	"github.com/yungbote/strandcoach/internal/platform/dbctx"
	"github.com/yungbote/strandcoach/internal/platform/logger"
)

// ReviewEventRepo is append-only: events are never updated or deleted.
type ReviewEventRepo interface {
	Create(dbc dbctx.Context, row *types.ReviewEvent) (*types.ReviewEvent, error)
	ListBySessionID(dbc dbctx.Context, sessionID uuid.UUID) ([]*types.ReviewEvent, error)
	ListByItemID(dbc dbctx.Context, itemID string) ([]*types.ReviewEvent, error)
	SumDurationByCategory(dbc dbctx.Context, sessionIDs []uuid.UUID) (types.CategoryVector, error)
}

type reviewEventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReviewEventRepo(db *gorm.DB, baseLog *logger.Logger) ReviewEventRepo {
	return &reviewEventRepo{db: db, log: baseLog.With("repo", "ReviewEventRepo")}
}

func (r *reviewEventRepo) Create(dbc dbctx.Context, row *types.ReviewEvent) (*types.ReviewEvent, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if err := t.WithContext(dbc.Ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *reviewEventRepo) ListBySessionID(dbc dbctx.Context, sessionID uuid.UUID) ([]*types.ReviewEvent, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.ReviewEvent
	if sessionID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("session_id = ?", sessionID).
		Order("reviewed_at ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *reviewEventRepo) ListByItemID(dbc dbctx.Context, itemID string) ([]*types.ReviewEvent, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.ReviewEvent
	if itemID == "" {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("item_id = ?", itemID).
		Order("reviewed_at ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// SumDurationByCategory totals review time per category across sessions.
// Rows with a category outside the canonical set are ignored.
func (r *reviewEventRepo) SumDurationByCategory(dbc dbctx.Context, sessionIDs []uuid.UUID) (types.CategoryVector, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out types.CategoryVector
	if len(sessionIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		Category string
		Total    float64
	}
	if err := t.WithContext(dbc.Ctx).
		Model(&types.ReviewEvent{}).
		Select("category, COALESCE(SUM(duration_seconds), 0) AS total").
		Where("session_id IN ?", sessionIDs).
		Group("category").
		Scan(&rows).Error; err != nil {
		return out, err
	}
	for _, row := range rows {
		c, err := learning.ParseCategory(row.Category)
		if err != nil {
			r.log.Warn("Ignoring review time with unknown category", "category", row.Category)
			continue
		}
		out.Add(c, row.Total)
	}
	return out, nil
}
