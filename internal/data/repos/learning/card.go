package learning

import (
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/strandcoach/internal/domain"
	"github.com/yungbote/strandcoach/internal/domain/learning"
	coacherr "github.com/yungbote/strandcoach/internal/pkg/errors"
	"github.com/yungbote/strandcoach/internal/platform/dbctx"
	"github.com/yungbote/strandcoach/internal/platform/logger"
)

type CardRepo interface {
	CreateIgnoreDuplicates(dbc dbctx.Context, rows []*types.Card) (int, error)

	GetByID(dbc dbctx.Context, itemID string) (*types.Card, error)
	ListAll(dbc dbctx.Context) ([]*types.Card, error)

	UpdateSchedule(dbc dbctx.Context, row *types.Card) error
	SetMasteryStatus(dbc dbctx.Context, itemIDs []string, status types.MasteryStatus) (int, error)
}

type cardRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCardRepo(db *gorm.DB, baseLog *logger.Logger) CardRepo {
	return &cardRepo{db: db, log: baseLog.With("repo", "CardRepo")}
}

// CreateIgnoreDuplicates inserts rows whose item_id is not taken yet and
// returns how many were inserted.
func (r *cardRepo) CreateIgnoreDuplicates(dbc dbctx.Context, rows []*types.Card) (int, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return 0, nil
	}
	res := t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "item_id"}},
			DoNothing: true,
		}).
		Create(&rows)
	if res.Error != nil {
		return 0, res.Error
	}
	return int(res.RowsAffected), nil
}

func (r *cardRepo) GetByID(dbc dbctx.Context, itemID string) (*types.Card, error) {
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return nil, nil
	}
	rows, err := r.getByIDs(dbc, []string{itemID})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *cardRepo) getByIDs(dbc dbctx.Context, itemIDs []string) ([]*types.Card, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Card
	if len(itemIDs) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("item_id IN ?", itemIDs).
		Order("item_id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *cardRepo) ListAll(dbc dbctx.Context) ([]*types.Card, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Card
	if err := t.WithContext(dbc.Ctx).Order("item_id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateSchedule writes the scheduling and mastery fields of row.
func (r *cardRepo) UpdateSchedule(dbc dbctx.Context, row *types.Card) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row == nil || strings.TrimSpace(row.ItemID) == "" {
		return coacherr.Invalid("item_id", "", "required")
	}
	now := time.Now().UTC()
	res := t.WithContext(dbc.Ctx).
		Model(&types.Card{}).
		Where("item_id = ?", row.ItemID).
		Updates(map[string]interface{}{
			"stability":        row.Stability,
			"difficulty":       row.Difficulty,
			"repetitions":      row.Repetitions,
			"quality_total":    row.QualityTotal,
			"last_reviewed_at": row.LastReviewedAt,
			"mastery_status":   row.MasteryStatus,
			"updated_at":       now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return coacherr.ErrNotFound
	}
	row.UpdatedAt = now
	return nil
}

func (r *cardRepo) SetMasteryStatus(dbc dbctx.Context, itemIDs []string, status types.MasteryStatus) (int, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(itemIDs) == 0 {
		return 0, nil
	}
	if _, err := learning.ParseMasteryStatus(string(status)); err != nil {
		return 0, coacherr.Invalid("mastery_status", status, err.Error())
	}
	res := t.WithContext(dbc.Ctx).
		Model(&types.Card{}).
		Where("item_id IN ?", itemIDs).
		Updates(map[string]interface{}{
			"mastery_status": status,
			"updated_at":     time.Now().UTC(),
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return int(res.RowsAffected), nil
}
