package learning

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/strandcoach/internal/domain"
	"github.com/yungbote/strandcoach/internal/platform/dbctx"
	"github.com/yungbote/strandcoach/internal/platform/logger"
)

type ConceptRepo interface {
	Upsert(dbc dbctx.Context, rows []*types.ConceptNode) error
	ListAll(dbc dbctx.Context) ([]*types.ConceptNode, error)
	FullDeleteAll(dbc dbctx.Context) error
}

type conceptRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConceptRepo(db *gorm.DB, baseLog *logger.Logger) ConceptRepo {
	return &conceptRepo{db: db, log: baseLog.With("repo", "ConceptRepo")}
}

func (r *conceptRepo) Upsert(dbc dbctx.Context, rows []*types.ConceptNode) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for _, row := range rows {
		if row.CreatedAt.IsZero() {
			row.CreatedAt = now
		}
		row.UpdatedAt = now
	}
	return t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "concept_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"level", "type", "label", "updated_at"}),
		}).
		Create(&rows).Error
}

func (r *conceptRepo) ListAll(dbc dbctx.Context) ([]*types.ConceptNode, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.ConceptNode
	if err := t.WithContext(dbc.Ctx).Order("concept_id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *conceptRepo) FullDeleteAll(dbc dbctx.Context) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).Where("1 = 1").Delete(&types.ConceptNode{}).Error
}
