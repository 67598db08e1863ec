package learning

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/strandcoach/internal/domain"
	"github.com/yungbote/strandcoach/internal/platform/dbctx"
	"github.com/yungbote/strandcoach/internal/platform/logger"
)

type ConceptEdgeRepo interface {
	CreateIgnoreDuplicates(dbc dbctx.Context, rows []*types.PrerequisiteEdge) (int, error)
	ListAll(dbc dbctx.Context) ([]*types.PrerequisiteEdge, error)
	FullDeleteAll(dbc dbctx.Context) error
}

type conceptEdgeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConceptEdgeRepo(db *gorm.DB, baseLog *logger.Logger) ConceptEdgeRepo {
	return &conceptEdgeRepo{db: db, log: baseLog.With("repo", "ConceptEdgeRepo")}
}

func (r *conceptEdgeRepo) CreateIgnoreDuplicates(dbc dbctx.Context, rows []*types.PrerequisiteEdge) (int, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return 0, nil
	}
	res := t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "prerequisite_id"}, {Name: "dependent_id"}},
			DoNothing: true,
		}).
		Create(&rows)
	if res.Error != nil {
		return 0, res.Error
	}
	return int(res.RowsAffected), nil
}

func (r *conceptEdgeRepo) ListAll(dbc dbctx.Context) ([]*types.PrerequisiteEdge, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.PrerequisiteEdge
	if err := t.WithContext(dbc.Ctx).Order("dependent_id ASC, prerequisite_id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *conceptEdgeRepo) FullDeleteAll(dbc dbctx.Context) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).Where("1 = 1").Delete(&types.PrerequisiteEdge{}).Error
}
