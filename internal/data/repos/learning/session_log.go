package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/strandcoach/internal/domain"
	"github.com/yungbote/strandcoach/internal/domain/learning"
	coacherr "github.com/yungbote/strandcoach/internal/pkg/errors"
	"github.com/yungbote/strandcoach/internal/platform/dbctx"
	"github.com/yungbote/strandcoach/internal/platform/logger"
)

type SessionLogRepo interface {
	Create(dbc dbctx.Context, row *types.SessionRecord) (*types.SessionRecord, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.SessionRecord, error)
	GetByIDForUpdate(dbc dbctx.Context, id uuid.UUID) (*types.SessionRecord, error)
	ListInProgress(dbc dbctx.Context, learnerID string) ([]*types.SessionRecord, error)
	// RecentStartedIDs returns the ids of the learner's last n started
	// sessions, newest first.
	RecentStartedIDs(dbc dbctx.Context, learnerID string, n int) ([]uuid.UUID, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type sessionLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSessionLogRepo(db *gorm.DB, baseLog *logger.Logger) SessionLogRepo {
	return &sessionLogRepo{db: db, log: baseLog.With("repo", "SessionLogRepo")}
}

func (r *sessionLogRepo) Create(dbc dbctx.Context, row *types.SessionRecord) (*types.SessionRecord, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if row.State == "" {
		row.State = learning.SessionUnstarted
	}
	if err := t.WithContext(dbc.Ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *sessionLogRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.SessionRecord, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.SessionRecord
	if err := t.WithContext(dbc.Ctx).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

// GetByIDForUpdate locks the row on databases that support row locks. SQLite
// serializes writers on its own, so the lock clause is skipped there.
func (r *sessionLogRepo) GetByIDForUpdate(dbc dbctx.Context, id uuid.UUID) (*types.SessionRecord, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	q := t.WithContext(dbc.Ctx)
	if q.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var out []*types.SessionRecord
	if err := q.Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *sessionLogRepo) ListInProgress(dbc dbctx.Context, learnerID string) ([]*types.SessionRecord, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.SessionRecord
	if err := t.WithContext(dbc.Ctx).
		Where("learner_id = ? AND state = ?", learnerID, learning.SessionInProgress).
		Order("started_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *sessionLogRepo) RecentStartedIDs(dbc dbctx.Context, learnerID string, n int) ([]uuid.UUID, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []uuid.UUID
	if n <= 0 {
		return out, nil
	}
	var rows []*types.SessionRecord
	if err := t.WithContext(dbc.Ctx).
		Select("id").
		Where("learner_id = ? AND started_at IS NOT NULL", learnerID).
		Order("started_at DESC").
		Limit(n).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out = append(out, row.ID)
	}
	return out, nil
}

func (r *sessionLogRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return coacherr.Invalid("session_id", id, "required")
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	res := t.WithContext(dbc.Ctx).Model(&types.SessionRecord{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return coacherr.ErrNotFound
	}
	return nil
}
