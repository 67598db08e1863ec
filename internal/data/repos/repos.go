package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/strandcoach/internal/data/repos/learning"
	"github.com/yungbote/strandcoach/internal/platform/logger"
)

type CardRepo = learning.CardRepo
type ReviewEventRepo = learning.ReviewEventRepo
type SessionLogRepo = learning.SessionLogRepo
type ConceptRepo = learning.ConceptRepo
type ConceptEdgeRepo = learning.ConceptEdgeRepo

func NewCardRepo(db *gorm.DB, baseLog *logger.Logger) CardRepo {
	return learning.NewCardRepo(db, baseLog)
}

func NewReviewEventRepo(db *gorm.DB, baseLog *logger.Logger) ReviewEventRepo {
	return learning.NewReviewEventRepo(db, baseLog)
}

func NewSessionLogRepo(db *gorm.DB, baseLog *logger.Logger) SessionLogRepo {
	return learning.NewSessionLogRepo(db, baseLog)
}

func NewConceptRepo(db *gorm.DB, baseLog *logger.Logger) ConceptRepo {
	return learning.NewConceptRepo(db, baseLog)
}

func NewConceptEdgeRepo(db *gorm.DB, baseLog *logger.Logger) ConceptEdgeRepo {
	return learning.NewConceptEdgeRepo(db, baseLog)
}
