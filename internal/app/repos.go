package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/strandcoach/internal/data/repos"
	"github.com/yungbote/strandcoach/internal/platform/logger"
)

type Repos struct {
	Card        repos.CardRepo
	ReviewEvent repos.ReviewEventRepo
	SessionLog  repos.SessionLogRepo
	Concept     repos.ConceptRepo
	ConceptEdge repos.ConceptEdgeRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Card:        repos.NewCardRepo(db, log),
		ReviewEvent: repos.NewReviewEventRepo(db, log),
		SessionLog:  repos.NewSessionLogRepo(db, log),
		Concept:     repos.NewConceptRepo(db, log),
		ConceptEdge: repos.NewConceptEdgeRepo(db, log),
	}
}
