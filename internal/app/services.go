package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/strandcoach/internal/data/graph"
	"github.com/yungbote/strandcoach/internal/data/profile"
	"github.com/yungbote/strandcoach/internal/modules/learning/frontier"
	"github.com/yungbote/strandcoach/internal/observability"
	"github.com/yungbote/strandcoach/internal/platform/logger"
	"github.com/yungbote/strandcoach/internal/services"
)

type Services struct {
	Coach    services.CoachService
	Graph    frontier.Reader
	Profiles profile.Store
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, clients Clients, metrics *observability.Metrics) Services {
	log.Info("Wiring services...")

	var reader frontier.Reader = graph.NewSQLReader(db, log)
	if clients.Neo4j != nil {
		reader = graph.NewNeo4jReader(clients.Neo4j, log)
	}
	profiles := profile.NewFileStore(cfg.ProfilePath, log)

	coachCfg := services.DefaultCoachConfig()
	coachCfg.Planner = cfg.Planner
	coachCfg.CacheTTL = cfg.PlanCacheTTL

	coach := services.NewCoachService(db, log, services.CoachDeps{
		Cards:    repos.Card,
		Events:   repos.ReviewEvent,
		Sessions: repos.SessionLog,
		Graph:    reader,
		Profiles: profiles,
		Cache:    clients.PlanCache,
		Metrics:  metrics,
	}, coachCfg)

	return Services{
		Coach:    coach,
		Graph:    reader,
		Profiles: profiles,
	}
}
