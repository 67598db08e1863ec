package app

import (
	"context"
	"time"

	"github.com/yungbote/strandcoach/internal/clients/redis"
	"github.com/yungbote/strandcoach/internal/modules/learning/planner"
	"github.com/yungbote/strandcoach/internal/platform/logger"
	"github.com/yungbote/strandcoach/internal/platform/neo4jdb"
)

type Clients struct {
	Neo4j     *neo4jdb.Client
	PlanCache planner.Cache
	redis     *redis.PlanCache
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	sel, err := resolveProviders(cfg)
	if err != nil {
		return Clients{}, err
	}
	log.Info("Providers resolved",
		"graph_mode", string(sel.Graph),
		"graph_mode_source", sel.GraphSource,
		"plan_cache_mode", string(sel.PlanCache),
		"plan_cache_mode_source", sel.PlanCacheSource,
	)

	var out Clients
	if sel.Graph == GraphProviderNeo4j {
		client, err := neo4jdb.New(cfg.Neo4j, log)
		if err != nil {
			return Clients{}, &ProviderBootstrapError{Code: ProviderErrNeo4jInit, Provider: "graph", Mode: string(sel.Graph), Cause: err}
		}
		out.Neo4j = client
	}

	switch sel.PlanCache {
	case PlanCacheProviderRedis:
		cache, err := redis.NewPlanCache(cfg.RedisAddr, cfg.RedisPrefix, log)
		if err != nil {
			out.Close()
			return Clients{}, &ProviderBootstrapError{Code: ProviderErrRedisInit, Provider: "plan_cache", Mode: string(sel.PlanCache), Cause: err}
		}
		out.redis = cache
		out.PlanCache = cache
	default:
		out.PlanCache = planner.NewMemoryCache()
	}
	return out, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.redis != nil {
		_ = c.redis.Close()
		c.redis = nil
	}
	if c.Neo4j != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = c.Neo4j.Close(ctx)
		cancel()
		c.Neo4j = nil
	}
}
