package app

import (
	"errors"
	"fmt"
	"strings"
)

type GraphProvider string

const (
	GraphProviderSQL   GraphProvider = "sql"
	GraphProviderNeo4j GraphProvider = "neo4j"
)

type PlanCacheProvider string

const (
	PlanCacheProviderMemory PlanCacheProvider = "memory"
	PlanCacheProviderRedis  PlanCacheProvider = "redis"
)

const (
	ProviderErrInvalidGraphProvider = "invalid_graph_provider"
	ProviderErrInvalidCacheProvider = "invalid_plan_cache_provider"
	ProviderErrMissingNeo4jURI      = "missing_neo4j_uri"
	ProviderErrMissingRedisAddr     = "missing_redis_addr"
	ProviderErrNeo4jInit            = "neo4j_init_failed"
	ProviderErrRedisInit            = "redis_init_failed"
)

type ProviderBootstrapError struct {
	Code     string
	Provider string
	Mode     string
	Cause    error
}

func (e *ProviderBootstrapError) Error() string {
	if e == nil {
		return ""
	}
	msg := fmt.Sprintf("%s provider bootstrap failed (code=%s mode=%s)", e.Provider, e.Code, e.Mode)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ProviderBootstrapError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

type providerSelection struct {
	Graph          GraphProvider
	GraphSource    string
	PlanCache      PlanCacheProvider
	PlanCacheSource string
}

// resolveProviders picks the concept graph and plan cache backends. An
// explicit GRAPH_PROVIDER / PLAN_CACHE_PROVIDER wins; otherwise a configured
// NEO4J_URI or REDIS_ADDR selects the networked backend.
func resolveProviders(cfg Config) (providerSelection, error) {
	var sel providerSelection

	graphRaw := strings.ToLower(strings.TrimSpace(cfg.GraphProvider))
	switch graphRaw {
	case "":
		sel.GraphSource = "default"
		sel.Graph = GraphProviderSQL
		if strings.TrimSpace(cfg.Neo4j.URI) != "" {
			sel.Graph = GraphProviderNeo4j
			sel.GraphSource = "neo4j_uri"
		}
	case string(GraphProviderSQL), string(GraphProviderNeo4j):
		sel.Graph = GraphProvider(graphRaw)
		sel.GraphSource = "env"
	default:
		return sel, &ProviderBootstrapError{
			Code:     ProviderErrInvalidGraphProvider,
			Provider: "graph",
			Mode:     graphRaw,
			Cause:    errors.New("GRAPH_PROVIDER must be one of: sql, neo4j"),
		}
	}
	if sel.Graph == GraphProviderNeo4j && strings.TrimSpace(cfg.Neo4j.URI) == "" {
		return sel, &ProviderBootstrapError{
			Code:     ProviderErrMissingNeo4jURI,
			Provider: "graph",
			Mode:     string(sel.Graph),
			Cause:    errors.New("NEO4J_URI is required when GRAPH_PROVIDER=neo4j"),
		}
	}

	cacheRaw := strings.ToLower(strings.TrimSpace(cfg.PlanCacheProvider))
	switch cacheRaw {
	case "":
		sel.PlanCacheSource = "default"
		sel.PlanCache = PlanCacheProviderMemory
		if strings.TrimSpace(cfg.RedisAddr) != "" {
			sel.PlanCache = PlanCacheProviderRedis
			sel.PlanCacheSource = "redis_addr"
		}
	case string(PlanCacheProviderMemory), string(PlanCacheProviderRedis):
		sel.PlanCache = PlanCacheProvider(cacheRaw)
		sel.PlanCacheSource = "env"
	default:
		return sel, &ProviderBootstrapError{
			Code:     ProviderErrInvalidCacheProvider,
			Provider: "plan_cache",
			Mode:     cacheRaw,
			Cause:    errors.New("PLAN_CACHE_PROVIDER must be one of: memory, redis"),
		}
	}
	if sel.PlanCache == PlanCacheProviderRedis && strings.TrimSpace(cfg.RedisAddr) == "" {
		return sel, &ProviderBootstrapError{
			Code:     ProviderErrMissingRedisAddr,
			Provider: "plan_cache",
			Mode:     string(sel.PlanCache),
			Cause:    errors.New("REDIS_ADDR is required when PLAN_CACHE_PROVIDER=redis"),
		}
	}
	return sel, nil
}
