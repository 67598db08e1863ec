package app

import (
	"time"

	"github.com/yungbote/strandcoach/internal/data/db"
	"github.com/yungbote/strandcoach/internal/modules/learning/planner"
	"github.com/yungbote/strandcoach/internal/observability"
	"github.com/yungbote/strandcoach/internal/platform/envutil"
	"github.com/yungbote/strandcoach/internal/platform/logger"
	"github.com/yungbote/strandcoach/internal/platform/neo4jdb"
)

type Config struct {
	DB          db.Config
	HTTPAddr    string
	CORSOrigins []string
	ProfilePath string

	GraphProvider     string
	PlanCacheProvider string
	RedisAddr         string
	RedisPrefix       string
	Neo4j             neo4jdb.Config

	Planner      planner.Config
	PlanCacheTTL time.Duration

	Otel observability.OtelConfig
}

func LoadConfig(log *logger.Logger) Config {
	return Config{
		DB: db.Config{
			Driver:      envutil.String("DB_DRIVER", db.DriverSQLite, log),
			SQLitePath:  envutil.String("SQLITE_PATH", "state/coach.sqlite", log),
			PostgresDSN: envutil.String("POSTGRES_DSN", "", log),
		},
		HTTPAddr:    envutil.String("HTTP_ADDR", ":8080", log),
		CORSOrigins: envutil.List("CORS_ALLOWED_ORIGINS", log),
		ProfilePath: envutil.String("LEARNER_PROFILE_PATH", "state/learner.yaml", log),

		GraphProvider:     envutil.String("GRAPH_PROVIDER", "", log),
		PlanCacheProvider: envutil.String("PLAN_CACHE_PROVIDER", "", log),
		RedisAddr:         envutil.String("REDIS_ADDR", "", log),
		RedisPrefix:       envutil.String("REDIS_PLAN_CACHE_PREFIX", "", log),
		Neo4j: neo4jdb.Config{
			URI:         envutil.String("NEO4J_URI", "", log),
			User:        envutil.String("NEO4J_USER", "neo4j", log),
			Password:    envutil.String("NEO4J_PASSWORD", "", log),
			Database:    envutil.String("NEO4J_DATABASE", "", log),
			Timeout:     envutil.Duration("NEO4J_TIMEOUT", 10*time.Second, log),
			MaxPoolSize: envutil.Int("NEO4J_MAX_POOL_SIZE", 10, log),
		},

		Planner: planner.Config{
			HistorySessions: envutil.Int("BALANCE_HISTORY_SESSIONS", 10, log),
			DueLimit:        envutil.Int("DUE_LIMIT", 30, log),
			FrontierLimit:   envutil.Int("FRONTIER_LIMIT", 20, log),
			FluencyLimit:    envutil.Int("FLUENCY_LIMIT", 20, log),
		},
		PlanCacheTTL: envutil.Duration("PLAN_CACHE_TTL", planner.DefaultCacheTTL, log),

		Otel: observability.OtelConfig{
			Enabled:     envutil.Bool("OTEL_ENABLED", false, log),
			ServiceName: envutil.String("OTEL_SERVICE_NAME", "strandcoach", log),
			Environment: envutil.String("OTEL_ENVIRONMENT", "development", log),
			Version:     envutil.String("OTEL_SERVICE_VERSION", "dev", log),
			Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", "", log),
			Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", true, log),
			SampleRatio: envutil.Float("OTEL_SAMPLE_RATIO", 1.0, log),
		},
	}
}
