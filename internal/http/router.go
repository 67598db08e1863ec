package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/strandcoach/internal/http/handlers"
	httpMW "github.com/yungbote/strandcoach/internal/http/middleware"
	"github.com/yungbote/strandcoach/internal/observability"
	"github.com/yungbote/strandcoach/internal/platform/logger"
)

type RouterConfig struct {
	CoachHandler  *httpH.CoachHandler
	HealthHandler *httpH.HealthHandler

	Metrics     *observability.Metrics
	Log         *logger.Logger
	ServiceName string
	CORSOrigins []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.CORS(cfg.CORSOrigins))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.RequestLogger(cfg.Log))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	if cfg.CoachHandler != nil {
		// Sessions
		api.POST("/sessions/preview", cfg.CoachHandler.Preview)
		api.POST("/sessions", cfg.CoachHandler.Start)
		api.GET("/sessions/:id", cfg.CoachHandler.GetSession)
		api.POST("/sessions/:id/exercises", cfg.CoachHandler.RecordExercise)
		api.POST("/sessions/:id/end", cfg.CoachHandler.EndSession)

		// Learner progress
		api.GET("/learners/:learner_id/frontier", cfg.CoachHandler.Frontier)
		api.GET("/learners/:learner_id/balance", cfg.CoachHandler.Balance)
		api.POST("/learners/:learner_id/promote", cfg.CoachHandler.Promote)
		api.POST("/learners/:learner_id/focus", cfg.CoachHandler.Focus)

		// Maintenance
		api.POST("/cards/bootstrap", cfg.CoachHandler.Bootstrap)
		api.GET("/cards/:item_id", cfg.CoachHandler.CardHistory)
		api.GET("/consistency", cfg.CoachHandler.CheckConsistency)
	}

	return r
}
