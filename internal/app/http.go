package app

import (
	httpapi "github.com/yungbote/strandcoach/internal/http"
	httpH "github.com/yungbote/strandcoach/internal/http/handlers"
	"github.com/yungbote/strandcoach/internal/observability"
	"github.com/yungbote/strandcoach/internal/platform/logger"
)

type Handlers struct {
	Health *httpH.HealthHandler
	Coach  *httpH.CoachHandler
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health: httpH.NewHealthHandler(),
		Coach:  httpH.NewCoachHandler(services.Coach),
	}
}

func wireServer(log *logger.Logger, cfg Config, handlers Handlers, metrics *observability.Metrics) *httpapi.Server {
	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = cfg.Otel.ServiceName
	}
	return httpapi.NewServer(httpapi.RouterConfig{
		CoachHandler:  handlers.Coach,
		HealthHandler: handlers.Health,
		Metrics:       metrics,
		Log:           log,
		ServiceName:   serviceName,
		CORSOrigins:   cfg.CORSOrigins,
	})
}
