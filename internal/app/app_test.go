package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/strandcoach/internal/data/db"
	"github.com/yungbote/strandcoach/internal/modules/learning/planner"
	"github.com/yungbote/strandcoach/internal/platform/logger"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	dir := t.TempDir()
	return Config{
		DB:           db.Config{Driver: db.DriverSQLite, SQLitePath: filepath.Join(dir, "coach.sqlite")},
		HTTPAddr:     "127.0.0.1:0",
		ProfilePath:  filepath.Join(dir, "learner.yaml"),
		Planner:      planner.DefaultConfig(),
		PlanCacheTTL: planner.DefaultCacheTTL,
	}
}

func TestNewWithConfigServesRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	a, err := NewWithConfig(context.Background(), logger.Nop(), testConfig(t))
	if err != nil {
		t.Fatalf("NewWithConfig: %v", err)
	}
	t.Cleanup(a.Close)

	if _, ok := a.Clients.PlanCache.(*planner.MemoryCache); !ok {
		t.Fatalf("plan cache = %T, want memory", a.Clients.PlanCache)
	}
	if a.Clients.Neo4j != nil {
		t.Fatalf("neo4j client should not be wired without NEO4J_URI")
	}

	tests := []struct {
		method string
		path   string
		status int
		body   string
	}{
		{http.MethodGet, "/healthcheck", http.StatusOK, "ok"},
		{http.MethodPost, "/api/cards/bootstrap", http.StatusOK, `"created":0`},
		{http.MethodGet, "/api/consistency", http.StatusOK, `"cards_checked":0`},
		{http.MethodGet, "/metrics", http.StatusOK, "strandcoach_http_inflight_requests"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			a.Server.Engine.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.status, rec.Body.String())
			}
			if !strings.Contains(rec.Body.String(), tt.body) {
				t.Fatalf("body %q does not contain %q", rec.Body.String(), tt.body)
			}
		})
	}
}

func TestNewWithConfigRejectsBadProvider(t *testing.T) {
	cfg := testConfig(t)
	cfg.PlanCacheProvider = "redis"
	if _, err := NewWithConfig(context.Background(), logger.Nop(), cfg); err == nil {
		t.Fatalf("expected provider error")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	a, err := NewWithConfig(context.Background(), logger.Nop(), testConfig(t))
	if err != nil {
		t.Fatalf("NewWithConfig: %v", err)
	}
	t.Cleanup(a.Close)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := a.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
}
