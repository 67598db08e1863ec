package observability

import (
	"database/sql"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yungbote/strandcoach/internal/platform/logger"
)

const namespace = "strandcoach"

type Metrics struct {
	reg *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge

	operations       *prometheus.CounterVec
	operationLatency *prometheus.HistogramVec

	reviews           *prometheus.CounterVec
	masteryTransition *prometheus.CounterVec
	sessions          *prometheus.CounterVec
	planCache         *prometheus.CounterVec
	planFilled        *prometheus.HistogramVec
	planShortfall     *prometheus.HistogramVec
	consistency       prometheus.Counter
	skillPromotions   *prometheus.CounterVec
}

var (
	initOnce sync.Once
	instance *Metrics
)

// Init builds the process-wide metrics once.
func Init(log *logger.Logger) *Metrics {
	initOnce.Do(func() {
		instance = NewMetrics()
		if log != nil {
			log.Info("metrics initialized")
		}
	})
	return instance
}

func Current() *Metrics {
	return instance
}

// NewMetrics registers every collector on a private registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		reg: reg,
		apiRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		apiLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		apiInflight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "http_inflight_requests",
			Help: "HTTP requests currently being served.",
		}),
		operations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "operations_total",
			Help: "Coach operations by name and outcome.",
		}, []string{"op", "outcome"}),
		operationLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "operation_duration_seconds",
			Help:    "Coach operation latency.",
			Buckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"op"}),
		reviews: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "reviews_total",
			Help: "Recorded reviews by category and quality.",
		}, []string{"category", "quality"}),
		masteryTransition: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "mastery_transitions_total",
			Help: "Card mastery status changes.",
		}, []string{"from", "to"}),
		sessions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "sessions_total",
			Help: "Session lifecycle events.",
		}, []string{"event"}),
		planCache: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "plan_cache_total",
			Help: "Plan cache lookups at session start.",
		}, []string{"result"}),
		planFilled: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "plan_filled_seconds",
			Help:    "Planned time per category.",
			Buckets: []float64{0, 60, 120, 300, 600, 900, 1800, 3600},
		}, []string{"category"}),
		planShortfall: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "plan_shortfall_seconds",
			Help:    "Unfilled target time per category.",
			Buckets: []float64{0, 60, 120, 300, 600, 900, 1800, 3600},
		}, []string{"category"}),
		consistency: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "consistency_violations_total",
			Help: "Cards found violating a state invariant.",
		}),
		skillPromotions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "skill_promotions_total",
			Help: "Secure level promotions by skill and new level.",
		}, []string{"skill", "level"}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

// Registry is exposed for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// RegisterDB exports database/sql pool stats.
func (m *Metrics) RegisterDB(db *sql.DB, name string) {
	if m == nil || db == nil {
		return
	}
	_ = m.reg.Register(collectors.NewDBStatsCollector(db, name))
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	if status == "" {
		status = "0"
	}
	m.apiRequests.WithLabelValues(method, route, status).Inc()
	m.apiLatency.WithLabelValues(method, route).Observe(dur.Seconds())
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) ObserveOperation(op string, err error, dur time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.operations.WithLabelValues(op, outcome).Inc()
	m.operationLatency.WithLabelValues(op).Observe(dur.Seconds())
}

func (m *Metrics) IncReview(category string, quality int) {
	if m == nil {
		return
	}
	m.reviews.WithLabelValues(category, strconv.Itoa(quality)).Inc()
}

func (m *Metrics) IncMasteryTransition(from, to string) {
	if m == nil || from == to {
		return
	}
	m.masteryTransition.WithLabelValues(from, to).Inc()
}

func (m *Metrics) IncSession(event string) {
	if m == nil {
		return
	}
	m.sessions.WithLabelValues(event).Inc()
}

func (m *Metrics) IncPlanCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.planCache.WithLabelValues(result).Inc()
}

func (m *Metrics) ObservePlan(category string, filled, shortfall float64) {
	if m == nil {
		return
	}
	m.planFilled.WithLabelValues(category).Observe(filled)
	m.planShortfall.WithLabelValues(category).Observe(shortfall)
}

func (m *Metrics) AddConsistencyViolations(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.consistency.Add(float64(n))
}

func (m *Metrics) IncSkillPromotion(skill, level string) {
	if m == nil {
		return
	}
	m.skillPromotions.WithLabelValues(skill, level).Inc()
}
