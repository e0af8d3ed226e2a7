package observability

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/skilltree-backend/internal/platform/logger"
)

const namespace = "skilltree"

// Metrics holds the service collectors. A nil *Metrics is valid and records
// nothing, so callers never have to check whether metrics are enabled.
type Metrics struct {
	reg *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge

	researchSearches *prometheus.CounterVec
	researchResults  *prometheus.CounterVec
	researchLatency  *prometheus.HistogramVec

	generationRuns     *prometheus.CounterVec
	generationDuration *prometheus.HistogramVec
	generationSources  prometheus.Histogram

	aiCalls   *prometheus.CounterVec
	aiLatency *prometheus.HistogramVec

	linksCreated prometheus.Counter
	linksFailed  prometheus.Counter

	dbStats   *prometheus.GaugeVec
	redisUp   prometheus.Gauge
	redisPing prometheus.Gauge
}

// NewMetrics registers every collector on a private registry. Go runtime and
// process collectors are included.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	m := &Metrics{reg: reg}
	initAPIMetrics(f, m)
	initResearchMetrics(f, m)
	initGenerationMetrics(f, m)
	initInfraMetrics(f, m)
	return m
}

func initAPIMetrics(f promauto.Factory, m *Metrics) {
	m.apiRequests = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_requests_total",
		Help:      "Total API requests by method/route/status.",
	}, []string{"method", "route", "status"})
	m.apiLatency = f.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "api_request_duration_seconds",
		Help:      "API request latency in seconds by method/route/status.",
		Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
	}, []string{"method", "route", "status"})
	m.apiInflight = f.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "api_inflight_requests",
		Help:      "In-flight API requests.",
	})
}

func initResearchMetrics(f promauto.Factory, m *Metrics) {
	m.researchSearches = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "research_searches_total",
		Help:      "Research provider searches by source type and outcome.",
	}, []string{"source_type", "status"})
	m.researchResults = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "research_results_total",
		Help:      "Sources returned by research providers.",
	}, []string{"source_type"})
	m.researchLatency = f.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "research_search_duration_seconds",
		Help:      "Research provider search latency.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 20},
	}, []string{"source_type"})
}

func initGenerationMetrics(f promauto.Factory, m *Metrics) {
	m.generationRuns = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "generation_runs_total",
		Help:      "Finished generation runs by agent type and terminal state.",
	}, []string{"agent_type", "state"})
	m.generationDuration = f.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "generation_run_duration_seconds",
		Help:      "Wall time of a generation run.",
		Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120, 300},
	}, []string{"agent_type", "state"})
	m.generationSources = f.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "generation_sources_found",
		Help:      "Sources found by the research stage per run.",
		Buckets:   []float64{0, 1, 2, 5, 10, 20, 50},
	})
	m.aiCalls = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ai_calls_total",
		Help:      "AI provider calls by agent type, operation and outcome.",
	}, []string{"agent_type", "op", "status"})
	m.aiLatency = f.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "ai_call_duration_seconds",
		Help:      "AI provider call latency.",
		Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60, 120},
	}, []string{"agent_type", "op"})
	m.linksCreated = f.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "domain_source_links_created_total",
		Help:      "Domain-source links created by generation runs.",
	})
	m.linksFailed = f.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "domain_source_links_failed_total",
		Help:      "Domain-source link attempts that failed and were skipped.",
	})
}

func initInfraMetrics(f promauto.Factory, m *Metrics) {
	m.dbStats = f.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "db_pool",
		Help:      "database/sql pool statistics.",
	}, []string{"stat"})
	m.redisUp = f.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "redis_up",
		Help:      "1 when the last redis ping succeeded.",
	})
	m.redisPing = f.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "redis_ping_seconds",
		Help:      "Latency of the last successful redis ping.",
	})
}

// Registry exposes the private registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.reg
}

// Handler serves the Prometheus exposition format for this registry.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	method = orDefault(method, "UNKNOWN")
	route = orDefault(route, "unknown")
	status = orDefault(status, "0")
	m.apiRequests.WithLabelValues(method, route, status).Inc()
	m.apiLatency.WithLabelValues(method, route, status).Observe(dur.Seconds())
}

func (m *Metrics) APIInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) APIInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

// ObserveSearch satisfies research.SearchObserver.
func (m *Metrics) ObserveSearch(sourceType string, results int, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	sourceType = orDefault(sourceType, "unknown")
	m.researchSearches.WithLabelValues(sourceType, statusOf(err)).Inc()
	if results > 0 {
		m.researchResults.WithLabelValues(sourceType).Add(float64(results))
	}
	m.researchLatency.WithLabelValues(sourceType).Observe(elapsed.Seconds())
}

// ObserveAICall records one generate/analyze call against a provider.
func (m *Metrics) ObserveAICall(agentType, op string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	agentType = orDefault(agentType, "unknown")
	op = orDefault(op, "unknown")
	m.aiCalls.WithLabelValues(agentType, op, statusOf(err)).Inc()
	m.aiLatency.WithLabelValues(agentType, op).Observe(elapsed.Seconds())
}

// ObserveGenerationRun records a run that reached a terminal state.
func (m *Metrics) ObserveGenerationRun(agentType, state string, sourcesFound int, elapsed time.Duration) {
	if m == nil {
		return
	}
	agentType = orDefault(agentType, "unknown")
	state = orDefault(state, "unknown")
	m.generationRuns.WithLabelValues(agentType, state).Inc()
	m.generationDuration.WithLabelValues(agentType, state).Observe(elapsed.Seconds())
	m.generationSources.Observe(float64(sourcesFound))
}

func (m *Metrics) ObserveLink(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.linksFailed.Inc()
		return
	}
	m.linksCreated.Inc()
}

// StartDBCollector samples the gorm connection pool until ctx is done.
func (m *Metrics) StartDBCollector(ctx context.Context, log *logger.Logger, db *gorm.DB, interval time.Duration) {
	if m == nil || db == nil {
		return
	}
	if interval <= 0 {
		interval = 10 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.sampleDB(log, db)
			}
		}
	}()
}

func (m *Metrics) sampleDB(log *logger.Logger, db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		if log != nil {
			log.Warn("metrics: db stats unavailable", "error", err)
		}
		return
	}
	stats := sqlDB.Stats()
	m.dbStats.WithLabelValues("open_connections").Set(float64(stats.OpenConnections))
	m.dbStats.WithLabelValues("in_use").Set(float64(stats.InUse))
	m.dbStats.WithLabelValues("idle").Set(float64(stats.Idle))
	m.dbStats.WithLabelValues("wait_count").Set(float64(stats.WaitCount))
	m.dbStats.WithLabelValues("wait_duration_seconds").Set(stats.WaitDuration.Seconds())
	m.dbStats.WithLabelValues("max_open_connections").Set(float64(stats.MaxOpenConnections))
}

// StartRedisCollector pings rdb on an interval until ctx is done. The client
// is owned by the caller.
func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb *goredis.Client, interval time.Duration) {
	if m == nil || rdb == nil {
		return
	}
	if interval <= 0 {
		interval = 10 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.sampleRedis(ctx, log, rdb)
			}
		}
	}()
}

func (m *Metrics) sampleRedis(ctx context.Context, log *logger.Logger, rdb *goredis.Client) {
	start := time.Now()
	if err := rdb.Ping(ctx).Err(); err != nil {
		m.redisUp.Set(0)
		if log != nil {
			log.Warn("metrics: redis ping failed", "error", err)
		}
		return
	}
	m.redisUp.Set(1)
	m.redisPing.Set(time.Since(start).Seconds())
}

func statusOf(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func orDefault(v, def string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return def
	}
	return v
}
