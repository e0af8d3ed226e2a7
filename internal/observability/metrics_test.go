package observability

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/x", "200", time.Millisecond)
	m.APIInflightInc()
	m.APIInflightDec()
	m.ObserveSearch("ARXIV", 3, nil, time.Millisecond)
	m.ObserveAICall("CLAUDE", "generate", nil, time.Millisecond)
	m.ObserveGenerationRun("CLAUDE", "PERSISTED", 4, time.Second)
	m.ObserveLink(nil)
	m.StartDBCollector(context.Background(), nil, nil, 0)
	assert.Nil(t, m.Registry())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestObserveSearch(t *testing.T) {
	m := NewMetrics()
	m.ObserveSearch("ARXIV", 3, nil, 10*time.Millisecond)
	m.ObserveSearch("ARXIV", 0, errors.New("boom"), 10*time.Millisecond)
	m.ObserveSearch("", 2, nil, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.researchSearches.WithLabelValues("ARXIV", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.researchSearches.WithLabelValues("ARXIV", "error")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.researchResults.WithLabelValues("ARXIV")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.researchResults.WithLabelValues("unknown")))
}

func TestGenerationAndLinkCounters(t *testing.T) {
	m := NewMetrics()
	m.ObserveGenerationRun("GEMINI", "PERSISTED", 4, 2*time.Second)
	m.ObserveGenerationRun("GEMINI", "FAILED", 0, time.Second)
	m.ObserveAICall("GEMINI", "generate", errors.New("quota"), time.Second)
	m.ObserveLink(nil)
	m.ObserveLink(nil)
	m.ObserveLink(errors.New("fk"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.generationRuns.WithLabelValues("GEMINI", "PERSISTED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.generationRuns.WithLabelValues("GEMINI", "FAILED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.aiCalls.WithLabelValues("GEMINI", "generate", "error")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.linksCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.linksFailed))
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := NewMetrics()
	m.ObserveAPI("POST", "/api/generation/domain", "200", 50*time.Millisecond)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()
	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `skilltree_api_requests_total{method="POST",route="/api/generation/domain",status="200"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestTwoInstancesDoNotCollide(t *testing.T) {
	assert.NotPanics(t, func() {
		_ = NewMetrics()
		_ = NewMetrics()
	})
}

func TestSampleRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	m := NewMetrics()
	m.sampleRedis(context.Background(), nil, rdb)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.redisUp))

	mr.Close()
	m.sampleRedis(context.Background(), nil, rdb)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.redisUp))
}

func TestParseHeadersAndClamp(t *testing.T) {
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, parseHeaders(" a=1, b=2 ,bad, c="))
	assert.Nil(t, parseHeaders(""))
	assert.Equal(t, 0.0, clampRatio(-1))
	assert.Equal(t, 1.0, clampRatio(3))
	assert.Equal(t, 0.25, clampRatio(0.25))
}

func TestInitOTelDisabledReturnsNoop(t *testing.T) {
	shutdown := InitOTel(context.Background(), nil, OtelConfig{Enabled: false})
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
	assert.NotNil(t, Tracer())
}
